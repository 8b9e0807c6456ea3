// Package monitor maintains live statistics over a stream of completed job
// records, either from an in-process simulation or from external devices
// reporting over the telemetry listener.
package monitor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/me/wisched/internal/sim"
	"github.com/me/wisched/pkg/model"
)

// TaskInfo is what the monitor needs to know about a task to score its jobs:
// the relative deadline fallback and the traffic class.
type TaskInfo struct {
	Deadline int
	Class    sim.TrafficClass
}

// TaskSnapshot is the per-task slice of a Snapshot.
type TaskSnapshot struct {
	Jobs        int     `json:"jobs"`
	Missed      int     `json:"missed"`
	AvgResponse float64 `json:"avg_response"`
	MinResponse int     `json:"min_response"`
	MaxResponse int     `json:"max_response"`
	MeanUtility float64 `json:"mean_utility"`
}

// Snapshot is a point-in-time copy of the session statistics. It is safe to
// hold after the session moves on.
type Snapshot struct {
	Jobs        int                     `json:"jobs"`
	Missed      int                     `json:"missed"`
	AvgResponse float64                 `json:"avg_response"`
	MinResponse int                     `json:"min_response"`
	MaxResponse int                     `json:"max_response"`
	MeanUtility float64                 `json:"mean_utility"`
	PerTask     map[string]TaskSnapshot `json:"per_task"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

type acc struct {
	jobs, missed, sum int
	min, max          int
	utility           float64
}

func (a *acc) observe(response int, missed bool, utility float64) {
	a.jobs++
	if missed {
		a.missed++
	}
	a.sum += response
	if a.jobs == 1 || response < a.min {
		a.min = response
	}
	if response > a.max {
		a.max = response
	}
	a.utility += utility
}

func (a *acc) avg() float64 {
	if a.jobs == 0 {
		return 0
	}
	return float64(a.sum) / float64(a.jobs)
}

func (a *acc) meanUtility() float64 {
	if a.jobs == 0 {
		return 0
	}
	return a.utility / float64(a.jobs)
}

// Session accumulates job records and fans them out to subscribers. All
// methods are safe for concurrent use; the telemetry listener and the HTTP
// handlers share one session.
type Session struct {
	mu      sync.Mutex
	logger  *slog.Logger
	tasks   map[string]TaskInfo
	total   acc
	perTask map[string]*acc
	order   []string
	updated time.Time
	subs    map[chan model.JobRecord]struct{}
}

// NewSession creates an empty monitoring session. tasks may be nil; records
// for unregistered tasks are scored with the delay-sensitive curve against
// their own deadline window.
func NewSession(tasks map[string]TaskInfo, logger *slog.Logger) *Session {
	return &Session{
		logger:  logger.With("component", "monitor"),
		tasks:   tasks,
		perTask: make(map[string]*acc),
		subs:    make(map[chan model.JobRecord]struct{}),
	}
}

// Observe folds one completed job record into the running statistics and
// notifies subscribers. Subscribers that have fallen behind are skipped, not
// waited on.
func (s *Session) Observe(rec model.JobRecord) {
	lateness := rec.Finish - rec.Deadline
	relative := rec.Deadline - rec.Arrival
	info, known := s.tasks[rec.Task]
	if known && info.Deadline > 0 {
		relative = info.Deadline
	}
	curve := sim.UtilityDelaySensitive
	if known && info.Class == sim.ClassDelayTolerant {
		curve = sim.UtilityDelayTolerant
	}
	var u float64
	if relative > 0 {
		u = sim.UtilityValue(curve, lateness, rec.Response, relative)
	}

	s.mu.Lock()
	a := s.perTask[rec.Task]
	if a == nil {
		a = &acc{}
		s.perTask[rec.Task] = a
		s.order = append(s.order, rec.Task)
	}
	s.total.observe(rec.Response, rec.Missed, u)
	a.observe(rec.Response, rec.Missed, u)
	s.updated = time.Now().UTC()
	for ch := range s.subs {
		select {
		case ch <- rec:
		default:
			s.logger.Debug("subscriber lagging, dropping record", "job", rec.JobID())
		}
	}
	s.mu.Unlock()

	s.logger.Debug("observed", "job", rec.JobID(), "response", rec.Response, "missed", rec.Missed)
}

// Snapshot returns a copy of the current statistics.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Jobs:        s.total.jobs,
		Missed:      s.total.missed,
		AvgResponse: s.total.avg(),
		MinResponse: s.total.min,
		MaxResponse: s.total.max,
		MeanUtility: s.total.meanUtility(),
		PerTask:     make(map[string]TaskSnapshot, len(s.perTask)),
		UpdatedAt:   s.updated,
	}
	for _, name := range s.order {
		a := s.perTask[name]
		snap.PerTask[name] = TaskSnapshot{
			Jobs:        a.jobs,
			Missed:      a.missed,
			AvgResponse: a.avg(),
			MinResponse: a.min,
			MaxResponse: a.max,
			MeanUtility: a.meanUtility(),
		}
	}
	return snap
}

// Subscribe registers a channel that receives every subsequent record. The
// returned cancel function removes the subscription and closes the channel.
func (s *Session) Subscribe(buffer int) (<-chan model.JobRecord, func()) {
	ch := make(chan model.JobRecord, buffer)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Reset clears the accumulated statistics but keeps subscribers.
func (s *Session) Reset() {
	s.mu.Lock()
	s.total = acc{}
	s.perTask = make(map[string]*acc)
	s.order = nil
	s.updated = time.Time{}
	s.mu.Unlock()
}
