package sim

import (
	"fmt"
	"math"
)

// TrafficClass labels a task for the M2M utility curves. It has no effect on
// dispatch.
type TrafficClass string

const (
	// ClassDelaySensitive covers emergency and safety-critical traffic
	// (step-threshold utility).
	ClassDelaySensitive TrafficClass = "delay_sensitive"
	// ClassDelayTolerant covers monitoring and diagnostic traffic
	// (exponential-decay utility).
	ClassDelayTolerant TrafficClass = "delay_tolerant"
)

// Task is the immutable definition of a periodic workload. All durations are
// in ticks. A task with Deadline < Period has a constrained deadline.
type Task struct {
	Name     string
	Period   int
	WCET     int
	Deadline int

	// Class selects the traffic-class utility curve. Empty defaults to
	// delay-sensitive.
	Class TrafficClass
}

// NewTask validates the task parameters and returns the descriptor.
// Non-positive period, WCET or deadline is a configuration error.
func NewTask(name string, period, wcet, deadline int) (*Task, error) {
	if name == "" {
		return nil, fmt.Errorf("task name must not be empty")
	}
	if period <= 0 {
		return nil, fmt.Errorf("task %q: period must be positive, got %d", name, period)
	}
	if wcet <= 0 {
		return nil, fmt.Errorf("task %q: wcet must be positive, got %d", name, wcet)
	}
	if deadline <= 0 {
		return nil, fmt.Errorf("task %q: deadline must be positive, got %d", name, deadline)
	}
	return &Task{Name: name, Period: period, WCET: wcet, Deadline: deadline}, nil
}

// Priority is the static rate-monotonic rank: equal to the period, so a
// smaller value means a higher priority.
func (t *Task) Priority() int {
	return t.Period
}

// Utilization returns WCET/Period.
func (t *Task) Utilization() float64 {
	return float64(t.WCET) / float64(t.Period)
}

// Constrained reports whether the relative deadline is strictly shorter than
// the period.
func (t *Task) Constrained() bool {
	return t.Deadline < t.Period
}

func (t *Task) String() string {
	return fmt.Sprintf("Task(%s, P=%d, C=%d, D=%d)", t.Name, t.Period, t.WCET, t.Deadline)
}

// TotalUtilization sums WCET/Period over the task set.
func TotalUtilization(tasks []*Task) float64 {
	var u float64
	for _, t := range tasks {
		u += t.Utilization()
	}
	return u
}

// RMBound is the Liu-Layland rate-monotonic schedulability bound
// n(2^(1/n)-1) for n tasks.
func RMBound(n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n) * (math.Pow(2, 1/float64(n)) - 1)
}
