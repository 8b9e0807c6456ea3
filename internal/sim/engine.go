package sim

import (
	"fmt"
	"log/slog"
)

// IdleLabel marks timeline slots where no job was running.
const IdleLabel = "IDLE"

// Slot is one tick of the execution timeline: the job that held the CPU, or
// an idle record.
type Slot struct {
	Tick int    `json:"tick"`
	Job  string `json:"job"`
	Task string `json:"task"`
}

// Idle reports whether no job ran during this slot.
func (s Slot) Idle() bool {
	return s.Job == IdleLabel
}

// Result is the full output of one engine run: aggregate statistics, the
// tick-indexed timeline, and the completed-job stream.
type Result struct {
	Policy    Policy
	Horizon   int
	Stats     Stats
	Timeline  []Slot
	Completed []*Job
}

// Engine is the tick-stepped scheduling simulator. One engine instance owns
// one run; instances are never shared. The engine is single-threaded and
// performs no admission control: overload shows up as missed deadlines in
// the result, never as an error.
type Engine struct {
	policy  Policy
	tasks   []*Task
	horizon int
	logger  *slog.Logger

	now       int
	pending   []*Job
	next      int // index of the first unadmitted pending job
	ready     readyQueue
	running   *Job
	completed []*Job
	timeline  []Slot
}

// NewEngine validates the inputs and builds an engine for one run.
func NewEngine(tasks []*Task, horizon int, policy Policy, logger *slog.Logger) (*Engine, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("task set must not be empty")
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", horizon)
	}
	if _, err := ParsePolicy(string(policy)); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.Name] {
			return nil, fmt.Errorf("duplicate task name %q", t.Name)
		}
		seen[t.Name] = true
	}
	e := &Engine{
		policy:  policy,
		tasks:   tasks,
		horizon: horizon,
		logger:  logger.With("component", "engine", "policy", policy.String()),
		ready:   newReadyQueue(policy),
	}
	e.pending = GenerateJobs(tasks, horizon)
	return e, nil
}

// Step executes one simulation tick: admit, deadline scan, completion
// check, dispatch, execute. It returns false once the run has drained:
// the clock reached the horizon with an empty ready set and an idle running
// slot. Run drives it to completion; tests use it to observe the engine
// mid-run.
func (e *Engine) Step() bool {
	if e.now >= e.horizon && e.ready.Len() == 0 && e.running == nil {
		return false
	}
	e.admit()
	e.scanDeadlines()
	e.reapCompleted()
	e.dispatch()
	e.execute()
	return true
}

// Run executes the simulation to completion. The loop continues past the
// horizon until every admitted job has drained, so total simulated ticks
// may exceed the horizon under overload.
func (e *Engine) Run() *Result {
	e.logger.Debug("run starting", "jobs", len(e.pending), "horizon", e.horizon)

	for e.Step() {
	}

	stats := Analyze(e.completed, e.timeline)
	e.logger.Info("run finished",
		"completed", stats.TotalJobs,
		"missed", stats.MissedDeadlines,
		"ticks", len(e.timeline),
	)
	return &Result{
		Policy:    e.policy,
		Horizon:   e.horizon,
		Stats:     stats,
		Timeline:  e.timeline,
		Completed: e.completed,
	}
}

// admit moves every pending job with arrival <= now into the ready set.
func (e *Engine) admit() {
	for e.next < len(e.pending) && e.pending[e.next].Arrival <= e.now {
		j := e.pending[e.next]
		j.State = JobStateReady
		e.ready.Push(j)
		e.next++
	}
}

// scanDeadlines flags every ready (not running) job whose absolute deadline
// already passed. The running job is only checked at completion.
func (e *Engine) scanDeadlines() {
	for _, j := range e.ready.Jobs() {
		if j.AbsoluteDeadline < e.now && !j.Missed {
			j.Missed = true
			e.logger.Debug("deadline missed in ready queue", "job", j.ID(), "deadline", j.AbsoluteDeadline, "tick", e.now)
		}
	}
}

// reapCompleted moves the running job to the completed list once its budget
// is exhausted, stamping finish and response times.
func (e *Engine) reapCompleted() {
	j := e.running
	if j == nil || j.Remaining != 0 {
		return
	}
	j.Finish = e.now
	j.Response = j.Finish - j.Arrival
	late := j.Finish > j.AbsoluteDeadline
	if j.Missed && !late {
		// The ready-queue scan and the completion check must agree: a job
		// flagged while waiting can only have finished after its deadline.
		e.logger.Error("miss flag contradiction", "job", j.ID(), "finish", j.Finish, "deadline", j.AbsoluteDeadline)
	}
	if late {
		j.Missed = true
	}
	j.State = JobStateCompleted
	e.completed = append(e.completed, j)
	e.running = nil
}

// dispatch selects the next job to run under the engine's policy. Preemptive
// policies displace the running job whenever the head of the ready set
// strictly outranks it; FIFO only dispatches into an empty slot.
func (e *Engine) dispatch() {
	head := e.ready.Peek()
	if head == nil {
		return
	}
	switch {
	case e.running == nil:
		e.start(e.ready.Pop())
	case e.ready.Outranks(head, e.running):
		preempted := e.running
		preempted.State = JobStateReady
		e.ready.Push(preempted)
		e.start(e.ready.Pop())
		e.logger.Debug("preempted", "job", preempted.ID(), "by", e.running.ID(), "tick", e.now)
	}
}

// start promotes a job into the running slot, stamping its start time on
// first dispatch.
func (e *Engine) start(j *Job) {
	if !j.Started() {
		j.Start = e.now
	}
	j.State = JobStateRunning
	e.running = j
}

// execute burns one tick of capacity on the running job, or records an idle
// slot, and advances the clock.
func (e *Engine) execute() {
	if e.running != nil {
		e.timeline = append(e.timeline, Slot{Tick: e.now, Job: e.running.ID(), Task: e.running.Task.Name})
		e.running.Remaining--
	} else {
		e.timeline = append(e.timeline, Slot{Tick: e.now, Job: IdleLabel, Task: IdleLabel})
	}
	e.now++
}

// Now returns the engine's current tick.
func (e *Engine) Now() int {
	return e.now
}

// Running returns the job occupying the running slot, or nil when idle.
func (e *Engine) Running() *Job {
	return e.running
}

// ReadyJobs returns the jobs currently in the ready set, in no particular
// order.
func (e *Engine) ReadyJobs() []*Job {
	return e.ready.Jobs()
}

// Simulate is the one-call convenience wrapper: build an engine and run it.
func Simulate(tasks []*Task, horizon int, policy Policy, logger *slog.Logger) (*Result, error) {
	e, err := NewEngine(tasks, horizon, policy, logger)
	if err != nil {
		return nil, err
	}
	return e.Run(), nil
}
