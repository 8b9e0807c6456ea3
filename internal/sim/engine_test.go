package sim

import (
	"reflect"
	"testing"
)

func mustRun(t *testing.T, tasks []*Task, horizon int, policy Policy) *Result {
	t.Helper()
	res, err := Simulate(tasks, horizon, policy, testLogger())
	if err != nil {
		t.Fatalf("Simulate(%s): %v", policy, err)
	}
	return res
}

func TestNewEngine_Validation(t *testing.T) {
	task := mustTask(t, "T", 100, 10, 100)
	logger := testLogger()

	if _, err := NewEngine(nil, 100, PolicyEDF, logger); err == nil {
		t.Error("empty task set: want error")
	}
	if _, err := NewEngine([]*Task{task}, 0, PolicyEDF, logger); err == nil {
		t.Error("zero horizon: want error")
	}
	if _, err := NewEngine([]*Task{task}, -10, PolicyEDF, logger); err == nil {
		t.Error("negative horizon: want error")
	}
	if _, err := NewEngine([]*Task{task}, 100, Policy("LIFO"), logger); err == nil {
		t.Error("unknown policy: want error")
	}
	if _, err := NewEngine([]*Task{task, task}, 100, PolicyEDF, logger); err == nil {
		t.Error("duplicate task name: want error")
	}
}

// Scenario A: a single task that trivially fits. Every policy must produce
// exactly 3 completed jobs, no misses, response time 30 each.
func TestRun_SingleTaskAllPolicies(t *testing.T) {
	for _, policy := range Policies {
		t.Run(policy.String(), func(t *testing.T) {
			task := mustTask(t, "Solo", 100, 30, 100)
			res := mustRun(t, []*Task{task}, 300, policy)

			if res.Stats.TotalJobs != 3 {
				t.Fatalf("completed = %d, want 3", res.Stats.TotalJobs)
			}
			if res.Stats.MissedDeadlines != 0 {
				t.Errorf("missed = %d, want 0", res.Stats.MissedDeadlines)
			}
			for _, j := range res.Completed {
				if j.Response != 30 {
					t.Errorf("job %s response = %d, want 30", j.ID(), j.Response)
				}
				if j.Start != j.Arrival {
					t.Errorf("job %s start = %d, want arrival %d", j.ID(), j.Start, j.Arrival)
				}
			}
		})
	}
}

// Scenario B: total utilization 8/10 + 8/15 > 100%. FIFO and RM must miss
// deadlines; EDF may miss too but never more than either.
func TestRun_OverloadPolicyOrdering(t *testing.T) {
	build := func() []*Task {
		return []*Task{
			mustTask(t, "A", 10, 8, 10),
			mustTask(t, "B", 15, 8, 15),
		}
	}

	missed := make(map[Policy]int)
	for _, policy := range Policies {
		res := mustRun(t, build(), 1000, policy)
		missed[policy] = res.Stats.MissedDeadlines
	}

	if missed[PolicyFIFO] == 0 {
		t.Error("FIFO under overload should miss deadlines")
	}
	if missed[PolicyRM] == 0 {
		t.Error("RM under overload should miss deadlines")
	}
	if missed[PolicyEDF] > missed[PolicyRM] {
		t.Errorf("EDF missed %d > RM %d", missed[PolicyEDF], missed[PolicyRM])
	}
	if missed[PolicyEDF] > missed[PolicyFIFO] {
		t.Errorf("EDF missed %d > FIFO %d", missed[PolicyEDF], missed[PolicyFIFO])
	}
}

// Scenario C: a constrained-deadline task (PIR, D=80 << P=200) co-scheduled
// with a shorter-period task under ~92% utilization. RM ranks PIR by its
// period and starves its tight deadline; EDF must do strictly better on it.
func TestRun_ConstrainedDeadlineFavorsEDF(t *testing.T) {
	edf := mustRun(t, industrialTasks(t), 30000, PolicyEDF)
	rm := mustRun(t, industrialTasks(t), 30000, PolicyRM)

	edfPIR := edf.Stats.PerTask["PIR"].MissedDeadlines
	rmPIR := rm.Stats.PerTask["PIR"].MissedDeadlines
	if rmPIR <= edfPIR {
		t.Errorf("RM PIR misses = %d, EDF PIR misses = %d; want RM strictly greater", rmPIR, edfPIR)
	}
}

// The EDF invariant: whenever something is running, it has the earliest
// absolute deadline among ready and running jobs.
func TestStep_EDFInvariant(t *testing.T) {
	e, err := NewEngine(industrialTasks(t), 3000, PolicyEDF, testLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	for e.Step() {
		running := e.Running()
		if running == nil {
			continue
		}
		for _, r := range e.ReadyJobs() {
			if r.OutranksEDF(running) {
				t.Fatalf("tick %d: ready job %s (deadline %d) outranks running %s (deadline %d)",
					e.Now(), r.ID(), r.AbsoluteDeadline, running.ID(), running.AbsoluteDeadline)
			}
		}
	}
}

// The RM invariant: the running job always belongs to the ready task with
// the smallest period.
func TestStep_RMInvariant(t *testing.T) {
	e, err := NewEngine(industrialTasks(t), 3000, PolicyRM, testLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	for e.Step() {
		running := e.Running()
		if running == nil {
			continue
		}
		for _, r := range e.ReadyJobs() {
			if r.Task.Period < running.Task.Period {
				t.Fatalf("tick %d: ready %s (period %d) outranks running %s (period %d)",
					e.Now(), r.ID(), r.Task.Period, running.ID(), running.Task.Period)
			}
		}
	}
}

// FIFO never preempts: each job's timeline slots form one contiguous span.
func TestRun_FIFONoInterleaving(t *testing.T) {
	res := mustRun(t, industrialTasks(t), 3000, PolicyFIFO)

	finished := make(map[string]bool)
	var current string
	for _, slot := range res.Timeline {
		if slot.Idle() {
			if current != "" {
				finished[current] = true
				current = ""
			}
			continue
		}
		if slot.Job != current {
			if current != "" {
				finished[current] = true
			}
			if finished[slot.Job] {
				t.Fatalf("job %s resumed at tick %d after being displaced", slot.Job, slot.Tick)
			}
			current = slot.Job
		}
	}
}

// Conservation: start >= arrival, finish >= start, and the execution span
// covers at least the WCET (excess is preemption gaps).
func TestRun_Conservation(t *testing.T) {
	for _, policy := range Policies {
		t.Run(policy.String(), func(t *testing.T) {
			res := mustRun(t, industrialTasks(t), 5000, policy)
			if len(res.Completed) == 0 {
				t.Fatal("no completed jobs")
			}
			for _, j := range res.Completed {
				if j.Start < j.Arrival {
					t.Errorf("job %s: start %d < arrival %d", j.ID(), j.Start, j.Arrival)
				}
				if j.Finish < j.Start {
					t.Errorf("job %s: finish %d < start %d", j.ID(), j.Finish, j.Start)
				}
				if span := j.Finish - j.Start; span < j.Task.WCET {
					t.Errorf("job %s: span %d < wcet %d", j.ID(), span, j.Task.WCET)
				}
				if j.Remaining != 0 {
					t.Errorf("job %s: remaining = %d, want 0", j.ID(), j.Remaining)
				}
			}
		})
	}
}

// Identical job populations: every policy completes the same job set when
// nothing is abandoned (the engine drains everything).
func TestRun_SameJobPopulation(t *testing.T) {
	counts := make(map[Policy]int)
	for _, policy := range Policies {
		res := mustRun(t, industrialTasks(t), 3000, policy)
		counts[policy] = res.Stats.TotalJobs
	}
	if counts[PolicyEDF] != counts[PolicyRM] || counts[PolicyRM] != counts[PolicyFIFO] {
		t.Errorf("completed counts differ: %v", counts)
	}
}

// Under overload the clock keeps ticking past the horizon until everything
// drains.
func TestRun_DrainsPastHorizon(t *testing.T) {
	tasks := []*Task{
		mustTask(t, "Heavy", 10, 9, 10),
		mustTask(t, "Also", 10, 9, 10),
	}
	res := mustRun(t, tasks, 100, PolicyFIFO)

	if len(res.Timeline) <= 100 {
		t.Errorf("timeline = %d ticks, want > horizon 100 under overload", len(res.Timeline))
	}
	// 20 generated jobs, 9 ticks each: all must eventually complete.
	if res.Stats.TotalJobs != 20 {
		t.Errorf("completed = %d, want 20", res.Stats.TotalJobs)
	}
}

// A job flagged missed in the ready queue must also be late at completion.
func TestRun_MissFlagsConsistent(t *testing.T) {
	tasks := []*Task{
		mustTask(t, "A", 10, 8, 10),
		mustTask(t, "B", 15, 8, 15),
	}
	for _, policy := range Policies {
		res := mustRun(t, tasks, 500, policy)
		for _, j := range res.Completed {
			if j.Missed && j.Finish <= j.AbsoluteDeadline {
				t.Errorf("%s: job %s flagged missed but finished at %d <= deadline %d",
					policy, j.ID(), j.Finish, j.AbsoluteDeadline)
			}
			if !j.Missed && j.Finish > j.AbsoluteDeadline {
				t.Errorf("%s: job %s late (%d > %d) but not flagged",
					policy, j.ID(), j.Finish, j.AbsoluteDeadline)
			}
		}
	}
}

// The timeline accounts for every executed tick: per-job slot counts equal
// the WCET of completed jobs.
func TestRun_TimelineAccounting(t *testing.T) {
	res := mustRun(t, industrialTasks(t), 2000, PolicyEDF)

	slots := make(map[string]int)
	for _, s := range res.Timeline {
		if !s.Idle() {
			slots[s.Job]++
		}
	}
	for _, j := range res.Completed {
		if slots[j.ID()] != j.Task.WCET {
			t.Errorf("job %s: %d execution slots, want %d", j.ID(), slots[j.ID()], j.Task.WCET)
		}
	}
}

// Analyzer idempotence: re-running on unchanged inputs yields identical
// statistics.
func TestAnalyze_Idempotent(t *testing.T) {
	res := mustRun(t, industrialTasks(t), 3000, PolicyRM)

	first := Analyze(res.Completed, res.Timeline)
	second := Analyze(res.Completed, res.Timeline)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("analyzer not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
	if !reflect.DeepEqual(first, res.Stats) {
		t.Errorf("re-analysis differs from run stats:\nrun  %+v\nnew  %+v", res.Stats, first)
	}
}
