package sim

import (
	"math"
	"testing"
)

func completedJob(t *testing.T, task *Task, number, arrival, finish int) *Job {
	t.Helper()
	j := newJob(task, arrival, number)
	j.Start = arrival
	j.Finish = finish
	j.Response = finish - arrival
	j.Remaining = 0
	j.State = JobStateCompleted
	if finish > j.AbsoluteDeadline {
		j.Missed = true
	}
	return j
}

func TestAnalyze_Empty(t *testing.T) {
	stats := Analyze(nil, nil)
	if stats.TotalJobs != 0 || stats.MissedDeadlines != 0 {
		t.Errorf("empty input: jobs=%d missed=%d, want zeros", stats.TotalJobs, stats.MissedDeadlines)
	}
	if stats.MinResponseTime != 0 || stats.MaxResponseTime != 0 {
		t.Errorf("empty input: min=%d max=%d, want zeros", stats.MinResponseTime, stats.MaxResponseTime)
	}
	if stats.AvgResponseTime != 0 || stats.CPUUtilization != 0 {
		t.Errorf("empty input: avg=%v util=%v, want zeros", stats.AvgResponseTime, stats.CPUUtilization)
	}
	if len(stats.PerTask) != 0 {
		t.Errorf("empty input: PerTask has %d entries", len(stats.PerTask))
	}
}

func TestAnalyze_Aggregates(t *testing.T) {
	a := mustTask(t, "A", 100, 10, 50)
	b := mustTask(t, "B", 200, 20, 200)
	completed := []*Job{
		completedJob(t, a, 1, 0, 10),    // response 10, on time
		completedJob(t, a, 2, 100, 160), // response 60, late
		completedJob(t, b, 1, 0, 30),    // response 30, on time
	}
	timeline := make([]Slot, 100)
	for i := range timeline {
		job := IdleLabel
		if i < 40 {
			job = "busy"
		}
		timeline[i] = Slot{Tick: i, Job: job}
	}

	stats := Analyze(completed, timeline)

	if stats.TotalJobs != 3 {
		t.Errorf("TotalJobs = %d, want 3", stats.TotalJobs)
	}
	if stats.MissedDeadlines != 1 {
		t.Errorf("MissedDeadlines = %d, want 1", stats.MissedDeadlines)
	}
	if want := (10.0 + 60.0 + 30.0) / 3; stats.AvgResponseTime != want {
		t.Errorf("AvgResponseTime = %v, want %v", stats.AvgResponseTime, want)
	}
	if stats.MinResponseTime != 10 || stats.MaxResponseTime != 60 {
		t.Errorf("min/max = %d/%d, want 10/60", stats.MinResponseTime, stats.MaxResponseTime)
	}
	if stats.CPUUtilization != 40.0 {
		t.Errorf("CPUUtilization = %v, want 40", stats.CPUUtilization)
	}

	ta, ok := stats.PerTask["A"]
	if !ok {
		t.Fatal("PerTask missing A")
	}
	if ta.TotalJobs != 2 || ta.MissedDeadlines != 1 {
		t.Errorf("A: jobs=%d missed=%d, want 2/1", ta.TotalJobs, ta.MissedDeadlines)
	}
	if ta.MinResponseTime != 10 || ta.MaxResponseTime != 60 {
		t.Errorf("A: min/max = %d/%d, want 10/60", ta.MinResponseTime, ta.MaxResponseTime)
	}
	tb := stats.PerTask["B"]
	if tb.TotalJobs != 1 || tb.AvgResponseTime != 30 {
		t.Errorf("B: jobs=%d avg=%v, want 1/30", tb.TotalJobs, tb.AvgResponseTime)
	}
}

// Tasks with no completed jobs never appear in the per-task breakdown.
func TestAnalyze_OmitsIdleTasks(t *testing.T) {
	a := mustTask(t, "A", 100, 10, 100)
	completed := []*Job{completedJob(t, a, 1, 0, 10)}

	stats := Analyze(completed, nil)
	if len(stats.PerTask) != 1 {
		t.Errorf("PerTask has %d entries, want 1", len(stats.PerTask))
	}
	if _, ok := stats.PerTask["B"]; ok {
		t.Error("PerTask contains a task with no completed jobs")
	}
}

// The analyzer may be re-invoked on a growing completed list without
// re-running the simulation.
func TestAnalyze_GrowingList(t *testing.T) {
	a := mustTask(t, "A", 100, 10, 100)
	jobs := []*Job{
		completedJob(t, a, 1, 0, 10),
		completedJob(t, a, 2, 100, 120),
		completedJob(t, a, 3, 200, 215),
	}

	partial := Analyze(jobs[:2], nil)
	if partial.TotalJobs != 2 || partial.MaxResponseTime != 20 {
		t.Errorf("partial: jobs=%d max=%d, want 2/20", partial.TotalJobs, partial.MaxResponseTime)
	}

	full := Analyze(jobs, nil)
	if full.TotalJobs != 3 {
		t.Errorf("full: jobs=%d, want 3", full.TotalJobs)
	}
	if want := (10.0 + 20.0 + 15.0) / 3; math.Abs(full.AvgResponseTime-want) > 1e-9 {
		t.Errorf("full: avg=%v, want %v", full.AvgResponseTime, want)
	}
}

func TestAnalyze_AllIdleTimeline(t *testing.T) {
	timeline := []Slot{
		{Tick: 0, Job: IdleLabel},
		{Tick: 1, Job: IdleLabel},
	}
	stats := Analyze(nil, timeline)
	if stats.CPUUtilization != 0 {
		t.Errorf("CPUUtilization = %v, want 0", stats.CPUUtilization)
	}
}
