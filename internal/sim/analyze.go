package sim

// Stats is the aggregate view of a run: totals, response-time spread and
// CPU utilization, with the same shape broken out per task.
type Stats struct {
	TotalJobs       int
	MissedDeadlines int
	AvgResponseTime float64
	MinResponseTime int
	MaxResponseTime int
	CPUUtilization  float64 // percent of timeline ticks spent executing
	PerTask         map[string]TaskStats
}

// TaskStats aggregates the completed jobs of a single task.
type TaskStats struct {
	TotalJobs       int
	MissedDeadlines int
	AvgResponseTime float64
	MinResponseTime int
	MaxResponseTime int
}

// Analyze aggregates a completed-job list and an execution timeline into
// statistics. It is a pure function: re-invoking it on an unchanged input
// yields identical results, and it may be called repeatedly on a growing
// completed list without re-running the simulation. Tasks with no completed
// jobs do not appear in PerTask.
func Analyze(completed []*Job, timeline []Slot) Stats {
	stats := Stats{PerTask: make(map[string]TaskStats)}

	type acc struct {
		jobs, missed, sum int
		min, max          int
	}
	perTask := make(map[string]*acc)
	var order []string

	total := &acc{}
	for _, j := range completed {
		a := perTask[j.Task.Name]
		if a == nil {
			a = &acc{}
			perTask[j.Task.Name] = a
			order = append(order, j.Task.Name)
		}
		for _, x := range []*acc{total, a} {
			x.jobs++
			if j.Missed {
				x.missed++
			}
			x.sum += j.Response
			if x.jobs == 1 || j.Response < x.min {
				x.min = j.Response
			}
			if j.Response > x.max {
				x.max = j.Response
			}
		}
	}

	stats.TotalJobs = total.jobs
	stats.MissedDeadlines = total.missed
	stats.MinResponseTime = total.min
	stats.MaxResponseTime = total.max
	if total.jobs > 0 {
		stats.AvgResponseTime = float64(total.sum) / float64(total.jobs)
	}

	for _, name := range order {
		a := perTask[name]
		stats.PerTask[name] = TaskStats{
			TotalJobs:       a.jobs,
			MissedDeadlines: a.missed,
			AvgResponseTime: float64(a.sum) / float64(a.jobs),
			MinResponseTime: a.min,
			MaxResponseTime: a.max,
		}
	}

	if len(timeline) > 0 {
		idle := 0
		for _, s := range timeline {
			if s.Idle() {
				idle++
			}
		}
		stats.CPUUtilization = float64(len(timeline)-idle) / float64(len(timeline)) * 100
	}

	return stats
}
