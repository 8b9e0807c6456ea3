package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/me/wisched/internal/config"
	"github.com/me/wisched/internal/sim"
)

// loadWorkload resolves the --tasks and --horizon flags into engine tasks.
// An empty path selects the built-in industrial workload.
func loadWorkload(tasksPath string, horizon int) ([]*sim.Task, int, error) {
	cfg := config.DefaultSimConfig()
	if tasksPath != "" {
		var err error
		cfg, err = config.LoadSimConfig(tasksPath)
		if err != nil {
			return nil, 0, err
		}
	}
	if horizon > 0 {
		cfg.Horizon = horizon
	}
	tasks, err := cfg.BuildTasks()
	if err != nil {
		return nil, 0, err
	}
	return tasks, cfg.Horizon, nil
}

// printReport writes the human-readable summary of one simulation run.
func printReport(w io.Writer, res *sim.Result) {
	st := res.Stats
	dispatch := "non-preemptive"
	if res.Policy.Preemptive() {
		dispatch = "preemptive"
	}
	fmt.Fprintf(w, "Policy:           %s (%s)\n", res.Policy, dispatch)
	fmt.Fprintf(w, "Horizon:          %s ticks (%s simulated)\n",
		humanize.Comma(int64(res.Horizon)), humanize.Comma(int64(len(res.Timeline))))
	fmt.Fprintf(w, "Completed jobs:   %s\n", humanize.Comma(int64(st.TotalJobs)))
	fmt.Fprintf(w, "Missed deadlines: %s\n", humanize.Comma(int64(st.MissedDeadlines)))
	fmt.Fprintf(w, "Response time:    avg %.2f, min %d, max %d\n",
		st.AvgResponseTime, st.MinResponseTime, st.MaxResponseTime)
	fmt.Fprintf(w, "CPU utilization:  %.2f%%\n", st.CPUUtilization)

	if len(st.PerTask) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%-12s  %8s  %8s  %10s  %8s  %8s\n",
		"TASK", "JOBS", "MISSED", "AVG RESP", "MIN", "MAX")
	for _, name := range sortedTaskNames(st.PerTask) {
		ts := st.PerTask[name]
		fmt.Fprintf(w, "%-12s  %8d  %8d  %10.2f  %8d  %8d\n",
			name, ts.TotalJobs, ts.MissedDeadlines, ts.AvgResponseTime,
			ts.MinResponseTime, ts.MaxResponseTime)
	}
}

func sortedTaskNames[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
