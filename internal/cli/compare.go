package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/wisched/internal/sim"
)

func newCompareCmd() *cobra.Command {
	var (
		flagHorizon int
		flagTasks   string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run one workload under every policy and compare",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, horizon, err := loadWorkload(flagTasks, flagHorizon)
			if err != nil {
				return err
			}

			u := sim.TotalUtilization(tasks)
			fmt.Printf("Tasks: %d, horizon: %d, utilization: %.2f%% (RM bound %.2f%%)\n\n",
				len(tasks), horizon, u*100, sim.RMBound(len(tasks))*100)

			results := make([]*sim.Result, 0, len(sim.Policies))
			for _, policy := range sim.Policies {
				res, err := sim.Simulate(tasks, horizon, policy, logger)
				if err != nil {
					return err
				}
				results = append(results, res)
			}

			fmt.Printf("%-8s  %8s  %8s  %10s  %8s  %8s  %9s\n",
				"POLICY", "JOBS", "MISSED", "AVG RESP", "MIN", "MAX", "CPU")
			for _, res := range results {
				st := res.Stats
				fmt.Printf("%-8s  %8d  %8d  %10.2f  %8d  %8d  %8.2f%%\n",
					res.Policy, st.TotalJobs, st.MissedDeadlines, st.AvgResponseTime,
					st.MinResponseTime, st.MaxResponseTime, st.CPUUtilization)
			}

			fmt.Println()
			for _, res := range results {
				fmt.Printf("--- %s per task ---\n", res.Policy)
				printPerTask(os.Stdout, res)
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&flagHorizon, "horizon", 0, "Simulation horizon in ticks (0 = task set default)")
	cmd.Flags().StringVarP(&flagTasks, "tasks", "t", "", "YAML task-set file (default: built-in industrial set)")

	return cmd
}

func printPerTask(w io.Writer, res *sim.Result) {
	for _, name := range sortedTaskNames(res.Stats.PerTask) {
		ts := res.Stats.PerTask[name]
		fmt.Fprintf(w, "%-12s  jobs %4d  missed %4d  avg %8.2f\n",
			name, ts.TotalJobs, ts.MissedDeadlines, ts.AvgResponseTime)
	}
}
