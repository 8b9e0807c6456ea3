package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/wisched/internal/sim"
)

func newRunCmd() *cobra.Command {
	var (
		flagPolicy   string
		flagHorizon  int
		flagTasks    string
		flagJobs     bool
		flagTimeline bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation locally and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := sim.ParsePolicy(flagPolicy)
			if err != nil {
				return err
			}
			tasks, horizon, err := loadWorkload(flagTasks, flagHorizon)
			if err != nil {
				return err
			}

			res, err := sim.Simulate(tasks, horizon, policy, logger)
			if err != nil {
				return err
			}
			printReport(os.Stdout, res)

			if flagJobs {
				fmt.Printf("\n%-12s  %8s  %8s  %8s  %8s  %8s  %6s\n",
					"JOB", "ARRIVAL", "START", "FINISH", "DEADLINE", "RESP", "MISSED")
				for _, j := range res.Completed {
					fmt.Printf("%-12s  %8d  %8d  %8d  %8d  %8d  %6v\n",
						j.ID(), j.Arrival, j.Start, j.Finish, j.AbsoluteDeadline,
						j.Response, j.Missed)
				}
			}
			if flagTimeline {
				fmt.Println()
				for _, slot := range res.Timeline {
					fmt.Printf("%6d  %s\n", slot.Tick, slot.Job)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagPolicy, "policy", "p", "EDF", "Scheduling policy (EDF, RM, FIFO)")
	cmd.Flags().IntVar(&flagHorizon, "horizon", 0, "Simulation horizon in ticks (0 = task set default)")
	cmd.Flags().StringVarP(&flagTasks, "tasks", "t", "", "YAML task-set file (default: built-in industrial set)")
	cmd.Flags().BoolVar(&flagJobs, "jobs", false, "Print the per-job table")
	cmd.Flags().BoolVar(&flagTimeline, "timeline", false, "Print the full execution timeline")

	return cmd
}
