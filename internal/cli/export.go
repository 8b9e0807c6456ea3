package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/me/wisched/internal/export"
	"github.com/me/wisched/internal/sim"
	"github.com/me/wisched/pkg/model"
)

func newExportCmd() *cobra.Command {
	var (
		flagHorizon int
		flagTasks   string
		flagOut     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Run every policy and write CSV reports",
		Long: "export simulates the workload under EDF, RM and FIFO and writes three CSV\n" +
			"files into the output directory: summary.csv, tasks.csv and jobs_<policy>.csv\n" +
			"per policy.",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, horizon, err := loadWorkload(flagTasks, flagHorizon)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(flagOut, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			var runs []*model.Run
			now := time.Now().UTC()
			for _, policy := range sim.Policies {
				res, err := sim.Simulate(tasks, horizon, policy, logger)
				if err != nil {
					return err
				}
				run := res.Record("run_"+uuid.New().String(), now)
				runs = append(runs, run)

				jobsPath := filepath.Join(flagOut, fmt.Sprintf("jobs_%s.csv", policy))
				if err := writeCSV(jobsPath, func(f *os.File) error {
					return export.WriteJobDetails(f, res.JobRecords(run.ID))
				}); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", jobsPath)
			}

			summaryPath := filepath.Join(flagOut, "summary.csv")
			if err := writeCSV(summaryPath, func(f *os.File) error {
				return export.WriteRunSummary(f, runs)
			}); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", summaryPath)

			tasksPath := filepath.Join(flagOut, "tasks.csv")
			if err := writeCSV(tasksPath, func(f *os.File) error {
				return export.WriteTaskBreakdown(f, runs)
			}); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", tasksPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&flagHorizon, "horizon", 0, "Simulation horizon in ticks (0 = task set default)")
	cmd.Flags().StringVarP(&flagTasks, "tasks", "t", "", "YAML task-set file (default: built-in industrial set)")
	cmd.Flags().StringVarP(&flagOut, "out", "o", ".", "Output directory for CSV files")

	return cmd
}

func writeCSV(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
