package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/wisched/internal/config"
	"github.com/me/wisched/pkg/model"
)

func newSubmitCmd() *cobra.Command {
	var (
		flagPolicy  string
		flagHorizon int
		flagTasks   string
		flagLabel   string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Execute a simulation on a wisched server and persist the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"policy": flagPolicy,
				"label":  flagLabel,
			}
			if flagTasks != "" {
				cfg, err := config.LoadSimConfig(flagTasks)
				if err != nil {
					return err
				}
				body["tasks"] = cfg.Tasks
				body["horizon"] = cfg.Horizon
			}
			if flagHorizon > 0 {
				body["horizon"] = flagHorizon
			}

			resp, err := client.Post("/api/v1/runs", body)
			if err != nil {
				return fmt.Errorf("submit run: %w", err)
			}

			var run model.Run
			if err := json.Unmarshal(resp.Data, &run); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			fmt.Printf("Created %s: %s over %d ticks, %d jobs, %d missed\n",
				run.ID, run.Policy, run.Horizon, run.TotalJobs, run.MissedDeadlines)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagPolicy, "policy", "p", "EDF", "Scheduling policy (EDF, RM, FIFO)")
	cmd.Flags().IntVar(&flagHorizon, "horizon", 0, "Simulation horizon in ticks")
	cmd.Flags().StringVarP(&flagTasks, "tasks", "t", "", "YAML task-set file (default: server's built-in set)")
	cmd.Flags().StringVar(&flagLabel, "label", "", "Optional label for the run")

	return cmd
}
