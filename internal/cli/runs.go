package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/wisched/pkg/model"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage persisted runs on a wisched server",
	}
	cmd.AddCommand(newRunsListCmd(), newRunsGetCmd(), newRunsDeleteCmd())
	return cmd
}

func newRunsListCmd() *cobra.Command {
	var flagPolicy string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/runs"
			if flagPolicy != "" {
				path += "?policy=" + flagPolicy
			}
			resp, err := client.Get(path)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			var runs []model.Run
			if err := json.Unmarshal(resp.Data, &runs); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			if len(runs) == 0 {
				fmt.Println("No runs found.")
				return nil
			}

			fmt.Printf("%-42s  %-6s  %8s  %8s  %8s  %s\n",
				"ID", "POLICY", "HORIZON", "JOBS", "MISSED", "CREATED")
			for _, r := range runs {
				fmt.Printf("%-42s  %-6s  %8d  %8d  %8d  %s\n",
					r.ID, r.Policy, r.Horizon, r.TotalJobs, r.MissedDeadlines,
					humanize.Time(r.CreatedAt))
			}
			if resp.Pagination != nil && resp.Pagination.HasMore {
				fmt.Printf("\n(%d of %d shown)\n", len(runs), resp.Pagination.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagPolicy, "policy", "p", "", "Filter by policy (EDF, RM, FIFO)")
	return cmd
}

func newRunsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <run-id>",
		Short: "Show one run with per-task statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/runs/" + args[0])
			if err != nil {
				return fmt.Errorf("get run: %w", err)
			}

			var r model.Run
			if err := json.Unmarshal(resp.Data, &r); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Printf("ID:               %s\n", r.ID)
			if r.Label != "" {
				fmt.Printf("Label:            %s\n", r.Label)
			}
			fmt.Printf("Policy:           %s\n", r.Policy)
			fmt.Printf("Horizon:          %d\n", r.Horizon)
			fmt.Printf("Completed jobs:   %d\n", r.TotalJobs)
			fmt.Printf("Missed deadlines: %d\n", r.MissedDeadlines)
			fmt.Printf("Response time:    avg %.2f, min %d, max %d\n",
				r.AvgResponseTime, r.MinResponseTime, r.MaxResponseTime)
			fmt.Printf("CPU utilization:  %.2f%%\n", r.CPUUtilization)
			fmt.Printf("Created:          %s (%s)\n",
				r.CreatedAt.Format(time.RFC3339), humanize.Time(r.CreatedAt))

			if len(r.TaskStats) > 0 {
				fmt.Printf("\n%-12s  %8s  %8s  %10s\n", "TASK", "JOBS", "MISSED", "AVG RESP")
				for _, name := range sortedTaskNames(r.TaskStats) {
					ts := r.TaskStats[name]
					fmt.Printf("%-12s  %8d  %8d  %10.2f\n",
						name, ts.TotalJobs, ts.MissedDeadlines, ts.AvgResponseTime)
				}
			}
			return nil
		},
	}
}

func newRunsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a run and its job records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := client.Delete("/api/v1/runs/" + args[0]); err != nil {
				return fmt.Errorf("delete run: %w", err)
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}
