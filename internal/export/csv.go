// Package export renders simulation results as CSV for spreadsheet analysis.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/me/wisched/pkg/model"
)

// WriteRunSummary writes one row per run: policy, horizon and aggregate
// statistics. Intended for policy comparison across runs of the same task set.
func WriteRunSummary(w io.Writer, runs []*model.Run) error {
	cw := csv.NewWriter(w)
	header := []string{
		"run_id", "policy", "horizon", "label",
		"total_jobs", "missed_deadlines",
		"avg_response_time", "min_response_time", "max_response_time",
		"cpu_utilization",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range runs {
		row := []string{
			r.ID, r.Policy, strconv.Itoa(r.Horizon), r.Label,
			strconv.Itoa(r.TotalJobs), strconv.Itoa(r.MissedDeadlines),
			formatFloat(r.AvgResponseTime),
			strconv.Itoa(r.MinResponseTime), strconv.Itoa(r.MaxResponseTime),
			formatFloat(r.CPUUtilization),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write run %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTaskBreakdown writes the per-task statistics of each run, one row per
// (run, task) pair. Tasks are emitted in name order for stable output.
func WriteTaskBreakdown(w io.Writer, runs []*model.Run) error {
	cw := csv.NewWriter(w)
	header := []string{
		"run_id", "policy", "task",
		"total_jobs", "missed_deadlines",
		"avg_response_time", "min_response_time", "max_response_time",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range runs {
		names := make([]string, 0, len(r.TaskStats))
		for name := range r.TaskStats {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ts := r.TaskStats[name]
			row := []string{
				r.ID, r.Policy, name,
				strconv.Itoa(ts.TotalJobs), strconv.Itoa(ts.MissedDeadlines),
				formatFloat(ts.AvgResponseTime),
				strconv.Itoa(ts.MinResponseTime), strconv.Itoa(ts.MaxResponseTime),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write run %s task %s: %w", r.ID, name, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJobDetails writes every completed job of a run, one row per job.
func WriteJobDetails(w io.Writer, jobs []model.JobRecord) error {
	cw := csv.NewWriter(w)
	header := []string{
		"job_id", "task", "number",
		"arrival", "start", "finish", "deadline", "response", "missed",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, j := range jobs {
		row := []string{
			j.JobID(), j.Task, strconv.Itoa(j.Number),
			strconv.Itoa(j.Arrival), strconv.Itoa(j.Start), strconv.Itoa(j.Finish),
			strconv.Itoa(j.Deadline), strconv.Itoa(j.Response),
			strconv.FormatBool(j.Missed),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write job %s: %w", j.JobID(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
