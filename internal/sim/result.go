package sim

import (
	"time"

	"github.com/me/wisched/pkg/model"
)

// Record converts the run into its persisted/API form. The timeline stays
// with the Result; job details are exported separately via JobRecords.
func (r *Result) Record(id string, createdAt time.Time) *model.Run {
	run := &model.Run{
		ID:              id,
		Policy:          r.Policy.String(),
		Horizon:         r.Horizon,
		TotalJobs:       r.Stats.TotalJobs,
		MissedDeadlines: r.Stats.MissedDeadlines,
		AvgResponseTime: r.Stats.AvgResponseTime,
		MinResponseTime: r.Stats.MinResponseTime,
		MaxResponseTime: r.Stats.MaxResponseTime,
		CPUUtilization:  r.Stats.CPUUtilization,
		TaskStats:       make(map[string]model.TaskStats, len(r.Stats.PerTask)),
		CreatedAt:       createdAt,
	}
	for name, ts := range r.Stats.PerTask {
		run.TaskStats[name] = model.TaskStats{
			TotalJobs:       ts.TotalJobs,
			MissedDeadlines: ts.MissedDeadlines,
			AvgResponseTime: ts.AvgResponseTime,
			MinResponseTime: ts.MinResponseTime,
			MaxResponseTime: ts.MaxResponseTime,
		}
	}
	return run
}

// JobRecords exports the completed-job stream for persistence or CSV.
func (r *Result) JobRecords(runID string) []model.JobRecord {
	recs := make([]model.JobRecord, 0, len(r.Completed))
	for _, j := range r.Completed {
		recs = append(recs, j.Record(runID))
	}
	return recs
}
