package model

import (
	"strconv"
	"time"
)

// Run is the persisted record of one simulation: the policy and horizon it
// was executed with, plus the aggregate statistics the analyzer produced.
// The full tick timeline is not persisted; job details are stored separately
// as JobRecord rows.
type Run struct {
	ID              string               `json:"id"`
	Policy          string               `json:"policy"`
	Horizon         int                  `json:"horizon"`
	Label           string               `json:"label,omitempty"`
	TotalJobs       int                  `json:"total_jobs"`
	MissedDeadlines int                  `json:"missed_deadlines"`
	AvgResponseTime float64              `json:"avg_response_time"`
	MinResponseTime int                  `json:"min_response_time"`
	MaxResponseTime int                  `json:"max_response_time"`
	CPUUtilization  float64              `json:"cpu_utilization"`
	TaskStats       map[string]TaskStats `json:"task_stats"`
	CreatedAt       time.Time            `json:"created_at"`
}

// TaskStats is the per-task breakdown of a Run.
type TaskStats struct {
	TotalJobs       int     `json:"total_jobs"`
	MissedDeadlines int     `json:"missed_deadlines"`
	AvgResponseTime float64 `json:"avg_response_time"`
	MinResponseTime int     `json:"min_response_time"`
	MaxResponseTime int     `json:"max_response_time"`
}

// JobRecord is one completed job activation as exported by the engine or
// reported by an external device. Times are absolute ticks.
type JobRecord struct {
	RunID    string `json:"run_id,omitempty"`
	Task     string `json:"task"`
	Number   int    `json:"number"`
	Arrival  int    `json:"arrival"`
	Start    int    `json:"start"`
	Finish   int    `json:"finish"`
	Deadline int    `json:"deadline"`
	Response int    `json:"response"`
	Missed   bool   `json:"missed"`
}

// JobID returns the conventional "<task>_<number>" job identifier.
func (r JobRecord) JobID() string {
	return r.Task + "_" + strconv.Itoa(r.Number)
}
