package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/me/wisched/internal/sim"
	"github.com/me/wisched/pkg/model"
)

// compareRequest runs one workload under every policy. Results are returned
// directly and never persisted.
type compareRequest struct {
	Horizon int        `json:"horizon,omitempty"`
	Tasks   []taskSpec `json:"tasks,omitempty"`
}

type policySummary struct {
	Policy          string                     `json:"policy"`
	TotalJobs       int                        `json:"total_jobs"`
	MissedDeadlines int                        `json:"missed_deadlines"`
	AvgResponseTime float64                    `json:"avg_response_time"`
	MinResponseTime int                        `json:"min_response_time"`
	MaxResponseTime int                        `json:"max_response_time"`
	CPUUtilization  float64                    `json:"cpu_utilization"`
	TaskStats       map[string]model.TaskStats `json:"task_stats"`
}

type compareResponse struct {
	Horizon     int             `json:"horizon"`
	Utilization float64         `json:"utilization"`
	Policies    []policySummary `json:"policies"`
}

// handleCompare executes the workload once per policy.
// POST /api/v1/compare
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("invalid JSON body: "+err.Error()))
		return
	}
	tasks, horizon, apiErr := buildWorkload(req.Horizon, req.Tasks)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}

	resp := compareResponse{
		Horizon:     horizon,
		Utilization: sim.TotalUtilization(tasks),
	}
	for _, policy := range sim.Policies {
		result, err := sim.Simulate(tasks, horizon, policy, s.logger)
		if err != nil {
			respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
			return
		}
		run := result.Record("", time.Time{})
		resp.Policies = append(resp.Policies, policySummary{
			Policy:          policy.String(),
			TotalJobs:       run.TotalJobs,
			MissedDeadlines: run.MissedDeadlines,
			AvgResponseTime: run.AvgResponseTime,
			MinResponseTime: run.MinResponseTime,
			MaxResponseTime: run.MaxResponseTime,
			CPUUtilization:  run.CPUUtilization,
			TaskStats:       run.TaskStats,
		})
	}

	s.logger.Info("comparison executed", "horizon", horizon, "tasks", len(tasks))
	respondOK(w, reqID, resp)
}
