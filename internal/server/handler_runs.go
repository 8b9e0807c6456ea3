package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/me/wisched/internal/config"
	"github.com/me/wisched/internal/sim"
	"github.com/me/wisched/pkg/model"
)

// taskSpec is the wire form of one periodic task in a run request.
type taskSpec struct {
	Name     string `json:"name"`
	Period   int    `json:"period"`
	WCET     int    `json:"wcet"`
	Deadline int    `json:"deadline"`
	Class    string `json:"class,omitempty"`
}

// runRequest asks the server to execute one simulation. An empty task list
// selects the built-in industrial workload; a zero horizon selects its
// default horizon.
type runRequest struct {
	Policy  string     `json:"policy"`
	Horizon int        `json:"horizon,omitempty"`
	Label   string     `json:"label,omitempty"`
	Tasks   []taskSpec `json:"tasks,omitempty"`
}

// buildWorkload resolves a request's task list and horizon into engine tasks.
func buildWorkload(horizon int, specs []taskSpec) ([]*sim.Task, int, *model.APIError) {
	cfg := config.DefaultSimConfig()
	if len(specs) > 0 {
		cfg.Tasks = make([]config.TaskConfig, len(specs))
		for i, ts := range specs {
			cfg.Tasks[i] = config.TaskConfig{
				Name: ts.Name, Period: ts.Period, WCET: ts.WCET,
				Deadline: ts.Deadline, Class: ts.Class,
			}
		}
	}
	if horizon > 0 {
		cfg.Horizon = horizon
	} else if len(specs) > 0 {
		return nil, 0, model.NewValidationError("horizon must be positive when tasks are given")
	}

	tasks, err := cfg.BuildTasks()
	if err != nil {
		return nil, 0, model.NewValidationError(err.Error())
	}
	return tasks, cfg.Horizon, nil
}

// handleCreateRun executes a simulation and persists the result.
// POST /api/v1/runs
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("invalid JSON body: "+err.Error()))
		return
	}

	policy, err := sim.ParsePolicy(req.Policy)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}
	tasks, horizon, apiErr := buildWorkload(req.Horizon, req.Tasks)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}

	result, err := sim.Simulate(tasks, horizon, policy, s.logger)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}

	run := result.Record("run_"+uuid.New().String(), time.Now().UTC())
	run.Label = req.Label
	if err := s.store.CreateRun(r.Context(), run); err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}
	records := result.JobRecords(run.ID)
	if err := s.store.CreateJobs(r.Context(), run.ID, records); err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}

	if s.session != nil {
		for _, rec := range records {
			s.session.Observe(rec)
		}
	}

	s.logger.Info("run created", "id", run.ID, "policy", run.Policy,
		"jobs", run.TotalJobs, "missed", run.MissedDeadlines)
	respondCreated(w, reqID, run)
}

// handleListRuns lists persisted runs, optionally filtered by policy.
// GET /api/v1/runs?policy=EDF&limit=20&offset=0
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	opts := model.DefaultListOptions()
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		opts.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		opts.Offset, _ = strconv.Atoi(v)
	}
	if v := q.Get("policy"); v != "" {
		policy, err := sim.ParsePolicy(v)
		if err != nil {
			respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
			return
		}
		opts.Policy = policy.String()
	}
	opts.Clamp()

	runs, total, err := s.store.ListRuns(r.Context(), opts)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}
	if runs == nil {
		runs = []*model.Run{}
	}
	respondList(w, reqID, runs, &model.Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+len(runs) < total,
	})
}

// handleGetRun returns one run with its statistics.
// GET /api/v1/runs/{id}
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}
	if run == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("run", id))
		return
	}
	respondOK(w, reqID, run)
}

// handleDeleteRun removes a run and its job rows.
// DELETE /api/v1/runs/{id}
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}
	if run == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("run", id))
		return
	}
	if err := s.store.DeleteRun(r.Context(), id); err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}
	respondOK(w, reqID, map[string]any{"deleted": true})
}

// handleListRunJobs returns the per-job details of a run.
// GET /api/v1/runs/{id}/jobs
func (s *Server) handleListRunJobs(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}
	if run == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("run", id))
		return
	}
	jobs, err := s.store.ListJobs(r.Context(), id)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}
	if jobs == nil {
		jobs = []model.JobRecord{}
	}
	respondOK(w, reqID, jobs)
}
