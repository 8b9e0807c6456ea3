package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "wisched API",
		Version:     "v1",
		Description: "Preemptive real-time scheduling simulator — EDF, RM and FIFO policy analysis over periodic task sets",
		Endpoints: []endpointInfo{
			{"/api/v1/runs", []string{"GET", "POST"}, "Simulation runs. POST executes a simulation and persists the result"},
			{"/api/v1/runs/{id}", []string{"GET", "DELETE"}, "Single run with aggregate and per-task statistics"},
			{"/api/v1/runs/{id}/jobs", []string{"GET"}, "Per-job details of a run"},
			{"/api/v1/compare", []string{"POST"}, "Run one workload under every policy and compare, without persisting"},
			{"/api/v1/monitor", []string{"GET"}, "Snapshot of the live monitoring session"},
			{"/api/v1/sse/live", []string{"GET"}, "Server-sent event stream of completed jobs from the monitoring session"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}
