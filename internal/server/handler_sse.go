package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/me/wisched/pkg/model"
)

// handleMonitorSnapshot returns the current live statistics.
// GET /api/v1/monitor
func (s *Server) handleMonitorSnapshot(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if s.session == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("monitor", "live"))
		return
	}
	respondOK(w, reqID, s.session.Snapshot())
}

// handleSSELive streams completed jobs from the monitoring session via
// Server-Sent Events. Each observed job becomes one "job" event; the current
// snapshot is sent first as "init".
// GET /api/v1/sse/live
func (s *Server) handleSSELive(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if s.session == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("monitor", "live"))
		return
	}

	// Set headers for SSE.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	if err := sendSSEEvent(w, flusher, "init", s.session.Snapshot()); err != nil {
		s.logger.Debug("sse client disconnected", "error", err)
		return
	}

	records, cancel := s.session.Subscribe(64)
	defer cancel()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case rec, open := <-records:
			if !open {
				return
			}
			if err := sendSSEEvent(w, flusher, "job", rec); err != nil {
				s.logger.Debug("sse client disconnected", "job", rec.JobID())
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprintf(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData)
	if err != nil {
		return err
	}

	flusher.Flush()
	return nil
}
