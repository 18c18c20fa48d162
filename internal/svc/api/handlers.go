// If you are AI: This file implements HTTP API handlers.
// All handlers read atomics or copy small snapshots; none block the frame path.

package api

import (
	"encoding/json"
	"net/http"
	"runtime"

	"github.com/dustin/go-humanize"

	"framerelay/internal/core/framebuffer"
	"framerelay/internal/core/session"
	"framerelay/internal/svc/relay"
)

// ServerResponse represents the /api/server response.
type ServerResponse struct {
	Version      string   `json:"version"`
	Uptime       int64    `json:"uptime"` // seconds
	GoVersion    string   `json:"go_version"`
	Role         string   `json:"role"`
	Arch         string   `json:"arch"`
	CPUFeatures  []string `json:"cpu_features"`
	BestStrategy string   `json:"best_strategy"`
}

// RelayTaskInfo represents information about a relay task for API responses.
type RelayTaskInfo struct {
	relay.TaskInfo
	BytesHuman string  `json:"bytes_human"`
	Throughput string  `json:"throughput"`
	FPS        float64 `json:"fps"`
}

// RelayResponse represents the /api/relay response.
type RelayResponse struct {
	Tasks []RelayTaskInfo `json:"tasks"`
}

// EndpointsResponse represents the /api/endpoints response.
type EndpointsResponse struct {
	Endpoints []session.EndpointInfo `json:"endpoints"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleServer handles GET /api/server.
// Returns version, uptime, role and the detected CPU capabilities.
func (s *Service) handleServer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	response := ServerResponse{
		Version:      Version,
		Uptime:       getCurrentTime() - s.startTime,
		GoVersion:    runtime.Version(),
		Role:         s.role,
		Arch:         s.features.Arch,
		CPUFeatures:  s.features.Flags(),
		BestStrategy: framebuffer.SelectStrategy(s.features).Name(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleRelay handles GET /api/relay.
// Returns relay tasks with their counters, byte totals humanized.
func (s *Service) handleRelay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	relayTasks := s.relayMgr.GetTasks()

	tasks := make([]RelayTaskInfo, 0, len(relayTasks))
	for _, rt := range relayTasks {
		tasks = append(tasks, RelayTaskInfo{
			TaskInfo:   rt,
			BytesHuman: humanize.IBytes(rt.Stats.Bytes),
			Throughput: rt.Stats.Throughput(),
			FPS:        rt.Stats.FPS(),
		})
	}

	s.writeJSON(w, http.StatusOK, RelayResponse{Tasks: tasks})
}

// handleEndpoints handles GET /api/endpoints.
// Returns every registered session endpoint.
func (s *Service) handleEndpoints(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.writeJSON(w, http.StatusOK, EndpointsResponse{Endpoints: s.registry.List()})
}

// writeJSON writes a JSON response.
func (s *Service) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func (s *Service) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
