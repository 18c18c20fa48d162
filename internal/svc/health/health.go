// If you are AI: This file implements the health and readiness endpoints for monitoring and integration tests.

package health

import (
	"net/http"
)

// Service provides health check functionality.
type Service struct {
	ready func() bool
}

// New creates a new health service instance.
// ready reports whether the relay tasks are up; nil means always ready.
func New(ready func() bool) *Service {
	return &Service{ready: ready}
}

// RegisterRoutes adds health check routes to the provided mux.
// /healthz reports the process is serving; /readyz that frames are flowing.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
}

// handleHealth responds to health check requests.
// Returns 200 OK to indicate the server is running.
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleReady returns 200 once ready reports true, 503 before.
func (s *Service) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.ready != nil && !s.ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}
