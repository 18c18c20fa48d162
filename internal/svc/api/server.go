// If you are AI: This file provides HTTP API service integration.
// The API exposes relay state and transfer counters without touching the frame path.

package api

import (
	"net/http"
	"time"

	"framerelay/internal/core/cpuinfo"
	"framerelay/internal/core/session"
	"framerelay/internal/svc/relay"
)

// Version is reported by /api/server. Overridden at build time with -ldflags.
var Version = "dev"

// Service provides HTTP API functionality.
type Service struct {
	registry  *session.Registry
	relayMgr  RelayManager
	role      string
	features  cpuinfo.Features
	startTime int64
}

// RelayManager defines the interface for relay management.
// This allows the API to work with relay manager without tight coupling.
type RelayManager interface {
	TaskCount() int
	GetTasks() []relay.TaskInfo
}

// NewService creates a new API service for a process running role.
func NewService(registry *session.Registry, relayMgr RelayManager, role string, detector cpuinfo.Detector) *Service {
	return &Service{
		registry:  registry,
		relayMgr:  relayMgr,
		role:      role,
		features:  detector.Features(),
		startTime: getCurrentTime(),
	}
}

// RegisterRoutes registers API routes on the provided mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/server", s.handleServer)
	mux.HandleFunc("/api/relay", s.handleRelay)
	mux.HandleFunc("/api/endpoints", s.handleEndpoints)
}

// getCurrentTime returns current Unix timestamp.
// Extracted for testability.
func getCurrentTime() int64 {
	return time.Now().Unix()
}
