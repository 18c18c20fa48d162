// If you are AI: This file implements the Registry of live session endpoints.
// The relay tasks register their host or client side here; the status
// endpoints read it to report per-endpoint counters.

package session

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Role names which side of a session an endpoint is.
type Role string

const (
	RoleHost   Role = "host"
	RoleClient Role = "client"
)

// Endpoint is one registered side of a session.
type Endpoint struct {
	Name     string
	Role     Role
	Session  uuid.UUID
	Layout   Layout
	Strategy string
	Stats    *Stats
}

// EndpointInfo is the reportable view of an Endpoint.
type EndpointInfo struct {
	Name          string   `json:"name"`
	Role          Role     `json:"role"`
	Session       string   `json:"session"`
	Strategy      string   `json:"strategy"`
	QueueCapacity uint32   `json:"queue_capacity"`
	SlotCapacity  int      `json:"slot_capacity"`
	Stats         Snapshot `json:"stats"`
}

// Info snapshots the endpoint.
func (e *Endpoint) Info() EndpointInfo {
	return EndpointInfo{
		Name:          e.Name,
		Role:          e.Role,
		Session:       e.Session.String(),
		Strategy:      e.Strategy,
		QueueCapacity: e.Layout.QueueCapacity,
		SlotCapacity:  e.Layout.SlotCapacity,
		Stats:         e.Stats.Snapshot(),
	}
}

// Registry maps endpoint keys ("name/role") to endpoints.
// Lock expectations: Mutex-protected for concurrent access.
type Registry struct {
	mu        sync.RWMutex
	endpoints map[string]*Endpoint
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		endpoints: make(map[string]*Endpoint),
	}
}

// key returns the registry key of an endpoint.
func key(name string, role Role) string {
	return name + "/" + string(role)
}

// Register adds e. Returns false if an endpoint with the same name and role exists.
func (r *Registry) Register(e *Endpoint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(e.Name, e.Role)
	if _, exists := r.endpoints[k]; exists {
		return false
	}
	r.endpoints[k] = e
	return true
}

// Get returns the endpoint for name and role, or nil.
func (r *Registry) Get(name string, role Role) *Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.endpoints[key(name, role)]
}

// Remove removes the endpoint for name and role. Returns false if absent.
func (r *Registry) Remove(name string, role Role) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(name, role)
	if _, exists := r.endpoints[k]; !exists {
		return false
	}
	delete(r.endpoints, k)
	return true
}

// Count returns the number of registered endpoints.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.endpoints)
}

// List snapshots every endpoint, ordered by key.
func (r *Registry) List() []EndpointInfo {
	r.mu.RLock()
	keys := make([]string, 0, len(r.endpoints))
	for k := range r.endpoints {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	infos := make([]EndpointInfo, 0, len(keys))
	for _, k := range keys {
		infos = append(infos, r.endpoints[k].Info())
	}
	r.mu.RUnlock()
	return infos
}
