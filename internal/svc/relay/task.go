// If you are AI: This file defines the relay task interface and base implementation.
// Tasks drive one side of a session (host or client) until stopped.

package relay

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"framerelay/internal/core/session"
	"framerelay/internal/logging"
)

// Task represents a relay task (host or client side of a session).
// Tasks run in their own goroutines.
type Task interface {
	// Start runs the task until ctx is cancelled, Stop is called or an error occurs.
	Start(ctx context.Context) error

	// Stop stops the task cleanly. Safe to call more than once.
	Stop() error

	// IsRunning returns true if the task is currently running.
	IsRunning() bool

	// Info describes the task for the status API.
	Info() TaskInfo
}

// TaskInfo is the reportable state of a task.
type TaskInfo struct {
	Name     string           `json:"name"`
	Role     session.Role     `json:"role"`
	Strategy string           `json:"strategy"`
	Running  bool             `json:"running"`
	Error    string           `json:"error,omitempty"`
	Stats    session.Snapshot `json:"stats"`
}

// BaseTask provides common functionality for relay tasks.
type BaseTask struct {
	name     string
	role     session.Role
	strategy string
	stats    *session.Stats
	logger   *zap.Logger
	running  atomic.Bool
	lastErr  atomic.Value // string
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewBaseTask creates a new base task with common configuration.
func NewBaseTask(name string, role session.Role, strategy string, logger *zap.Logger) *BaseTask {
	return &BaseTask{
		name:     name,
		role:     role,
		strategy: strategy,
		stats:    session.NewStats(),
		logger:   logging.OrNop(logger).With(zap.String("task", name), zap.String("role", string(role))),
		stopChan: make(chan struct{}),
	}
}

// Name returns the task name.
func (t *BaseTask) Name() string {
	return t.name
}

// Stats returns the task counters.
func (t *BaseTask) Stats() *session.Stats {
	return t.stats
}

// IsRunning returns true if the task is running.
func (t *BaseTask) IsRunning() bool {
	return t.running.Load()
}

// SetRunning sets the running state.
func (t *BaseTask) SetRunning(running bool) {
	t.running.Store(running)
}

// SetError records the error that ended the task.
func (t *BaseTask) SetError(err error) {
	if err != nil {
		t.lastErr.Store(err.Error())
	}
}

// StopChan returns the stop channel.
func (t *BaseTask) StopChan() <-chan struct{} {
	return t.stopChan
}

// Stop signals the task to stop.
func (t *BaseTask) Stop() error {
	t.stopOnce.Do(func() { close(t.stopChan) })
	return nil
}

// Info describes the task.
func (t *BaseTask) Info() TaskInfo {
	info := TaskInfo{
		Name:     t.name,
		Role:     t.role,
		Strategy: t.strategy,
		Running:  t.IsRunning(),
		Stats:    t.stats.Snapshot(),
	}
	if s, ok := t.lastErr.Load().(string); ok {
		info.Error = s
	}
	return info
}

// Endpoint returns the registry entry for the task.
func (t *BaseTask) Endpoint(s *session.Session, id uuid.UUID) *session.Endpoint {
	return &session.Endpoint{
		Name:     t.name,
		Role:     t.role,
		Session:  id,
		Layout:   s.Layout(),
		Strategy: s.Strategy().Name(),
		Stats:    t.stats,
	}
}
