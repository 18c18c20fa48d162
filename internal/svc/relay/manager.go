// If you are AI: This file implements the relay manager.
// Manages lifecycle of all relay tasks (start, stop) and the regions they run over.

package relay

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"framerelay/internal/config"
	"framerelay/internal/core/session"
	"framerelay/internal/logging"
)

// Process roles accepted by StartRole.
const (
	RoleHost     = "host"
	RoleClient   = "client"
	RoleLoopback = "loopback"
)

// Manager manages relay tasks lifecycle.
type Manager struct {
	registry *session.Registry
	logger   *zap.Logger
	tasks    []Task
	closers  []io.Closer
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
}

// NewManager creates a new relay manager.
func NewManager(registry *session.Registry, logger *zap.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		registry: registry,
		logger:   logging.OrNop(logger).Named("relay"),
		tasks:    make([]Task, 0),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// StartRole sets up the session for role and starts its tasks.
// host creates the shared region, client opens it, loopback runs both sides in
// process over heap memory.
func (m *Manager) StartRole(cfg *config.Config, role string) error {
	opts, err := sessionOptions(cfg)
	if err != nil {
		return err
	}
	name := cfg.Region.Name

	switch role {
	case RoleLoopback:
		s, err := session.NewLocal(cfg.Layout(), opts...)
		if err != nil {
			return fmt.Errorf("create loopback session: %w", err)
		}
		id := localID()
		m.Start(newHostTask(cfg, s, m.logger), s, id)
		m.Start(NewClientTask(name, s, true, m.logger), s, id)
		return nil

	case RoleHost:
		s, region, err := createHostSession(cfg, opts)
		if err != nil {
			return err
		}
		m.addCloser(region)
		m.Start(newHostTask(cfg, s, m.logger), s, region.Session())
		m.logger.Info("region created", zap.String("path", region.Path()), zap.Stringer("session", region.Session()))
		return nil

	case RoleClient:
		s, region, err := openClientSession(cfg, opts)
		if err != nil {
			return err
		}
		m.addCloser(region)
		m.Start(NewClientTask(name, s, true, m.logger), s, region.Session())
		m.logger.Info("region opened", zap.String("path", region.Path()), zap.Uint32("host_pid", region.HostPID()))
		return nil

	default:
		return fmt.Errorf("invalid role: %s (must be 'host', 'client' or 'loopback')", role)
	}
}

// Start registers task and runs it in its own goroutine.
func (m *Manager) Start(task Task, s *session.Session, id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks = append(m.tasks, task)
	if ep, ok := task.(interface {
		Endpoint(*session.Session, uuid.UUID) *session.Endpoint
	}); ok && m.registry != nil {
		m.registry.Register(ep.Endpoint(s, id))
	}

	m.wg.Add(1)
	go func(t Task) {
		defer m.wg.Done()
		if err := t.Start(m.ctx); err != nil && m.ctx.Err() == nil {
			m.logger.Error("task exited", zap.String("task", t.Info().Name), zap.Error(err))
		}
	}(task)
}

// addCloser records a resource released after all tasks stopped.
func (m *Manager) addCloser(c io.Closer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closers = append(m.closers, c)
}

// Stop stops all relay tasks, waits for them to finish and releases their regions.
// Close errors are combined.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Cancel context to signal all tasks to stop
	m.cancel()

	for _, task := range m.tasks {
		task.Stop()
	}

	// Tasks observe cancellation within one wait budget
	m.wg.Wait()

	var err error
	for _, task := range m.tasks {
		info := task.Info()
		if m.registry != nil {
			m.registry.Remove(info.Name, info.Role)
		}
		m.logger.Info("task stopped", zap.String("task", info.Name), zap.Object("stats", info.Stats))
	}
	for i := len(m.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, m.closers[i].Close())
	}
	m.closers = nil
	return err
}

// TaskCount returns the number of relay tasks.
func (m *Manager) TaskCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// GetTasks returns the state of every task.
func (m *Manager) GetTasks() []TaskInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]TaskInfo, 0, len(m.tasks))
	for _, t := range m.tasks {
		infos = append(infos, t.Info())
	}
	return infos
}
