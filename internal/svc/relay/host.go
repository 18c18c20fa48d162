// If you are AI: This file implements the host relay task.
// It renders synthetic frames at a fixed rate and submits them into the session.

package relay

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"framerelay/internal/core/session"
)

// HostTask feeds frames into a session.
type HostTask struct {
	*BaseTask
	host   *session.Host
	source *session.PatternSource
	period time.Duration
}

// NewHostTask creates a host task submitting source frames every period.
func NewHostTask(name string, s *session.Session, source *session.PatternSource, period time.Duration, logger *zap.Logger) *HostTask {
	base := NewBaseTask(name, session.RoleHost, s.Strategy().Name(), logger)
	return &HostTask{
		BaseTask: base,
		host:     session.NewHost(s, base.Stats()),
		source:   source,
		period:   period,
	}
}

// Start submits frames until stopped.
// A full queue drops the frame and continues; any other submit error ends the task.
func (t *HostTask) Start(ctx context.Context) error {
	t.SetRunning(true)
	defer t.SetRunning(false)

	ticker := time.NewTicker(t.period)
	defer ticker.Stop()

	t.logger.Info("host task started", zap.Duration("period", t.period), zap.Int("frame_bytes", t.source.FrameSize()))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.StopChan():
			return nil
		case <-ticker.C:
		}

		info, pix := t.source.Next()
		queued, err := t.host.Submit(info, pix)
		if errors.Is(err, session.ErrQueueFull) {
			t.logger.Debug("client lagging, frame dropped", zap.Uint64("serial", queued.Serial))
			continue
		}
		if err != nil {
			t.SetError(err)
			t.logger.Error("submit failed", zap.Error(err))
			return err
		}
	}
}
