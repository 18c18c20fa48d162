// If you are AI: This file implements the client relay task.
// It consumes frames row by row as they are published and verifies the synthetic pattern.

package relay

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"framerelay/internal/core/bus"
	"framerelay/internal/core/session"
)

// ClientTask drains frames from a session.
type ClientTask struct {
	*BaseTask
	client *session.Client
	verify bool
}

// NewClientTask creates a client task. With verify set each row is checked
// against the synthetic pattern and mismatching frames are counted.
func NewClientTask(name string, s *session.Session, verify bool, logger *zap.Logger) *ClientTask {
	base := NewBaseTask(name, session.RoleClient, s.Strategy().Name(), logger)
	return &ClientTask{
		BaseTask: base,
		client:   session.NewClient(s, base.Stats()),
		verify:   verify,
	}
}

// Start reads frames until stopped. Stalled frames are abandoned and counted;
// a corrupt descriptor ends the task.
func (t *ClientTask) Start(ctx context.Context) error {
	t.SetRunning(true)
	defer t.SetRunning(false)

	// Stop unblocks a pending Next through the context
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-t.StopChan():
			cancel()
		case <-ctx.Done():
		}
	}()

	t.logger.Info("client task started", zap.Bool("verify", t.verify))

	mismatch := false
	check := func(info bus.FrameInfo, y int, row []byte) bool {
		if t.verify && !mismatch && !session.MatchRow(info, y, row) {
			mismatch = true
		}
		return true
	}

	for {
		mismatch = false
		info, err := t.client.NextFunc(ctx, check)
		switch {
		case err == nil:
			if mismatch {
				t.Stats().RecordMismatch()
				t.logger.Warn("frame content mismatch", zap.Stringer("frame", info))
			}
		case errors.Is(err, session.ErrStall):
			t.logger.Warn("frame stalled", zap.Stringer("frame", info))
		case ctx.Err() != nil:
			select {
			case <-t.StopChan():
				return nil
			default:
				return ctx.Err()
			}
		default:
			t.SetError(err)
			t.logger.Error("read failed", zap.Error(err))
			return err
		}
	}
}

// HostDropped returns how many frames the host discarded because this client lagged.
func (t *ClientTask) HostDropped() uint64 {
	return t.client.HostDropped()
}
