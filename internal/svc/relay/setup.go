// If you are AI: This file builds sessions from configuration for each process role.

package relay

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"framerelay/internal/config"
	"framerelay/internal/core/cpuinfo"
	"framerelay/internal/core/framebuffer"
	"framerelay/internal/core/session"
	"framerelay/internal/shm"
)

const (
	// regionWaitTimeout bounds how long a client waits for the host's region.
	regionWaitTimeout = 5 * time.Second
	// regionPollInterval is the pause between open attempts.
	regionPollInterval = 20 * time.Millisecond
)

// sessionOptions resolves the configured tunables and copy strategy.
func sessionOptions(cfg *config.Config) ([]session.Option, error) {
	strategy, err := framebuffer.StrategyByName(cfg.Transport.Strategy, cpuinfo.Host().Features())
	if err != nil {
		return nil, err
	}
	return []session.Option{
		session.WithConfig(cfg.FrameBufferConfig()),
		session.WithStrategy(strategy),
	}, nil
}

// createHostSession creates the named region and formats a session inside it.
func createHostSession(cfg *config.Config, opts []session.Option) (*session.Session, *shm.Region, error) {
	layout := cfg.Layout()
	if err := layout.Validate(); err != nil {
		return nil, nil, err
	}

	region, err := shm.Create(cfg.Region.Name, layout.Geometry())
	if err != nil {
		return nil, nil, fmt.Errorf("create region: %w", err)
	}
	s, err := session.Format(region.Data(), layout, opts...)
	if err != nil {
		region.Close()
		return nil, nil, fmt.Errorf("format session: %w", err)
	}
	region.MarkReady()
	return s, region, nil
}

// openClientSession opens the named region and attaches to the host's session.
// The layout comes from the region header, not from local configuration.
func openClientSession(cfg *config.Config, opts []session.Option) (*session.Session, *shm.Region, error) {
	region, err := waitForRegion(cfg.Region.Name, regionWaitTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("open region: %w", err)
	}
	layout, err := session.LayoutFromGeometry(region.Geometry())
	if err != nil {
		region.Close()
		return nil, nil, err
	}
	s, err := session.Attach(region.Data(), layout, opts...)
	if err != nil {
		region.Close()
		return nil, nil, fmt.Errorf("attach session: %w", err)
	}
	return s, region, nil
}

// waitForRegion opens the named region, retrying while it is missing or the host
// has not marked it ready. Returns the last error once timeout passes.
func waitForRegion(name string, timeout time.Duration) (*shm.Region, error) {
	deadline := time.Now().Add(timeout)
	for {
		region, err := shm.Open(name)
		if err == nil {
			return region, nil
		}
		retryable := errors.Is(err, shm.ErrNotReady) || errors.Is(err, fs.ErrNotExist)
		if !retryable || time.Now().After(deadline) {
			return nil, err
		}
		time.Sleep(regionPollInterval)
	}
}

// newHostTask creates a host task producing configured synthetic frames.
func newHostTask(cfg *config.Config, s *session.Session, logger *zap.Logger) *HostTask {
	source := session.NewPatternSource(cfg.Frame.Width, cfg.Frame.Height, cfg.Frame.BPP)
	period := time.Second / time.Duration(cfg.Frame.FPS)
	return NewHostTask(cfg.Region.Name, s, source, period, logger)
}

// localID returns a session identifier for in-process sessions.
func localID() uuid.UUID {
	return uuid.New()
}
