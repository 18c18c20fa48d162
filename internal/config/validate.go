// If you are AI: This file validates configuration values and returns descriptive errors.

package config

import (
	"fmt"

	"framerelay/internal/core/framebuffer"
	"framerelay/internal/logging"
)

// Validate checks that all configuration values are within acceptable ranges.
// Returns an error describing the first validation failure found.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Transport.Validate(); err != nil {
		return fmt.Errorf("transport config: %w", err)
	}
	if err := c.Frame.Validate(); err != nil {
		return fmt.Errorf("frame config: %w", err)
	}
	if err := c.Region.Validate(c.Frame); err != nil {
		return fmt.Errorf("region config: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	return nil
}

// Validate checks server configuration values.
func (s *ServerConfig) Validate() error {
	if s.StatusPort <= 0 || s.StatusPort > 65535 {
		return fmt.Errorf("status_port must be between 1 and 65535, got %d", s.StatusPort)
	}
	if s.StatsInterval <= 0 {
		return fmt.Errorf("stats_interval must be positive, got %v", s.StatsInterval)
	}
	return nil
}

// Validate checks transport tunables, including the strategy name.
func (t *TransportConfig) Validate() error {
	cfg := framebuffer.Config{
		ChunkSize:     t.ChunkSize,
		SpinLimit:     t.SpinLimit,
		SleepLimit:    t.SleepLimit,
		SleepInterval: t.SleepInterval,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	switch t.Strategy {
	case framebuffer.StrategyAuto, framebuffer.StrategyAVX2, framebuffer.StrategySSE41, framebuffer.StrategyGeneric:
	default:
		return fmt.Errorf("strategy must be one of auto, avx2, sse41, generic, got %q", t.Strategy)
	}
	return nil
}

// Validate checks frame geometry.
func (f *FrameConfig) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", f.Width, f.Height)
	}
	if f.BPP < 1 || f.BPP > 8 {
		return fmt.Errorf("bpp must be between 1 and 8, got %d", f.BPP)
	}
	if f.FPS <= 0 || f.FPS > 1000 {
		return fmt.Errorf("fps must be between 1 and 1000, got %d", f.FPS)
	}
	return nil
}

// Validate checks region settings and that a frame fits in one slot.
func (r *RegionConfig) Validate(f FrameConfig) error {
	if r.Name == "" {
		return fmt.Errorf("name must be set")
	}
	if r.QueueCapacity == 0 || r.QueueCapacity&(r.QueueCapacity-1) != 0 {
		return fmt.Errorf("queue_capacity must be a power of two, got %d", r.QueueCapacity)
	}
	need := f.Height * alignUp(f.Width*f.BPP, 64)
	if r.SlotCapacity < need {
		return fmt.Errorf("slot_capacity %d too small for %dx%dx%d frames (%d bytes)",
			r.SlotCapacity, f.Width, f.Height, f.BPP, need)
	}
	return nil
}
