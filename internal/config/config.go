// If you are AI: This file defines the configuration structure for framerelay.
// It uses strict YAML decoding and explicit defaults. Environment overrides are in env.go.

package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"framerelay/internal/core/framebuffer"
	"framerelay/internal/core/session"
	"framerelay/internal/logging"
)

// Config holds the complete relay configuration.
// All fields must have explicit defaults or be required.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Region    RegionConfig    `yaml:"region"`
	Frame     FrameConfig     `yaml:"frame"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig defines HTTP status server settings.
type ServerConfig struct {
	StatusPort    int           `yaml:"status_port"`    // Port for /healthz, /api and /ws
	StatsInterval time.Duration `yaml:"stats_interval"` // Push period of /ws/stats
}

// TransportConfig defines frame buffer tunables.
type TransportConfig struct {
	ChunkSize     int           `yaml:"chunk_size"`     // Publish granularity, power of two
	SpinLimit     int           `yaml:"spin_limit"`     // Tight-spin checks per wait
	SleepLimit    int           `yaml:"sleep_limit"`    // Sleeping checks per wait
	SleepInterval time.Duration `yaml:"sleep_interval"` // Pause per sleeping check
	Strategy      string        `yaml:"strategy"`       // auto, avx2, sse41 or generic
}

// RegionConfig defines the shared region.
type RegionConfig struct {
	Name          string `yaml:"name"`           // Region name under /dev/shm
	QueueCapacity uint32 `yaml:"queue_capacity"` // Descriptor queue entries
	SlotCapacity  int    `yaml:"slot_capacity"`  // Bytes per frame buffer; 0 derives from frame
}

// FrameConfig defines the synthetic frames produced by the host role.
type FrameConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	BPP    int `yaml:"bpp"`
	FPS    int `yaml:"fps"`
}

// LogConfig defines logging.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	File        string `yaml:"file,omitempty"`
	MaxSizeMB   int    `yaml:"max_size_mb,omitempty"`
	MaxBackups  int    `yaml:"max_backups,omitempty"`
	MaxAgeDays  int    `yaml:"max_age_days,omitempty"`
	Compress    bool   `yaml:"compress,omitempty"`
}

// Load reads configuration from a YAML file.
// Returns an error if the file cannot be read or decoded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults.
// Empty input yields the default configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields

	if err := decoder.Decode(&cfg); err != nil && len(bytes.TrimSpace(data)) > 0 {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Apply defaults
	cfg.setDefaults()

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

// setDefaults applies explicit default values to unset fields.
func (c *Config) setDefaults() {
	if c.Server.StatusPort == 0 {
		c.Server.StatusPort = 8080
	}
	if c.Server.StatsInterval == 0 {
		c.Server.StatsInterval = time.Second
	}

	if c.Transport.ChunkSize == 0 {
		c.Transport.ChunkSize = framebuffer.DefaultChunkSize
	}
	if c.Transport.SpinLimit == 0 {
		c.Transport.SpinLimit = framebuffer.DefaultSpinLimit
	}
	if c.Transport.SleepLimit == 0 {
		c.Transport.SleepLimit = framebuffer.DefaultSleepLimit
	}
	if c.Transport.SleepInterval == 0 {
		c.Transport.SleepInterval = framebuffer.DefaultSleepInterval
	}
	if c.Transport.Strategy == "" {
		c.Transport.Strategy = framebuffer.StrategyAuto
	}

	if c.Frame.Width == 0 {
		c.Frame.Width = 1920
	}
	if c.Frame.Height == 0 {
		c.Frame.Height = 1080
	}
	if c.Frame.BPP == 0 {
		c.Frame.BPP = 4
	}
	if c.Frame.FPS == 0 {
		c.Frame.FPS = 60
	}

	if c.Region.Name == "" {
		c.Region.Name = "framerelay"
	}
	if c.Region.QueueCapacity == 0 {
		c.Region.QueueCapacity = 2
	}
	if c.Region.SlotCapacity == 0 {
		c.Region.SlotCapacity = c.Frame.Height * alignUp(c.Frame.Width*c.Frame.BPP, 64)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// FrameBufferConfig returns the transport tunables in frame buffer form.
func (c *Config) FrameBufferConfig() framebuffer.Config {
	return framebuffer.Config{
		ChunkSize:     c.Transport.ChunkSize,
		SpinLimit:     c.Transport.SpinLimit,
		SleepLimit:    c.Transport.SleepLimit,
		SleepInterval: c.Transport.SleepInterval,
	}
}

// Layout returns the session layout of the region.
func (c *Config) Layout() session.Layout {
	return session.Layout{
		QueueCapacity: c.Region.QueueCapacity,
		SlotCapacity:  c.Region.SlotCapacity,
	}
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:       c.Log.Level,
		Development: c.Log.Development,
		File:        c.Log.File,
		MaxSizeMB:   c.Log.MaxSizeMB,
		MaxBackups:  c.Log.MaxBackups,
		MaxAgeDays:  c.Log.MaxAgeDays,
		Compress:    c.Log.Compress,
	}
}

// alignUp rounds n up to a multiple of align, which must be a power of two.
func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}
