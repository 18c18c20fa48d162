// If you are AI: This file loads .env files and applies FRAMERELAY_* overrides.
// Environment values win over YAML values; invalid values are reported, not ignored.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "FRAMERELAY_"

// LoadEnv loads variables from the given .env files into the process environment.
// Existing variables are not overwritten. Missing files are skipped.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides configuration values from FRAMERELAY_* variables.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

// applyEnv applies overrides using lookup, so tests need not touch the process environment.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"STATUS_PORT", &c.Server.StatusPort},
		{"CHUNK_SIZE", &c.Transport.ChunkSize},
		{"SPIN_LIMIT", &c.Transport.SpinLimit},
		{"SLEEP_LIMIT", &c.Transport.SleepLimit},
		{"SLOT_CAPACITY", &c.Region.SlotCapacity},
		{"FRAME_WIDTH", &c.Frame.Width},
		{"FRAME_HEIGHT", &c.Frame.Height},
		{"FRAME_BPP", &c.Frame.BPP},
		{"FRAME_FPS", &c.Frame.FPS},
	}
	for _, v := range ints {
		s, ok := lookup(EnvPrefix + v.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, v.key, err)
		}
		*v.dst = n
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"STRATEGY", &c.Transport.Strategy},
		{"REGION_NAME", &c.Region.Name},
		{"LOG_LEVEL", &c.Log.Level},
		{"LOG_FILE", &c.Log.File},
	}
	for _, v := range strs {
		if s, ok := lookup(EnvPrefix + v.key); ok {
			*v.dst = s
		}
	}

	if s, ok := lookup(EnvPrefix + "QUEUE_CAPACITY"); ok {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return fmt.Errorf("%sQUEUE_CAPACITY: %w", EnvPrefix, err)
		}
		c.Region.QueueCapacity = uint32(n)
	}
	if s, ok := lookup(EnvPrefix + "SLEEP_INTERVAL"); ok {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("%sSLEEP_INTERVAL: %w", EnvPrefix, err)
		}
		c.Transport.SleepInterval = d
	}
	if s, ok := lookup(EnvPrefix + "LOG_DEVELOPMENT"); ok {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("%sLOG_DEVELOPMENT: %w", EnvPrefix, err)
		}
		c.Log.Development = b
	}
	return nil
}
