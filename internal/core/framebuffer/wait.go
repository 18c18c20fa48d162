// If you are AI: This file implements the transport tunables and the bounded busy-wait primitive.
// The wait budget is counted in iterations, not wall-clock time. Under heavy load a wait
// therefore lasts longer than under light load; this is accepted behavior.

package framebuffer

import (
	"fmt"
	"runtime"
	"time"
)

const (
	// DefaultChunkSize is the publish granularity of the writer (1 MiB).
	DefaultChunkSize = 1 << 20
	// DefaultSpinLimit is the number of tight-spin checks before sleeping.
	DefaultSpinLimit = 4096
	// DefaultSleepLimit is the number of sleep-phase checks before a wait fails.
	DefaultSleepLimit = 10000
	// DefaultSleepInterval is the pause between sleep-phase checks.
	DefaultSleepInterval = time.Microsecond

	// minChunkSize keeps chunks a multiple of every strategy's block size.
	minChunkSize = 64
	// yieldEvery is how often the tight-spin phase lets other goroutines run.
	yieldEvery = 128
)

// Config holds the tunables of one frame buffer.
type Config struct {
	ChunkSize     int           // Publish granularity in bytes, power of two
	SpinLimit     int           // Tight-spin iterations, at least 1
	SleepLimit    int           // Sleep-phase iterations, may be 0
	SleepInterval time.Duration // Pause per sleep-phase iteration
}

// DefaultConfig returns the tunables used when none are supplied.
func DefaultConfig() Config {
	return Config{
		ChunkSize:     DefaultChunkSize,
		SpinLimit:     DefaultSpinLimit,
		SleepLimit:    DefaultSleepLimit,
		SleepInterval: DefaultSleepInterval,
	}
}

// Validate checks the tunables and returns the first violation found.
func (c Config) Validate() error {
	if c.ChunkSize < minChunkSize || c.ChunkSize&(c.ChunkSize-1) != 0 {
		return fmt.Errorf("%w: chunk size must be a power of two >= %d, got %d", ErrInvalidConfig, minChunkSize, c.ChunkSize)
	}
	if c.SpinLimit < 1 {
		return fmt.Errorf("%w: spin limit must be >= 1, got %d", ErrInvalidConfig, c.SpinLimit)
	}
	if c.SleepLimit < 0 {
		return fmt.Errorf("%w: sleep limit must be >= 0, got %d", ErrInvalidConfig, c.SleepLimit)
	}
	if c.SleepInterval < 0 {
		return fmt.Errorf("%w: sleep interval must be >= 0, got %v", ErrInvalidConfig, c.SleepInterval)
	}
	return nil
}

// Waiter returns the wait primitive described by the tunables.
func (c Config) Waiter() Waiter {
	return Waiter{
		SpinLimit:     c.SpinLimit,
		SleepLimit:    c.SleepLimit,
		SleepInterval: c.SleepInterval,
	}
}

// Waiter is a spin-then-sleep busy wait with a fixed iteration budget.
// The first SpinLimit checks run back to back, yielding the processor every
// yieldEvery checks. The next SleepLimit checks each pause for SleepInterval.
type Waiter struct {
	SpinLimit     int
	SleepLimit    int
	SleepInterval time.Duration
}

// Budget returns the total number of checks a wait performs before failing.
func (w Waiter) Budget() int {
	return w.SpinLimit + w.SleepLimit
}

// Wait polls ready until it reports true or the budget is exhausted.
// Returns true as soon as ready holds, false if it never did.
func (w Waiter) Wait(ready func() bool) bool {
	for i := 0; i < w.SpinLimit; i++ {
		if ready() {
			return true
		}
		if i%yieldEvery == yieldEvery-1 {
			runtime.Gosched()
		}
	}

	for i := 0; i < w.SleepLimit; i++ {
		time.Sleep(w.SleepInterval)
		if ready() {
			return true
		}
	}

	return false
}

// Wait blocks until at least required bytes are published.
// Returns false if the spin budget runs out first; the caller decides whether
// to retry later or abandon the frame.
func (fb *FrameBuffer) Wait(required int) bool {
	if required > len(fb.data) {
		return false
	}
	if fb.Peek() >= required {
		return true
	}
	return fb.waiter.Wait(func() bool {
		return fb.Peek() >= required
	})
}
