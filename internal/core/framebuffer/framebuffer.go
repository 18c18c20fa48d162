// If you are AI: This file defines the FrameBuffer type and its atomic write-position cursor.
// A FrameBuffer binds to externally owned memory; it never allocates or frees the region.
// CRITICAL: The writer is the only party allowed to call Prepare, Write or SetWritePtr.

package framebuffer

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"

	"framerelay/internal/core/cpuinfo"
)

// HeaderSize is the number of bytes reserved at the start of a bound region for the cursor.
// The cursor occupies the first 8 bytes; the rest pads it to its own cache line.
const HeaderSize = 64

var (
	// ErrRegionTooSmall is returned when a region cannot hold the header and one data byte.
	ErrRegionTooSmall = errors.New("region too small for frame buffer")
	// ErrMisaligned is returned when the cursor location is not 8-byte aligned.
	ErrMisaligned = errors.New("region base is not 8-byte aligned")
	// ErrInvalidConfig is returned when tunables are out of range.
	ErrInvalidConfig = errors.New("invalid frame buffer config")
)

// header mirrors the layout at the start of a bound region.
type header struct {
	writePos atomic.Uint64
	_        [HeaderSize - 8]byte
}

// FrameBuffer is a fixed-capacity byte region plus a single atomic write position.
// Lock expectations: Single writer, single reader. No locks on any path.
// Allocation: None after Bind.
type FrameBuffer struct {
	hdr      *header
	data     []byte // data area, len == capacity
	chunk    int
	waiter   Waiter
	strategy Strategy
}

// Option customizes a FrameBuffer at bind time.
type Option func(*options)

type options struct {
	cfg      Config
	strategy Strategy
	detector cpuinfo.Detector
}

// WithConfig sets the transport tunables.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithStrategy injects an already selected copy strategy.
// Sessions binding several buffers use this so selection happens once.
func WithStrategy(s Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithDetector selects the copy strategy from the given capability detector.
// Ignored when WithStrategy is also supplied.
func WithDetector(d cpuinfo.Detector) Option {
	return func(o *options) {
		o.detector = d
	}
}

// RegionSize returns the number of bytes a region needs to hold capacity data bytes.
func RegionSize(capacity int) int {
	return HeaderSize + capacity
}

// Bind creates a FrameBuffer over region, which must stay mapped for the buffer's lifetime.
// The cursor lives in the first HeaderSize bytes so it can be shared across processes.
// Bind does not touch the cursor value; the writer resets it with Prepare.
func Bind(region []byte, opts ...Option) (*FrameBuffer, error) {
	o := options{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(region) <= HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrRegionTooSmall, len(region))
	}
	base := unsafe.Pointer(&region[0])
	if uintptr(base)%8 != 0 {
		return nil, ErrMisaligned
	}

	strategy := o.strategy
	if strategy == nil {
		detector := o.detector
		if detector == nil {
			detector = cpuinfo.Host()
		}
		strategy = SelectStrategy(detector.Features())
	}

	return &FrameBuffer{
		hdr:      (*header)(base),
		data:     region[HeaderSize:len(region):len(region)],
		chunk:    o.cfg.ChunkSize,
		waiter:   o.cfg.Waiter(),
		strategy: strategy,
	}, nil
}

// Capacity returns the fixed number of data bytes the buffer holds.
func (fb *FrameBuffer) Capacity() int {
	return len(fb.data)
}

// ChunkSize returns the publish granularity in bytes.
func (fb *FrameBuffer) ChunkSize() int {
	return fb.chunk
}

// Strategy returns the copy strategy bound to this buffer.
func (fb *FrameBuffer) Strategy() Strategy {
	return fb.strategy
}

// Waiter returns the wait primitive used by the read variants.
func (fb *FrameBuffer) Waiter() Waiter {
	return fb.waiter
}

// Prepare resets the write position to zero at the start of a new frame.
// Must be called by the writer only, once per frame, before any Write.
func (fb *FrameBuffer) Prepare() {
	fb.hdr.writePos.Store(0)
}

// SetWritePtr publishes size bytes as readable without copying anything.
// Used when the payload reached the data area by other means, and by strategies
// to publish progress. Values beyond capacity are clamped.
func (fb *FrameBuffer) SetWritePtr(size int) {
	if size > len(fb.data) {
		size = len(fb.data)
	}
	if size < 0 {
		size = 0
	}
	fb.hdr.writePos.Store(uint64(size))
}

// Peek returns the currently published byte count with acquire semantics.
func (fb *FrameBuffer) Peek() int {
	return int(fb.hdr.writePos.Load())
}

// Buffer returns the data area for zero-copy readers.
// NOTE: Callers bypass the wait discipline and must only touch published bytes.
func (fb *FrameBuffer) Buffer() []byte {
	return fb.data
}

// Data returns the data area for writers that fill it directly (see SetWritePtr).
func (fb *FrameBuffer) Data() []byte {
	return fb.data
}
