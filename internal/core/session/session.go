// If you are AI: This file binds a laid-out region into a descriptor queue and frame buffers.
// The host formats the region; the client attaches to what the host formatted.
// Copy strategy selection happens once per session and is shared by every slot.

package session

import (
	"errors"
	"fmt"

	"framerelay/internal/core/bus"
	"framerelay/internal/core/cpuinfo"
	"framerelay/internal/core/framebuffer"
)

var (
	// ErrQueueFull is returned by Submit when the client has not drained the queue.
	ErrQueueFull = errors.New("descriptor queue full, frame dropped")
	// ErrFrameTooLarge is returned when a payload exceeds the slot capacity.
	ErrFrameTooLarge = errors.New("frame larger than slot capacity")
	// ErrStall is returned when a frame's bytes did not arrive within the wait budget.
	ErrStall = errors.New("frame stalled, abandoned")
	// ErrCorrupt is returned when a descriptor references an invalid slot or geometry.
	ErrCorrupt = errors.New("corrupt frame descriptor")
)

// Session is one host/client pairing over a region.
// Lock expectations: One Host and one Client per session, each used by a single goroutine.
// Allocation: All views are built at construction; none per frame.
type Session struct {
	layout   Layout
	cfg      framebuffer.Config
	queue    *bus.RingBuffer
	slots    []*framebuffer.FrameBuffer
	strategy framebuffer.Strategy
}

// Option customizes a session.
type Option func(*options)

type options struct {
	cfg      framebuffer.Config
	strategy framebuffer.Strategy
	detector cpuinfo.Detector
}

// WithConfig sets the frame buffer tunables used by every slot and the queue waiter.
func WithConfig(cfg framebuffer.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithStrategy forces a copy strategy instead of detecting one.
func WithStrategy(s framebuffer.Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithDetector selects the strategy from the given capability detector.
func WithDetector(d cpuinfo.Detector) Option {
	return func(o *options) {
		o.detector = d
	}
}

// Format initializes mem as an empty session and binds to it. Host side.
func Format(mem []byte, layout Layout, opts ...Option) (*Session, error) {
	return bindSession(mem, layout, true, opts)
}

// Attach binds to a session previously formatted in mem. Client side.
func Attach(mem []byte, layout Layout, opts ...Option) (*Session, error) {
	return bindSession(mem, layout, false, opts)
}

// NewLocal formats a session over fresh heap memory for in-process use.
// Host and client then share the returned Session.
func NewLocal(layout Layout, opts ...Option) (*Session, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return Format(alignedBytes(layout.Size()), layout, opts...)
}

// bindSession builds the queue and slot views over mem.
func bindSession(mem []byte, layout Layout, init bool, opts []Option) (*Session, error) {
	o := options{cfg: framebuffer.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(mem) < layout.Size() {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrInvalidLayout, layout.Size(), len(mem))
	}

	strategy := o.strategy
	if strategy == nil {
		detector := o.detector
		if detector == nil {
			detector = cpuinfo.Host()
		}
		strategy = framebuffer.SelectStrategy(detector.Features())
	}

	var queue *bus.RingBuffer
	var err error
	if init {
		queue, err = bus.InitRingBuffer(layout.queueRegion(mem), layout.QueueCapacity)
	} else {
		queue, err = bus.BindRingBuffer(layout.queueRegion(mem))
	}
	if err != nil {
		return nil, fmt.Errorf("bind descriptor queue: %w", err)
	}
	if queue.Capacity() != layout.QueueCapacity {
		return nil, fmt.Errorf("%w: queue capacity %d, layout says %d", ErrCorrupt, queue.Capacity(), layout.QueueCapacity)
	}

	slots := make([]*framebuffer.FrameBuffer, layout.Slots())
	for i := range slots {
		fb, err := framebuffer.Bind(layout.slotRegion(mem, i),
			framebuffer.WithConfig(o.cfg), framebuffer.WithStrategy(strategy))
		if err != nil {
			return nil, fmt.Errorf("bind slot %d: %w", i, err)
		}
		if init {
			fb.Prepare()
		}
		slots[i] = fb
	}

	return &Session{
		layout:   layout,
		cfg:      o.cfg,
		queue:    queue,
		slots:    slots,
		strategy: strategy,
	}, nil
}

// Layout returns the session layout.
func (s *Session) Layout() Layout {
	return s.layout
}

// Strategy returns the copy strategy shared by all slots.
func (s *Session) Strategy() framebuffer.Strategy {
	return s.strategy
}

// Queue returns the descriptor queue.
func (s *Session) Queue() *bus.RingBuffer {
	return s.queue
}

// Slot returns frame buffer i, or nil if out of range.
func (s *Session) Slot(i int) *framebuffer.FrameBuffer {
	if i < 0 || i >= len(s.slots) {
		return nil
	}
	return s.slots[i]
}

// SlotCapacity returns the data bytes each frame buffer holds.
func (s *Session) SlotCapacity() int {
	return s.layout.SlotCapacity
}
