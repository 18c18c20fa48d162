// If you are AI: This file implements the client side of a session.
// The client polls the descriptor queue with the same spin-then-sleep waiter the
// frame buffers use, then consumes rows as the host publishes them.

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"framerelay/internal/core/bus"
	"framerelay/internal/core/framebuffer"
)

// ErrAborted is returned by NextFunc when the row callback stopped the read.
var ErrAborted = errors.New("frame read aborted by consumer")

// Surface is a destination image. Pix grows when a frame does not fit.
type Surface struct {
	Pix    []byte
	Pitch  int // Row stride in bytes; 0 adopts the source pitch
	Width  int
	Height int
	BPP    int
}

// fit sizes the surface for info and returns the bytes the frame's rows span.
// The final row's padding is not counted, since a payload need not carry it.
// Allocates only when the geometry grows.
func (s *Surface) fit(info bus.FrameInfo) int {
	lineWidth := info.LineWidth()
	if s.Pitch < lineWidth {
		s.Pitch = int(info.Pitch)
	}
	need := (int(info.Height)-1)*s.Pitch + lineWidth
	if len(s.Pix) < need {
		s.Pix = make([]byte, int(info.Height)*s.Pitch)
	}
	s.Width, s.Height, s.BPP = int(info.Width), int(info.Height), int(info.BPP)
	return need
}

// Row returns row y of the surface.
func (s *Surface) Row(y int) []byte {
	off := y * s.Pitch
	return s.Pix[off : off+s.Width*s.BPP]
}

// Client consumes frames from a session.
// Lock expectations: Single goroutine.
type Client struct {
	s      *Session
	stats  *Stats
	waiter framebuffer.Waiter
	last   uint64          // Serial of the last frame dequeued
	ctx    context.Context // Context of the dequeue in progress
	ready  func() bool
}

// NewClient creates the client side of s. A nil stats allocates fresh counters.
func NewClient(s *Session, stats *Stats) *Client {
	if stats == nil {
		stats = NewStats()
	}
	c := &Client{s: s, stats: stats, waiter: s.cfg.Waiter()}
	c.ready = func() bool { return s.queue.Len() > 0 || c.ctx.Err() != nil }
	return c
}

// Stats returns the client counters.
func (c *Client) Stats() *Stats {
	return c.stats
}

// HostDropped returns how many frames the host discarded because this client lagged.
func (c *Client) HostDropped() uint64 {
	return c.s.queue.Dropped()
}

// Next waits for the next frame and copies it into dst.
// Blocks until a frame arrives or ctx is done. Returns ErrStall if the frame's
// bytes did not arrive in time; the frame is abandoned and the next call moves on.
func (c *Client) Next(ctx context.Context, dst *Surface) (bus.FrameInfo, error) {
	info, fb, err := c.dequeue(ctx)
	if err != nil {
		return info, err
	}

	need := dst.fit(info)
	start := time.Now()
	ok := fb.ReadPitched(dst.Pix[:need], dst.Pitch, int(info.Height), int(info.Width), int(info.BPP), int(info.Pitch))
	if !ok {
		c.stats.recordStall()
		return info, fmt.Errorf("%w: %s", ErrStall, info)
	}
	c.stats.recordFrame(info.Serial, int(info.Size), time.Since(start))
	return info, nil
}

// NextFunc waits for the next frame and hands each row to fn as it is published,
// together with the frame's descriptor. Rows alias shared memory and are only
// valid during the call.
// Returns ErrAborted if fn stopped early, ErrStall if a row never arrived.
func (c *Client) NextFunc(ctx context.Context, fn func(info bus.FrameInfo, y int, row []byte) bool) (bus.FrameInfo, error) {
	info, fb, err := c.dequeue(ctx)
	if err != nil {
		return info, err
	}

	y := 0
	aborted := false
	start := time.Now()
	ok := fb.ReadFunc(int(info.Height), int(info.Width), int(info.BPP), int(info.Pitch), func(row []byte) bool {
		if !fn(info, y, row) {
			aborted = true
			return false
		}
		y++
		return true
	})
	if aborted {
		return info, ErrAborted
	}
	if !ok {
		c.stats.recordStall()
		return info, fmt.Errorf("%w: %s", ErrStall, info)
	}
	c.stats.recordFrame(info.Serial, int(info.Size), time.Since(start))
	return info, nil
}

// dequeue blocks for the next descriptor and resolves its frame buffer.
func (c *Client) dequeue(ctx context.Context) (bus.FrameInfo, *framebuffer.FrameBuffer, error) {
	c.ctx = ctx
	for {
		if info, ok := c.s.queue.Read(); ok {
			fb := c.s.Slot(int(info.Slot))
			if fb == nil {
				return info, nil, fmt.Errorf("%w: slot %d of %d", ErrCorrupt, info.Slot, len(c.s.slots))
			}
			if err := info.Validate(fb.Capacity()); err != nil {
				return info, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			if c.last != 0 && info.Serial > c.last+1 {
				c.stats.recordSkip(info.Serial - c.last - 1)
			}
			c.last = info.Serial
			return info, fb, nil
		}
		if err := ctx.Err(); err != nil {
			return bus.FrameInfo{}, nil, err
		}
		c.waiter.Wait(c.ready)
	}
}
