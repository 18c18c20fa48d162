// If you are AI: This file implements the host side of a session.
// The descriptor is queued before the pixels are copied, so the client starts
// reading rows while the copy is still running.

package session

import (
	"fmt"
	"time"

	"framerelay/internal/core/bus"
)

// Host submits frames into a session.
// Lock expectations: Single goroutine. Not safe for concurrent Submit.
type Host struct {
	s        *Session
	stats    *Stats
	serial   uint64 // Last serial assigned
	accepted uint64 // Frames queued; selects the next slot
}

// NewHost creates the host side of s. A nil stats allocates fresh counters.
func NewHost(s *Session, stats *Stats) *Host {
	if stats == nil {
		stats = NewStats()
	}
	return &Host{s: s, stats: stats}
}

// Stats returns the host counters.
func (h *Host) Stats() *Stats {
	return h.stats
}

// Submit assigns the next serial to info, queues it and copies pixels into its slot.
// info.Size defaults to len(pixels) and info.Timestamp to now.
// Returns the descriptor as queued, ErrQueueFull when the client lags (the frame is
// dropped and counted), or a geometry error.
func (h *Host) Submit(info bus.FrameInfo, pixels []byte) (bus.FrameInfo, error) {
	h.serial++
	info.Serial = h.serial
	if info.Size == 0 {
		info.Size = uint32(len(pixels))
	}
	if info.Timestamp == 0 {
		info.Timestamp = time.Now().UnixNano()
	}

	if len(pixels) > h.s.layout.SlotCapacity {
		return info, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(pixels), h.s.layout.SlotCapacity)
	}
	if int(info.Size) > len(pixels) {
		return info, fmt.Errorf("frame %d: size %d exceeds payload %d", info.Serial, info.Size, len(pixels))
	}
	if err := info.Validate(h.s.layout.SlotCapacity); err != nil {
		return info, err
	}

	// Only the client frees queue entries, so space seen here stays available.
	if h.s.queue.Available() == 0 {
		h.s.queue.Drop()
		h.stats.recordDrop()
		return info, ErrQueueFull
	}

	slot := int(h.accepted % uint64(len(h.s.slots)))
	fb := h.s.slots[slot]
	info.Slot = uint32(slot)

	// Reset before queueing so the client never sees the previous frame's position
	fb.Prepare()
	h.s.queue.Write(info)
	h.accepted++

	start := time.Now()
	fb.Write(pixels[:info.Size])
	h.stats.recordFrame(info.Serial, int(info.Size), time.Since(start))

	return info, nil
}
