// If you are AI: This file implements a lock-free ring buffer of frame descriptors.
// The header and slots may be placed in memory shared between two processes.
// CRITICAL: Both writePos and readPos increment freely (never masked). Only use the mask
// when indexing into the slot array. The emptiness check readPos==writePos relies on
// both counters using the same domain.

package bus

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"
)

// ringHeaderSize is the size of the queue header, two cache lines.
const ringHeaderSize = 128

var (
	// ErrRingTooSmall is returned when memory cannot hold the header and slots.
	ErrRingTooSmall = errors.New("memory too small for ring buffer")
	// ErrRingCorrupt is returned when a bound header carries an impossible capacity.
	ErrRingCorrupt = errors.New("ring buffer header corrupt")
)

// ringHeader is the shared layout at the start of the queue memory.
// writePos and readPos sit on separate cache lines to avoid false sharing.
type ringHeader struct {
	writePos atomic.Uint32 // Producer-owned, free-running
	capacity uint32        // Slot count, power of 2, written once at init
	dropped  atomic.Uint64 // Producer-owned drop counter
	_        [48]byte
	readPos  atomic.Uint32 // Consumer-owned, free-running
	_        [60]byte
}

// RingBuffer is a bounded circular queue of FrameInfo.
// It is lock-free for single producer, single consumer scenarios.
// NOTE: A full queue drops the newest descriptor; the producer never moves readPos.
// Allocation: None after construction.
type RingBuffer struct {
	hdr   *ringHeader
	slots []FrameInfo // Descriptor slots (may alias shared memory)
	size  uint32      // Slot count (power of 2 for efficient modulo)
	mask  uint32      // size - 1, for efficient modulo (index = pos & mask)
}

// RingBufferSize returns the bytes needed for a queue of capacity descriptors,
// after rounding capacity up to a power of 2.
func RingBufferSize(capacity uint32) int {
	return ringHeaderSize + int(roundPow2(capacity))*frameInfoSize
}

// NewRingBuffer creates an in-process ring buffer with the specified capacity.
// Capacity is rounded up to a power of 2 for efficient modulo via bitmask.
func NewRingBuffer(capacity uint32) *RingBuffer {
	// []uint64 backing keeps the header 8-byte aligned
	words := make([]uint64, (RingBufferSize(capacity)+7)/8)
	mem := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*8)
	rb, err := InitRingBuffer(mem, capacity)
	if err != nil {
		panic(err) // memory was sized above
	}
	return rb
}

// InitRingBuffer formats mem as an empty queue and binds to it.
// Only the producer side calls this, before the consumer binds.
func InitRingBuffer(mem []byte, capacity uint32) (*RingBuffer, error) {
	size := roundPow2(capacity)
	if len(mem) < RingBufferSize(size) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrRingTooSmall, RingBufferSize(size), len(mem))
	}
	if uintptr(unsafe.Pointer(&mem[0]))%8 != 0 {
		return nil, fmt.Errorf("%w: memory not 8-byte aligned", ErrRingCorrupt)
	}

	hdr := (*ringHeader)(unsafe.Pointer(&mem[0]))
	hdr.capacity = size
	hdr.dropped.Store(0)
	hdr.readPos.Store(0)
	hdr.writePos.Store(0)

	return bind(mem, hdr, size), nil
}

// BindRingBuffer attaches to a queue previously formatted by InitRingBuffer.
func BindRingBuffer(mem []byte) (*RingBuffer, error) {
	if len(mem) < ringHeaderSize {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrRingTooSmall, ringHeaderSize, len(mem))
	}
	if uintptr(unsafe.Pointer(&mem[0]))%8 != 0 {
		return nil, fmt.Errorf("%w: memory not 8-byte aligned", ErrRingCorrupt)
	}

	hdr := (*ringHeader)(unsafe.Pointer(&mem[0]))
	size := hdr.capacity
	if size == 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: capacity %d", ErrRingCorrupt, size)
	}
	if len(mem) < RingBufferSize(size) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrRingTooSmall, RingBufferSize(size), len(mem))
	}

	return bind(mem, hdr, size), nil
}

// bind builds the RingBuffer view over formatted memory.
func bind(mem []byte, hdr *ringHeader, size uint32) *RingBuffer {
	slots := unsafe.Slice((*FrameInfo)(unsafe.Pointer(&mem[ringHeaderSize])), size)
	return &RingBuffer{
		hdr:   hdr,
		slots: slots,
		size:  size,
		mask:  size - 1,
	}
}

// roundPow2 rounds n up to the next power of 2, with a minimum of 1.
func roundPow2(n uint32) uint32 {
	actual := uint32(1)
	for actual < n {
		actual <<= 1
	}
	return actual
}

// Write attempts to enqueue a descriptor.
// Returns true if written, false if the queue was full and the descriptor was dropped.
// Lock expectations: Single writer (host goroutine or process).
// Both writePos and readPos are free-running; only masked when indexing the slot array.
func (rb *RingBuffer) Write(info FrameInfo) bool {
	writePos := rb.hdr.writePos.Load()
	readPos := rb.hdr.readPos.Load()

	// Queue full when used count equals capacity.
	// Unsigned subtraction works correctly even after uint32 wrap.
	if writePos-readPos >= rb.size {
		rb.hdr.dropped.Add(1)
		return false
	}

	rb.slots[writePos&rb.mask] = info
	rb.hdr.writePos.Store(writePos + 1)
	return true
}

// Read attempts to dequeue a descriptor.
// Returns the descriptor and true if available, a zero value and false if empty.
// Lock expectations: Single reader (client goroutine or process).
func (rb *RingBuffer) Read() (FrameInfo, bool) {
	readPos := rb.hdr.readPos.Load()
	writePos := rb.hdr.writePos.Load()

	if readPos == writePos {
		return FrameInfo{}, false
	}

	info := rb.slots[readPos&rb.mask]
	rb.hdr.readPos.Store(readPos + 1)
	return info, true
}

// Drop records a descriptor the producer discarded without enqueueing it.
// The counter lives in the shared header so the consumer can observe host drops.
func (rb *RingBuffer) Drop() {
	rb.hdr.dropped.Add(1)
}

// Capacity returns the number of descriptor slots.
func (rb *RingBuffer) Capacity() uint32 {
	return rb.size
}

// Len returns the number of queued descriptors.
func (rb *RingBuffer) Len() uint32 {
	return rb.hdr.writePos.Load() - rb.hdr.readPos.Load()
}

// Dropped returns the number of descriptors dropped because the queue was full.
func (rb *RingBuffer) Dropped() uint64 {
	return rb.hdr.dropped.Load()
}

// Available returns the number of free slots in the queue.
func (rb *RingBuffer) Available() uint32 {
	return rb.size - rb.Len()
}
