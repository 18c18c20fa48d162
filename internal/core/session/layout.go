// If you are AI: This file defines how a session divides one region into a descriptor
// queue and a set of frame buffers. Every part starts on a page boundary.

package session

import (
	"errors"
	"fmt"
	"unsafe"

	"framerelay/internal/core/bus"
	"framerelay/internal/core/framebuffer"
	"framerelay/internal/shm"
)

// pageSize is the alignment of every part of the layout.
const pageSize = 4096

// ErrInvalidLayout is returned when layout parameters are out of range.
var ErrInvalidLayout = errors.New("invalid session layout")

// Layout places [queue][slot 0][slot 1]...[slot N] within a region.
// There is one more slot than queue entries so the slot a client is reading is
// never handed back to the host while other frames are still queued.
type Layout struct {
	QueueCapacity uint32 // Descriptor queue entries, power of two
	SlotCapacity  int    // Data bytes per frame buffer
}

// Validate checks the layout and returns the first violation found.
func (l Layout) Validate() error {
	if l.QueueCapacity == 0 || l.QueueCapacity&(l.QueueCapacity-1) != 0 {
		return fmt.Errorf("%w: queue capacity must be a power of two, got %d", ErrInvalidLayout, l.QueueCapacity)
	}
	if l.SlotCapacity <= 0 {
		return fmt.Errorf("%w: slot capacity must be > 0, got %d", ErrInvalidLayout, l.SlotCapacity)
	}
	if uint64(l.SlotCapacity) > 1<<32-1 {
		return fmt.Errorf("%w: slot capacity %d exceeds descriptor range", ErrInvalidLayout, l.SlotCapacity)
	}
	return nil
}

// Slots returns the number of frame buffers.
func (l Layout) Slots() int {
	return int(l.QueueCapacity) + 1
}

// Size returns the total bytes the layout occupies.
func (l Layout) Size() int {
	return l.queueSize() + l.Slots()*l.slotStride()
}

// Geometry converts the layout into the form recorded in a region header.
func (l Layout) Geometry() shm.Geometry {
	return shm.Geometry{
		QueueCapacity: l.QueueCapacity,
		SlotCount:     uint32(l.Slots()),
		SlotCapacity:  uint64(l.SlotCapacity),
		DataSize:      uint64(l.Size()),
	}
}

// LayoutFromGeometry recovers a layout from a region header and checks it is consistent.
func LayoutFromGeometry(g shm.Geometry) (Layout, error) {
	l := Layout{QueueCapacity: g.QueueCapacity, SlotCapacity: int(g.SlotCapacity)}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	if uint32(l.Slots()) != g.SlotCount || uint64(l.Size()) > g.DataSize {
		return Layout{}, fmt.Errorf("%w: header geometry %+v does not match layout", ErrInvalidLayout, g)
	}
	return l, nil
}

// queueSize returns the page-rounded bytes of the descriptor queue.
func (l Layout) queueSize() int {
	return alignUp(bus.RingBufferSize(l.QueueCapacity), pageSize)
}

// slotStride returns the page-rounded bytes between consecutive frame buffers.
func (l Layout) slotStride() int {
	return alignUp(framebuffer.RegionSize(l.SlotCapacity), pageSize)
}

// queueRegion returns the bytes of mem holding the descriptor queue.
func (l Layout) queueRegion(mem []byte) []byte {
	return mem[:l.queueSize()]
}

// slotRegion returns the bytes of mem holding frame buffer i, header included.
func (l Layout) slotRegion(mem []byte, i int) []byte {
	off := l.queueSize() + i*l.slotStride()
	end := off + framebuffer.RegionSize(l.SlotCapacity)
	return mem[off:end:end]
}

// alignUp rounds n up to a multiple of align, which must be a power of two.
func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// alignedBytes returns size bytes of heap memory starting on a page boundary.
func alignedBytes(size int) []byte {
	words := make([]uint64, (size+pageSize)/8+1)
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*8)
	off := alignUp(int(uintptr(unsafe.Pointer(&raw[0]))), pageSize) - int(uintptr(unsafe.Pointer(&raw[0])))
	return raw[off : off+size : off+size]
}
