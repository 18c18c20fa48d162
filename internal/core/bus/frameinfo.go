// If you are AI: This file defines FrameInfo, the descriptor that announces a frame to the reader.
// FrameInfo is fixed-size and pointer-free so it can live in shared memory.

package bus

import (
	"fmt"
	"unsafe"
)

// FrameFlags carries per-frame hints for the reader.
type FrameFlags uint32

const (
	// FlagKeyFrame marks a frame that does not depend on earlier frames.
	FlagKeyFrame FrameFlags = 1 << iota
	// FlagGeometryChanged marks the first frame after a resolution or pitch change.
	FlagGeometryChanged
	// FlagBlank marks a frame the host sent while the guest display was off.
	FlagBlank
)

// FrameInfo describes one frame: where its bytes live and how rows are laid out.
// Ownership: Copied by value through the descriptor queue; never references the pixels.
type FrameInfo struct {
	Serial    uint64     // Monotonic frame counter assigned by the host
	Timestamp int64      // Capture time in Unix nanoseconds
	Slot      uint32     // Index of the frame buffer holding the pixels
	Width     uint32     // Visible width in pixels
	Height    uint32     // Visible height in rows
	Pitch     uint32     // Source row stride in bytes
	BPP       uint32     // Bytes per pixel
	Size      uint32     // Total payload bytes written to the slot
	Flags     FrameFlags // Per-frame hints
	_         uint32     // Padding to an 8-byte multiple
}

// frameInfoSize is the in-memory size of one descriptor.
const frameInfoSize = int(unsafe.Sizeof(FrameInfo{}))

// LineWidth returns the number of meaningful bytes in each row.
func (f FrameInfo) LineWidth() int {
	return int(f.Width) * int(f.BPP)
}

// Validate checks that the geometry is self-consistent and fits within capacity bytes.
func (f FrameInfo) Validate(capacity int) error {
	if f.Width == 0 || f.Height == 0 || f.BPP == 0 {
		return fmt.Errorf("frame %d: empty geometry %dx%dx%d", f.Serial, f.Width, f.Height, f.BPP)
	}
	if int(f.Pitch) < f.LineWidth() {
		return fmt.Errorf("frame %d: pitch %d below row width %d", f.Serial, f.Pitch, f.LineWidth())
	}
	if int(f.Size) > capacity {
		return fmt.Errorf("frame %d: size %d exceeds slot capacity %d", f.Serial, f.Size, capacity)
	}
	last := (int(f.Height)-1)*int(f.Pitch) + f.LineWidth()
	if last > int(f.Size) {
		return fmt.Errorf("frame %d: rows need %d bytes, payload has %d", f.Serial, last, f.Size)
	}
	return nil
}

// String returns a human-readable representation of the descriptor.
func (f FrameInfo) String() string {
	return fmt.Sprintf("frame %d slot %d %dx%d bpp=%d pitch=%d size=%d",
		f.Serial, f.Slot, f.Width, f.Height, f.BPP, f.Pitch, f.Size)
}

// Has reports whether all bits in flag are set.
func (f FrameFlags) Has(flag FrameFlags) bool {
	return f&flag == flag
}
