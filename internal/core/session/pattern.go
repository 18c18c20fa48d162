// If you are AI: This file generates synthetic frames for the host and loopback roles.
// Content derives from the frame timestamp so any reader can verify it independently.

package session

import (
	"time"

	"framerelay/internal/core/bus"
)

// PatternSource produces a moving gradient.
// Allocation: One frame-sized buffer, reused for every frame.
type PatternSource struct {
	width, height, bpp, pitch int
	buf                       []byte
	now                       func() time.Time
}

// NewPatternSource creates a source of width x height frames with bpp bytes per pixel.
// Rows are padded to a 64-byte pitch, like a guest framebuffer would be.
func NewPatternSource(width, height, bpp int) *PatternSource {
	pitch := alignUp(width*bpp, 64)
	return &PatternSource{
		width:  width,
		height: height,
		bpp:    bpp,
		pitch:  pitch,
		buf:    make([]byte, height*pitch),
		now:    time.Now,
	}
}

// FrameSize returns the payload bytes of each frame.
func (p *PatternSource) FrameSize() int {
	return len(p.buf)
}

// Next renders the next frame and returns its descriptor and pixels.
// The pixels are overwritten by the following call.
func (p *PatternSource) Next() (bus.FrameInfo, []byte) {
	ts := p.now().UnixNano()
	phase := patternPhase(ts)
	lineWidth := p.width * p.bpp
	for y := 0; y < p.height; y++ {
		row := p.buf[y*p.pitch : y*p.pitch+lineWidth]
		for i := range row {
			row[i] = patternByte(phase, y, i)
		}
	}

	info := bus.FrameInfo{
		Timestamp: ts,
		Width:     uint32(p.width),
		Height:    uint32(p.height),
		Pitch:     uint32(p.pitch),
		BPP:       uint32(p.bpp),
		Size:      uint32(len(p.buf)),
	}
	return info, p.buf
}

// MatchRow reports whether row y of a frame described by info carries the expected pattern.
func MatchRow(info bus.FrameInfo, y int, row []byte) bool {
	phase := patternPhase(info.Timestamp)
	for i, b := range row {
		if b != patternByte(phase, y, i) {
			return false
		}
	}
	return true
}

// patternPhase derives the animation offset from a timestamp (~1 step per 65µs).
func patternPhase(ts int64) byte {
	return byte(ts >> 16)
}

// patternByte is the value of byte i in row y.
func patternByte(phase byte, y, i int) byte {
	return byte(i) + byte(y)*3 + phase
}
