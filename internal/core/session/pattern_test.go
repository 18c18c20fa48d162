// If you are AI: This file contains unit tests for the synthetic frame source.

package session

import (
	"testing"
	"time"
)

func TestPatternSourceGeometry(t *testing.T) {
	src := NewPatternSource(100, 20, 3)
	info, pix := src.Next()

	if info.Pitch != 320 {
		t.Errorf("Expected pitch padded to 320, got %d", info.Pitch)
	}
	if len(pix) != 20*320 || int(info.Size) != len(pix) {
		t.Errorf("Unexpected payload size %d (info %d)", len(pix), info.Size)
	}
	if err := info.Validate(len(pix)); err != nil {
		t.Errorf("Pattern descriptor invalid: %v", err)
	}
}

func TestPatternMatchRow(t *testing.T) {
	src := NewPatternSource(16, 4, 4)
	fixed := time.Unix(0, 5<<16)
	src.now = func() time.Time { return fixed }

	info, pix := src.Next()
	for y := 0; y < 4; y++ {
		row := pix[y*int(info.Pitch) : y*int(info.Pitch)+info.LineWidth()]
		if !MatchRow(info, y, row) {
			t.Errorf("Row %d should match", y)
		}
	}

	row := append([]byte(nil), pix[:info.LineWidth()]...)
	row[10]++
	if MatchRow(info, 0, row) {
		t.Error("Modified row should not match")
	}

	moved := info
	moved.Timestamp += 1 << 16
	if MatchRow(moved, 0, pix[:info.LineWidth()]) {
		t.Error("Different phase should not match")
	}
}
