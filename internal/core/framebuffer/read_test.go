// If you are AI: This file contains unit tests for the reader-side copy variants.

package framebuffer

import (
	"bytes"
	"testing"
)

func TestReadLinearRoundTrip(t *testing.T) {
	fb := newTestBuffer(t, 64*1024, fastConfig())

	for _, size := range []int{0, 1, 63, 64, 65, 4095, 4096, 4097, 10000, 64 * 1024} {
		src := pattern(size, byte(size))
		fb.Prepare()
		if !fb.Write(src) {
			t.Fatalf("Write(%d) failed", size)
		}

		dst := make([]byte, size)
		if !fb.ReadLinear(dst, size) {
			t.Fatalf("ReadLinear(%d) failed", size)
		}
		if !bytes.Equal(dst, src) {
			t.Fatalf("ReadLinear(%d) returned different bytes", size)
		}
	}
}

func TestReadLinearRejectsOversize(t *testing.T) {
	fb := newTestBuffer(t, 4096, fastConfig())
	fb.SetWritePtr(4096)

	if fb.ReadLinear(make([]byte, 100), 200) {
		t.Error("ReadLinear should reject a destination shorter than size")
	}
	if fb.ReadLinear(make([]byte, 5000), 5000) {
		t.Error("ReadLinear should reject a size beyond capacity")
	}
}

func TestReadLinearStallsOnMissingBytes(t *testing.T) {
	cfg := fastConfig()
	cfg.SpinLimit = 1
	cfg.SleepLimit = 0
	fb := newTestBuffer(t, 16*1024, cfg)

	fb.Prepare()
	fb.SetWritePtr(5000)
	if fb.ReadLinear(make([]byte, 8000), 8000) {
		t.Error("ReadLinear should fail when the bytes were never published")
	}
}

func TestReadPitchedCopiesRows(t *testing.T) {
	fb := newTestBuffer(t, 4096, fastConfig())

	// 4 rows of 100 bytes, spaced 128 bytes apart
	src := make([]byte, 4*128)
	for y := 0; y < 4; y++ {
		for x := 0; x < 128; x++ {
			if x < 100 {
				src[y*128+x] = byte(y*100 + x)
			} else {
				src[y*128+x] = 0xEE // padding must never reach the destination
			}
		}
	}
	fb.Prepare()
	fb.Write(src)

	dst := make([]byte, 400)
	if !fb.ReadPitched(dst, 100, 4, 25, 4, 128) {
		t.Fatal("ReadPitched failed")
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 100; x++ {
			if dst[y*100+x] != byte(y*100+x) {
				t.Fatalf("Row %d byte %d: got %d, want %d", y, x, dst[y*100+x], byte(y*100+x))
			}
		}
	}
}

func TestReadPitchedWiderDestination(t *testing.T) {
	fb := newTestBuffer(t, 4096, fastConfig())
	src := pattern(3*64, 9)
	fb.Prepare()
	fb.Write(src)

	dst := bytes.Repeat([]byte{0xAA}, 3*96)
	if !fb.ReadPitched(dst, 96, 3, 16, 3, 64) {
		t.Fatal("ReadPitched failed")
	}
	for y := 0; y < 3; y++ {
		if !bytes.Equal(dst[y*96:y*96+48], src[y*64:y*64+48]) {
			t.Errorf("Row %d content mismatch", y)
		}
		for x := 48; x < 96; x++ {
			if dst[y*96+x] != 0xAA {
				t.Fatalf("Row %d: destination padding overwritten at %d", y, x)
			}
		}
	}
}

func TestReadPitchedMatchingPitchIsLinear(t *testing.T) {
	fb := newTestBuffer(t, 8192, fastConfig())
	src := pattern(4*256, 1)
	fb.Prepare()
	fb.Write(src)

	dst := make([]byte, 4*256)
	if !fb.ReadPitched(dst, 256, 4, 50, 4, 256) {
		t.Fatal("ReadPitched with equal pitches failed")
	}
	if !bytes.Equal(dst, src) {
		t.Error("Equal pitches should copy the whole run including padding")
	}

	// Tightly sized destination: the last row carries no padding
	tight := make([]byte, 3*256+200)
	if !fb.ReadPitched(tight, 256, 4, 50, 4, 256) {
		t.Fatal("ReadPitched into tight destination failed")
	}
	if !bytes.Equal(tight, src[:len(tight)]) {
		t.Error("Tight destination content mismatch")
	}
}

func TestReadPitchedRejectsBadGeometry(t *testing.T) {
	fb := newTestBuffer(t, 4096, fastConfig())
	fb.SetWritePtr(4096)

	if fb.ReadPitched(make([]byte, 1000), 50, 4, 25, 4, 128) {
		t.Error("Destination pitch below row width should be rejected")
	}
	if fb.ReadPitched(make([]byte, 1000), 100, 4, 25, 4, 64) {
		t.Error("Source pitch below row width should be rejected")
	}
	if fb.ReadPitched(make([]byte, 300), 100, 4, 25, 4, 128) {
		t.Error("Short destination should be rejected")
	}
	if fb.ReadPitched(make([]byte, 100*64), 100, 64, 25, 4, 128) {
		t.Error("Rows beyond capacity should be rejected")
	}
	if !fb.ReadPitched(nil, 100, 0, 25, 4, 128) {
		t.Error("Zero rows should succeed")
	}
}

func TestReadPitchedStallsOnMissingRow(t *testing.T) {
	cfg := fastConfig()
	cfg.SpinLimit = 1
	cfg.SleepLimit = 0
	fb := newTestBuffer(t, 4096, cfg)

	fb.Prepare()
	fb.SetWritePtr(2*128 + 100) // rows 0..2 complete, row 3 missing
	if fb.ReadPitched(make([]byte, 400), 100, 4, 25, 4, 128) {
		t.Error("ReadPitched should fail when a row is not published")
	}
}

func TestReadFuncVisitsEveryRow(t *testing.T) {
	fb := newTestBuffer(t, 8192, fastConfig())
	src := pattern(8*128, 5)
	fb.Prepare()
	fb.Write(src)

	calls := 0
	ok := fb.ReadFunc(8, 25, 4, 128, func(row []byte) bool {
		if len(row) != 100 {
			t.Errorf("Row %d: expected 100 bytes, got %d", calls, len(row))
		}
		if !bytes.Equal(row, src[calls*128:calls*128+100]) {
			t.Errorf("Row %d content mismatch", calls)
		}
		calls++
		return true
	})

	if !ok {
		t.Error("ReadFunc should succeed when every row succeeds")
	}
	if calls != 8 {
		t.Errorf("Expected 8 callbacks, got %d", calls)
	}
}

func TestReadFuncAbortsOnFailure(t *testing.T) {
	fb := newTestBuffer(t, 8192, fastConfig())
	fb.Prepare()
	fb.Write(pattern(8*128, 5))

	const failAt = 3
	calls := 0
	ok := fb.ReadFunc(8, 25, 4, 128, func(row []byte) bool {
		calls++
		return calls != failAt
	})

	if ok {
		t.Error("ReadFunc should report the callback failure")
	}
	if calls > failAt+1 || calls < failAt {
		t.Errorf("Expected the read to stop after callback %d, got %d calls", failAt, calls)
	}
}

func TestReadFuncAbortsOnStall(t *testing.T) {
	cfg := fastConfig()
	cfg.SpinLimit = 1
	cfg.SleepLimit = 0
	fb := newTestBuffer(t, 8192, cfg)

	fb.Prepare()
	fb.SetWritePtr(128 + 100) // two rows published

	calls := 0
	ok := fb.ReadFunc(8, 25, 4, 128, func(row []byte) bool {
		calls++
		return true
	})

	if ok {
		t.Error("ReadFunc should fail when a row wait stalls")
	}
	if calls != 2 {
		t.Errorf("Expected 2 callbacks before the stall, got %d", calls)
	}
}

func TestReadFuncRejectsNilCallback(t *testing.T) {
	fb := newTestBuffer(t, 4096, fastConfig())
	if fb.ReadFunc(1, 1, 1, 1, nil) {
		t.Error("ReadFunc should reject a nil callback")
	}
}
