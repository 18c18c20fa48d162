// If you are AI: This file contains unit tests for session layout arithmetic.

package session

import (
	"errors"
	"testing"
	"unsafe"

	"framerelay/internal/core/framebuffer"
)

func TestLayoutValidate(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
		valid  bool
	}{
		{"ok", Layout{QueueCapacity: 4, SlotCapacity: 1 << 20}, true},
		{"one entry", Layout{QueueCapacity: 1, SlotCapacity: 64}, true},
		{"zero queue", Layout{QueueCapacity: 0, SlotCapacity: 64}, false},
		{"odd queue", Layout{QueueCapacity: 6, SlotCapacity: 64}, false},
		{"zero slot", Layout{QueueCapacity: 4, SlotCapacity: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.Validate()
			if tt.valid && err != nil {
				t.Errorf("Expected valid, got %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidLayout) {
				t.Errorf("Expected ErrInvalidLayout, got %v", err)
			}
		})
	}
}

func TestLayoutRegionsPageAligned(t *testing.T) {
	l := Layout{QueueCapacity: 8, SlotCapacity: 10000}
	mem := alignedBytes(l.Size())
	base := uintptr(unsafe.Pointer(&mem[0]))
	if base%pageSize != 0 {
		t.Fatalf("alignedBytes not page aligned: %x", base)
	}

	prevEnd := len(l.queueRegion(mem))
	for i := 0; i < l.Slots(); i++ {
		r := l.slotRegion(mem, i)
		off := int(uintptr(unsafe.Pointer(&r[0])) - base)
		if off%pageSize != 0 {
			t.Errorf("Slot %d at offset %d not page aligned", i, off)
		}
		if off < prevEnd {
			t.Errorf("Slot %d overlaps previous region", i)
		}
		if len(r) != framebuffer.RegionSize(l.SlotCapacity) {
			t.Errorf("Slot %d region len %d", i, len(r))
		}
		prevEnd = off + len(r)
	}
	if prevEnd > l.Size() {
		t.Errorf("Regions end at %d beyond size %d", prevEnd, l.Size())
	}
}

func TestLayoutGeometryRoundTrip(t *testing.T) {
	l := Layout{QueueCapacity: 4, SlotCapacity: 1 << 20}
	g := l.Geometry()
	if g.SlotCount != 5 || g.DataSize != uint64(l.Size()) {
		t.Errorf("Unexpected geometry %+v", g)
	}

	back, err := LayoutFromGeometry(g)
	if err != nil || back != l {
		t.Errorf("Expected %+v, got %+v (%v)", l, back, err)
	}

	g.SlotCount = 3
	if _, err := LayoutFromGeometry(g); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("Expected ErrInvalidLayout for slot mismatch, got %v", err)
	}
}
