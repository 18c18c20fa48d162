// If you are AI: This file defines the copy Strategy abstraction and the shared chunked copy loop.
// A strategy is selected once from the capability detector and held by each buffer;
// there is no process-wide dispatch variable.

package framebuffer

import (
	"fmt"
	"unsafe"

	"framerelay/internal/core/cpuinfo"
)

// Strategy names accepted by StrategyByName.
const (
	StrategyAuto    = "auto"
	StrategyAVX2    = "avx2"
	StrategySSE41   = "sse41"
	StrategyGeneric = "generic"
)

// blockSize is the copy granularity shared by every strategy.
// Chunk sizes are powers of two >= blockSize, so chunk boundaries are block boundaries.
const blockSize = 64

// Publisher receives cumulative progress from a strategy.
type Publisher interface {
	SetWritePtr(size int)
}

// Strategy copies a frame payload into the data area, publishing progress.
// Implementations must publish exact cumulative counts of bytes already copied
// and visible, at every multiple of chunk, and the final length at the end.
type Strategy interface {
	Name() string
	Copy(dst, src []byte, chunk int, p Publisher)
}

// kernelFunc copies len(src) bytes, a non-zero multiple of blockSize, into dst.
// Any non-temporal stores must be fenced before it returns.
type kernelFunc func(dst, src []byte)

// chunkedStrategy runs a block kernel inside the chunk publication schedule.
type chunkedStrategy struct {
	name   string
	align  uintptr    // required alignment of dst and src, 0 for none
	fence  func()     // issued once before the first store, may be nil
	kernel kernelFunc // bulk copy of whole blocks
}

// Name returns the strategy identifier.
func (s *chunkedStrategy) Name() string {
	return s.name
}

// Copy copies src into dst, publishing at chunk boundaries and at the end.
// Misaligned buffers fall back to the generic kernel for this call only.
func (s *chunkedStrategy) Copy(dst, src []byte, chunk int, p Publisher) {
	size := len(src)
	if size == 0 {
		p.SetWritePtr(0)
		return
	}

	kernel := s.kernel
	if s.align != 0 && !(aligned(dst, s.align) && aligned(src, s.align)) {
		kernel = genericKernel
	} else if s.fence != nil {
		s.fence()
	}

	wp := 0
	bulk := size &^ (blockSize - 1)
	for wp < bulk {
		n := chunk - wp&(chunk-1)
		if n > bulk-wp {
			n = bulk - wp
		}
		kernel(dst[wp:wp+n], src[wp:wp+n])
		wp += n
		if wp&(chunk-1) == 0 {
			p.SetWritePtr(wp)
		}
	}

	if wp < size {
		copy(dst[wp:size], src[wp:size])
	}
	p.SetWritePtr(size)
}

// genericKernel is the portable block copy.
func genericKernel(dst, src []byte) {
	copy(dst, src)
}

// aligned reports whether b starts on an align-byte boundary.
func aligned(b []byte, align uintptr) bool {
	return uintptr(unsafe.Pointer(&b[0]))&(align-1) == 0
}

// Generic returns the portable strategy available on every platform.
func Generic() Strategy {
	return genericStrategy
}

var genericStrategy = &chunkedStrategy{
	name:   StrategyGeneric,
	kernel: genericKernel,
}

// SelectStrategy returns the widest strategy the features support.
// Preference: avx2, then sse41, then generic.
func SelectStrategy(f cpuinfo.Features) Strategy {
	if s := vectorStrategy(f); s != nil {
		return s
	}
	return genericStrategy
}

// StrategyByName resolves a configured strategy name against the features.
// "auto" or an empty name behaves like SelectStrategy.
func StrategyByName(name string, f cpuinfo.Features) (Strategy, error) {
	switch name {
	case "", StrategyAuto:
		return SelectStrategy(f), nil
	case StrategyGeneric:
		return genericStrategy, nil
	case StrategyAVX2, StrategySSE41:
		s := namedVectorStrategy(name, f)
		if s == nil {
			return nil, fmt.Errorf("strategy %s not supported by %s", name, f)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}
