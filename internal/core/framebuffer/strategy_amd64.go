// If you are AI: This file binds the amd64 vector copy kernels implemented in copy_amd64.s.
// Kernels use streaming loads; the avx2 kernel also uses non-temporal stores.

package framebuffer

import (
	"framerelay/internal/core/cpuinfo"
)

// storeFence orders all earlier stores before later ones (SFENCE).
//
//go:noescape
func storeFence()

// streamCopyAVX2 copies n bytes, a multiple of 64, with 256-bit non-temporal loads and stores.
// dst and src must be 32-byte aligned.
//
//go:noescape
func streamCopyAVX2(dst, src *byte, n uintptr)

// streamCopySSE41 copies n bytes, a multiple of 64, with 128-bit streaming loads.
// dst and src must be 16-byte aligned.
//
//go:noescape
func streamCopySSE41(dst, src *byte, n uintptr)

var avx2Strategy = &chunkedStrategy{
	name:  StrategyAVX2,
	align: 32,
	fence: storeFence,
	kernel: func(dst, src []byte) {
		streamCopyAVX2(&dst[0], &src[0], uintptr(len(src)))
	},
}

var sse41Strategy = &chunkedStrategy{
	name:  StrategySSE41,
	align: 16,
	fence: storeFence,
	kernel: func(dst, src []byte) {
		streamCopySSE41(&dst[0], &src[0], uintptr(len(src)))
	},
}

// vectorStrategy returns the widest vector strategy supported, or nil.
func vectorStrategy(f cpuinfo.Features) Strategy {
	switch {
	case f.AVX2:
		return avx2Strategy
	case f.SSE41:
		return sse41Strategy
	default:
		return nil
	}
}

// namedVectorStrategy returns the named vector strategy if the features support it.
func namedVectorStrategy(name string, f cpuinfo.Features) Strategy {
	switch {
	case name == StrategyAVX2 && f.AVX2:
		return avx2Strategy
	case name == StrategySSE41 && f.SSE41:
		return sse41Strategy
	default:
		return nil
	}
}
