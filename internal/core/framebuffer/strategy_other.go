// If you are AI: This file provides the strategy hooks for platforms without vector kernels.

//go:build !amd64

package framebuffer

import (
	"framerelay/internal/core/cpuinfo"
)

// vectorStrategy reports that no vector strategy exists on this platform.
func vectorStrategy(f cpuinfo.Features) Strategy {
	return nil
}

// namedVectorStrategy reports that no vector strategy exists on this platform.
func namedVectorStrategy(name string, f cpuinfo.Features) Strategy {
	return nil
}
