// If you are AI: This file implements the capability detector used to pick a copy strategy.
// Hardware is queried at most once per process; results are immutable afterwards.

package cpuinfo

import (
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sys/cpu"
)

// Features is the set of vector copy capabilities relevant to the frame transport.
type Features struct {
	Arch   string // GOARCH the process was built for
	SSE2   bool   // 128-bit integer vectors, non-temporal stores
	SSE41  bool   // 128-bit streaming loads (MOVNTDQA)
	AVX    bool   // 256-bit registers
	AVX2   bool   // 256-bit integer vectors, 256-bit streaming loads
	AVX512 bool   // 512-bit foundation (reported only, no copy path uses it)
}

// String returns a stable, space-separated list of the detected flags.
func (f Features) String() string {
	flags := f.Flags()
	if len(flags) == 0 {
		return f.Arch + ": none"
	}
	return f.Arch + ": " + strings.Join(flags, " ")
}

// Flags returns the names of the supported capabilities, narrowest first.
func (f Features) Flags() []string {
	flags := make([]string, 0, 5)
	if f.SSE2 {
		flags = append(flags, "sse2")
	}
	if f.SSE41 {
		flags = append(flags, "sse4.1")
	}
	if f.AVX {
		flags = append(flags, "avx")
	}
	if f.AVX2 {
		flags = append(flags, "avx2")
	}
	if f.AVX512 {
		flags = append(flags, "avx512f")
	}
	return flags
}

// Detector reports which vectorized copy instruction sets are usable.
// Implementations must return the same answer on every call.
type Detector interface {
	Features() Features
}

// hostDetector queries the running CPU through golang.org/x/sys/cpu.
type hostDetector struct {
	once     sync.Once
	features Features
}

var host = &hostDetector{}

// Host returns the process-wide detector for the running CPU.
// The underlying query happens once, on the first call to Features.
func Host() Detector {
	return host
}

// Features returns the cached host capabilities, querying them on first use.
func (d *hostDetector) Features() Features {
	d.once.Do(func() {
		d.features = Features{
			Arch:   runtime.GOARCH,
			SSE2:   cpu.X86.HasSSE2,
			SSE41:  cpu.X86.HasSSE41,
			AVX:    cpu.X86.HasAVX,
			AVX2:   cpu.X86.HasAVX2,
			AVX512: cpu.X86.HasAVX512F,
		}
	})
	return d.features
}

// Static is a Detector that always reports a fixed feature set.
// Used for tests and for forcing a strategy from configuration.
type Static Features

// Features returns the fixed feature set.
func (s Static) Features() Features {
	return Features(s)
}
