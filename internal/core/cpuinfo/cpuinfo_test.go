// If you are AI: This file contains unit tests for the capability detector.

package cpuinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestHostDetectorIsStable(t *testing.T) {
	first := Host().Features()
	second := Host().Features()

	if first != second {
		t.Errorf("Host features changed between calls: %+v vs %+v", first, second)
	}
	if first.Arch != runtime.GOARCH {
		t.Errorf("Expected arch %s, got %s", runtime.GOARCH, first.Arch)
	}
}

func TestHostDetectorImpliedFlags(t *testing.T) {
	f := Host().Features()

	// AVX2 hardware always carries SSE4.1
	if f.AVX2 && !f.SSE41 {
		t.Error("AVX2 reported without SSE4.1")
	}
	if runtime.GOARCH != "amd64" && runtime.GOARCH != "386" && (f.SSE2 || f.AVX2) {
		t.Errorf("x86 flags reported on %s", runtime.GOARCH)
	}
}

func TestStaticDetector(t *testing.T) {
	d := Static{Arch: "amd64", SSE2: true, SSE41: true}
	f := d.Features()

	if !f.SSE41 || f.AVX2 {
		t.Errorf("Unexpected features: %+v", f)
	}
}

func TestFeaturesString(t *testing.T) {
	f := Features{Arch: "amd64", SSE2: true, AVX2: true}
	s := f.String()

	if !strings.HasPrefix(s, "amd64: ") {
		t.Errorf("Expected arch prefix, got %q", s)
	}
	if !strings.Contains(s, "sse2") || !strings.Contains(s, "avx2") {
		t.Errorf("Expected sse2 and avx2 in %q", s)
	}
	if strings.Contains(s, "sse4.1") {
		t.Errorf("Unexpected sse4.1 in %q", s)
	}

	empty := Features{Arch: "arm64"}
	if empty.String() != "arm64: none" {
		t.Errorf("Expected 'arm64: none', got %q", empty.String())
	}
}
