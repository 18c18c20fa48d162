// If you are AI: This file contains unit tests for the writer copy engine and its strategies.

package framebuffer

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"framerelay/internal/core/cpuinfo"
)

// recorder collects every publication a strategy makes.
type recorder struct {
	values []int
}

// SetWritePtr records a publication.
func (r *recorder) SetWritePtr(size int) {
	r.values = append(r.values, size)
}

// hostStrategies returns every strategy the running CPU supports.
func hostStrategies(t *testing.T) []Strategy {
	t.Helper()
	features := cpuinfo.Host().Features()
	strategies := []Strategy{Generic()}
	for _, name := range []string{StrategySSE41, StrategyAVX2} {
		s, err := StrategyByName(name, features)
		if err != nil {
			t.Logf("Skipping %s: %v", name, err)
			continue
		}
		strategies = append(strategies, s)
	}
	return strategies
}

// alignedBytes returns a size-byte slice starting on a 64-byte boundary.
func alignedBytes(size int) []byte {
	raw := make([]byte, size+64)
	off := 0
	for !aligned(raw[off:], 64) {
		off++
	}
	return raw[off : off+size : off+size]
}

func TestStrategyRoundTrip(t *testing.T) {
	for _, s := range hostStrategies(t) {
		for _, size := range []int{1, 63, 64, 127, 128, 192, 1000, 4096, 4096*3 + 17} {
			src := alignedBytes(size)
			copy(src, pattern(size, 0x5A))
			dst := alignedBytes(size)

			rec := &recorder{}
			s.Copy(dst, src, 4096, rec)

			if !bytes.Equal(dst, src) {
				t.Fatalf("%s: size %d copied different bytes", s.Name(), size)
			}
			if rec.values[len(rec.values)-1] != size {
				t.Errorf("%s: final publication %d, expected %d", s.Name(), rec.values[len(rec.values)-1], size)
			}
		}
	}
}

func TestStrategyMisalignedFallsBack(t *testing.T) {
	for _, s := range hostStrategies(t) {
		src := alignedBytes(10000 + 1)[1:]
		copy(src, pattern(len(src), 0x11))
		dst := alignedBytes(10000 + 3)[3:]

		rec := &recorder{}
		s.Copy(dst[:len(src)], src, 4096, rec)

		if !bytes.Equal(dst[:len(src)], src) {
			t.Errorf("%s: misaligned copy produced different bytes", s.Name())
		}
	}
}

func TestStrategyChunkedVisibility(t *testing.T) {
	const chunk = 4096
	size := chunk*2 + chunk/2 // 2.5 chunks

	for _, s := range hostStrategies(t) {
		src := alignedBytes(size)
		copy(src, pattern(size, 0x33))
		dst := alignedBytes(size)

		rec := &recorder{}
		s.Copy(dst, src, chunk, rec)

		intermediate := 0
		prev := -1
		for _, v := range rec.values {
			if v <= prev {
				t.Errorf("%s: publications not increasing: %v", s.Name(), rec.values)
			}
			if v < size {
				intermediate++
			}
			prev = v
		}
		if intermediate < 2 {
			t.Errorf("%s: expected at least 2 intermediate publications, got %v", s.Name(), rec.values)
		}
		want := []int{chunk, 2 * chunk, size}
		if len(rec.values) != len(want) {
			t.Fatalf("%s: expected publications %v, got %v", s.Name(), want, rec.values)
		}
		for i := range want {
			if rec.values[i] != want[i] {
				t.Errorf("%s: publication %d = %d, expected %d", s.Name(), i, rec.values[i], want[i])
			}
		}
	}
}

func TestStrategyEmptyPayloadPublishesZero(t *testing.T) {
	rec := &recorder{}
	Generic().Copy(nil, nil, 4096, rec)

	if len(rec.values) != 1 || rec.values[0] != 0 {
		t.Errorf("Expected a single zero publication, got %v", rec.values)
	}
}

func TestSelectStrategyPreference(t *testing.T) {
	generic := SelectStrategy(cpuinfo.Features{Arch: "amd64", SSE2: true})
	if generic.Name() != StrategyGeneric {
		t.Errorf("Expected generic without SSE4.1, got %s", generic.Name())
	}

	host := cpuinfo.Host().Features()
	selected := SelectStrategy(host)
	switch {
	case host.Arch == "amd64" && host.AVX2:
		if selected.Name() != StrategyAVX2 {
			t.Errorf("Expected avx2 on AVX2 host, got %s", selected.Name())
		}
	case host.Arch == "amd64" && host.SSE41:
		if selected.Name() != StrategySSE41 {
			t.Errorf("Expected sse41 on SSE4.1 host, got %s", selected.Name())
		}
	default:
		if selected.Name() != StrategyGeneric {
			t.Errorf("Expected generic, got %s", selected.Name())
		}
	}
}

func TestStrategyByName(t *testing.T) {
	f := cpuinfo.Features{Arch: "amd64"}

	if s, err := StrategyByName("", f); err != nil || s.Name() != StrategyGeneric {
		t.Errorf("Empty name should select generic here, got %v, %v", s, err)
	}
	if _, err := StrategyByName(StrategyAVX2, f); err == nil {
		t.Error("avx2 without AVX2 support should be rejected")
	}
	if _, err := StrategyByName("mmx", f); err == nil {
		t.Error("Unknown strategy name should be rejected")
	}
}

func TestWriteTruncatesToCapacity(t *testing.T) {
	fb := newTestBuffer(t, 1000, fastConfig())
	src := pattern(1500, 2)

	fb.Prepare()
	if !fb.Write(src) {
		t.Fatal("Write failed")
	}
	if fb.Peek() != 1000 {
		t.Errorf("Expected 1000 published, got %d", fb.Peek())
	}
	if !bytes.Equal(fb.Buffer(), src[:1000]) {
		t.Error("Truncated payload mismatch")
	}
}

func TestConcreteScenario(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpinLimit = 1
	cfg.SleepLimit = 0
	fb := newTestBuffer(t, 1048576, cfg)

	src := pattern(700000, 0x42)
	fb.Prepare()
	fb.Write(src)

	if fb.Wait(800000) {
		t.Error("Wait(800000) should fail with the minimum budget")
	}
	if !fb.Wait(700000) {
		t.Error("Wait(700000) should succeed")
	}
	dst := make([]byte, 700000)
	if !fb.ReadLinear(dst, 700000) {
		t.Fatal("ReadLinear(700000) failed")
	}
	if !bytes.Equal(dst, src) {
		t.Error("ReadLinear returned different bytes")
	}
}

func TestConcurrentWriteRead(t *testing.T) {
	for _, s := range hostStrategies(t) {
		cfg := fastConfig()
		cfg.SleepLimit = 1000000
		cfg.SleepInterval = time.Microsecond
		fb := newTestBuffer(t, 4<<20, cfg, WithStrategy(s))

		for frame := 0; frame < 4; frame++ {
			size := (3 << 20) + frame*4099
			src := pattern(size, byte(frame))
			prepared := make(chan struct{})

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				fb.Prepare()
				close(prepared)
				fb.Write(src)
			}()

			<-prepared
			dst := make([]byte, size)
			ok := fb.ReadLinear(dst, size)
			wg.Wait()

			if !ok {
				t.Fatalf("%s frame %d: ReadLinear stalled", s.Name(), frame)
			}
			if !bytes.Equal(dst, src) {
				t.Fatalf("%s frame %d: concurrent read returned different bytes", s.Name(), frame)
			}
		}
	}
}

func TestMonotonicPublication(t *testing.T) {
	fb := newTestBuffer(t, 8<<20, fastConfig())
	size := 8 << 20
	src := pattern(size, 7)

	fb.Prepare()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fb.Write(src)
	}()

	prev := 0
	for {
		v := fb.Peek()
		if v < prev {
			t.Fatalf("Write position decreased from %d to %d", prev, v)
		}
		prev = v
		if v == size {
			break
		}
	}
	<-done
}
