// If you are AI: This file implements lock-free transfer counters and their snapshot form.
// Counters are updated on the hot path with atomics and read by the status endpoints.

package session

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap/zapcore"
)

// Stats counts frames moved through one side of a session.
// Lock expectations: Safe for one updater and any number of readers.
type Stats struct {
	frames     atomic.Uint64
	bytes      atomic.Uint64
	dropped    atomic.Uint64
	stalls     atomic.Uint64
	skipped    atomic.Uint64
	mismatches atomic.Uint64
	lastSerial atomic.Uint64
	lastCopyNs atomic.Int64
	started    time.Time
}

// NewStats creates zeroed counters starting now.
func NewStats() *Stats {
	return &Stats{started: time.Now()}
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Frames     uint64        `json:"frames"`
	Bytes      uint64        `json:"bytes"`
	Dropped    uint64        `json:"dropped"`
	Stalls     uint64        `json:"stalls"`
	Skipped    uint64        `json:"skipped"`
	Mismatches uint64        `json:"mismatches"`
	LastSerial uint64        `json:"last_serial"`
	LastCopy   time.Duration `json:"last_copy_ns"`
	Uptime     time.Duration `json:"uptime_ns"`
}

// recordFrame counts one completed frame of size bytes.
func (s *Stats) recordFrame(serial uint64, size int, copyTime time.Duration) {
	s.frames.Add(1)
	s.bytes.Add(uint64(size))
	s.lastSerial.Store(serial)
	s.lastCopyNs.Store(int64(copyTime))
}

// recordDrop counts a frame the host discarded.
func (s *Stats) recordDrop() {
	s.dropped.Add(1)
}

// recordStall counts a frame abandoned because its bytes never arrived.
func (s *Stats) recordStall() {
	s.stalls.Add(1)
}

// recordSkip counts serials the client never saw.
func (s *Stats) recordSkip(n uint64) {
	s.skipped.Add(n)
}

// RecordMismatch counts a frame whose contents failed verification.
func (s *Stats) RecordMismatch() {
	s.mismatches.Add(1)
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Frames:     s.frames.Load(),
		Bytes:      s.bytes.Load(),
		Dropped:    s.dropped.Load(),
		Stalls:     s.stalls.Load(),
		Skipped:    s.skipped.Load(),
		Mismatches: s.mismatches.Load(),
		LastSerial: s.lastSerial.Load(),
		LastCopy:   time.Duration(s.lastCopyNs.Load()),
		Uptime:     time.Since(s.started),
	}
}

// FPS returns the average frame rate over the uptime.
func (s Snapshot) FPS() float64 {
	if s.Uptime <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Uptime.Seconds()
}

// Throughput returns the average byte rate over the uptime, human formatted.
func (s Snapshot) Throughput() string {
	if s.Uptime <= 0 {
		return "0 B/s"
	}
	return humanize.IBytes(uint64(float64(s.Bytes)/s.Uptime.Seconds())) + "/s"
}

// String returns a one-line summary.
func (s Snapshot) String() string {
	return fmt.Sprintf("%s frames, %s moved (%s), %d dropped, %d stalled, %.1f fps",
		humanize.Comma(int64(s.Frames)), humanize.IBytes(s.Bytes), s.Throughput(),
		s.Dropped, s.Stalls, s.FPS())
}

// MarshalLogObject implements zapcore.ObjectMarshaler so snapshots log as nested objects.
func (s Snapshot) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint64("frames", s.Frames)
	enc.AddString("bytes", humanize.IBytes(s.Bytes))
	enc.AddUint64("dropped", s.Dropped)
	enc.AddUint64("stalls", s.Stalls)
	enc.AddUint64("skipped", s.Skipped)
	enc.AddUint64("mismatches", s.Mismatches)
	enc.AddUint64("last_serial", s.LastSerial)
	enc.AddDuration("last_copy", s.LastCopy)
	enc.AddFloat64("fps", s.FPS())
	return nil
}
