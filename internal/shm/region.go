// If you are AI: This file defines the shared region header and the Region handle.
// The host creates and formats a region; the client opens and validates it.
// The header is written once by the host; only the ready flags and PIDs change later.

package shm

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const (
	// Magic identifies a framerelay region.
	Magic = "FRMRLY\x00\x00"
	// Version is the current header layout version.
	Version = uint32(1)
	// HeaderSize is the size of the region header.
	HeaderSize = 128
	// DataOffset is where the data area begins, page aligned for vector copies.
	DataOffset = 4096
)

var (
	// ErrBadMagic is returned when a region does not start with Magic.
	ErrBadMagic = errors.New("region magic mismatch")
	// ErrVersionMismatch is returned when a region was created by an incompatible version.
	ErrVersionMismatch = errors.New("region version mismatch")
	// ErrTruncated is returned when the mapped size disagrees with the header.
	ErrTruncated = errors.New("region truncated")
	// ErrNotReady is returned while the host has not finished setting up the region.
	// It is transient; the caller may retry.
	ErrNotReady = errors.New("region not ready")
	// ErrUnsupported is returned on platforms without shared memory support.
	ErrUnsupported = errors.New("shared memory regions not supported on this platform")
)

// Geometry describes how the data area is divided. The shm package stores it
// for the client but does not interpret it beyond DataSize.
type Geometry struct {
	QueueCapacity uint32 // Descriptor queue slots
	SlotCount     uint32 // Number of frame buffers
	SlotCapacity  uint64 // Data bytes per frame buffer
	DataSize      uint64 // Total bytes of the data area
}

// Header is the layout at offset 0 of a region.
type Header struct {
	magic       [8]byte  // 0x00: Magic
	version     uint32   // 0x08: layout version
	flags       uint32   // 0x0C: reserved
	totalSize   uint64   // 0x10: mapped size in bytes
	dataSize    uint64   // 0x18: data area size
	slotCap     uint64   // 0x20: bytes per frame buffer
	queueCap    uint32   // 0x28: descriptor queue slots
	slotCount   uint32   // 0x2C: frame buffer count
	hostPID     uint32   // 0x30: creating process
	clientPID   uint32   // 0x34: attached client process
	hostReady   uint32   // 0x38: 0 -> 1 once the host marks the data area usable
	clientReady uint32   // 0x3C: 0 -> 1 once mapped by a client
	session     [16]byte // 0x40: session UUID
	_           [48]byte // 0x50-0x7F: reserved
}

// Region is a mapped shared memory region.
type Region struct {
	file  *os.File
	mem   []byte
	path  string
	owner bool
	hdr   *Header
}

// TotalSize returns the mapped size needed for a data area of dataSize bytes.
func TotalSize(dataSize uint64) uint64 {
	return DataOffset + dataSize
}

// header returns the header view of mem.
func header(mem []byte) *Header {
	return (*Header)(unsafe.Pointer(&mem[0]))
}

// format initializes a freshly created region's header.
func format(hdr *Header, g Geometry, total uint64, session uuid.UUID) {
	copy(hdr.magic[:], Magic)
	hdr.version = Version
	hdr.totalSize = total
	hdr.dataSize = g.DataSize
	hdr.slotCap = g.SlotCapacity
	hdr.queueCap = g.QueueCapacity
	hdr.slotCount = g.SlotCount
	hdr.session = session
	atomic.StoreUint32(&hdr.hostPID, uint32(os.Getpid()))
}

// validate checks a header against the mapped size.
// A header whose magic is still zero belongs to a region being created.
func validate(hdr *Header, mapped uint64) error {
	if hdr.magic == [8]byte{} {
		return ErrNotReady
	}
	if string(hdr.magic[:]) != Magic {
		return ErrBadMagic
	}
	if hdr.version != Version {
		return fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, hdr.version, Version)
	}
	if hdr.totalSize != mapped || TotalSize(hdr.dataSize) > mapped {
		return fmt.Errorf("%w: header says %d bytes, mapped %d", ErrTruncated, hdr.totalSize, mapped)
	}
	if atomic.LoadUint32(&hdr.hostReady) == 0 {
		return ErrNotReady
	}
	return nil
}

// Data returns the data area of the region.
func (r *Region) Data() []byte {
	return r.mem[DataOffset : DataOffset+r.hdr.dataSize : DataOffset+r.hdr.dataSize]
}

// Geometry returns the division of the data area recorded by the host.
func (r *Region) Geometry() Geometry {
	return Geometry{
		QueueCapacity: r.hdr.queueCap,
		SlotCount:     r.hdr.slotCount,
		SlotCapacity:  r.hdr.slotCap,
		DataSize:      r.hdr.dataSize,
	}
}

// Session returns the session identifier the host stamped on the region.
func (r *Region) Session() uuid.UUID {
	return uuid.UUID(r.hdr.session)
}

// Path returns the backing file path.
func (r *Region) Path() string {
	return r.path
}

// Owner reports whether this handle created the region.
func (r *Region) Owner() bool {
	return r.owner
}

// HostPID returns the PID of the creating process.
func (r *Region) HostPID() uint32 {
	return atomic.LoadUint32(&r.hdr.hostPID)
}

// ClientPID returns the PID of the last client to attach, 0 if none.
func (r *Region) ClientPID() uint32 {
	return atomic.LoadUint32(&r.hdr.clientPID)
}

// MarkReady publishes the data area to clients. The host calls it once the
// descriptor queue and frame buffers inside the data area are initialized.
func (r *Region) MarkReady() {
	atomic.StoreUint32(&r.hdr.hostReady, 1)
}

// HostReady reports whether the host has marked the region ready.
func (r *Region) HostReady() bool {
	return atomic.LoadUint32(&r.hdr.hostReady) != 0
}

// ClientReady reports whether a client has mapped the region.
func (r *Region) ClientReady() bool {
	return atomic.LoadUint32(&r.hdr.clientReady) != 0
}

// Close unmaps the region and closes its file. The owner also removes the file.
// All teardown errors are reported together.
func (r *Region) Close() error {
	if r.mem == nil {
		return nil
	}

	var err error
	if !r.owner {
		atomic.StoreUint32(&r.hdr.clientReady, 0)
	}
	err = multierr.Append(err, unmap(r.mem))
	r.mem = nil
	r.hdr = nil
	err = multierr.Append(err, r.file.Close())
	if r.owner {
		if rmErr := os.Remove(r.path); rmErr != nil && !os.IsNotExist(rmErr) {
			err = multierr.Append(err, rmErr)
		}
	}
	return err
}
