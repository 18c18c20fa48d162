// If you are AI: This file implements region creation and mapping on Linux.
// Regions are files under /dev/shm (or the temp dir) mapped MAP_SHARED.

package shm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// Create creates, sizes, maps and formats a new region for the host.
// Fails if a region with the same name already exists.
func Create(name string, g Geometry) (*Region, error) {
	path := Path(name)
	total := TotalSize(g.DataSize)

	// Create the file with exclusive access
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("create region file %s: %w", path, err)
	}

	// Ensure cleanup on error
	cleanup := func() {
		file.Close()
		os.Remove(path)
	}

	if err := file.Truncate(int64(total)); err != nil {
		cleanup()
		return nil, fmt.Errorf("resize region file: %w", err)
	}

	mem, err := mapFile(file, int(total))
	if err != nil {
		cleanup()
		return nil, err
	}

	session, err := uuid.NewRandom()
	if err != nil {
		unmap(mem)
		cleanup()
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	hdr := header(mem)
	format(hdr, g, total, session)

	return &Region{file: file, mem: mem, path: path, owner: true, hdr: hdr}, nil
}

// Open maps an existing region for the client and validates its header.
// Returns an error wrapping ErrNotReady while the host is still setting it up.
func Open(name string) (*Region, error) {
	path := Path(name)

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open region file %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat region file: %w", err)
	}
	size := info.Size()
	if size == 0 {
		// Created but not yet sized by the host
		file.Close()
		return nil, fmt.Errorf("open region %s: %w", path, ErrNotReady)
	}
	if size < DataOffset {
		file.Close()
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, size)
	}

	mem, err := mapFile(file, int(size))
	if err != nil {
		file.Close()
		return nil, err
	}

	hdr := header(mem)
	if err := validate(hdr, uint64(size)); err != nil {
		unmap(mem)
		file.Close()
		if errors.Is(err, ErrNotReady) {
			return nil, fmt.Errorf("open region %s: %w", path, err)
		}
		return nil, fmt.Errorf("invalid region header: %w", err)
	}

	atomic.StoreUint32(&hdr.clientPID, uint32(os.Getpid()))
	atomic.StoreUint32(&hdr.clientReady, 1)

	return &Region{file: file, mem: mem, path: path, hdr: hdr}, nil
}

// Path returns the file path used for a region name.
// /dev/shm is preferred; the temp directory is the fallback.
func Path(name string) string {
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		return filepath.Join("/dev/shm", "framerelay_"+name)
	}
	return filepath.Join(os.TempDir(), "framerelay_"+name)
}

// mapFile maps size bytes of file read-write and shared.
func mapFile(file *os.File, size int) ([]byte, error) {
	mem, err := unix.Mmap(int(file.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap region: %w", err)
	}
	return mem, nil
}

// unmap releases a mapping.
func unmap(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	if err := unix.Munmap(mem); err != nil {
		return fmt.Errorf("munmap region: %w", err)
	}
	return nil
}
