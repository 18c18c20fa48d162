// If you are AI: This file provides region stubs for platforms without support.

//go:build !linux

package shm

import (
	"os"
	"path/filepath"
)

// Create reports that shared regions are unsupported here.
func Create(name string, g Geometry) (*Region, error) {
	return nil, ErrUnsupported
}

// Open reports that shared regions are unsupported here.
func Open(name string) (*Region, error) {
	return nil, ErrUnsupported
}

// Path returns the file path a region name would use.
func Path(name string) string {
	return filepath.Join(os.TempDir(), "framerelay_"+name)
}

// unmap is never reached without a mapping.
func unmap(mem []byte) error {
	return ErrUnsupported
}
