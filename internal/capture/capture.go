// Package capture exposes an ITCH 5.0 capture file as a single contiguous
// read-only byte range (component A).
package capture

import (
	"fmt"

	"golang.org/x/exp/mmap"

	"itchbook/internal/errs"
)

// Source is a memory-mapped, read-only view of a capture file. The range is
// immutable for the lifetime of the parse; Close unmaps it.
type Source struct {
	r    *mmap.ReaderAt
	data []byte
}

// Open memory-maps path read-only. Fails with *errs.IoError if the file
// cannot be opened or mapped, or is shorter than 2 bytes (the minimum for a
// single length-prefixed record).
func Open(path string) (*Source, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, &errs.IoError{Op: "open " + path, Err: err}
	}
	n := r.Len()
	if n < 2 {
		r.Close()
		return nil, &errs.IoError{Op: "open " + path, Err: fmt.Errorf("capture file too short: %d bytes", n)}
	}
	// x/exp/mmap intentionally does not expose the mapped region as a raw
	// slice (the concrete mapping differs per platform), only ReadAt/At.
	// One bulk read materializes it as a []byte here; every frame and
	// message decode downstream slices this buffer without copying.
	buf := make([]byte, n)
	if _, err := r.ReadAt(buf, 0); err != nil {
		r.Close()
		return nil, &errs.IoError{Op: "read " + path, Err: err}
	}
	return &Source{r: r, data: buf}, nil
}

// Bytes returns the file contents that Open copied out of the mapping in
// one bulk read. The slice is a heap buffer and stays valid after Close.
func (s *Source) Bytes() []byte { return s.data }

// Len reports the size of the mapped file in bytes.
func (s *Source) Len() int { return len(s.data) }

// Close unmaps the file. Safe to call once; idempotent calls are not
// required by the caller but also do not panic here.
func (s *Source) Close() error { return s.r.Close() }
