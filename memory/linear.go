// Package memory provides linear memory backends and allocators for text buffers.
package memory

import (
	concatrt "github.com/wippyai/concat-runtime"
	"github.com/wippyai/concat-runtime/errors"
)

// MaxPages is the largest page count whose byte size still fits in uint32.
const MaxPages = 65535

// Linear is a growable linear memory backed by a Go byte slice.
type Linear struct {
	data     []byte
	maxPages uint32
}

// NewLinear creates a memory of the given initial pages that may grow to
// maxPages. A maxPages of 0 means MaxPages.
func NewLinear(pages, maxPages uint32) *Linear {
	if maxPages == 0 || maxPages > MaxPages {
		maxPages = MaxPages
	}
	if pages > maxPages {
		pages = maxPages
	}
	return &Linear{
		data:     make([]byte, int(pages)*concatrt.PageSize),
		maxPages: maxPages,
	}
}

func (m *Linear) bounds(offset, length uint32) error {
	if uint64(offset)+uint64(length) > uint64(len(m.data)) {
		return errors.OutOfBounds(errors.PhaseMemory, offset, length, uint32(len(m.data)))
	}
	return nil
}

// Read returns a view of length bytes at offset.
// The view is invalidated by Grow.
func (m *Linear) Read(offset uint32, length uint32) ([]byte, error) {
	if err := m.bounds(offset, length); err != nil {
		return nil, err
	}
	return m.data[offset : offset+length : offset+length], nil
}

// Write copies data into memory at offset.
func (m *Linear) Write(offset uint32, data []byte) error {
	if err := m.bounds(offset, uint32(len(data))); err != nil {
		return err
	}
	copy(m.data[offset:], data)
	return nil
}

// ReadU8 reads a single byte.
func (m *Linear) ReadU8(offset uint32) (uint8, error) {
	if err := m.bounds(offset, 1); err != nil {
		return 0, err
	}
	return m.data[offset], nil
}

// WriteU8 writes a single byte.
func (m *Linear) WriteU8(offset uint32, value uint8) error {
	if err := m.bounds(offset, 1); err != nil {
		return err
	}
	m.data[offset] = value
	return nil
}

// Size returns the memory size in bytes.
func (m *Linear) Size() uint32 {
	return uint32(len(m.data))
}

// Pages returns the memory size in pages.
func (m *Linear) Pages() uint32 {
	return uint32(len(m.data) / concatrt.PageSize)
}

// Grow extends memory by deltaPages, zero filled.
func (m *Linear) Grow(deltaPages uint32) (uint32, bool) {
	prev := m.Pages()
	if uint64(prev)+uint64(deltaPages) > uint64(m.maxPages) {
		return prev, false
	}
	if deltaPages == 0 {
		return prev, true
	}
	grown := make([]byte, int(prev+deltaPages)*concatrt.PageSize)
	copy(grown, m.data)
	m.data = grown
	return prev, true
}

var _ concatrt.Grower = (*Linear)(nil)
