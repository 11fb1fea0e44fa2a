package memory

import (
	"sort"

	"go.uber.org/zap"

	concatrt "github.com/wippyai/concat-runtime"
	"github.com/wippyai/concat-runtime/errors"
)

const (
	// heapBase keeps address 0 free so it can mean "no buffer".
	heapBase = 16
	granule  = 8
)

type span struct {
	ptr  uint32
	size uint32
}

// HeapStats reports allocator activity.
type HeapStats struct {
	Live         int
	LiveBytes    uint64
	Allocs       uint64
	Frees        uint64
	Reallocs     uint64
	InPlace      uint64
	InvalidFrees uint64
	Top          uint32
}

// Heap is a first-fit free-list allocator over a growable linear memory.
// Blocks are rounded to 8 bytes. Adjacent free blocks are coalesced and the
// bump pointer retreats when the last block is freed.
//
// Heap is not safe for concurrent use.
type Heap struct {
	mem    concatrt.Grower
	logger *zap.Logger
	live   map[uint32]uint32
	free   []span
	stats  HeapStats
	top    uint32
}

// NewHeap creates a heap that carves blocks out of mem.
func NewHeap(mem concatrt.Grower) *Heap {
	return &Heap{
		mem:    mem,
		logger: zap.NewNop(),
		live:   make(map[uint32]uint32),
		top:    heapBase,
	}
}

// WithLogger sets the logger used for allocator diagnostics.
func (h *Heap) WithLogger(l *zap.Logger) *Heap {
	if l != nil {
		h.logger = l
	}
	return h
}

// Memory returns the memory the heap allocates from.
func (h *Heap) Memory() concatrt.Grower {
	return h.mem
}

func roundUp(n uint32) uint64 {
	if n == 0 {
		n = 1
	}
	return (uint64(n) + granule - 1) &^ (granule - 1)
}

func checkAlign(align uint32) error {
	if align == 0 || align&(align-1) != 0 || align > granule {
		return errors.New(errors.PhaseMemory, errors.KindInvalidInput).
			Detail("unsupported alignment %d", align).
			Build()
	}
	return nil
}

// ensure grows memory until end fits.
func (h *Heap) ensure(end uint64) bool {
	size := uint64(h.mem.Size())
	if end <= size {
		return true
	}
	pages := (end - size + concatrt.PageSize - 1) / concatrt.PageSize
	if pages > MaxPages {
		return false
	}
	_, ok := h.mem.Grow(uint32(pages))
	return ok
}

// Alloc allocates size bytes. Align must be a power of two no larger than 8.
func (h *Heap) Alloc(size, align uint32) (uint32, error) {
	if err := checkAlign(align); err != nil {
		return 0, err
	}
	n := roundUp(size)
	if n > MaxPages*concatrt.PageSize {
		return 0, errors.AllocationFailed(errors.PhaseMemory, size, align)
	}
	ptr, ok := h.take(uint32(n))
	if !ok {
		return 0, errors.AllocationFailed(errors.PhaseMemory, size, align)
	}
	h.live[ptr] = uint32(n)
	h.stats.Allocs++
	h.stats.LiveBytes += n
	return ptr, nil
}

func (h *Heap) take(n uint32) (uint32, bool) {
	for i := range h.free {
		s := &h.free[i]
		if s.size < n {
			continue
		}
		ptr := s.ptr
		if s.size == n {
			h.free = append(h.free[:i], h.free[i+1:]...)
		} else {
			s.ptr += n
			s.size -= n
		}
		return ptr, true
	}

	end := uint64(h.top) + uint64(n)
	if !h.ensure(end) {
		return 0, false
	}
	ptr := h.top
	h.top = uint32(end)
	return ptr, true
}

// Free releases a block. Unknown pointers are counted and ignored.
func (h *Heap) Free(ptr, size, align uint32) {
	n, ok := h.live[ptr]
	if !ok {
		h.stats.InvalidFrees++
		h.logger.Warn("free of unknown block",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size))
		return
	}
	delete(h.live, ptr)
	h.stats.Frees++
	h.stats.LiveBytes -= uint64(n)
	h.release(span{ptr: ptr, size: n})
}

func (h *Heap) release(s span) {
	i := sort.Search(len(h.free), func(i int) bool { return h.free[i].ptr > s.ptr })
	h.free = append(h.free, span{})
	copy(h.free[i+1:], h.free[i:])
	h.free[i] = s

	if i+1 < len(h.free) && h.free[i].ptr+h.free[i].size == h.free[i+1].ptr {
		h.free[i].size += h.free[i+1].size
		h.free = append(h.free[:i+1], h.free[i+2:]...)
	}
	if i > 0 && h.free[i-1].ptr+h.free[i-1].size == h.free[i].ptr {
		h.free[i-1].size += h.free[i].size
		h.free = append(h.free[:i], h.free[i+1:]...)
		i--
	}

	if last := h.free[len(h.free)-1]; last.ptr+last.size == h.top {
		h.top = last.ptr
		h.free = h.free[:len(h.free)-1]
	}
}

// Realloc resizes a block, growing it in place when it sits at the top of
// the heap or is followed by enough free space, and relocating otherwise.
// A zero ptr allocates; a zero newSize frees and returns 0.
func (h *Heap) Realloc(ptr, oldSize, align, newSize uint32) (uint32, error) {
	if ptr == 0 {
		return h.Alloc(newSize, align)
	}
	if err := checkAlign(align); err != nil {
		return 0, err
	}
	n, ok := h.live[ptr]
	if !ok {
		return 0, errors.New(errors.PhaseMemory, errors.KindInvalidInput).
			Detail("realloc of unknown block %d", ptr).
			Value(ptr).
			Build()
	}
	if newSize == 0 {
		h.Free(ptr, oldSize, align)
		return 0, nil
	}

	h.stats.Reallocs++
	want64 := roundUp(newSize)
	if want64 > MaxPages*concatrt.PageSize {
		return 0, errors.AllocationFailed(errors.PhaseMemory, newSize, align)
	}
	want := uint32(want64)

	switch {
	case want <= n:
		if rest := n - want; rest > 0 {
			h.live[ptr] = want
			h.stats.LiveBytes -= uint64(rest)
			h.release(span{ptr: ptr + want, size: rest})
		}
		h.stats.InPlace++
		return ptr, nil

	case ptr+n == h.top:
		end := uint64(ptr) + uint64(want)
		if h.ensure(end) {
			h.top = uint32(end)
			h.live[ptr] = want
			h.stats.LiveBytes += uint64(want - n)
			h.stats.InPlace++
			return ptr, nil
		}

	default:
		if h.extendInto(ptr, n, want) {
			h.stats.InPlace++
			return ptr, nil
		}
	}

	newPtr, err := h.Alloc(newSize, align)
	if err != nil {
		return 0, err
	}
	keep := oldSize
	if keep > n {
		keep = n
	}
	if keep > newSize {
		keep = newSize
	}
	if keep > 0 {
		data, err := h.mem.Read(ptr, keep)
		if err != nil {
			return 0, err
		}
		if err := h.mem.Write(newPtr, data); err != nil {
			return 0, err
		}
	}
	h.Free(ptr, oldSize, align)
	h.logger.Debug("realloc relocated block",
		zap.Uint32("from", ptr),
		zap.Uint32("to", newPtr),
		zap.Uint32("size", newSize))
	return newPtr, nil
}

// extendInto grows a block into the free span that directly follows it.
func (h *Heap) extendInto(ptr, n, want uint32) bool {
	next := ptr + n
	i := sort.Search(len(h.free), func(i int) bool { return h.free[i].ptr >= next })
	if i == len(h.free) || h.free[i].ptr != next {
		return false
	}
	extra := want - n
	s := &h.free[i]
	if s.size < extra {
		return false
	}
	if s.size == extra {
		h.free = append(h.free[:i], h.free[i+1:]...)
	} else {
		s.ptr += extra
		s.size -= extra
	}
	h.live[ptr] = want
	h.stats.LiveBytes += uint64(extra)
	return true
}

// BlockSize returns the rounded size of a live block.
func (h *Heap) BlockSize(ptr uint32) (uint32, bool) {
	n, ok := h.live[ptr]
	return n, ok
}

// Stats returns a snapshot of allocator counters.
func (h *Heap) Stats() HeapStats {
	s := h.stats
	s.Live = len(h.live)
	s.Top = h.top
	return s
}

var _ concatrt.Reallocator = (*Heap)(nil)
