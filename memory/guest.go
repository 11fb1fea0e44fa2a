package memory

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	concatrt "github.com/wippyai/concat-runtime"
	"github.com/wippyai/concat-runtime/errors"
)

// ReallocExport is the canonical ABI allocator export name.
const ReallocExport = "cabi_realloc"

// NewGuestAllocator looks up cabi_realloc in mod.
func NewGuestAllocator(ctx context.Context, mod api.Module) (*GuestAllocator, error) {
	fn := mod.ExportedFunction(ReallocExport)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "function export", ReallocExport)
	}
	return &GuestAllocator{Ctx: ctx, Fn: fn}, nil
}

// GuestAllocator adapts a guest cabi_realloc(old, oldSize, align, newSize)
// export to concatrt.Reallocator.
type GuestAllocator struct {
	Ctx context.Context
	Fn  api.Function
}

// Alloc allocates memory using cabi_realloc.
func (a *GuestAllocator) Alloc(size, align uint32) (uint32, error) {
	return a.Realloc(0, 0, align, size)
}

// Realloc resizes memory using cabi_realloc.
func (a *GuestAllocator) Realloc(ptr, oldSize, align, newSize uint32) (uint32, error) {
	results, err := a.Fn.Call(a.Ctx, uint64(ptr), uint64(oldSize), uint64(align), uint64(newSize))
	if err != nil {
		return 0, errors.New(errors.PhaseMemory, errors.KindAllocation).
			Detail("cabi_realloc(%d, %d, %d, %d)", ptr, oldSize, align, newSize).
			Cause(err).
			Build()
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("allocation returned no result")
	}
	out := uint32(results[0])
	if out == 0 && newSize > 0 {
		return 0, errors.AllocationFailed(errors.PhaseMemory, newSize, align)
	}
	return out, nil
}

// Free deallocates memory using cabi_realloc.
func (a *GuestAllocator) Free(ptr, size, align uint32) {
	_, _ = a.Fn.Call(a.Ctx, uint64(ptr), uint64(size), uint64(align), 0)
}

var _ concatrt.Reallocator = (*GuestAllocator)(nil)
