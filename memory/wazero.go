package memory

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	concatrt "github.com/wippyai/concat-runtime"
	"github.com/wippyai/concat-runtime/errors"
)

// memoryModule is a core module with a single exported memory:
//
//	(module (memory (export "memory") 1))
var memoryModule = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: min 1, no max
	0x07, 0x0a, 0x01, // export section, one entry
	0x06, 'm', 'e', 'm', 'o', 'r', 'y',
	0x02, 0x00, // memory index 0
}

// InstantiateWazero instantiates a memory-only module in rt and grows its
// memory to pages. The returned module owns the memory; close it to release.
func InstantiateWazero(ctx context.Context, rt wazero.Runtime, pages uint32) (*Wazero, api.Module, error) {
	mod, err := rt.InstantiateWithConfig(ctx, memoryModule, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, nil, errors.Instantiation(err)
	}
	mem := mod.Memory()
	if mem == nil {
		_ = mod.Close(ctx)
		return nil, nil, errors.NotFound(errors.PhaseLoad, "memory export", "memory")
	}
	if pages > 1 {
		if _, ok := mem.Grow(pages - 1); !ok {
			_ = mod.Close(ctx)
			return nil, nil, errors.New(errors.PhaseLoad, errors.KindAllocation).
				Detail("grow memory to %d pages", pages).
				Build()
		}
	}
	return WrapMemory(mem), mod, nil
}

// WrapMemory wraps a wazero api.Memory.
func WrapMemory(mem api.Memory) *Wazero {
	if mem == nil {
		return nil
	}
	return &Wazero{Mem: mem}
}

// Wazero adapts wazero api.Memory to concatrt.Grower.
type Wazero struct {
	Mem api.Memory
}

// Read reads bytes from memory. The slice aliases guest memory.
func (m *Wazero) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseMemory, offset, length, m.Mem.Size())
	}
	return data, nil
}

// Write writes bytes to memory.
func (m *Wazero) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseMemory, offset, uint32(len(data)), m.Mem.Size())
	}
	return nil
}

// ReadU8 reads an unsigned 8-bit value.
func (m *Wazero) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.Mem.ReadByte(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseMemory, offset, 1, m.Mem.Size())
	}
	return v, nil
}

// WriteU8 writes an unsigned 8-bit value.
func (m *Wazero) WriteU8(offset uint32, value uint8) error {
	if !m.Mem.WriteByte(offset, value) {
		return errors.OutOfBounds(errors.PhaseMemory, offset, 1, m.Mem.Size())
	}
	return nil
}

// Size returns the memory size in bytes.
func (m *Wazero) Size() uint32 {
	return m.Mem.Size()
}

// Grow extends memory by deltaPages.
func (m *Wazero) Grow(deltaPages uint32) (uint32, bool) {
	return m.Mem.Grow(deltaPages)
}

var _ concatrt.Grower = (*Wazero)(nil)
