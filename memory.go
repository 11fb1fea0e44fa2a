package concatrt

// PageSize is the size of one linear memory page in bytes.
const PageSize = 65536

// Memory represents host linear memory holding text buffers
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	WriteU8(offset uint32, value uint8) error
}

// MemorySizer provides the current size of linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Grower is a linear memory that can be extended by whole pages.
// Grow returns the previous size in pages and false when the limit is hit.
type Grower interface {
	Memory
	MemorySizer
	Grow(deltaPages uint32) (previousPages uint32, ok bool)
}

// Allocator allocates memory in linear memory
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// Reallocator resizes a block in place or relocates it, preserving
// the first min(oldSize, newSize) bytes. After a successful call the
// old pointer must not be used.
type Reallocator interface {
	Allocator
	Realloc(ptr, oldSize, align, newSize uint32) (uint32, error)
}
