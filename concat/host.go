package concat

import (
	concatrt "github.com/wippyai/concat-runtime"
)

// Ref is an opaque handle to a host dynamic value.
type Ref uint32

// Kind is the representation kind of a dynamic value as far as
// concatenation cares.
type Kind uint8

const (
	KindOther Kind = iota
	KindText
)

func (k Kind) String() string {
	if k == KindText {
		return "text"
	}
	return "other"
}

// TextView is the location of text bytes in host memory.
// The bytes at Ptr+Len are not part of the view.
type TextView struct {
	Ptr uint32
	Len uint32
}

// OwnedText is a coerced text copy. Whoever holds it must either Dispose
// it or hand it to AdoptText.
type OwnedText struct {
	Ptr uint32
	Len uint32
	Cap uint32
}

// Buffer is a destination buffer obtained from the host allocator.
type Buffer struct {
	Ptr uint32
	Cap uint32
}

// Host is the capability set a dynamic value system must provide.
type Host interface {
	// Kind reports whether ref already holds text.
	Kind(ref Ref) Kind

	// TextView returns the text of ref. Only valid when Kind is KindText.
	TextView(ref Ref) (TextView, error)

	// CoerceToText renders a non-text value using the host's conversion
	// rules. Never called on a value that is already text.
	CoerceToText(ref Ref) (OwnedText, error)

	// Dispose releases a copy produced by CoerceToText.
	Dispose(t OwnedText)

	// AdoptText replaces dst's representation with t, taking ownership.
	AdoptText(dst Ref, t OwnedText) error

	// AllocBuffer allocates a fresh buffer of size bytes.
	AllocBuffer(size uint32) (Buffer, error)

	// GrowBuffer resizes dst's text buffer to size bytes, preserving its
	// current content. The buffer may move.
	GrowBuffer(dst Ref, size uint32) (Buffer, error)

	// FinalizeAsText commits buf as dst's text of the given length.
	FinalizeAsText(dst Ref, buf Buffer, length uint32) error

	// Memory gives byte access to text and buffers.
	Memory() concatrt.Memory
}
