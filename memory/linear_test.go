package memory

import (
	"bytes"
	"testing"

	concatrt "github.com/wippyai/concat-runtime"
	"github.com/wippyai/concat-runtime/errors"
)

func TestLinear_ReadWrite(t *testing.T) {
	m := NewLinear(1, 4)

	if err := m.Write(100, []byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := m.Read(100, 5)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}

	if err := m.WriteU8(105, 0); err != nil {
		t.Fatalf("WriteU8: %v", err)
	}
	b, err := m.ReadU8(104)
	if err != nil {
		t.Fatalf("ReadU8: %v", err)
	}
	if b != 'o' {
		t.Errorf("ReadU8 = %q, want 'o'", b)
	}
}

func TestLinear_Bounds(t *testing.T) {
	m := NewLinear(1, 1)
	size := m.Size()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"read past end", func() error { _, err := m.Read(size-2, 4); return err }},
		{"write past end", func() error { return m.Write(size-1, []byte("ab")) }},
		{"read u8 at size", func() error { _, err := m.ReadU8(size); return err }},
		{"write u8 at size", func() error { return m.WriteU8(size, 1) }},
		{"offset overflow", func() error { _, err := m.Read(0xFFFFFFFF, 2); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			if err == nil {
				t.Fatal("expected error")
			}
			e, ok := err.(*errors.Error)
			if !ok || e.Kind != errors.KindOutOfBounds {
				t.Errorf("unexpected error %v", err)
			}
		})
	}

	if _, err := m.Read(size, 0); err != nil {
		t.Errorf("zero-length read at end should succeed: %v", err)
	}
}

func TestLinear_Grow(t *testing.T) {
	m := NewLinear(1, 3)
	if err := m.Write(10, []byte("keep")); err != nil {
		t.Fatal(err)
	}

	prev, ok := m.Grow(2)
	if !ok || prev != 1 {
		t.Fatalf("Grow(2) = %d, %v; want 1, true", prev, ok)
	}
	if m.Size() != 3*concatrt.PageSize {
		t.Errorf("Size = %d, want %d", m.Size(), 3*concatrt.PageSize)
	}
	got, _ := m.Read(10, 4)
	if !bytes.Equal(got, []byte("keep")) {
		t.Errorf("content lost across grow: %q", got)
	}

	if _, ok := m.Grow(1); ok {
		t.Error("Grow past maxPages should fail")
	}
	if m.Pages() != 3 {
		t.Errorf("Pages = %d after failed grow, want 3", m.Pages())
	}
}

func TestLinear_DefaultLimit(t *testing.T) {
	m := NewLinear(0, 0)
	if m.Size() != 0 {
		t.Errorf("Size = %d, want 0", m.Size())
	}
	if m.maxPages != MaxPages {
		t.Errorf("maxPages = %d, want %d", m.maxPages, MaxPages)
	}
}
