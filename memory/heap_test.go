package memory

import (
	"testing"

	concatrt "github.com/wippyai/concat-runtime"
)

func newTestHeap(pages, maxPages uint32) (*Heap, *Linear) {
	mem := NewLinear(pages, maxPages)
	return NewHeap(mem), mem
}

func TestHeap_AllocNonZeroAndAligned(t *testing.T) {
	h, _ := newTestHeap(1, 1)

	seen := make(map[uint32]bool)
	for _, size := range []uint32{0, 1, 7, 8, 9, 100} {
		ptr, err := h.Alloc(size, 1)
		if err != nil {
			t.Fatalf("Alloc(%d): %v", size, err)
		}
		if ptr == 0 {
			t.Errorf("Alloc(%d) returned null address", size)
		}
		if ptr%granule != 0 {
			t.Errorf("Alloc(%d) = %d, not %d-aligned", size, ptr, granule)
		}
		if seen[ptr] {
			t.Errorf("Alloc(%d) = %d, already live", size, ptr)
		}
		seen[ptr] = true
	}

	st := h.Stats()
	if st.Live != 6 || st.Allocs != 6 {
		t.Errorf("stats = %+v, want 6 live allocations", st)
	}
}

func TestHeap_InvalidAlign(t *testing.T) {
	h, _ := newTestHeap(1, 1)
	for _, align := range []uint32{0, 3, 16} {
		if _, err := h.Alloc(4, align); err == nil {
			t.Errorf("Alloc with align %d should fail", align)
		}
	}
}

func TestHeap_FreeReuseAndCoalesce(t *testing.T) {
	h, _ := newTestHeap(1, 1)

	a, _ := h.Alloc(16, 1)
	b, _ := h.Alloc(16, 1)
	c, _ := h.Alloc(16, 1)
	_, _ = h.Alloc(16, 1) // keeps c off the top

	h.Free(a, 16, 1)
	h.Free(b, 16, 1)
	if len(h.free) != 1 || h.free[0].ptr != a || h.free[0].size != 32 {
		t.Fatalf("free list = %+v, want one coalesced span at %d", h.free, a)
	}

	h.Free(c, 16, 1)
	if len(h.free) != 1 || h.free[0].size != 48 {
		t.Fatalf("free list = %+v, want one 48-byte span", h.free)
	}

	p, err := h.Alloc(40, 1)
	if err != nil {
		t.Fatal(err)
	}
	if p != a {
		t.Errorf("first fit returned %d, want %d", p, a)
	}
}

func TestHeap_TopRetreats(t *testing.T) {
	h, _ := newTestHeap(1, 1)
	start := h.Stats().Top

	a, _ := h.Alloc(64, 1)
	b, _ := h.Alloc(64, 1)
	h.Free(b, 64, 1)
	h.Free(a, 64, 1)

	st := h.Stats()
	if st.Top != start {
		t.Errorf("Top = %d, want %d", st.Top, start)
	}
	if len(h.free) != 0 {
		t.Errorf("free list = %+v, want empty", h.free)
	}
	if st.Live != 0 || st.LiveBytes != 0 {
		t.Errorf("stats = %+v, want nothing live", st)
	}
}

func TestHeap_DoubleFreeCounted(t *testing.T) {
	h, _ := newTestHeap(1, 1)
	p, _ := h.Alloc(8, 1)
	h.Free(p, 8, 1)
	h.Free(p, 8, 1)
	h.Free(12345, 8, 1)

	st := h.Stats()
	if st.Frees != 1 {
		t.Errorf("Frees = %d, want 1", st.Frees)
	}
	if st.InvalidFrees != 2 {
		t.Errorf("InvalidFrees = %d, want 2", st.InvalidFrees)
	}
}

func TestHeap_GrowsMemory(t *testing.T) {
	h, mem := newTestHeap(1, 4)

	p, err := h.Alloc(2*concatrt.PageSize, 1)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if mem.Pages() < 3 {
		t.Errorf("Pages = %d, want >= 3", mem.Pages())
	}
	if err := mem.Write(p+2*concatrt.PageSize-1, []byte{1}); err != nil {
		t.Errorf("last byte not addressable: %v", err)
	}

	if _, err := h.Alloc(4*concatrt.PageSize, 1); err == nil {
		t.Error("Alloc beyond page limit should fail")
	}
}

func TestHeap_Realloc(t *testing.T) {
	t.Run("grow at top in place", func(t *testing.T) {
		h, mem := newTestHeap(1, 2)
		p, _ := h.Alloc(4, 1)
		_ = mem.Write(p, []byte("abcd"))

		q, err := h.Realloc(p, 4, 1, 100)
		if err != nil {
			t.Fatal(err)
		}
		if q != p {
			t.Errorf("Realloc moved top block from %d to %d", p, q)
		}
		if got, _ := mem.Read(q, 4); string(got) != "abcd" {
			t.Errorf("content = %q", got)
		}
		if h.Stats().InPlace != 1 {
			t.Errorf("InPlace = %d, want 1", h.Stats().InPlace)
		}
	})

	t.Run("grow into following free span", func(t *testing.T) {
		h, mem := newTestHeap(1, 1)
		p, _ := h.Alloc(8, 1)
		next, _ := h.Alloc(32, 1)
		_, _ = h.Alloc(8, 1)
		h.Free(next, 32, 1)
		_ = mem.Write(p, []byte("12345678"))

		q, err := h.Realloc(p, 8, 1, 24)
		if err != nil {
			t.Fatal(err)
		}
		if q != p {
			t.Errorf("Realloc moved block from %d to %d", p, q)
		}
		if n, _ := h.BlockSize(q); n != 24 {
			t.Errorf("block size = %d, want 24", n)
		}
		if len(h.free) != 1 || h.free[0].ptr != p+24 || h.free[0].size != 16 {
			t.Errorf("free list = %+v", h.free)
		}
	})

	t.Run("relocate preserves prefix", func(t *testing.T) {
		h, mem := newTestHeap(1, 2)
		p, _ := h.Alloc(8, 1)
		_, _ = h.Alloc(8, 1) // pins p below the top
		_ = mem.Write(p, []byte("prefix!!"))

		q, err := h.Realloc(p, 8, 1, 64)
		if err != nil {
			t.Fatal(err)
		}
		if q == p {
			t.Fatal("expected relocation")
		}
		if got, _ := mem.Read(q, 8); string(got) != "prefix!!" {
			t.Errorf("content = %q", got)
		}
		if _, live := h.BlockSize(p); live {
			t.Error("old block still live after relocation")
		}
	})

	t.Run("shrink splits", func(t *testing.T) {
		h, _ := newTestHeap(1, 1)
		p, _ := h.Alloc(64, 1)
		_, _ = h.Alloc(8, 1)

		q, err := h.Realloc(p, 64, 1, 10)
		if err != nil {
			t.Fatal(err)
		}
		if q != p {
			t.Errorf("shrink moved block")
		}
		if n, _ := h.BlockSize(p); n != 16 {
			t.Errorf("block size = %d, want 16", n)
		}
	})

	t.Run("null pointer allocates", func(t *testing.T) {
		h, _ := newTestHeap(1, 1)
		p, err := h.Realloc(0, 0, 1, 5)
		if err != nil || p == 0 {
			t.Fatalf("Realloc(0) = %d, %v", p, err)
		}
	})

	t.Run("zero size frees", func(t *testing.T) {
		h, _ := newTestHeap(1, 1)
		p, _ := h.Alloc(5, 1)
		q, err := h.Realloc(p, 5, 1, 0)
		if err != nil || q != 0 {
			t.Fatalf("Realloc(_, 0) = %d, %v", q, err)
		}
		if h.Stats().Live != 0 {
			t.Error("block still live")
		}
	})

	t.Run("unknown block", func(t *testing.T) {
		h, _ := newTestHeap(1, 1)
		if _, err := h.Realloc(4096, 8, 1, 16); err == nil {
			t.Error("expected error for unknown block")
		}
	})
}

func BenchmarkHeap_AllocFree(b *testing.B) {
	h, _ := newTestHeap(1, 16)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p, err := h.Alloc(64, 1)
		if err != nil {
			b.Fatal(err)
		}
		h.Free(p, 64, 1)
	}
}
