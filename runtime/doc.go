// Package runtime assembles the concat combinators over a wazero linear memory.
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	st := rt.Store()
//	n := st.NewLong(42)
//	dst := st.NewNull()
//
//	if err := rt.Concat("sv", dst, false, concat.Lit("n="), concat.Dyn(n)); err != nil {
//	    log.Fatal(err)
//	}
//	text, _ := st.Text(dst) // "n=42"
//
// # Allocators
//
// By default text buffers are carved from a memory-only module by a Go
// free-list heap. When Config.GuestModule is set, the guest's exported
// memory and cabi_realloc are used instead, so buffers are owned by the
// guest allocator.
//
// # Thread Safety
//
// Runtime is NOT thread-safe. Use it from a single goroutine or serialize
// access.
package runtime
