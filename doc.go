// Package concatrt provides the runtime support for fixed-shape string
// concatenation emitted by a compiler.
//
// When the compiler lowers an expression such as
//
//	$msg = "Hello, " . $name . "!";
//
// it does not emit a generic loop over operands. It picks a combinator whose
// shape matches the expression (literal, dynamic, literal) and calls it with
// the destination slot and the operands. This library implements every
// combinator with a single algorithm parameterized by that shape.
//
// # Architecture Overview
//
//	concatrt/            Root package with linear Memory and Allocator interfaces
//	├── concat/          Combinators: guards, planner, acquirer, copy engine, catalog
//	├── value/           Reference host: handle-addressed dynamic value store
//	├── memory/          Linear memory backends (Go slice, wazero) and heap allocator
//	├── runtime/         Assembled runtime over a wazero memory
//	├── errors/          Structured error types
//	└── cmd/concat/      Catalog listing and interactive evaluation tool
//
// # Quick Start
//
//	rt, err := runtime.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	st := rt.Store()
//	name, _ := st.NewString("World")
//	dst := st.NewNull()
//
//	err = rt.Concat("sv", dst, false, concat.Lit("Hello, "), concat.Dyn(name))
//	text, _ := st.Text(dst) // "Hello, World"
//
// # Modes
//
// Fresh mode allocates a new buffer of exactly the result length plus a NUL
// byte. Append mode treats the destination's current content as the prefix
// and grows its buffer in place, relocating if the allocator must.
//
// # Ownership
//
// Dynamic operands that are not text are coerced to a temporary copy that is
// released when the call returns, on every path. Literal and text operands are
// never copied or released by the combinators.
//
// # Thread Safety
//
// A combinator call must have exclusive access to its destination and
// operands for the duration of the call. Catalogs are safe for concurrent
// lookup once built.
package concatrt
