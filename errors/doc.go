// Package errors provides structured error types for the concat runtime.
//
// Errors are categorized by Phase (which step of a concatenation failed) and
// Kind (error category). The Error type carries the operand path, the
// offending value and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCoerce, errors.KindCoercion).
//		Path("operand", "2").
//		Detail("resolve text").
//		Cause(cause).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.AllocationFailed(errors.PhaseMemory, size, align)
//	err := errors.OutOfBounds(errors.PhaseMemory, offset, length, memSize)
//
// All errors implement the standard error interface and support errors.Is/As.
// Is matches on Phase and Kind.
package errors
