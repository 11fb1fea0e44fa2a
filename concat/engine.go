// Package concat implements fixed-shape text concatenation over a host
// dynamic value system.
//
// Every combinator runs the same steps: resolve each dynamic operand to text
// under a Guard, plan offsets, acquire the destination buffer (fresh or grown
// in place), copy operands, NUL-terminate, finalize the destination, then
// release the guards. Guards are released on every exit path.
package concat

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/concat-runtime/errors"
)

const (
	// MinArity is the fewest logical operands of a concatenation. In append
	// mode the destination's prior content counts as one.
	MinArity = 2

	// MaxArity is the most explicit operands a combinator accepts.
	MaxArity = 15
)

// Config holds configuration for engine creation
type Config struct {
	// Logger receives debug traces. Nil means the package Logger().
	Logger *zap.Logger

	// MaxLength caps the result length in bytes.
	// 0 means DefaultMaxLength.
	MaxLength uint32
}

// Engine runs concatenations. It holds no per-call state and is safe for
// concurrent use on disjoint destinations.
type Engine struct {
	logger    *zap.Logger
	maxLength uint32
}

// New creates an engine with default configuration.
func New() *Engine {
	return NewWithConfig(nil)
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(cfg *Config) *Engine {
	e := &Engine{
		logger:    Logger(),
		maxLength: DefaultMaxLength,
	}
	if cfg != nil {
		if cfg.Logger != nil {
			e.logger = cfg.Logger
		}
		if cfg.MaxLength > 0 && cfg.MaxLength < DefaultMaxLength {
			e.maxLength = cfg.MaxLength
		}
	}
	return e
}

var defaultEngine = New()

// Concat runs a concatenation on the default engine.
func Concat(h Host, dst Ref, selfAppend bool, ops ...Operand) error {
	return defaultEngine.Concat(h, dst, selfAppend, ops...)
}

// Fresh replaces dst with the concatenation of ops.
func (e *Engine) Fresh(h Host, dst Ref, ops ...Operand) error {
	return e.Concat(h, dst, false, ops...)
}

// Append appends the concatenation of ops to dst's current content.
func (e *Engine) Append(h Host, dst Ref, ops ...Operand) error {
	return e.Concat(h, dst, true, ops...)
}

// Concat writes the ordered concatenation of ops into dst. With selfAppend
// the destination's current content, coerced to text if needed, is the
// prefix and its buffer is grown; otherwise a fresh buffer is allocated.
// On error the destination's state is unspecified.
func (e *Engine) Concat(h Host, dst Ref, selfAppend bool, ops ...Operand) (err error) {
	if h == nil {
		return errors.NilPointer(errors.PhasePlan, "host")
	}
	if err := checkArity(len(ops), selfAppend); err != nil {
		return err
	}

	guards := NewGuardSet()
	defer guards.ReleaseAndRecycle(h)

	srcs := make([]source, len(ops))
	for i, op := range ops {
		if op.kind == Literal {
			srcs[i].lit = op.lit
			continue
		}
		if selfAppend && op.ref == dst {
			srcs[i].prefix = true
			continue
		}
		idx, err := guards.Acquire(h, op.ref)
		if err != nil {
			return operandError(i, err)
		}
		srcs[i].dyn = true
		srcs[i].view = guards.At(idx).View()
	}

	var base uint32
	if selfAppend {
		if base, err = prepareAppend(h, dst, guards); err != nil {
			return err
		}
	}

	lengths := make([]uint32, len(srcs))
	for i := range srcs {
		lengths[i] = srcs[i].length(base)
	}
	plan, err := PlanOffsets(base, lengths, e.maxLength)
	if err != nil {
		return err
	}

	var buf Buffer
	if selfAppend {
		buf, err = acquireAppend(h, dst, plan)
	} else {
		buf, err = acquireFresh(h, plan)
	}
	if err != nil {
		return err
	}

	if ce := e.logger.Check(zap.DebugLevel, "concat"); ce != nil {
		ce.Write(
			zap.Uint32("dst", uint32(dst)),
			zap.Bool("append", selfAppend),
			zap.Int("operands", len(ops)),
			zap.Int("coerced", guards.Owned()),
			zap.Uint32("base", plan.Base),
			zap.Uint32("total", plan.Total),
			zap.Uint32("buffer", buf.Ptr),
		)
	}

	if err := copyOperands(h.Memory(), buf, plan, srcs); err != nil {
		return err
	}

	if err := h.FinalizeAsText(dst, buf, plan.Total); err != nil {
		return errors.Wrap(errors.PhaseFinalize, errors.KindInvalidInput, err, "finalize destination")
	}
	return nil
}

func checkArity(n int, selfAppend bool) error {
	logical := n
	if selfAppend {
		logical++
	}
	if n == 0 || logical < MinArity {
		return errors.New(errors.PhasePlan, errors.KindInvalidInput).
			Detail("concatenation needs at least %d operands, got %d", MinArity, logical).
			Value(n).
			Build()
	}
	if n > MaxArity {
		return errors.New(errors.PhasePlan, errors.KindInvalidInput).
			Detail("concatenation takes at most %d operands, got %d", MaxArity, n).
			Value(n).
			Build()
	}
	return nil
}

func operandError(i int, err error) error {
	return errors.New(errors.PhaseCoerce, errors.KindCoercion).
		Path("operand", strconv.Itoa(i)).
		Detail("resolve text").
		Cause(err).
		Build()
}
