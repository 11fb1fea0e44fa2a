package concat

import (
	"github.com/wippyai/concat-runtime/errors"
)

// acquireFresh allocates a buffer for the whole result. The destination's
// prior content is neither read nor preserved.
func acquireFresh(h Host, plan Plan) (Buffer, error) {
	size := plan.BufferSize()
	buf, err := h.AllocBuffer(size)
	if err != nil {
		return Buffer{}, errors.New(errors.PhaseAcquire, errors.KindAllocation).
			Detail("allocate %d bytes", size).
			Cause(err).
			Build()
	}
	return buf, nil
}

// prepareAppend makes the destination text, coercing it through a guard
// whose copy the destination adopts, and returns the prefix length.
func prepareAppend(h Host, dst Ref, guards *GuardSet) (uint32, error) {
	if h.Kind(dst) != KindText {
		idx, err := guards.Acquire(h, dst)
		if err != nil {
			return 0, errors.New(errors.PhaseCoerce, errors.KindCoercion).
				Path("destination").
				Cause(err).
				Build()
		}
		if err := guards.At(idx).Adopt(h, dst); err != nil {
			return 0, errors.Wrap(errors.PhaseAcquire, errors.KindInvalidInput, err, "adopt coerced destination")
		}
	}

	view, err := h.TextView(dst)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseAcquire, errors.KindNotText, err, "read destination")
	}
	return view.Len, nil
}

// acquireAppend grows the destination buffer to hold the whole result.
// Pointers into the old buffer are invalid afterwards.
func acquireAppend(h Host, dst Ref, plan Plan) (Buffer, error) {
	size := plan.BufferSize()
	buf, err := h.GrowBuffer(dst, size)
	if err != nil {
		return Buffer{}, errors.New(errors.PhaseAcquire, errors.KindAllocation).
			Detail("grow destination to %d bytes", size).
			Cause(err).
			Build()
	}
	return buf, nil
}
