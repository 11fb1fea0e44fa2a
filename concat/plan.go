package concat

import (
	"math"
	"strconv"

	"github.com/wippyai/concat-runtime/errors"
)

// DefaultMaxLength is the largest result length; one byte is kept for NUL.
const DefaultMaxLength = math.MaxUint32 - 1

// Plan holds the insertion offset of every operand and the result length.
type Plan struct {
	Offsets []uint32
	Base    uint32
	Total   uint32
}

// PlanOffsets lays operands out left to right starting at base. Offsets are
// strictly non-decreasing with no gaps or overlaps; Total is the running
// offset after the last operand.
func PlanOffsets(base uint32, lengths []uint32, maxLength uint32) (Plan, error) {
	if maxLength == 0 || maxLength > DefaultMaxLength {
		maxLength = DefaultMaxLength
	}

	if base > maxLength {
		return Plan{}, errors.Overflow(errors.PhasePlan, []string{"prefix"}, base,
			"max length "+strconv.FormatUint(uint64(maxLength), 10))
	}

	p := Plan{
		Base:    base,
		Offsets: make([]uint32, len(lengths)),
	}
	running := uint64(base)
	for i, n := range lengths {
		p.Offsets[i] = uint32(running)
		running += uint64(n)
		if running > uint64(maxLength) {
			return Plan{}, errors.Overflow(errors.PhasePlan,
				[]string{"operand", strconv.Itoa(i)}, running, "max length "+strconv.FormatUint(uint64(maxLength), 10))
		}
	}
	p.Total = uint32(running)
	return p, nil
}

// BufferSize is the buffer size the plan needs, including the NUL byte.
func (p Plan) BufferSize() uint32 {
	return p.Total + 1
}
