package concat

import (
	"strconv"

	concatrt "github.com/wippyai/concat-runtime"
	"github.com/wippyai/concat-runtime/errors"
)

// source is a resolved operand ready for copying.
type source struct {
	lit    []byte
	view   TextView
	prefix bool // the destination itself in append mode
	dyn    bool
}

func (s *source) length(prefixLen uint32) uint32 {
	switch {
	case s.prefix:
		return prefixLen
	case s.dyn:
		return s.view.Len
	default:
		return uint32(len(s.lit))
	}
}

// copyOperands writes every source at its planned offset and terminates the
// result with NUL. Each region of buf is written by exactly one source.
func copyOperands(mem concatrt.Memory, buf Buffer, plan Plan, srcs []source) error {
	for i := range srcs {
		s := &srcs[i]
		at := buf.Ptr + plan.Offsets[i]

		var data []byte
		switch {
		case s.prefix:
			if plan.Base == 0 {
				continue
			}
			d, err := mem.Read(buf.Ptr, plan.Base)
			if err != nil {
				return copyError(i, err)
			}
			data = d
		case s.dyn:
			if s.view.Len == 0 {
				continue
			}
			d, err := mem.Read(s.view.Ptr, s.view.Len)
			if err != nil {
				return copyError(i, err)
			}
			data = d
		default:
			data = s.lit
		}

		if len(data) == 0 {
			continue
		}
		if err := mem.Write(at, data); err != nil {
			return copyError(i, err)
		}
	}

	if err := mem.WriteU8(buf.Ptr+plan.Total, 0); err != nil {
		return errors.New(errors.PhaseCopy, errors.KindOutOfBounds).
			Detail("terminate at %d", buf.Ptr+plan.Total).
			Cause(err).
			Build()
	}
	return nil
}

func copyError(i int, err error) error {
	return errors.New(errors.PhaseCopy, errors.KindOutOfBounds).
		Path("operand", strconv.Itoa(i)).
		Cause(err).
		Build()
}
