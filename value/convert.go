package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/concat-runtime/errors"
)

// doublePrecision is the number of significant digits used for doubles.
const doublePrecision = 14

// FormatLong renders an integer as decimal.
func FormatLong(v int64) string {
	return strconv.FormatInt(v, 10)
}

// FormatDouble renders a double with up to 14 significant digits.
// Exponent forms always carry a fractional part: 1.0E+25.
func FormatDouble(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NAN"
	case math.IsInf(v, 1):
		return "INF"
	case math.IsInf(v, -1):
		return "-INF"
	}

	s := strconv.FormatFloat(v, 'G', doublePrecision, 64)
	mant, exp, ok := strings.Cut(s, "E")
	if !ok {
		return s
	}
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	// exponent digits without zero padding: E-05 becomes E-5
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "E" + sign + digits
}

// FormatBool renders true as "1" and false as the empty string.
func FormatBool(v bool) string {
	if v {
		return "1"
	}
	return ""
}

// render returns the text form of a non-string slot.
func render(s *slot) (string, error) {
	switch s.kind {
	case KindNull:
		return "", nil
	case KindBool:
		return FormatBool(s.b), nil
	case KindLong:
		return FormatLong(s.l), nil
	case KindDouble:
		return FormatDouble(s.d), nil
	case KindArray:
		return "Array", nil
	case KindObject:
		if st, ok := s.obj.(fmt.Stringer); ok {
			return st.String(), nil
		}
		return "", errors.Coercion(nil, fmt.Sprintf("object of type %T", s.obj), nil)
	default:
		return "", errors.Coercion(nil, s.kind.String(), nil)
	}
}
