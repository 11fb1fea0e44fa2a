package concat

import (
	"github.com/wippyai/concat-runtime/errors"
)

// Shape is the ordered operand-kind pattern of a combinator. It is written
// with 's' for a literal string and 'v' for a variable, so "svs" is
// literal, dynamic, literal.
type Shape struct {
	pattern string
	kinds   []OperandKind
}

// ParseShape parses a pattern of 's' and 'v' letters. A single-operand
// pattern is valid but can only be used in append mode.
func ParseShape(pattern string) (Shape, error) {
	if len(pattern) == 0 {
		return Shape{}, errors.InvalidShape(pattern, "empty pattern")
	}
	if len(pattern) > MaxArity {
		return Shape{}, errors.InvalidShape(pattern, "too many operands")
	}
	kinds := make([]OperandKind, len(pattern))
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case 's':
			kinds[i] = Literal
		case 'v':
			kinds[i] = Dynamic
		default:
			return Shape{}, errors.InvalidShape(pattern, "unknown operand kind '"+string(pattern[i])+"'")
		}
	}
	return Shape{pattern: pattern, kinds: kinds}, nil
}

// MustParseShape is like ParseShape but panics on error.
func MustParseShape(pattern string) Shape {
	s, err := ParseShape(pattern)
	if err != nil {
		panic(err)
	}
	return s
}

// ShapeOf returns the shape of an operand list.
func ShapeOf(ops []Operand) Shape {
	b := make([]byte, len(ops))
	kinds := make([]OperandKind, len(ops))
	for i, op := range ops {
		b[i] = op.kind.Letter()
		kinds[i] = op.kind
	}
	return Shape{pattern: string(b), kinds: kinds}
}

// Pattern returns the 's'/'v' pattern.
func (s Shape) Pattern() string {
	return s.pattern
}

// Name returns the combinator name for the shape.
func (s Shape) Name() string {
	return "concat_" + s.pattern
}

// Arity returns the number of explicit operands.
func (s Shape) Arity() int {
	return len(s.kinds)
}

// Kind returns the kind of operand i.
func (s Shape) Kind(i int) OperandKind {
	return s.kinds[i]
}

// Literals returns the number of literal positions.
func (s Shape) Literals() int {
	n := 0
	for _, k := range s.kinds {
		if k == Literal {
			n++
		}
	}
	return n
}

// FreshCapable reports whether the shape has enough operands for fresh mode.
func (s Shape) FreshCapable() bool {
	return len(s.kinds) >= MinArity
}

// Matches reports whether ops has exactly this shape.
func (s Shape) Matches(ops []Operand) bool {
	if len(ops) != len(s.kinds) {
		return false
	}
	for i, op := range ops {
		if op.kind != s.kinds[i] {
			return false
		}
	}
	return true
}
