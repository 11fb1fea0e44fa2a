// Package value is a reference dynamic value system for the concat
// combinators. Values live in handle-addressed slots; text payloads live in
// linear memory and are always NUL-terminated.
//
// Store is not safe for concurrent use. Callers serialize access the same
// way the combinators require exclusive access to their operands.
package value

// Kind is the representation kind of a value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindLong
	KindDouble
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindLong:
		return "long"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}
