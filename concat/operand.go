package concat

import "unsafe"

// OperandKind distinguishes literal operands from dynamic ones.
type OperandKind uint8

const (
	Literal OperandKind = iota
	Dynamic
)

// Letter returns the pattern letter for the kind: 's' for a literal
// string, 'v' for a variable.
func (k OperandKind) Letter() byte {
	if k == Literal {
		return 's'
	}
	return 'v'
}

func (k OperandKind) String() string {
	if k == Literal {
		return "literal"
	}
	return "dynamic"
}

// Operand is one input of a concatenation.
type Operand struct {
	lit  []byte
	ref  Ref
	kind OperandKind
}

// Lit returns a literal operand. The string is not copied.
func Lit(s string) Operand {
	return Operand{kind: Literal, lit: unsafe.Slice(unsafe.StringData(s), len(s))}
}

// LitBytes returns a literal operand over b. b must not be modified
// while the operand is in use.
func LitBytes(b []byte) Operand {
	return Operand{kind: Literal, lit: b}
}

// Dyn returns a dynamic operand referring to a host value.
func Dyn(ref Ref) Operand {
	return Operand{kind: Dynamic, ref: ref}
}

// Kind returns the operand kind.
func (o Operand) Kind() OperandKind {
	return o.kind
}

// Ref returns the host value of a dynamic operand.
func (o Operand) Ref() Ref {
	return o.ref
}

// Bytes returns the bytes of a literal operand.
func (o Operand) Bytes() []byte {
	return o.lit
}
