package concat

import (
	"strconv"
	"strings"

	"go.bytecodealliance.org/wit"
)

// Param is one parameter of a combinator's call-site signature.
type Param struct {
	Type wit.Type
	Name string
}

var valueBorrow = func() *wit.TypeDef {
	name := "borrow<value>"
	return &wit.TypeDef{Name: &name, Kind: &wit.Borrow{}}
}()

// Params describes the call-site signature as WIT types: the destination
// handle, the self-append flag, then one parameter per operand.
func (c *Combinator) Params() []Param {
	params := make([]Param, 0, c.shape.Arity()+2)
	params = append(params,
		Param{Name: "dst", Type: wit.U32{}},
		Param{Name: "self-append", Type: wit.Bool{}},
	)
	for i := 0; i < c.shape.Arity(); i++ {
		p := Param{Name: "op" + strconv.Itoa(i)}
		if c.shape.Kind(i) == Literal {
			p.Type = wit.String{}
		} else {
			p.Type = valueBorrow
		}
		params = append(params, p)
	}
	return params
}

// TypeName renders a WIT type the way signatures print it.
func TypeName(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U32:
		return "u32"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		return "typedef"
	default:
		return "unknown"
	}
}

// Signature renders the combinator as a WIT function declaration.
func (c *Combinator) Signature() string {
	var b strings.Builder
	b.WriteString(strings.ReplaceAll(c.Name(), "_", "-"))
	b.WriteString(": func(")
	for i, p := range c.Params() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(TypeName(p.Type))
	}
	b.WriteString(")")
	return b.String()
}
