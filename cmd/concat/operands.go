package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/concat-runtime/concat"
	"github.com/wippyai/concat-runtime/value"
)

// parseValue creates a store value from a typed argument:
//
//	null | bool:true | int:42 | float:1.5 | str:text | array:N | text
func parseValue(st *value.Store, spec string) (concat.Ref, error) {
	if spec == "null" {
		return st.NewNull(), nil
	}

	kind, body, ok := strings.Cut(spec, ":")
	if !ok {
		return st.NewString(spec)
	}

	switch kind {
	case "bool":
		b, err := strconv.ParseBool(body)
		if err != nil {
			return 0, fmt.Errorf("bool %q: %w", body, err)
		}
		return st.NewBool(b), nil
	case "int":
		n, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("int %q: %w", body, err)
		}
		return st.NewLong(n), nil
	case "float":
		f, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return 0, fmt.Errorf("float %q: %w", body, err)
		}
		return st.NewDouble(f), nil
	case "str":
		return st.NewString(body)
	case "array":
		n, err := strconv.Atoi(body)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("array size %q", body)
		}
		elems := make([]concat.Ref, n)
		for i := range elems {
			elems[i] = st.NewLong(int64(i))
		}
		return st.NewArray(elems...), nil
	default:
		return st.NewString(spec)
	}
}

// buildOperands turns arguments into operands for shape. Literal positions
// take the argument verbatim; dynamic positions go through parseValue.
func buildOperands(st *value.Store, shape concat.Shape, args []string) ([]concat.Operand, error) {
	if len(args) != shape.Arity() {
		return nil, fmt.Errorf("shape %q takes %d operands, got %d", shape.Pattern(), shape.Arity(), len(args))
	}
	ops := make([]concat.Operand, len(args))
	for i, arg := range args {
		if shape.Kind(i) == concat.Literal {
			ops[i] = concat.Lit(arg)
			continue
		}
		ref, err := parseValue(st, arg)
		if err != nil {
			return nil, fmt.Errorf("operand %d: %w", i, err)
		}
		ops[i] = concat.Dyn(ref)
	}
	return ops, nil
}
