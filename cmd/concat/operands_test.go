package main

import (
	"testing"

	"github.com/wippyai/concat-runtime/concat"
	"github.com/wippyai/concat-runtime/memory"
	"github.com/wippyai/concat-runtime/value"
)

func newStore() *value.Store {
	mem := memory.NewLinear(1, 2)
	return value.NewStore(mem, memory.NewHeap(mem))
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		spec string
		kind value.Kind
		text string
	}{
		{"null", value.KindNull, ""},
		{"bool:true", value.KindBool, "1"},
		{"bool:0", value.KindBool, ""},
		{"int:-12", value.KindLong, "-12"},
		{"float:2.5", value.KindDouble, "2.5"},
		{"str:int:1", value.KindString, "int:1"},
		{"array:3", value.KindArray, "Array"},
		{"plain", value.KindString, "plain"},
		{"http://x", value.KindString, "http://x"},
		{"", value.KindString, ""},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			st := newStore()
			ref, err := parseValue(st, tt.spec)
			if err != nil {
				t.Fatalf("parseValue: %v", err)
			}
			if kind, _ := st.TypeOf(ref); kind != tt.kind {
				t.Errorf("kind = %v, want %v", kind, tt.kind)
			}
			if got, _ := st.Render(ref); got != tt.text {
				t.Errorf("text = %q, want %q", got, tt.text)
			}
		})
	}
}

func TestParseValue_Invalid(t *testing.T) {
	for _, spec := range []string{"bool:maybe", "int:x", "float:", "array:-1"} {
		if _, err := parseValue(newStore(), spec); err == nil {
			t.Errorf("parseValue(%q) succeeded", spec)
		}
	}
}

func TestBuildOperands(t *testing.T) {
	st := newStore()
	shape := concat.MustParseShape("svs")

	ops, err := buildOperands(st, shape, []string{"int:1", "int:2", "null"})
	if err != nil {
		t.Fatalf("buildOperands: %v", err)
	}
	if string(ops[0].Bytes()) != "int:1" || string(ops[2].Bytes()) != "null" {
		t.Error("literal positions must be taken verbatim")
	}
	if kind, _ := st.TypeOf(ops[1].Ref()); kind != value.KindLong {
		t.Errorf("dynamic operand kind = %v", kind)
	}

	if _, err := buildOperands(st, shape, []string{"a"}); err == nil {
		t.Error("expected arity mismatch")
	}
}
