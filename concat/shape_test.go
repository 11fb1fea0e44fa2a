package concat

import (
	"strings"
	"testing"

	"github.com/wippyai/concat-runtime/errors"
)

func TestParseShape(t *testing.T) {
	tests := []struct {
		pattern  string
		arity    int
		literals int
		fresh    bool
	}{
		{"s", 1, 1, false},
		{"v", 1, 0, false},
		{"sv", 2, 1, true},
		{"svs", 3, 2, true},
		{"vvvv", 4, 0, true},
		{strings.Repeat("v", MaxArity), MaxArity, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			s, err := ParseShape(tt.pattern)
			if err != nil {
				t.Fatalf("ParseShape: %v", err)
			}
			if s.Arity() != tt.arity {
				t.Errorf("Arity = %d, want %d", s.Arity(), tt.arity)
			}
			if s.Literals() != tt.literals {
				t.Errorf("Literals = %d, want %d", s.Literals(), tt.literals)
			}
			if s.FreshCapable() != tt.fresh {
				t.Errorf("FreshCapable = %v, want %v", s.FreshCapable(), tt.fresh)
			}
			if s.Name() != "concat_"+tt.pattern {
				t.Errorf("Name = %q", s.Name())
			}
		})
	}
}

func TestParseShape_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		detail  string
	}{
		{"empty", "", "empty pattern"},
		{"too long", strings.Repeat("s", MaxArity+1), "too many operands"},
		{"bad letter", "svx", "unknown operand kind 'x'"},
		{"uppercase", "SV", "unknown operand kind 'S'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseShape(tt.pattern)
			if err == nil {
				t.Fatal("expected error")
			}
			e, ok := err.(*errors.Error)
			if !ok || e.Kind != errors.KindInvalidShape {
				t.Fatalf("expected invalid_shape, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.detail) {
				t.Errorf("error %q missing %q", err.Error(), tt.detail)
			}
		})
	}
}

func TestMustParseShape_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustParseShape("q")
}

func TestShapeOf(t *testing.T) {
	ops := []Operand{Lit("a"), Dyn(1), Dyn(2), Lit("")}
	s := ShapeOf(ops)
	if s.Pattern() != "svvs" {
		t.Errorf("Pattern = %q, want svvs", s.Pattern())
	}
	if !MustParseShape("svvs").Matches(ops) {
		t.Error("svvs should match")
	}
	if MustParseShape("svsv").Matches(ops) {
		t.Error("svsv should not match")
	}
	if MustParseShape("svv").Matches(ops) {
		t.Error("shorter shape should not match")
	}
}

func TestOperand(t *testing.T) {
	lit := Lit("abc")
	if lit.Kind() != Literal || string(lit.Bytes()) != "abc" {
		t.Errorf("Lit = %v %q", lit.Kind(), lit.Bytes())
	}
	dyn := Dyn(7)
	if dyn.Kind() != Dynamic || dyn.Ref() != 7 {
		t.Errorf("Dyn = %v %d", dyn.Kind(), dyn.Ref())
	}
	if Literal.Letter() != 's' || Dynamic.Letter() != 'v' {
		t.Error("wrong letters")
	}
	if Literal.String() != "literal" || Dynamic.String() != "dynamic" {
		t.Error("wrong kind names")
	}
	if len(Lit("").Bytes()) != 0 {
		t.Error("empty literal has bytes")
	}
}
