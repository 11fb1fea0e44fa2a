package main

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/concat-runtime/runtime"
)

func TestInteractive_EnterBeforeLoad(t *testing.T) {
	m := newInteractiveModel(nil)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected no command before the runtime is loaded")
	}
	if got := next.(*interactiveModel); got.state != stateSelect || got.inputs != nil {
		t.Errorf("state = %v, inputs = %d; want select with no inputs", got.state, len(got.inputs))
	}
}

func TestInteractive_CallUsesSnapshot(t *testing.T) {
	rt, err := runtime.New(context.Background())
	if err != nil {
		t.Fatalf("create runtime: %v", err)
	}
	m := newInteractiveModel(nil)
	defer m.close()

	m.Update(loadedMsg{rt: rt})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateInput || len(m.inputs) != 2 {
		t.Fatalf("state = %v, inputs = %d; want input with 2 fields", m.state, len(m.inputs))
	}

	m.inputs[0].SetValue("x")
	m.inputs[1].SetValue("y")
	cmd := m.callCmd()

	m.inputs[1].SetValue("changed")
	m.appendMode = false
	m.selected = len(m.combs) - 1

	raw := cmd()
	msg, ok := raw.(callResultMsg)
	if !ok {
		t.Fatalf("unexpected message %T", raw)
	}
	if msg.err != nil {
		t.Fatalf("call: %v", msg.err)
	}
	if !strings.HasPrefix(msg.result, `"xy"`) {
		t.Errorf("result = %q, want prefix %q", msg.result, `"xy"`)
	}
}
