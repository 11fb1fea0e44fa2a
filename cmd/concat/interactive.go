package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/concat-runtime/concat"
	"github.com/wippyai/concat-runtime/runtime"
	"github.com/wippyai/concat-runtime/value"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

type modelState int

const (
	stateSelect modelState = iota
	stateInput
	stateResult
)

type interactiveModel struct {
	err        error
	cfg        *runtime.Config
	rt         *runtime.Runtime
	combs      []*concat.Combinator
	inputs     []textinput.Model
	result     string
	selected   int
	focusIdx   int
	appendMode bool
	state      modelState
}

type loadedMsg struct {
	err error
	rt  *runtime.Runtime
}

type callResultMsg struct {
	err    error
	result string
}

func newInteractiveModel(cfg *runtime.Config) *interactiveModel {
	return &interactiveModel{cfg: cfg, state: stateSelect}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	rt, err := runtime.NewWithConfig(context.Background(), m.cfg)
	return loadedMsg{rt: rt, err: err}
}

func (m *interactiveModel) close() {
	if m.rt != nil {
		m.rt.Close(context.Background())
		m.rt = nil
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.close()
			return m, tea.Quit

		case "q":
			if m.state != stateInput {
				m.close()
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelect && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelect && m.selected < len(m.combs)-1 {
				m.selected++
			}

		case "a":
			if m.state == stateSelect {
				m.appendMode = !m.appendMode
			}

		case "enter":
			switch m.state {
			case stateSelect:
				if len(m.combs) == 0 {
					return m, nil
				}
				m.prepareInputs()
				m.state = stateInput
				return m, nil
			case stateInput:
				return m, m.callCmd()
			case stateResult:
				m.state = stateSelect
				m.result, m.err = "", nil
			}

		case "tab":
			if m.state == stateInput && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			if m.state != stateSelect {
				m.state = stateSelect
				m.inputs = nil
				m.result, m.err = "", nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.rt = msg.rt
		m.combs = msg.rt.Catalog().Combinators()

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateResult
	}

	if m.state == stateInput {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

// prepareInputs creates one field for the destination and one per operand.
func (m *interactiveModel) prepareInputs() {
	params := m.combs[m.selected].Params()
	// dst and self-append are implied; operands start at index 2
	ops := params[2:]

	m.inputs = make([]textinput.Model, 0, len(ops)+1)
	dst := textinput.New()
	dst.Prompt = "dst: "
	dst.Placeholder = "null"
	dst.Width = 40
	dst.Focus()
	m.inputs = append(m.inputs, dst)

	for _, p := range ops {
		ti := textinput.New()
		ti.Prompt = p.Name + ": "
		ti.Placeholder = concat.TypeName(p.Type)
		ti.Width = 40
		m.inputs = append(m.inputs, ti)
	}
	m.focusIdx = 0
}

// callCmd snapshots the selection and field values so the command does not
// read model state from another goroutine.
func (m *interactiveModel) callCmd() tea.Cmd {
	req := callRequest{
		rt:         m.rt,
		comb:       m.combs[m.selected],
		dst:        m.inputs[0].Value(),
		args:       make([]string, len(m.inputs)-1),
		appendMode: m.appendMode,
	}
	for i, input := range m.inputs[1:] {
		req.args[i] = input.Value()
	}
	return func() tea.Msg { return req.run() }
}

type callRequest struct {
	rt         *runtime.Runtime
	comb       *concat.Combinator
	dst        string
	args       []string
	appendMode bool
}

func (r callRequest) run() callResultMsg {
	if r.rt == nil {
		return callResultMsg{err: fmt.Errorf("runtime not loaded")}
	}
	st := r.rt.Store()

	dstSpec := r.dst
	if dstSpec == "" {
		dstSpec = "null"
	}
	dst, err := parseValue(st, dstSpec)
	if err != nil {
		return callResultMsg{err: err}
	}
	defer st.Drop(dst)

	ops, err := buildOperands(st, r.comb.Shape(), r.args)
	if err != nil {
		return callResultMsg{err: err}
	}
	defer func() {
		for _, op := range ops {
			if op.Kind() == concat.Dynamic {
				st.Drop(op.Ref())
			}
		}
	}()

	events := &value.Counter{}
	st.Subscribe(events)
	defer st.Unsubscribe(events)

	if err := r.comb.Call(st, dst, r.appendMode, ops...); err != nil {
		return callResultMsg{err: err}
	}
	text, err := st.Text(dst)
	if err != nil {
		return callResultMsg{err: err}
	}
	return callResultMsg{result: fmt.Sprintf("%q\n\nlength %d, coerced %d, adopted %d",
		text, len(text), events.Count(value.EventCoerced), events.Count(value.EventAdopted))}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if len(m.combs) == 0 {
		return "Loading runtime..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Concat"))
	mode := "fresh"
	if m.appendMode {
		mode = "append"
	}
	b.WriteString(" mode: ")
	b.WriteString(typeStyle.Render(mode))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelect:
		for i, comb := range m.combs {
			line := comb.Signature()
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + nameStyle.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("↑/↓ select • a toggle append • enter edit • q quit"))

	case stateInput:
		b.WriteString(fmt.Sprintf("Calling %s\n\n", nameStyle.Render(m.combs[m.selected].Name())))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("tab next field • enter call • esc back"))

	case stateResult:
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", nameStyle.Render(m.combs[m.selected].Name())))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(valueStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(cfg *runtime.Config) error {
	p := tea.NewProgram(newInteractiveModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
