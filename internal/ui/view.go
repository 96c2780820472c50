package ui

import tea "github.com/charmbracelet/bubbletea"

// View is the unit of composition: a screen or a modal.
type View interface {
	Init() tea.Cmd
	Update(tea.Msg) (View, tea.Cmd)
	View() string
}

// inputCapturer is implemented by views that are currently reading free text.
// While true, global single-key bindings are not applied.
type inputCapturer interface {
	CapturingInput() bool
}

func capturesInput(v View) bool {
	c, ok := v.(inputCapturer)
	return ok && c.CapturingInput()
}
