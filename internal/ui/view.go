package ui

import tea "github.com/charmbracelet/bubbletea"

// View is the unit of composition; implements Bubble Tea's Init/Update/View.
// Each View represents a screen or major UI region with its own model, update, and view.
type View interface {
	Init() tea.Cmd
	Update(tea.Msg) (View, tea.Cmd)
	View() string
}

// InputCapturer is implemented by views that own a focused text input.
// While CapturingInput reports true, the app hands every key to the view
// instead of the global keybind registry.
type InputCapturer interface {
	CapturingInput() bool
}

func capturesInput(v View) bool {
	c, ok := v.(InputCapturer)
	return ok && c.CapturingInput()
}
