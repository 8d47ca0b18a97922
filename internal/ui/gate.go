package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"animestudio/internal/api"
)

// GatePrompt is the message shown in place of a generator while the
// backend is not ready.
const GatePrompt = "Dependencies must be installed to create characters/scenes"

// GateView replaces a gated route until every component is installed.
type GateView struct {
	Route Route
}

// Ensure GateView implements View.
var _ View = (*GateView)(nil)

// Init implements View.
func (g *GateView) Init() tea.Cmd { return nil }

// Update implements View.
func (g *GateView) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "i", "enter":
			return g, install(api.ScopeAll)
		case "s":
			return g, func() tea.Msg { return NavigateMsg{Route: RouteStatus} }
		}
	}
	return g, nil
}

// View implements View.
func (g *GateView) View() string {
	return Styles.Title.Render(g.Route.String()) + "\n\n" +
		Styles.Box.Render(Styles.Details.Render(GatePrompt)+"\n\n"+
			Styles.Selected.Render("[Install dependencies]")+" "+Styles.Hint.Render("i")+"   "+
			Styles.Hint.Render("s: view status"))
}
