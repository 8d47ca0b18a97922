package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"animestudio/internal/api"
	"animestudio/internal/ui/textutil"
)

// componentNames maps backend component keys to display names. Keys not
// listed render as-is.
var componentNames = map[string]string{
	"stable_diffusion":    "Stable Diffusion",
	"control_net":         "ControlNet",
	"face_id":             "Face ID",
	"anime_model":         "Anime model",
	"real_dream_pony":     "Real Dream Pony V9",
	"controlnet_openpose": "ControlNet OpenPose",
}

// ComponentDisplayName returns the human name for a component key.
func ComponentDisplayName(key string) string {
	if n, ok := componentNames[key]; ok {
		return n
	}
	return key
}

const nameColumnWidth = 22

// DependencyStatusView shows installation progress and install/start actions.
type DependencyStatusView struct {
	Snapshot api.StatusSnapshot
	Err      string // last install failure
	Width    int

	bar progress.Model
}

// Ensure DependencyStatusView implements View.
var _ View = (*DependencyStatusView)(nil)

// NewDependencyStatusView creates the status view for snap.
func NewDependencyStatusView(snap api.StatusSnapshot) *DependencyStatusView {
	return &DependencyStatusView{
		Snapshot: snap,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
}

// Init implements View.
func (v *DependencyStatusView) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (v *DependencyStatusView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.Width = msg.Width
		v.bar.Width = max(10, min(40, msg.Width-nameColumnWidth-30))
	case tea.KeyMsg:
		switch msg.String() {
		case "a":
			if v.Snapshot.Ready() {
				return v, startCmd
			}
			return v, install(api.ScopeAll)
		case "d":
			return v, install(api.ScopeDependencies)
		case "m":
			return v, install(api.ScopeModels)
		case "enter":
			if v.Snapshot.Ready() {
				return v, startCmd
			}
		}
	}
	return v, nil
}

func startCmd() tea.Msg { return StartMsg{} }

func install(scope api.InstallScope) tea.Cmd {
	return func() tea.Msg { return InstallMsg{Scope: scope} }
}

// PrimaryAction is the label of the overall button: Start once ready.
func (v *DependencyStatusView) PrimaryAction() string {
	if v.Snapshot.Ready() {
		return "Start"
	}
	return "Install all"
}

// View implements View.
func (v *DependencyStatusView) View() string {
	var b strings.Builder
	o := v.Snapshot.Overall

	b.WriteString(Styles.Title.Render("System status") + "\n\n")
	b.WriteString(v.bar.ViewAs(o.Percent()/100) + "\n")
	b.WriteString(Styles.Normal.Render(o.Message) + "\n")
	key := "a"
	if o.Ready {
		key = "enter"
	}
	b.WriteString(Styles.Selected.Render("["+v.PrimaryAction()+"]") + " " + Styles.Hint.Render(key) + "\n")
	if v.Err != "" {
		b.WriteString(Styles.Error.Render(v.Err) + "\n")
	}

	b.WriteString("\n" + v.renderSection("Dependencies", v.Snapshot.Dependencies, "Install dependencies", "d"))
	b.WriteString("\n" + v.renderSection("Models", v.Snapshot.Models, "Install models", "m"))

	b.WriteString("\n" + Styles.Section.Render("Instructions") + "\n")
	b.WriteString(Styles.Hint.Render(
		"Install the dependencies and models before creating characters.\n" +
			"Downloads are large and installation can take a while; progress updates automatically.\n" +
			"Once everything is installed press enter to start.",
	))
	return b.String()
}

func (v *DependencyStatusView) renderSection(title string, comps api.Components, action, key string) string {
	var b strings.Builder
	b.WriteString(Styles.Section.Render(title) + "\n")
	if len(comps) == 0 {
		b.WriteString(Styles.Empty.Render("  none reported") + "\n")
	}
	for _, c := range comps {
		name := textutil.PadRightVisual(ComponentDisplayName(c.Name), nameColumnWidth)
		state := Styles.Pending
		if c.Installed {
			state = Styles.Installed
		}
		fmt.Fprintf(&b, "  %s %s %s\n", name, v.bar.ViewAs(c.Percent()/100), state.Render(c.Message))
	}
	button := Styles.Selected.Render("[" + action + "]")
	if len(comps) > 0 && comps.AllInstalled() {
		button = Styles.Muted.Render("["+action+"]") + " " + Styles.Installed.Render("all installed")
	}
	b.WriteString("  " + button + " " + Styles.Hint.Render(key) + "\n")
	return b.String()
}
