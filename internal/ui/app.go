package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"animestudio/internal/api"
)

const (
	appTitle   = "Anime Studio"
	appTagline = "AI-powered anime character and scene generation"

	errStartInstall = "Error starting installation"

	statusPollName  = "status"
	installPollName = "install"
)

// Default poll intervals.
const (
	DefaultStatusPollInterval  = 5 * time.Second
	DefaultInstallPollInterval = 2 * time.Second
)

// RefreshStatusMsg asks for an immediate status fetch.
type RefreshStatusMsg struct{}

// Options tunes the root model. Zero values use the defaults.
type Options struct {
	StatusPollInterval  time.Duration
	InstallPollInterval time.Duration
	Schedule            ScheduleFunc // nil uses tea.Tick
}

// AppModel is the root model. It owns the status snapshot, the two pollers
// and the current route, and gates the generator routes on readiness.
type AppModel struct {
	Route   Route
	Status  api.StatusSnapshot
	Ready   bool
	Loading bool

	StatusView *DependencyStatusView
	Characters *CharacterGeneratorView // nil unless mounted
	Scenes     *SceneGeneratorView     // nil unless mounted
	Overlays   OverlayStack
	KeyHandler *KeyHandler
	Services   *Services

	statusPoll  *Ticker
	installPoll *Ticker
	spinner     spinner.Model
	width       int
	height      int
}

// Ensure AppModel can be used as tea.Model via adapter.
var _ tea.Model = (*appModelAdapter)(nil)

// appModelAdapter wraps AppModel to implement tea.Model.
type appModelAdapter struct {
	*AppModel
}

// NewAppModel creates the root application model.
func NewAppModel(svc *Services, opts Options) *AppModel {
	if opts.StatusPollInterval <= 0 {
		opts.StatusPollInterval = DefaultStatusPollInterval
	}
	if opts.InstallPollInterval <= 0 {
		opts.InstallPollInterval = DefaultInstallPollInterval
	}

	quit := func() tea.Msg { return QuitMsg{} }
	reg := NewKeybindRegistry()
	reg.BindWithDesc("q", quit, "Quit")
	reg.BindWithDesc("SPC q", quit, "Quit")
	for _, r := range Routes {
		nav := navigateCmd(r)
		reg.BindWithDesc(r.Key(), nav, r.String())
		reg.BindWithDesc("SPC "+r.Key(), nav, r.String())
	}
	reg.BindWithDesc("SPC i a", install(api.ScopeAll), "Install all")
	reg.BindWithDesc("SPC i d", install(api.ScopeDependencies), "Install dependencies")
	reg.BindWithDesc("SPC i m", install(api.ScopeModels), "Install models")
	reg.BindForRoutes("SPC r", func() tea.Msg { return RefreshStatusMsg{} }, "Refresh status", []Route{RouteStatus})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = Styles.Section

	initial := api.InitialStatus()
	return &AppModel{
		Route:       RouteStatus,
		Status:      initial,
		Loading:     true,
		StatusView:  NewDependencyStatusView(initial),
		KeyHandler:  NewKeyHandler(reg),
		Services:    svc,
		statusPoll:  NewTicker(statusPollName, opts.StatusPollInterval, opts.Schedule),
		installPoll: NewTicker(installPollName, opts.InstallPollInterval, opts.Schedule),
		spinner:     sp,
	}
}

func navigateCmd(r Route) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Route: r} }
}

// AsTeaModel returns a tea.Model adapter for use with tea.NewProgram.
func (m *AppModel) AsTeaModel() tea.Model {
	return &appModelAdapter{AppModel: m}
}

// Shutdown cancels both pollers so no tick issues another request.
func (m *AppModel) Shutdown() {
	m.statusPoll.Stop()
	m.installPoll.Stop()
}

// InstallPolling reports whether a post-install poll is running.
func (m *AppModel) InstallPolling() bool {
	return m.installPoll.Active()
}

// Init implements tea.Model.
func (a *appModelAdapter) Init() tea.Cmd {
	return tea.Batch(
		fetchStatusCmd(a.Services, statusFromStartup),
		a.statusPoll.Start(),
		a.spinner.Tick,
	)
}

// Update implements tea.Model.
func (a *appModelAdapter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, a.resizeViews()

	case spinner.TickMsg:
		if !a.Loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case pollTickMsg:
		return a, a.handlePollTick(msg)

	case StatusLoadedMsg:
		return a, a.handleStatus(msg)

	case RefreshStatusMsg:
		return a, fetchStatusCmd(a.Services, statusFromPoll)

	case InstallMsg:
		a.StatusView.Err = ""
		a.Services.logger().Info("starting installation", "scope", msg.Scope)
		return a, installCmd(a.Services, msg.Scope)

	case InstallStartedMsg:
		if msg.Err != nil {
			a.Services.logger().Error("install failed", "scope", msg.Scope, "err", msg.Err)
			a.StatusView.Err = errStartInstall
			return a, nil
		}
		a.Services.logger().Info("installation started", "scope", msg.Scope, "message", msg.Ack.Message)
		return a, a.installPoll.Start()

	case StartMsg:
		return a, a.navigate(RouteCharacters)

	case NavigateMsg:
		return a, a.navigate(msg.Route)

	case ShowModalMsg:
		a.Overlays.Push(Overlay{View: msg.View, Dismiss: "esc"})
		return a, msg.View.Init()

	case DismissModalMsg:
		a.Overlays.Pop()
		return a, nil

	case QuitMsg:
		a.Shutdown()
		return a, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.Shutdown()
			return a, tea.Quit
		}
		if top, ok := a.Overlays.Peek(); ok {
			if top.IsDismissKey(msg.String()) {
				a.Overlays.Pop()
				return a, nil
			}
			cmd, _ := a.Overlays.UpdateTop(msg)
			return a, cmd
		}
		if a.KeyHandler != nil && !capturesInput(a.currentView()) {
			if consumed, cmd := a.KeyHandler.Handle(msg); consumed {
				return a, cmd
			}
		}
	}

	_, cmd := a.currentView().Update(msg)
	return a, cmd
}

func (a *AppModel) handlePollTick(msg pollTickMsg) tea.Cmd {
	switch {
	case a.statusPoll.Accept(msg):
		return tea.Batch(fetchStatusCmd(a.Services, statusFromPoll), a.statusPoll.Next())
	case a.installPoll.Accept(msg):
		return tea.Batch(fetchStatusCmd(a.Services, statusFromInstall), a.installPoll.Next())
	}
	return nil
}

func (a *AppModel) handleStatus(msg StatusLoadedMsg) tea.Cmd {
	a.Loading = false
	if msg.Err != nil {
		// Polling keeps going; the next tick retries.
		a.Services.logger().Warn("status fetch failed", "source", msg.Source, "err", msg.Err)
		return nil
	}

	wasReady := a.Ready
	a.Status = msg.Snapshot
	a.Ready = msg.Snapshot.Ready()
	a.StatusView.Snapshot = msg.Snapshot

	if a.Ready && a.installPoll.Active() {
		a.installPoll.Stop()
		a.Services.logger().Info("installation complete")
	}
	switch {
	case a.Ready && !wasReady:
		return a.mountRoute()
	case !a.Ready && wasReady:
		a.unmountRoute()
	}
	return nil
}

// navigate switches routes. Generator views are rebuilt on every visit.
func (a *AppModel) navigate(r Route) tea.Cmd {
	if r == a.Route {
		return nil
	}
	a.unmountRoute()
	a.Route = r
	return a.mountRoute()
}

func (a *AppModel) unmountRoute() {
	a.Characters = nil
	a.Scenes = nil
	a.Overlays.Clear()
}

func (a *AppModel) mountRoute() tea.Cmd {
	if !a.Route.Gated() || !a.Ready {
		return nil
	}
	var v View
	switch a.Route {
	case RouteCharacters:
		a.Characters = NewCharacterGeneratorView(a.Services)
		v = a.Characters
	case RouteScenes:
		a.Scenes = NewSceneGeneratorView(a.Services)
		v = a.Scenes
	}
	cmd := v.Init()
	if a.width > 0 {
		v.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	}
	return cmd
}

func (a *AppModel) resizeViews() tea.Cmd {
	size := tea.WindowSizeMsg{Width: a.width, Height: a.height}
	var cmds []tea.Cmd
	for _, v := range a.mountedViews() {
		_, cmd := v.Update(size)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (a *AppModel) mountedViews() []View {
	views := []View{a.StatusView}
	if a.Characters != nil {
		views = append(views, a.Characters)
	}
	if a.Scenes != nil {
		views = append(views, a.Scenes)
	}
	return views
}

// currentView is the view for the active route, or the gate prompt when a
// generator route is not available yet.
func (a *AppModel) currentView() View {
	switch a.Route {
	case RouteCharacters:
		if a.Ready && a.Characters != nil {
			return a.Characters
		}
		return &GateView{Route: a.Route}
	case RouteScenes:
		if a.Ready && a.Scenes != nil {
			return a.Scenes
		}
		return &GateView{Route: a.Route}
	}
	return a.StatusView
}

// View implements tea.Model.
func (a *appModelAdapter) View() string {
	var body string
	switch {
	case a.Loading:
		body = a.spinner.View() + " Loading..."
	default:
		body = a.currentView().View()
	}
	if top, ok := a.Overlays.Peek(); ok {
		body = top.View.View()
		if a.width > 0 && a.height > 0 {
			body = lipgloss.Place(a.width, max(lipgloss.Height(body), a.height-6), lipgloss.Center, lipgloss.Center, body)
		}
	}

	parts := []string{a.renderHeader(), body, a.renderFooter()}
	if a.KeyHandler != nil && a.KeyHandler.LeaderWaiting {
		parts = append(parts, RenderKeybindHelp(a.KeyHandler, a.Route))
	}
	return strings.Join(parts, "\n")
}

func (a *AppModel) renderHeader() string {
	tabs := make([]string, 0, len(Routes))
	for _, r := range Routes {
		label := r.Key() + " " + r.String()
		if r == a.Route {
			tabs = append(tabs, Styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, Styles.Tab.Render(label))
		}
	}
	return Styles.Title.Render(appTitle) + "  " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n"
}

func (a *AppModel) renderFooter() string {
	return "\n" + Styles.Hint.Render(appTagline+"  ·  SPC: commands  q: quit")
}
