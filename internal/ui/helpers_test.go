package ui

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"animestudio/internal/api"
)

var errBackend = errors.New("backend unavailable")

type savedInput struct {
	ID          string
	Description string
	Filename    string
	Data        string
}

// fakeBackend records calls and returns canned results.
type fakeBackend struct {
	statuses    []api.StatusSnapshot // served in order; the last one repeats
	statusErr   error
	statusCalls int

	installs   []api.InstallScope
	installErr error

	characters []api.Character
	listErr    error
	listCalls  int

	created   []savedInput
	createErr error
	updated   []savedInput
	updateErr error

	deleted   []string
	deleteErr error

	sceneReqs []api.SceneRequest
	scene     api.Scene
	sceneErr  error

	brokenImages map[string]bool
	probes       []string
}

var _ Backend = (*fakeBackend)(nil)

func (f *fakeBackend) Status(ctx context.Context) (api.StatusSnapshot, error) {
	f.statusCalls++
	if f.statusErr != nil {
		return api.StatusSnapshot{}, f.statusErr
	}
	if len(f.statuses) == 0 {
		return api.InitialStatus(), nil
	}
	s := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return s, nil
}

func (f *fakeBackend) Install(ctx context.Context, scope api.InstallScope) (api.Ack, error) {
	f.installs = append(f.installs, scope)
	if f.installErr != nil {
		return api.Ack{}, f.installErr
	}
	return api.Ack{Success: true, Message: "Installation started"}, nil
}

func (f *fakeBackend) ListCharacters(ctx context.Context) ([]api.Character, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]api.Character(nil), f.characters...), nil
}

func record(id string, in api.CharacterInput) savedInput {
	s := savedInput{ID: id, Description: in.Description}
	if in.Image != nil {
		s.Filename = filepath.Base(in.Image.Filename)
		data, _ := io.ReadAll(in.Image.Content)
		s.Data = string(data)
	}
	return s
}

func (f *fakeBackend) CreateCharacter(ctx context.Context, in api.CharacterInput) (api.Character, error) {
	f.created = append(f.created, record("", in))
	if f.createErr != nil {
		return api.Character{}, f.createErr
	}
	ch := api.Character{ID: "new", Description: in.Description}
	f.characters = append(f.characters, ch)
	return ch, nil
}

func (f *fakeBackend) UpdateCharacter(ctx context.Context, id string, in api.CharacterInput) (api.Character, error) {
	f.updated = append(f.updated, record(id, in))
	if f.updateErr != nil {
		return api.Character{}, f.updateErr
	}
	return api.Character{ID: id, Description: in.Description}, nil
}

func (f *fakeBackend) DeleteCharacter(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.characters[:0]
	for _, ch := range f.characters {
		if ch.ID != id {
			kept = append(kept, ch)
		}
	}
	f.characters = kept
	return nil
}

func (f *fakeBackend) CreateScene(ctx context.Context, req api.SceneRequest) (api.Scene, error) {
	f.sceneReqs = append(f.sceneReqs, req)
	if f.sceneErr != nil {
		return api.Scene{}, f.sceneErr
	}
	s := f.scene
	s.CharacterID = req.CharacterID
	s.PlotDescription = req.PlotDescription
	return s, nil
}

func (f *fakeBackend) ImageURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http") {
		return path
	}
	return "http://img.test" + path
}

func (f *fakeBackend) ProbeImage(ctx context.Context, url string) error {
	f.probes = append(f.probes, url)
	if f.brokenImages[url] {
		return &api.Error{Op: "probe image", StatusCode: 404, Message: "Not Found"}
	}
	return nil
}

func newServices(b *fakeBackend) *Services {
	return &Services{Backend: b}
}

// immediate is a ScheduleFunc that fires without waiting.
func immediate(_ time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	return func() tea.Msg { return fn(time.Time{}) }
}

// collect runs cmd and flattens batches into their messages.
// Only use it on commands that do not block (no cursor blink, no tea.Tick).
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// only returns the messages of type T.
func only[T tea.Msg](msgs []tea.Msg) []T {
	var out []T
	for _, m := range msgs {
		if t, ok := m.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "space", " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func ts(raw string) api.Timestamp {
	return api.ParseTimestamp(raw)
}

func readySnapshot() api.StatusSnapshot {
	s := api.InitialStatus()
	s.Overall = api.OverallStatus{Ready: true, Progress: 100, Message: "All components installed"}
	return s
}

func pendingSnapshot(progress float64) api.StatusSnapshot {
	s := api.InitialStatus()
	s.Overall = api.OverallStatus{Ready: false, Progress: progress, Message: "Installing"}
	return s
}
