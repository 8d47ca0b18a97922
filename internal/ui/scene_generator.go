package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"animestudio/internal/api"
	"animestudio/internal/ui/textutil"
)

const (
	focusPicker = "picker"
	focusPlot   = "plot"

	pickerChars = 50
)

// Inline messages shown by the scene generator.
const (
	errSelectCharacter = "Select a character"
	errEmptyPlot       = "Enter a plot description"
	errGenerateScene   = "Error generating scene"
)

// SceneGeneratorView generates scenes for a chosen character. Scenes live
// only as long as the view.
type SceneGeneratorView struct {
	ID int64

	Characters []api.Character
	SelectedID string
	Cursor     int
	Plot       textarea.Model
	Scenes     []api.Scene // newest first
	Generating bool
	Err        string

	Focus FocusManager

	svc    *Services
	images imageSet
	scroll viewport.Model
}

// Ensure SceneGeneratorView implements View.
var _ View = (*SceneGeneratorView)(nil)

// NewSceneGeneratorView creates an empty scene generator.
func NewSceneGeneratorView(svc *Services) *SceneGeneratorView {
	plot := textarea.New()
	plot.Placeholder = "Describe the scene: setting, action, mood..."
	plot.ShowLineNumbers = false
	plot.SetHeight(3)
	plot.SetWidth(60)

	return &SceneGeneratorView{
		ID:   newViewID(),
		Plot: plot,
		Focus: FocusManager{
			Current: focusPicker,
			Order:   []string{focusPicker, focusPlot},
		},
		svc:    svc,
		images: imageSet{},
		scroll: viewport.New(80, 12),
	}
}

// CapturingInput implements InputCapturer.
func (v *SceneGeneratorView) CapturingInput() bool {
	return v.Focus.Is(focusPlot) && v.plotEnabled()
}

func (v *SceneGeneratorView) plotEnabled() bool {
	return v.SelectedID != "" && !v.Generating
}

// Init implements View.
func (v *SceneGeneratorView) Init() tea.Cmd {
	return loadCharactersCmd(v.svc, v.ID)
}

// Selected returns the chosen character.
func (v *SceneGeneratorView) Selected() (api.Character, bool) {
	return v.character(v.SelectedID)
}

func (v *SceneGeneratorView) character(id string) (api.Character, bool) {
	for _, ch := range v.Characters {
		if ch.ID == id {
			return ch, true
		}
	}
	return api.Character{}, false
}

func (v *SceneGeneratorView) applyFocus() tea.Cmd {
	if v.Focus.Is(focusPlot) && v.plotEnabled() {
		return v.Plot.Focus()
	}
	v.Plot.Blur()
	return nil
}

// Update implements View.
func (v *SceneGeneratorView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w := max(20, min(80, msg.Width-8))
		v.Plot.SetWidth(w)
		v.scroll.Width = msg.Width
		v.scroll.Height = max(5, msg.Height-22)
		v.refreshScenes()
		return v, nil

	case CharactersLoadedMsg:
		if msg.Owner != v.ID {
			return v, nil
		}
		if msg.Err != nil {
			v.svc.logger().Error("load characters failed", "err", msg.Err)
			v.Err = errLoadCharacters
			return v, nil
		}
		v.Characters = msg.Characters
		v.Cursor = slices.IndexFunc(v.Characters, func(ch api.Character) bool { return ch.ID == v.SelectedID })
		if v.Cursor < 0 {
			v.SelectedID, v.Cursor = "", 0
			if len(v.Characters) > 0 {
				v.SelectedID = v.Characters[0].ID
			}
		}
		v.refreshScenes()
		return v, v.probeSelected()

	case SceneCreatedMsg:
		if msg.Owner != v.ID {
			return v, nil
		}
		v.Generating = false
		if msg.Err != nil {
			v.svc.logger().Error("generate scene failed", "character_id", v.SelectedID, "err", msg.Err)
			v.Err = errGenerateScene
			return v, v.applyFocus()
		}
		v.Scenes = append([]api.Scene{msg.Scene}, v.Scenes...)
		v.Plot.Reset()
		cmd := v.ensureImage("scene:"+msg.Scene.ID, msg.Scene.ImageURL, placeholderScene)
		v.refreshScenes()
		return v, tea.Batch(cmd, v.applyFocus())

	case ImageProbedMsg:
		if msg.Owner == v.ID && msg.Err != nil && v.images.fail(msg.Key, msg.URL) {
			v.svc.logger().Debug("image unavailable, using placeholder", "key", msg.Key, "url", msg.URL, "err", msg.Err)
			v.refreshScenes()
		}
		return v, nil

	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *SceneGeneratorView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+s":
		return v.generate()
	case "tab", "shift+tab":
		if v.Focus.Is(focusPicker) {
			v.Focus.SetFocus(focusPlot)
		} else {
			v.Focus.SetFocus(focusPicker)
		}
		return v.applyFocus()
	case "esc":
		v.Focus.SetFocus(focusPicker)
		return v.applyFocus()
	}

	if v.Focus.Is(focusPlot) {
		if !v.plotEnabled() {
			return nil
		}
		var cmd tea.Cmd
		v.Plot, cmd = v.Plot.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "j", "down":
		return v.moveCursor(1)
	case "k", "up":
		return v.moveCursor(-1)
	case "enter":
		v.Focus.SetFocus(focusPlot)
		return v.applyFocus()
	}
	var cmd tea.Cmd
	v.scroll, cmd = v.scroll.Update(msg)
	return cmd
}

func (v *SceneGeneratorView) moveCursor(delta int) tea.Cmd {
	if len(v.Characters) == 0 || v.Generating {
		return nil
	}
	v.Cursor = max(0, min(len(v.Characters)-1, v.Cursor+delta))
	v.SelectedID = v.Characters[v.Cursor].ID
	return v.probeSelected()
}

// generate posts the current selection and plot. Ignored while a previous
// request is outstanding.
func (v *SceneGeneratorView) generate() tea.Cmd {
	if v.Generating {
		return nil
	}
	v.Err = ""
	if v.SelectedID == "" {
		v.Err = errSelectCharacter
		return nil
	}
	if strings.TrimSpace(v.Plot.Value()) == "" {
		v.Err = errEmptyPlot
		return nil
	}
	v.Generating = true
	v.applyFocus()
	v.svc.logger().Info("generating scene", "character_id", v.SelectedID)
	return createSceneCmd(v.svc, v.ID, api.SceneRequest{
		CharacterID:     v.SelectedID,
		PlotDescription: v.Plot.Value(),
	})
}

func (v *SceneGeneratorView) probeSelected() tea.Cmd {
	ch, ok := v.Selected()
	if !ok {
		return nil
	}
	return v.ensureImage("character:"+ch.ID, ch.ImageURL, placeholderCharacter)
}

func (v *SceneGeneratorView) ensureImage(key, path, placeholder string) tea.Cmd {
	url := v.svc.Backend.ImageURL(path)
	ref, fresh := v.images.ensure(key, url, placeholder)
	if !fresh {
		return nil
	}
	return probeImageCmd(v.svc, v.ID, key, ref.URL)
}

func (v *SceneGeneratorView) imageSrc(key string) string {
	if ref := v.images[key]; ref != nil {
		return ref.Src()
	}
	return ""
}

func (v *SceneGeneratorView) refreshScenes() {
	v.scroll.SetContent(v.renderScenes())
}

// View implements View.
func (v *SceneGeneratorView) View() string {
	var b strings.Builder
	b.WriteString(Styles.Title.Render("Generate scene") + "\n\n")

	b.WriteString(focusLabel(&v.Focus, "Character", focusPicker) + "\n")
	b.WriteString(v.renderPicker())

	b.WriteString(focusLabel(&v.Focus, "Plot", focusPlot) + "\n")
	b.WriteString(v.Plot.View() + "\n")
	if v.Generating {
		b.WriteString(Styles.Pending.Render("Generating...") + "\n")
	} else {
		b.WriteString(Styles.Selected.Render("[Generate scene]") + " " + Styles.Hint.Render("ctrl+s") + "\n")
	}
	if v.Err != "" {
		b.WriteString(Styles.Error.Render(v.Err) + "\n")
	}

	b.WriteString("\n" + Styles.Section.Render("Generated scenes") + "\n")
	b.WriteString(v.scroll.View())
	return b.String()
}

func (v *SceneGeneratorView) renderPicker() string {
	if len(v.Characters) == 0 {
		return Styles.Empty.Render("  No characters available") + "\n"
	}
	var b strings.Builder
	for _, ch := range v.Characters {
		desc := textutil.TruncateChars(ch.Description, pickerChars)
		switch {
		case ch.ID == v.SelectedID && v.Focus.Is(focusPicker):
			b.WriteString(Styles.Selected.Render("> "+desc) + "\n")
		case ch.ID == v.SelectedID:
			b.WriteString(Styles.Normal.Render("* "+desc) + "\n")
		default:
			b.WriteString(Styles.Muted.Render("  "+desc) + "\n")
		}
	}
	if ch, ok := v.Selected(); ok {
		b.WriteString(Styles.Muted.Render("  Image: "+v.imageSrc("character:"+ch.ID)) + "\n")
	}
	return b.String()
}

func (v *SceneGeneratorView) renderScenes() string {
	if len(v.Scenes) == 0 {
		return Styles.Empty.Render("No scenes generated yet")
	}
	cards := make([]string, 0, len(v.Scenes))
	for _, s := range v.Scenes {
		lines := []string{
			Styles.Muted.Render("Image: " + v.imageSrc("scene:"+s.ID)),
			Styles.Normal.Render(s.PlotDescription),
		}
		if ch, ok := v.character(s.CharacterID); ok {
			lines = append(lines, Styles.Muted.Render("Character: "+textutil.TruncateChars(ch.Description, pickerChars)))
		}
		lines = append(lines, Styles.Muted.Render("Created: "+s.CreatedAt.Format(timeLayout)))
		cards = append(cards, Styles.Card.Render(strings.Join(lines, "\n")))
	}
	return strings.Join(cards, "\n")
}
