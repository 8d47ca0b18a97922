package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/docker/go-units"

	"animestudio/internal/api"
)

// Focus regions of the character generator, in tab order.
const (
	focusDescription = "description"
	focusImage       = "image"
	focusList        = "list"
)

// Inline messages shown by the character generator.
const (
	errLoadCharacters    = "Error loading characters"
	errEmptyDescription  = "Enter a character description"
	errGenerateCharacter = "Error generating character"
	errUpdateCharacter   = "Error updating character"
	errDeleteCharacter   = "Error deleting character"
	errImageNotFound     = "Image file not found"
)

// CharacterGeneratorView creates and edits characters and hosts the list.
type CharacterGeneratorView struct {
	ID int64

	Description   textarea.Model
	ImagePath     textinput.Model
	SelectedImage string // confirmed local file, "" for none
	Preview       string
	Generating    bool
	Err           string
	Editing       *api.Character // character being edited, nil when creating

	List  *CharacterListView
	Focus FocusManager

	svc *Services
}

// Ensure CharacterGeneratorView implements View.
var _ View = (*CharacterGeneratorView)(nil)

// NewCharacterGeneratorView creates a generator with an empty form.
func NewCharacterGeneratorView(svc *Services) *CharacterGeneratorView {
	id := newViewID()

	desc := textarea.New()
	desc.Placeholder = "Describe your character: appearance, outfit, personality..."
	desc.ShowLineNumbers = false
	desc.SetHeight(4)
	desc.SetWidth(60)

	img := textinput.New()
	img.Placeholder = "Path to a reference image (optional)"
	img.Width = 58

	v := &CharacterGeneratorView{
		ID:          id,
		Description: desc,
		ImagePath:   img,
		List:        NewCharacterListView(svc, id),
		svc:         svc,
	}
	v.List.OnEdit = func(ch api.Character) tea.Msg { return EditCharacterMsg{Owner: id, Character: ch} }
	v.List.OnDelete = func(chID string) tea.Msg { return DeleteCharacterMsg{Owner: id, ID: chID} }
	v.Focus = FocusManager{
		Current: focusDescription,
		Order:   []string{focusDescription, focusImage, focusList},
	}
	return v
}

// EditMode reports whether the form edits an existing character.
func (v *CharacterGeneratorView) EditMode() bool {
	return v.Editing != nil
}

// CapturingInput implements InputCapturer.
func (v *CharacterGeneratorView) CapturingInput() bool {
	return v.Focus.Is(focusDescription) || v.Focus.Is(focusImage)
}

// Init implements View.
func (v *CharacterGeneratorView) Init() tea.Cmd {
	return tea.Batch(loadCharactersCmd(v.svc, v.ID), v.applyFocus())
}

// applyFocus syncs the widgets with Focus.Current.
func (v *CharacterGeneratorView) applyFocus() tea.Cmd {
	v.Description.Blur()
	v.ImagePath.Blur()
	v.List.Focused = v.Focus.Is(focusList)
	if v.Generating {
		return nil
	}
	switch v.Focus.Current {
	case focusDescription:
		return v.Description.Focus()
	case focusImage:
		return v.ImagePath.Focus()
	}
	return nil
}

// Update implements View.
func (v *CharacterGeneratorView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w := max(20, min(80, msg.Width-8))
		v.Description.SetWidth(w)
		v.ImagePath.Width = w - 2
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
		return v, v.List.SetCharacters(msg.Characters)

	case CharacterSavedMsg:
		if msg.Owner != v.ID {
			return v, nil
		}
		return v, v.handleSaved(msg)

	case EditCharacterMsg:
		if msg.Owner != v.ID {
			return v, nil
		}
		return v, v.startEdit(msg.Character)

	case DeleteCharacterMsg:
		if msg.Owner != v.ID {
			return v, nil
		}
		v.Err = ""
		v.svc.logger().Info("deleting character", "id", msg.ID)
		return v, deleteCharacterCmd(v.svc, v.ID, msg.ID)

	case CharacterDeletedMsg:
		if msg.Owner != v.ID {
			return v, nil
		}
		return v, v.handleDeleted(msg)

	case ImageProbedMsg:
		_, cmd := v.List.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *CharacterGeneratorView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+s":
		return v.submit()
	case "tab":
		v.Focus.Next()
		return v.applyFocus()
	case "shift+tab":
		v.Focus.Prev()
		return v.applyFocus()
	case "esc":
		if v.Generating {
			return nil
		}
		if v.EditMode() {
			v.cancelEdit()
			return v.applyFocus()
		}
		if v.CapturingInput() {
			v.Focus.SetFocus(focusList)
			return v.applyFocus()
		}
		return nil
	case "ctrl+x":
		if !v.Generating {
			v.clearImage()
		}
		return nil
	case "enter":
		if v.Focus.Is(focusImage) {
			if !v.Generating {
				v.Err = ""
				v.confirmImage()
			}
			return nil
		}
	}

	switch v.Focus.Current {
	case focusDescription:
		if v.Generating {
			return nil
		}
		var cmd tea.Cmd
		v.Description, cmd = v.Description.Update(msg)
		return cmd
	case focusImage:
		if v.Generating {
			return nil
		}
		var cmd tea.Cmd
		v.ImagePath, cmd = v.ImagePath.Update(msg)
		return cmd
	default:
		_, cmd := v.List.Update(msg)
		return cmd
	}
}

// submit creates or saves the character in the form. Submissions while a
// previous one is outstanding are dropped.
func (v *CharacterGeneratorView) submit() tea.Cmd {
	if v.Generating {
		return nil
	}
	v.Err = ""
	if strings.TrimSpace(v.Description.Value()) == "" {
		v.Err = errEmptyDescription
		return nil
	}
	if strings.TrimSpace(v.ImagePath.Value()) != v.SelectedImage && !v.confirmImage() {
		return nil
	}

	id := ""
	if v.Editing != nil {
		id = v.Editing.ID
	}
	v.Generating = true
	v.applyFocus()
	v.svc.logger().Info("saving character", "id", id, "with_image", v.SelectedImage != "")
	return saveCharacterCmd(v.svc, v.ID, id, characterForm{
		Description: v.Description.Value(),
		ImagePath:   v.SelectedImage,
	})
}

func (v *CharacterGeneratorView) handleSaved(msg CharacterSavedMsg) tea.Cmd {
	v.Generating = false
	v.applyFocus()
	if msg.Err != nil {
		v.svc.logger().Error("save character failed", "updated", msg.Updated, "err", msg.Err)
		if msg.Updated {
			v.Err = errUpdateCharacter
		} else {
			v.Err = errGenerateCharacter
		}
		return nil
	}
	v.clearForm()
	if msg.ListErr != nil {
		v.svc.logger().Error("load characters failed", "err", msg.ListErr)
		v.Err = errLoadCharacters
		return nil
	}
	return v.List.SetCharacters(msg.Characters)
}

func (v *CharacterGeneratorView) handleDeleted(msg CharacterDeletedMsg) tea.Cmd {
	if msg.Err != nil {
		v.svc.logger().Error("delete character failed", "id", msg.ID, "err", msg.Err)
		v.Err = errDeleteCharacter
		return nil
	}
	if v.Editing != nil && v.Editing.ID == msg.ID {
		v.cancelEdit()
	}
	if msg.ListErr != nil {
		v.svc.logger().Error("load characters failed", "err", msg.ListErr)
		v.Err = errLoadCharacters
		return nil
	}
	return v.List.SetCharacters(msg.Characters)
}

func (v *CharacterGeneratorView) startEdit(ch api.Character) tea.Cmd {
	if v.Generating {
		return nil
	}
	v.Editing = &ch
	v.Err = ""
	v.Description.SetValue(ch.Description)
	v.SelectedImage = ""
	v.ImagePath.Reset()
	v.Preview = ""
	if ref := ch.FirstReference(); ref != "" {
		v.Preview = "Reference: " + v.svc.Backend.ImageURL(ref)
	}
	v.Focus.SetFocus(focusDescription)
	return v.applyFocus()
}

func (v *CharacterGeneratorView) cancelEdit() {
	v.clearForm()
}

func (v *CharacterGeneratorView) clearForm() {
	v.Description.Reset()
	v.clearImage()
	v.Editing = nil
}

func (v *CharacterGeneratorView) clearImage() {
	v.SelectedImage = ""
	v.ImagePath.Reset()
	v.Preview = ""
}

// confirmImage checks the typed path. An empty path means no new image; the
// reference preview of a character under edit stays.
func (v *CharacterGeneratorView) confirmImage() bool {
	path := strings.TrimSpace(v.ImagePath.Value())
	if path == "" {
		v.dropSelectedImage()
		return true
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		v.dropSelectedImage()
		v.Err = errImageNotFound
		return false
	}
	v.SelectedImage = path
	v.Preview = fmt.Sprintf("%s (%s)", filepath.Base(path), units.HumanSize(float64(info.Size())))
	return true
}

func (v *CharacterGeneratorView) dropSelectedImage() {
	if v.SelectedImage == "" {
		return
	}
	v.SelectedImage = ""
	v.Preview = ""
}

// View implements View.
func (v *CharacterGeneratorView) View() string {
	var b strings.Builder
	title, action := "Create character", "[Generate character]"
	if v.EditMode() {
		title, action = "Edit character", "[Save changes]"
	}
	b.WriteString(Styles.Title.Render(title) + "\n\n")

	b.WriteString(focusLabel(&v.Focus, "Description", focusDescription) + "\n")
	b.WriteString(v.Description.View() + "\n")
	b.WriteString(focusLabel(&v.Focus, "Reference image", focusImage) + "\n")
	b.WriteString(v.ImagePath.View() + "\n")
	if v.Preview != "" {
		b.WriteString(Styles.Muted.Render("Preview: "+v.Preview) + "  " + Styles.Hint.Render("ctrl+x: clear") + "\n")
	}

	if v.Generating {
		label := "Generating..."
		if v.EditMode() {
			label = "Saving..."
		}
		b.WriteString(Styles.Pending.Render(label) + "\n")
	} else {
		hint := "ctrl+s"
		if v.EditMode() {
			hint += "   [Cancel] esc"
		}
		b.WriteString(Styles.Selected.Render(action) + " " + Styles.Hint.Render(hint) + "\n")
	}
	if v.Err != "" {
		b.WriteString(Styles.Error.Render(v.Err) + "\n")
	}

	b.WriteString("\n" + v.List.View())
	return b.String()
}
