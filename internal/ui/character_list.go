package ui

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"animestudio/internal/api"
	"animestudio/internal/ui/textutil"
)

const (
	characterCardChars = 100
	timeLayout         = "2006-01-02 15:04"
)

// SortCharacters returns a copy of chars, newest first. Characters with the
// same creation time keep their relative order; unparseable times sort last.
func SortCharacters(chars []api.Character) []api.Character {
	out := slices.Clone(chars)
	slices.SortStableFunc(out, func(a, b api.Character) int {
		switch {
		case a.CreatedAt.After(b.CreatedAt):
			return -1
		case b.CreatedAt.After(a.CreatedAt):
			return 1
		}
		return 0
	})
	return out
}

// CharacterListView renders character cards with edit and delete actions.
// It lives inside the character generator, which owns its data.
type CharacterListView struct {
	Owner      int64
	Characters []api.Character // sorted, newest first
	Cursor     int
	Focused    bool

	// OnEdit and OnDelete build the messages sent for the card under the
	// cursor. Delete only fires after the confirm modal.
	OnEdit   func(api.Character) tea.Msg
	OnDelete func(id string) tea.Msg

	svc    *Services
	images imageSet
}

// Ensure CharacterListView implements View.
var _ View = (*CharacterListView)(nil)

// NewCharacterListView creates an empty list whose async results carry owner.
func NewCharacterListView(svc *Services, owner int64) *CharacterListView {
	return &CharacterListView{Owner: owner, svc: svc, images: imageSet{}}
}

// SetCharacters replaces the list with a sorted copy of chars and returns
// probes for images not seen before.
func (l *CharacterListView) SetCharacters(chars []api.Character) tea.Cmd {
	l.Characters = SortCharacters(chars)
	if l.Cursor >= len(l.Characters) {
		l.Cursor = max(0, len(l.Characters)-1)
	}

	keep := make(map[string]bool, len(l.Characters))
	var probes []tea.Cmd
	for _, ch := range l.Characters {
		keep[ch.ID] = true
		url := l.imageURL(ch.ImageURL)
		if ref, fresh := l.images.ensure(ch.ID, url, placeholderCharacter); fresh && l.svc != nil {
			probes = append(probes, probeImageCmd(l.svc, l.Owner, ch.ID, ref.URL))
		}
	}
	l.images.prune(keep)
	return tea.Batch(probes...)
}

func (l *CharacterListView) imageURL(path string) string {
	if l.svc == nil || l.svc.Backend == nil {
		return path
	}
	return l.svc.Backend.ImageURL(path)
}

// Selected returns the character under the cursor.
func (l *CharacterListView) Selected() (api.Character, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Characters) {
		return api.Character{}, false
	}
	return l.Characters[l.Cursor], true
}

// Image returns the display ref for a character id.
func (l *CharacterListView) Image(id string) *ImageRef {
	return l.images[id]
}

// Init implements View.
func (l *CharacterListView) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (l *CharacterListView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case ImageProbedMsg:
		if msg.Owner == l.Owner && msg.Err != nil && l.images.fail(msg.Key, msg.URL) {
			l.svc.logger().Debug("character image unavailable, using placeholder", "id", msg.Key, "url", msg.URL, "err", msg.Err)
		}
	case tea.KeyMsg:
		if !l.Focused {
			return l, nil
		}
		switch msg.String() {
		case "j", "down":
			if l.Cursor < len(l.Characters)-1 {
				l.Cursor++
			}
		case "k", "up":
			if l.Cursor > 0 {
				l.Cursor--
			}
		case "e", "enter":
			if ch, ok := l.Selected(); ok && l.OnEdit != nil {
				return l, func() tea.Msg { return l.OnEdit(ch) }
			}
		case "x", "d":
			if ch, ok := l.Selected(); ok && l.OnDelete != nil {
				modal := NewDeleteCharacterConfirmModal(ch, l.OnDelete)
				return l, func() tea.Msg { return ShowModalMsg{View: modal} }
			}
		}
	}
	return l, nil
}

// View implements View.
func (l *CharacterListView) View() string {
	var b strings.Builder
	b.WriteString(Styles.Section.Render("Your characters") + "\n")
	if len(l.Characters) == 0 {
		b.WriteString(Styles.Empty.Render("No characters yet"))
		return b.String()
	}
	for i, ch := range l.Characters {
		style := Styles.Card
		if l.Focused && i == l.Cursor {
			style = Styles.CardFocus
		}
		b.WriteString(style.Render(l.renderCard(ch)) + "\n")
	}
	if l.Focused {
		b.WriteString(Styles.Hint.Render("j/k: move  e: edit  x: delete"))
	}
	return b.String()
}

func (l *CharacterListView) renderCard(ch api.Character) string {
	lines := []string{Styles.Normal.Render(textutil.TruncateChars(ch.Description, characterCardChars))}
	if ref := l.images[ch.ID]; ref != nil {
		lines = append(lines, Styles.Muted.Render("Image: "+ref.Src()))
	}
	lines = append(lines, Styles.Muted.Render("Created: "+ch.CreatedAt.Format(timeLayout)))
	if ch.WasUpdated() {
		lines = append(lines, Styles.Muted.Render("Updated: "+ch.UpdatedAt.Format(timeLayout)))
	}
	return strings.Join(lines, "\n")
}
