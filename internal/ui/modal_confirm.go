package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"animestudio/internal/api"
)

// ConfirmModal asks a yes/no question. Enter or y confirms; Esc or n cancels.
type ConfirmModal struct {
	Title     string
	Label     string
	Details   string
	OnConfirm func() tea.Msg
}

// Ensure ConfirmModal implements View.
var _ View = (*ConfirmModal)(nil)

// NewConfirmModal creates a confirmation modal.
func NewConfirmModal(title, label string, onConfirm func() tea.Msg) *ConfirmModal {
	return &ConfirmModal{Title: title, Label: label, OnConfirm: onConfirm}
}

// WithDetails adds warning details to the modal.
func (m *ConfirmModal) WithDetails(details string) *ConfirmModal {
	m.Details = details
	return m
}

// NewDeleteCharacterConfirmModal asks before deleting ch. The confirm message
// comes from onDelete so the list decides who handles the delete.
func NewDeleteCharacterConfirmModal(ch api.Character, onDelete func(id string) tea.Msg) *ConfirmModal {
	return NewConfirmModal(
		"Delete character?",
		ch.Description,
		func() tea.Msg { return onDelete(ch.ID) },
	).WithDetails("Generated and reference images are removed too")
}

// Init implements View.
func (m *ConfirmModal) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (m *ConfirmModal) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "n":
			return m, dismissModal
		case "enter", "y":
			if m.OnConfirm == nil {
				return m, dismissModal
			}
			return m, tea.Batch(dismissModal, m.OnConfirm)
		}
	}
	return m, nil
}

func dismissModal() tea.Msg { return DismissModalMsg{} }

// View implements View.
func (m *ConfirmModal) View() string {
	content := Styles.TitleWarning.Render(m.Title) + "\n\n"
	content += Styles.Label.Render(m.Label)
	if m.Details != "" {
		content += "\n" + Styles.Details.Render(m.Details)
	}
	content += "\n\n" + Styles.Hint.Render("y/Enter: confirm  n/Esc: cancel")
	return Styles.BoxDanger.Render(content)
}
