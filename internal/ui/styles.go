package ui

import "github.com/charmbracelet/lipgloss"

// Theme colors used throughout the UI
const (
	ColorAccent    = "86"  // Cyan/green - for titles, highlights
	ColorHighlight = "205" // Magenta - for selected items, borders
	ColorDanger    = "196" // Red - for warnings, errors
	ColorMuted     = "241" // Gray - for dimmed text, hints
	ColorText      = "252" // Light gray - for normal text
	ColorSuccess   = "42"  // Green - for installed components
	ColorWarning   = "208" // Orange - for in-progress state
)

// Styles contains shared style definitions used across views and modals.
var Styles = struct {
	Title        lipgloss.Style // Bold accent color - for main titles
	TitleWarning lipgloss.Style // Bold danger color - for warning titles

	Box       lipgloss.Style // Standard box with rounded border
	BoxDanger lipgloss.Style // Warning/error box
	Card      lipgloss.Style // Character and scene cards
	CardFocus lipgloss.Style // Card under the cursor

	Tab       lipgloss.Style
	TabActive lipgloss.Style

	Selected  lipgloss.Style // Highlighted/selected items
	Muted     lipgloss.Style // Dimmed text
	Normal    lipgloss.Style
	Hint      lipgloss.Style // Help/hint text
	Section   lipgloss.Style // Section headers
	Empty     lipgloss.Style // Empty state text
	Error     lipgloss.Style // Inline error messages
	Installed lipgloss.Style
	Pending   lipgloss.Style
	Label     lipgloss.Style
	Details   lipgloss.Style // Warning details
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent)),
	TitleWarning: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorDanger)),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)).
		Padding(1, 2).
		Margin(1),
	BoxDanger: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorDanger)).
		Padding(1, 2).
		Margin(1),
	Card: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(ColorMuted)).
		Padding(0, 1),
	CardFocus: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)).
		Padding(0, 1),
	Tab: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)).
		Padding(0, 1),
	TabActive: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true).
		Underline(true).
		Padding(0, 1),
	Selected: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)),
	Hint: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Section: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)),
	Empty: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)).
		Italic(true),
	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDanger)),
	Installed: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorSuccess)),
	Pending: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWarning)),
	Label: lipgloss.NewStyle(),
	Details: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWarning)),
}

// focusLabel renders a field label, marked when region has focus.
func focusLabel(f *FocusManager, text, region string) string {
	if f.Is(region) {
		return Styles.Selected.Render("> " + text)
	}
	return Styles.Muted.Render("  " + text)
}
