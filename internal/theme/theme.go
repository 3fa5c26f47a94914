package theme

import "github.com/charmbracelet/lipgloss"

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	Loading        *lipgloss.Style
	Header         *lipgloss.Style
	Column         *lipgloss.Style
	WindowTitle    *lipgloss.Style
	FocusedWindow  *lipgloss.Style
	Tab            *lipgloss.Style
	ActiveTab      *lipgloss.Style
	FocusedTab     *lipgloss.Style
	SelectedMarker *lipgloss.Style
	DragMarker     *lipgloss.Style
	DropMarker     *lipgloss.Style
	Pinned         *lipgloss.Style
	Duplicate      *lipgloss.Style
	Error          *lipgloss.Style
	Info           *lipgloss.Style
	Footer         *lipgloss.Style
	SearchPrompt   *lipgloss.Style
	Search         *lipgloss.Style
}

var defaultStyles = Styles{
	Loading: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Italic(true),
	),
	Header: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	Column: ptr(
		lipgloss.NewStyle().PaddingRight(2),
	),
	WindowTitle: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	FocusedWindow: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
	),
	Tab: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	ActiveTab: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
	),
	FocusedTab: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
	),
	SelectedMarker: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
	DragMarker: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
	),
	DropMarker: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	),
	Pinned: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
	),
	Duplicate: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("167")),
	),
	Error: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	),
	Info: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	Footer: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
	SearchPrompt: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
	Search: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
}

// Default exposes the standard style set used across the application.
func Default() *Styles {
	return &defaultStyles
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
