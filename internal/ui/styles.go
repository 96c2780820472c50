package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Theme colors used throughout the UI
const (
	ColorAccent    = "86"  // titles, highlights
	ColorHighlight = "205" // selection, modal borders
	ColorDanger    = "196" // errors, delete confirmation
	ColorMuted     = "241" // hints
	ColorText      = "252"
	ColorWarning   = "208"
	ColorSuccess   = "42"
)

// Styles contains shared style definitions used across views and modals.
var Styles = struct {
	Title        lipgloss.Style
	TitleWarning lipgloss.Style

	Box       lipgloss.Style // modal box
	BoxDanger lipgloss.Style // destructive confirmation box

	Selected  lipgloss.Style
	Muted     lipgloss.Style
	Normal    lipgloss.Style
	Hint      lipgloss.Style
	Label     lipgloss.Style
	Details   lipgloss.Style
	FieldErr  lipgloss.Style
	Empty     lipgloss.Style
	StatusOK  lipgloss.Style
	StatusErr lipgloss.Style
	Header    lipgloss.Style
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
	Selected: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true),
	Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorMuted)),
	Normal: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorText)),
	Hint:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorMuted)),
	Label:  lipgloss.NewStyle().Bold(true),
	Details: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWarning)),
	FieldErr: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDanger)),
	Empty: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)).
		Italic(true),
	StatusOK: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorSuccess)),
	StatusErr: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDanger)).
		Bold(true),
	Header: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent)).
		MarginBottom(1),
}

// newTableStyles returns the resource table styling.
func newTableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(ColorMuted)).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(ColorHighlight)).
		Background(lipgloss.Color("")).
		Bold(true)
	return s
}
