package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"contentadmin/internal/resource"
)

// ConfirmModal asks a yes/no question. Enter or y confirms; Esc or n cancels.
type ConfirmModal struct {
	Title     string
	Label     string
	Details   string
	OnConfirm func() tea.Msg
	OnCancel  func() tea.Msg
}

var _ View = (*ConfirmModal)(nil)

func NewConfirmModal(title, label string, onConfirm func() tea.Msg) *ConfirmModal {
	return &ConfirmModal{
		Title:     title,
		Label:     label,
		OnConfirm: onConfirm,
		OnCancel:  func() tea.Msg { return DismissModalMsg{} },
	}
}

// WithDetails adds a warning line under the label.
func (m *ConfirmModal) WithDetails(details string) *ConfirmModal {
	m.Details = details
	return m
}

// NewDeleteConfirmModal confirms deletion of one resource. Both answers are
// reported to the screen named by source, which owns the manager's
// confirmation state.
func NewDeleteConfirmModal(source string, labels resource.Labels, name string) *ConfirmModal {
	m := NewConfirmModal(
		fmt.Sprintf("Delete %s?", strings.ToLower(labels.Singular)),
		name,
		func() tea.Msg { return confirmDeleteMsg{source: source} },
	)
	m.OnCancel = func() tea.Msg { return cancelDeleteMsg{source: source} }
	return m.WithDetails("This action cannot be undone.")
}

func (m *ConfirmModal) Init() tea.Cmd { return nil }

func (m *ConfirmModal) Update(msg tea.Msg) (View, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "esc", "n":
		return m, m.OnCancel
	case "enter", "y":
		return m, m.OnConfirm
	}
	return m, nil
}

func (m *ConfirmModal) View() string {
	content := Styles.TitleWarning.Render(m.Title) + "\n\n"
	content += Styles.Label.Render(m.Label)
	if m.Details != "" {
		content += "\n" + Styles.Details.Render(m.Details)
	}
	content += "\n\n" + Styles.Hint.Render("y/Enter: confirm  n/Esc: cancel")
	return Styles.BoxDanger.Render(content)
}
