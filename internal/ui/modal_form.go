package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"contentadmin/internal/content"
	"contentadmin/internal/ui/textutil"
)

// FieldKind selects the input widget of a form field.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldTextArea
	FieldNumber
	FieldFile // local path of an image to upload
)

// FieldSpec describes one form field. Key is the wire field name.
type FieldSpec struct {
	Key         string
	Label       string
	Placeholder string
	Kind        FieldKind
	// SlugOf names the field this one is derived from until edited by hand.
	SlugOf string
}

type formField struct {
	spec  FieldSpec
	input textinput.Model
	area  textarea.Model
}

func newFormField(spec FieldSpec, width int) *formField {
	f := &formField{spec: spec}
	if spec.Kind == FieldTextArea {
		ta := textarea.New()
		ta.Placeholder = spec.Placeholder
		ta.ShowLineNumbers = false
		ta.SetWidth(width)
		ta.SetHeight(5)
		ta.CharLimit = 0
		f.area = ta
		return f
	}
	ti := textinput.New()
	ti.Placeholder = spec.Placeholder
	ti.Width = width
	ti.CharLimit = 512
	if spec.Kind == FieldNumber {
		ti.CharLimit = 4
	}
	f.input = ti
	return f
}

func (f *formField) value() string {
	if f.spec.Kind == FieldTextArea {
		return f.area.Value()
	}
	return f.input.Value()
}

func (f *formField) setValue(v string) {
	if f.spec.Kind == FieldTextArea {
		f.area.SetValue(v)
		return
	}
	f.input.SetValue(v)
	f.input.CursorEnd()
}

func (f *formField) focus() tea.Cmd {
	if f.spec.Kind == FieldTextArea {
		return f.area.Focus()
	}
	return f.input.Focus()
}

func (f *formField) blur() {
	if f.spec.Kind == FieldTextArea {
		f.area.Blur()
		return
	}
	f.input.Blur()
}

func (f *formField) update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok && f.spec.Kind == FieldNumber && k.Type == tea.KeyRunes && !digits(k.Runes) {
		return nil
	}
	var cmd tea.Cmd
	if f.spec.Kind == FieldTextArea {
		f.area, cmd = f.area.Update(msg)
	} else {
		f.input, cmd = f.input.Update(msg)
	}
	return cmd
}

func digits(rs []rune) bool {
	for _, r := range rs {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (f *formField) view() string {
	if f.spec.Kind == FieldTextArea {
		return f.area.View()
	}
	return f.input.View()
}

// FormModal edits the fields of one resource. It never calls the API: Enter
// on the last field (or ctrl+s anywhere) sends the values to the screen that
// opened it, and the screen answers with FormErrorsMsg or closes the modal.
type FormModal struct {
	Title      string
	source     string
	id         string
	fields     []*formField
	focus      int
	errors     map[string]string
	message    string
	preview    string
	submitting bool
	slugEdited bool
}

var _ View = (*FormModal)(nil)

// NewFormModal builds a form. id is empty for create forms; initial
// pre-fills fields by key.
func NewFormModal(source, title, id string, specs []FieldSpec, initial map[string]string) *FormModal {
	m := &FormModal{Title: title, source: source, id: id, slugEdited: id != ""}
	for _, spec := range specs {
		f := newFormField(spec, 56)
		if v, ok := initial[spec.Key]; ok {
			f.setValue(v)
		}
		m.fields = append(m.fields, f)
	}
	if len(m.fields) > 0 {
		m.fields[0].focus()
	}
	m.refreshPreview()
	return m
}

func (m *FormModal) CapturingInput() bool { return true }

// Values returns the current field values by key, trimmed except for
// multi-line text.
func (m *FormModal) Values() map[string]string {
	out := make(map[string]string, len(m.fields))
	for _, f := range m.fields {
		v := f.value()
		if f.spec.Kind != FieldTextArea {
			v = strings.TrimSpace(v)
		}
		out[f.spec.Key] = v
	}
	return out
}

// SetValue replaces a field's value, as if typed.
func (m *FormModal) SetValue(key, value string) {
	if f := m.field(key); f != nil {
		f.setValue(value)
		if f.spec.SlugOf != "" {
			m.slugEdited = true
		}
		m.afterEdit(f)
	}
}

// Errors returns the field errors currently shown.
func (m *FormModal) Errors() map[string]string { return m.errors }

func (m *FormModal) Focused() string {
	if len(m.fields) == 0 {
		return ""
	}
	return m.fields[m.focus].spec.Key
}

func (m *FormModal) Init() tea.Cmd {
	return textinput.Blink
}

func (m *FormModal) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case FormErrorsMsg:
		m.submitting = false
		m.errors = msg.Fields
		m.message = msg.Message
		if key := m.firstErrorField(); key != "" {
			return m, m.focusKey(key)
		}
		return m, nil
	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return DismissModalMsg{} }
		case "ctrl+s":
			return m, m.submit()
		case "tab", "down":
			if msg.String() == "down" && m.current().spec.Kind == FieldTextArea {
				break
			}
			return m, m.move(1)
		case "shift+tab", "up":
			if msg.String() == "up" && m.current().spec.Kind == FieldTextArea {
				break
			}
			return m, m.move(-1)
		case "enter":
			if m.current().spec.Kind == FieldTextArea {
				break
			}
			if m.focus == len(m.fields)-1 {
				return m, m.submit()
			}
			return m, m.move(1)
		}
	}
	if len(m.fields) == 0 {
		return m, nil
	}
	f := m.current()
	before := f.value()
	cmd := f.update(msg)
	if f.value() != before {
		if f.spec.SlugOf != "" {
			m.slugEdited = true
		}
		m.afterEdit(f)
	}
	return m, cmd
}

func (m *FormModal) current() *formField { return m.fields[m.focus] }

func (m *FormModal) field(key string) *formField {
	for _, f := range m.fields {
		if f.spec.Key == key {
			return f
		}
	}
	return nil
}

// afterEdit keeps derived slugs and the cover preview in sync with f.
func (m *FormModal) afterEdit(f *formField) {
	if !m.slugEdited {
		for _, other := range m.fields {
			if other.spec.SlugOf == f.spec.Key {
				other.setValue(content.Slugify(f.value()))
			}
		}
	}
	if f.spec.Kind == FieldFile {
		m.refreshPreview()
	}
}

func (m *FormModal) refreshPreview() {
	m.preview = ""
	for _, f := range m.fields {
		if f.spec.Kind != FieldFile {
			continue
		}
		path := strings.TrimSpace(f.value())
		if path == "" {
			continue
		}
		p, err := content.DescribeAttachment(path)
		if err != nil {
			m.preview = "file not found"
			continue
		}
		m.preview = p.String()
	}
}

func (m *FormModal) move(delta int) tea.Cmd {
	next := (m.focus + delta + len(m.fields)) % len(m.fields)
	return m.focusIndex(next)
}

func (m *FormModal) focusIndex(i int) tea.Cmd {
	m.fields[m.focus].blur()
	m.focus = i
	return m.fields[i].focus()
}

func (m *FormModal) focusKey(key string) tea.Cmd {
	for i, f := range m.fields {
		if f.spec.Key == key {
			return m.focusIndex(i)
		}
	}
	return nil
}

func (m *FormModal) firstErrorField() string {
	for _, f := range m.fields {
		if _, ok := m.errors[f.spec.Key]; ok {
			return f.spec.Key
		}
	}
	return ""
}

func (m *FormModal) submit() tea.Cmd {
	m.submitting = true
	m.message = ""
	msg := formSubmitMsg{source: m.source, id: m.id, values: m.Values()}
	return func() tea.Msg { return msg }
}

func (m *FormModal) View() string {
	var b strings.Builder
	b.WriteString(Styles.Title.Render(m.Title) + "\n")
	for i, f := range m.fields {
		label := f.spec.Label
		if i == m.focus {
			label = Styles.Selected.Render("› " + label)
		} else {
			label = Styles.Label.Render("  " + label)
		}
		b.WriteString("\n" + label + "\n" + f.view() + "\n")
		if f.spec.Kind == FieldFile && m.preview != "" {
			b.WriteString(Styles.Muted.Render(textutil.Truncate(m.preview, 56)) + "\n")
		}
		if e, ok := m.errors[f.spec.Key]; ok {
			b.WriteString(Styles.FieldErr.Render(e) + "\n")
		}
	}
	// Field errors the form has no input for.
	var stray []string
	for k, e := range m.errors {
		if m.field(k) == nil {
			stray = append(stray, e)
		}
	}
	sort.Strings(stray)
	for _, e := range stray {
		b.WriteString(Styles.FieldErr.Render(e) + "\n")
	}
	if m.message != "" {
		b.WriteString("\n" + Styles.StatusErr.Render(m.message) + "\n")
	}
	b.WriteString("\n")
	if m.submitting {
		b.WriteString(Styles.Hint.Render("Saving…"))
	} else {
		b.WriteString(Styles.Hint.Render("Tab: next field  Enter/ctrl+s: save  Esc: cancel"))
	}
	return Styles.Box.Render(b.String())
}
