package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"contentadmin/internal/resource"
	"contentadmin/internal/ui/textutil"
)

// PageSizes are the sizes the page-size key cycles through.
var PageSizes = []int{10, 20, 50}

// Column is one table column of a resource screen.
type Column[T any] struct {
	Title string
	Width int
	Value func(T) string
}

// FormAdapter converts between a resource, its form and its payload.
type FormAdapter[T any, P any] struct {
	Fields []FieldSpec
	// Defaults pre-fill the create form.
	Defaults map[string]string
	// FromItem pre-fills the edit form.
	FromItem func(T) map[string]string
	// ToPayload builds the payload. A *resource.ClientError of kind
	// Validation is shown on the form.
	ToPayload func(values map[string]string) (P, error)
}

// ResourceConfig describes one resource screen.
type ResourceConfig[T resource.Identifiable, P any] struct {
	// Source routes messages back to this screen; unique per screen.
	Source  string
	Title   string
	Labels  resource.Labels
	Columns []Column[T]
	Form    FormAdapter[T, P]
	// Name is shown in the delete confirmation.
	Name func(T) string
	// Filter enables "/" search over the loaded page.
	Filter func(items []T, query string) []T
	// OnEnter, when set, drills into a child screen for the selected row.
	OnEnter func(T) (View, AppMode)
	// Child screens pop back to their parent on Esc.
	Child bool
}

// ResourceView is the list screen of one resource: a table of the current
// page plus create, edit and delete through modals. All manager calls run in
// commands; results come back as opDoneMsg.
type ResourceView[T resource.Identifiable, P any] struct {
	cfg    ResourceConfig[T, P]
	ctx    context.Context
	ctl    resource.Controller[T, P]
	client resource.Client[T, P]

	table   table.Model
	pager   paginator.Model
	spinner spinner.Model
	filter  textinput.Model

	rows      []T
	snap      resource.Snapshot[T]
	loading   bool
	filtering bool
	query     string
	status    string
	width     int
	height    int
}

var _ View = (*ResourceView[resource.Identifiable, any])(nil)

// NewResourceView builds a screen over ctl. client serves the detail loads of
// edit forms.
func NewResourceView[T resource.Identifiable, P any](ctx context.Context, cfg ResourceConfig[T, P], ctl resource.Controller[T, P], client resource.Client[T, P]) *ResourceView[T, P] {
	if ctx == nil {
		ctx = context.Background()
	}
	cols := make([]table.Column, len(cfg.Columns))
	for i, c := range cfg.Columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(12),
		table.WithStyles(newTableStyles()),
	)

	p := paginator.New()
	p.Type = paginator.Arabic

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent))

	f := textinput.New()
	f.Prompt = "/ "
	f.Placeholder = "search by title"
	f.CharLimit = 80

	v := &ResourceView[T, P]{
		cfg:     cfg,
		ctx:     ctx,
		ctl:     ctl,
		client:  client,
		table:   t,
		pager:   p,
		spinner: s,
		filter:  f,
	}
	v.sync()
	return v
}

func (v *ResourceView[T, P]) Source() string { return v.cfg.Source }

// CapturingInput is true while the search box is open.
func (v *ResourceView[T, P]) CapturingInput() bool { return v.filtering }

// Rows returns the items currently shown, after filtering.
func (v *ResourceView[T, P]) Rows() []T { return v.rows }

// Selected returns the item under the cursor.
func (v *ResourceView[T, P]) Selected() (T, bool) {
	var zero T
	i := v.table.Cursor()
	if i < 0 || i >= len(v.rows) {
		return zero, false
	}
	return v.rows[i], true
}

func (v *ResourceView[T, P]) Init() tea.Cmd {
	return v.load(1)
}

// sync copies the manager state into the table.
func (v *ResourceView[T, P]) sync() {
	v.snap = v.ctl.Snapshot()
	items := v.snap.Items
	if v.cfg.Filter != nil && v.query != "" {
		items = v.cfg.Filter(items, v.query)
	}
	v.rows = items

	rows := make([]table.Row, len(items))
	for i, item := range items {
		row := make(table.Row, len(v.cfg.Columns))
		for j, c := range v.cfg.Columns {
			row[j] = textutil.SingleLine(c.Value(item))
		}
		rows[i] = row
	}
	// SetRows on an empty table leaves the cursor at -1.
	v.table.SetRows(rows)
	switch c := v.table.Cursor(); {
	case len(rows) == 0:
	case c < 0:
		v.table.SetCursor(0)
	case c >= len(rows):
		v.table.SetCursor(len(rows) - 1)
	}

	pages := v.snap.Metadata.TotalPages
	if pages < 1 {
		pages = 1
	}
	v.pager.SetTotalPages(pages)
	v.pager.Page = v.snap.Metadata.PageNumber - 1
	if v.pager.Page < 0 {
		v.pager.Page = 0
	}
}

// run starts a manager call in a command and marks the screen busy.
func (v *ResourceView[T, P]) run(op resource.Op, call func(ctx context.Context) error) tea.Cmd {
	v.loading = true
	v.status = ""
	ctx, source := v.ctx, v.cfg.Source
	return tea.Batch(
		func() tea.Msg {
			return opDoneMsg{source: source, op: op, err: call(ctx)}
		},
		v.spinner.Tick,
	)
}

func (v *ResourceView[T, P]) load(n int) tea.Cmd {
	return v.run(resource.OpFetching, func(ctx context.Context) error {
		return v.ctl.LoadPage(ctx, n)
	})
}

func (v *ResourceView[T, P]) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
		if h := msg.Height - 12; h > 3 {
			v.table.SetHeight(h)
		}
		return v, nil

	case spinner.TickMsg:
		if !v.loading {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case opDoneMsg:
		if msg.source != v.cfg.Source {
			return v, nil
		}
		return v, v.handleDone(msg)

	case detailLoadedMsg:
		if msg.source != v.cfg.Source {
			return v, nil
		}
		v.loading = false
		if msg.err != nil {
			v.status = resource.Message(msg.err)
			return v, nil
		}
		item, ok := msg.item.(T)
		if !ok {
			return v, nil
		}
		return v, v.openForm(item.ResourceID(), v.cfg.Form.FromItem(item))

	case formSubmitMsg:
		if msg.source != v.cfg.Source {
			return v, nil
		}
		return v, v.submit(msg)

	case confirmDeleteMsg:
		if msg.source != v.cfg.Source {
			return v, nil
		}
		return v, tea.Batch(
			dismissModal,
			v.run(resource.OpDeleting, v.ctl.ConfirmDelete),
		)

	case cancelDeleteMsg:
		if msg.source != v.cfg.Source {
			return v, nil
		}
		if err := v.ctl.CancelDelete(); err != nil {
			v.status = err.Error()
		}
		v.sync()
		return v, dismissModal

	case tea.KeyMsg:
		if v.filtering {
			return v, v.updateFilter(msg)
		}
		if cmd, handled := v.handleKey(msg); handled {
			return v, cmd
		}
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func dismissModal() tea.Msg { return DismissModalMsg{} }

func (v *ResourceView[T, P]) handleDone(msg opDoneMsg) tea.Cmd {
	v.loading = false
	v.sync()
	err := msg.err
	switch msg.op {
	case resource.OpCreating, resource.OpUpdating:
		if err == nil {
			return dismissModal
		}
		if errors.Is(err, resource.ErrBusy) {
			return formErrors("Another operation is in progress", nil)
		}
		if resource.IsValidation(err) {
			return formErrors(validationSummary(err), resource.FieldErrors(err))
		}
		return formErrors(resource.Message(err), nil)
	case resource.OpDeleting:
		if errors.Is(err, resource.ErrBusy) {
			// The modal is already gone; don't leave the confirmation open.
			_ = v.ctl.CancelDelete()
			v.sync()
			v.status = "Another operation is in progress"
			return nil
		}
		if err != nil {
			v.status = resource.Message(err)
		}
		return nil
	default:
		if err != nil {
			v.status = resource.Message(err)
		}
		return nil
	}
}

func formErrors(message string, fields map[string]string) tea.Cmd {
	return func() tea.Msg { return FormErrorsMsg{Message: message, Fields: fields} }
}

// validationSummary keeps the server message only when no field carries it.
func validationSummary(err error) string {
	if len(resource.FieldErrors(err)) > 0 {
		return ""
	}
	return resource.Message(err)
}

func (v *ResourceView[T, P]) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	meta := v.snap.Metadata
	switch msg.String() {
	case "n", "right":
		if meta.NextPage == nil {
			return nil, true
		}
		return v.load(*meta.NextPage), true
	case "p", "left":
		if meta.PreviousPage == nil {
			return nil, true
		}
		return v.load(*meta.PreviousPage), true
	case "r":
		return v.load(v.currentPage()), true
	case "s":
		size := nextPageSize(v.snap.Page.PageSize)
		return v.run(resource.OpFetching, func(ctx context.Context) error {
			return v.ctl.SetPageSize(ctx, size)
		}), true
	case "c":
		return v.openForm("", v.cfg.Form.Defaults), true
	case "e":
		item, ok := v.Selected()
		if !ok {
			return nil, true
		}
		return v.loadDetail(item.ResourceID()), true
	case "d":
		item, ok := v.Selected()
		if !ok {
			return nil, true
		}
		if err := v.ctl.RequestDelete(item.ResourceID()); err != nil {
			v.status = err.Error()
			return nil, true
		}
		v.sync()
		modal := NewDeleteConfirmModal(v.cfg.Source, v.cfg.Labels, v.name(item))
		return func() tea.Msg { return OpenModalMsg{View: modal} }, true
	case "/":
		if v.cfg.Filter == nil {
			return nil, false
		}
		v.filtering = true
		v.filter.SetValue(v.query)
		return v.filter.Focus(), true
	case "enter":
		if v.cfg.OnEnter == nil {
			return nil, true
		}
		item, ok := v.Selected()
		if !ok {
			return nil, true
		}
		child, mode := v.cfg.OnEnter(item)
		return func() tea.Msg { return PushViewMsg{View: child, Mode: mode} }, true
	case "esc":
		if v.query != "" {
			v.query = ""
			v.sync()
			return nil, true
		}
		if v.cfg.Child {
			return func() tea.Msg { return PopViewMsg{} }, true
		}
		return nil, true
	}
	return nil, false
}

func (v *ResourceView[T, P]) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		v.filtering = false
		v.query = ""
		v.filter.Blur()
		v.sync()
		return nil
	case "enter":
		v.filtering = false
		v.filter.Blur()
		return nil
	}
	var cmd tea.Cmd
	v.filter, cmd = v.filter.Update(msg)
	v.query = strings.TrimSpace(v.filter.Value())
	v.sync()
	v.table.SetCursor(0)
	return cmd
}

func (v *ResourceView[T, P]) currentPage() int {
	if n := v.snap.Page.PageNumber; n > 0 {
		return n
	}
	return 1
}

func nextPageSize(current int) int {
	for i, s := range PageSizes {
		if s == current {
			return PageSizes[(i+1)%len(PageSizes)]
		}
	}
	return PageSizes[0]
}

func (v *ResourceView[T, P]) name(item T) string {
	if v.cfg.Name != nil {
		return v.cfg.Name(item)
	}
	return item.ResourceID()
}

func (v *ResourceView[T, P]) loadDetail(id string) tea.Cmd {
	v.loading = true
	ctx, source, client := v.ctx, v.cfg.Source, v.client
	return tea.Batch(
		func() tea.Msg {
			item, err := client.Get(ctx, id)
			return detailLoadedMsg{source: source, item: item, err: err}
		},
		v.spinner.Tick,
	)
}

func (v *ResourceView[T, P]) openForm(id string, initial map[string]string) tea.Cmd {
	title := "New " + strings.ToLower(v.cfg.Labels.Singular)
	if id != "" {
		title = "Edit " + strings.ToLower(v.cfg.Labels.Singular)
	}
	form := NewFormModal(v.cfg.Source, title, id, v.cfg.Form.Fields, initial)
	return func() tea.Msg { return OpenModalMsg{View: form} }
}

func (v *ResourceView[T, P]) submit(msg formSubmitMsg) tea.Cmd {
	payload, err := v.cfg.Form.ToPayload(msg.values)
	if err != nil {
		if resource.IsValidation(err) {
			return formErrors(validationSummary(err), resource.FieldErrors(err))
		}
		return formErrors(err.Error(), nil)
	}
	if msg.id == "" {
		return v.run(resource.OpCreating, func(ctx context.Context) error {
			_, err := v.ctl.Create(ctx, payload)
			return err
		})
	}
	id := msg.id
	return v.run(resource.OpUpdating, func(ctx context.Context) error {
		_, err := v.ctl.Update(ctx, id, payload)
		return err
	})
}

func (v *ResourceView[T, P]) View() string {
	var b strings.Builder

	title := Styles.Header.Render(v.cfg.Title)
	if v.loading {
		title += " " + v.spinner.View()
	}
	b.WriteString(title + "\n")

	if v.filtering || v.query != "" {
		b.WriteString(v.filter.View() + "\n")
	}

	if len(v.rows) == 0 {
		empty := "No " + v.cfg.Labels.Plural + " found"
		if v.query != "" {
			empty = "No " + v.cfg.Labels.Plural + " match \"" + v.query + "\""
		}
		if v.loading && len(v.snap.Items) == 0 {
			empty = "Loading " + v.cfg.Labels.Plural + "…"
		}
		b.WriteString(Styles.Empty.Render(empty) + "\n")
	} else {
		b.WriteString(v.table.View() + "\n")
	}

	meta := v.snap.Metadata
	footer := fmt.Sprintf("Page %s  ·  %d total  ·  %d per page", v.pager.View(), meta.TotalItems, v.snap.Page.PageSize)
	b.WriteString("\n" + Styles.Muted.Render(footer) + "\n")

	if v.status != "" {
		b.WriteString(Styles.StatusErr.Render(v.status) + "\n")
	} else if err := v.snap.LastError; err != nil && !v.loading {
		b.WriteString(Styles.StatusErr.Render(resource.Message(err)) + "\n")
	}

	b.WriteString(Styles.Hint.Render(v.hints()))
	return b.String()
}

func (v *ResourceView[T, P]) hints() string {
	parts := []string{"c: new", "e: edit", "d: delete", "n/p: page", "s: page size", "r: refresh"}
	if v.cfg.Filter != nil {
		parts = append(parts, "/: search")
	}
	if v.cfg.OnEnter != nil {
		parts = append(parts, "enter: open")
	}
	if v.cfg.Child {
		parts = append(parts, "esc: back")
	}
	return strings.Join(parts, "  ")
}
