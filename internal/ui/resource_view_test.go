package ui

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"contentadmin/internal/content"
	"contentadmin/internal/resource"
)

// fakeCategories is an in-memory category collection.
type fakeCategories struct {
	items   []content.Category
	deleted []string
	gets    int
	nextID  int
}

func newFakeCategories(titles ...string) *fakeCategories {
	f := &fakeCategories{}
	for _, title := range titles {
		f.add(title)
	}
	return f
}

func (f *fakeCategories) add(title string) content.Category {
	f.nextID++
	c := content.Category{ID: fmt.Sprintf("c%d", f.nextID), Title: title, Slug: content.Slugify(title)}
	f.items = append(f.items, c)
	return c
}

func (f *fakeCategories) List(_ context.Context, page, limit int) (resource.Page[content.Category], error) {
	return resource.SlicePage(f.items, page, limit), nil
}

func (f *fakeCategories) Get(_ context.Context, id string) (content.Category, error) {
	f.gets++
	for _, c := range f.items {
		if c.ID == id {
			return c, nil
		}
	}
	return content.Category{}, resource.NotFoundError("Category not found")
}

func (f *fakeCategories) Create(_ context.Context, in content.CategoryInput) (content.Category, error) {
	for _, c := range f.items {
		if c.Slug == in.Slug {
			return content.Category{}, resource.ValidationError("Slug already exists", map[string]string{"slug": "Slug already exists"})
		}
	}
	c := f.add(in.Title)
	return c, nil
}

func (f *fakeCategories) Update(_ context.Context, id string, in content.CategoryInput) (content.Category, error) {
	for i, c := range f.items {
		if c.ID == id {
			f.items[i].Title = in.Title
			f.items[i].Slug = in.Slug
			return f.items[i], nil
		}
	}
	return content.Category{}, resource.NotFoundError("Category not found")
}

func (f *fakeCategories) Delete(_ context.Context, id string) error {
	for i, c := range f.items {
		if c.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return resource.NotFoundError("Category not found")
}

func newTestCategoryView(f *fakeCategories, pageSize int) (*ResourceView[content.Category, content.CategoryInput], *resource.Manager[content.Category, content.CategoryInput]) {
	mgr := resource.NewManager[content.Category, content.CategoryInput](f, content.CategoryLabels, resource.WithPageSize(pageSize))
	s := &Screens{}
	cfg := ResourceConfig[content.Category, content.CategoryInput]{
		Source: "categories",
		Title:  "Categories",
		Labels: content.CategoryLabels,
		Columns: []Column[content.Category]{
			{Title: "Title", Width: 20, Value: func(c content.Category) string { return c.Title }},
		},
		Form: FormAdapter[content.Category, content.CategoryInput]{
			Fields: entryFields,
			FromItem: func(c content.Category) map[string]string {
				return map[string]string{"title": c.Title, "slug": c.Slug}
			},
			ToPayload: func(v map[string]string) (content.CategoryInput, error) {
				return content.CategoryInput{Title: v["title"], Slug: v["slug"]}, nil
			},
		},
		Name:   func(c content.Category) string { return c.Title },
		Filter: content.FilterByTitle,
		OnEnter: func(c content.Category) (View, AppMode) {
			return s.SubCategories(c), ModeSubCategories
		},
	}
	return NewResourceView[content.Category, content.CategoryInput](context.Background(), cfg, mgr, f), mgr
}

// collect runs cmd and returns the messages it produces, flattening batches.
// Only call it on commands that return immediately.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func findMsg[M any](msgs []tea.Msg) (M, bool) {
	for _, m := range msgs {
		if v, ok := m.(M); ok {
			return v, true
		}
	}
	var zero M
	return zero, false
}

// settle runs cmd and feeds any opDoneMsg or detailLoadedMsg back to v,
// returning every message seen.
func settle(t *testing.T, v View, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	msgs := collect(cmd)
	var all []tea.Msg
	for _, m := range msgs {
		all = append(all, m)
		switch m.(type) {
		case opDoneMsg, detailLoadedMsg:
			_, next := v.Update(m)
			all = append(all, collect(next)...)
		}
	}
	return all
}

func titles(rows []content.Category) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Title
	}
	return out
}

func TestResourceView_LoadsFirstPage(t *testing.T) {
	f := newFakeCategories("Milk Sweets", "Dry Sweets", "Snacks")
	v, _ := newTestCategoryView(f, 2)

	settle(t, v, v.Init())

	if got := titles(v.Rows()); len(got) != 2 || got[0] != "Milk Sweets" {
		t.Fatalf("rows = %v", got)
	}
	if v.loading {
		t.Error("still loading after opDoneMsg")
	}
}

func TestResourceView_Paging(t *testing.T) {
	f := newFakeCategories("a", "b", "c", "d", "e")
	v, mgr := newTestCategoryView(f, 2)
	settle(t, v, v.Init())

	_, cmd := v.Update(keyMsg("n"))
	settle(t, v, cmd)
	if got := mgr.Snapshot().Page.PageNumber; got != 2 {
		t.Fatalf("page = %d, want 2", got)
	}
	if got := titles(v.Rows()); got[0] != "c" {
		t.Errorf("rows = %v", got)
	}

	_, cmd = v.Update(keyMsg("p"))
	settle(t, v, cmd)
	if got := mgr.Snapshot().Page.PageNumber; got != 1 {
		t.Errorf("page = %d, want 1", got)
	}

	// No previous page: nothing is fetched.
	_, cmd = v.Update(keyMsg("p"))
	if cmd != nil {
		t.Error("expected no command on the first page")
	}
}

func TestResourceView_PageSizeCycles(t *testing.T) {
	f := newFakeCategories()
	for i := 0; i < 25; i++ {
		f.add(fmt.Sprintf("Item %02d", i))
	}
	v, mgr := newTestCategoryView(f, 10)
	settle(t, v, v.Init())

	_, cmd := v.Update(keyMsg("s"))
	settle(t, v, cmd)
	snap := mgr.Snapshot()
	if snap.Page.PageSize != 20 || len(v.Rows()) != 20 {
		t.Errorf("page size = %d, rows = %d", snap.Page.PageSize, len(v.Rows()))
	}
}

func TestResourceView_DeleteOnlyAfterConfirm(t *testing.T) {
	f := newFakeCategories("Milk Sweets", "Dry Sweets")
	v, mgr := newTestCategoryView(f, 10)
	settle(t, v, v.Init())

	_, cmd := v.Update(keyMsg("d"))
	open, ok := findMsg[OpenModalMsg](collect(cmd))
	if !ok {
		t.Fatal("expected the confirm modal")
	}
	if len(f.deleted) != 0 {
		t.Fatal("client called before confirmation")
	}
	if c := mgr.Snapshot().Confirmation; !c.Open || c.TargetID != "c1" {
		t.Errorf("confirmation = %+v", c)
	}

	// Answer through the modal, as the user would.
	_, answer := open.View.Update(keyMsg("y"))
	_, cmd = v.Update(answer())
	msgs := settle(t, v, cmd)

	if len(f.deleted) != 1 || f.deleted[0] != "c1" {
		t.Errorf("deleted = %v", f.deleted)
	}
	if _, ok := findMsg[DismissModalMsg](msgs); !ok {
		t.Error("expected the modal to close")
	}
	if got := titles(v.Rows()); len(got) != 1 || got[0] != "Dry Sweets" {
		t.Errorf("rows after delete = %v", got)
	}
	if mgr.Snapshot().Confirmation.Open {
		t.Error("confirmation still open")
	}
}

func TestResourceView_CancelDelete(t *testing.T) {
	f := newFakeCategories("Milk Sweets")
	v, mgr := newTestCategoryView(f, 10)
	settle(t, v, v.Init())

	v.Update(keyMsg("d"))
	_, cmd := v.Update(cancelDeleteMsg{source: "categories"})
	if _, ok := findMsg[DismissModalMsg](collect(cmd)); !ok {
		t.Error("expected the modal to close")
	}
	if mgr.Snapshot().Confirmation.Open {
		t.Error("confirmation still open")
	}
	if len(f.deleted) != 0 {
		t.Errorf("deleted = %v", f.deleted)
	}
}

func TestResourceView_IgnoresOtherSources(t *testing.T) {
	f := newFakeCategories("Milk Sweets")
	v, mgr := newTestCategoryView(f, 10)
	settle(t, v, v.Init())

	v.Update(keyMsg("d"))
	v.Update(confirmDeleteMsg{source: "blogs"})
	if !mgr.Snapshot().Confirmation.Open || len(f.deleted) != 0 {
		t.Error("a message for another screen changed this one")
	}
}

func TestResourceView_Create(t *testing.T) {
	f := newFakeCategories("Snacks")
	v, _ := newTestCategoryView(f, 10)
	settle(t, v, v.Init())

	_, cmd := v.Update(keyMsg("c"))
	open, ok := findMsg[OpenModalMsg](collect(cmd))
	if !ok {
		t.Fatal("expected a form")
	}
	form := open.View.(*FormModal)
	typeText(form, "Dry Sweets")
	_, submit := form.Update(keyMsg("ctrl+s"))

	_, cmd = v.Update(submit())
	msgs := settle(t, v, cmd)
	if _, ok := findMsg[DismissModalMsg](msgs); !ok {
		t.Errorf("expected the form to close, got %v", msgs)
	}
	if got := titles(v.Rows()); len(got) != 2 || got[1] != "Dry Sweets" {
		t.Errorf("rows = %v", got)
	}
}

func TestResourceView_CreateValidationReachesForm(t *testing.T) {
	f := newFakeCategories("Snacks")
	v, _ := newTestCategoryView(f, 10)
	settle(t, v, v.Init())

	_, cmd := v.Update(formSubmitMsg{source: "categories", values: map[string]string{"title": "Snacks", "slug": "snacks"}})
	msgs := settle(t, v, cmd)
	fe, ok := findMsg[FormErrorsMsg](msgs)
	if !ok {
		t.Fatalf("expected FormErrorsMsg, got %v", msgs)
	}
	if fe.Fields["slug"] != "Slug already exists" {
		t.Errorf("fields = %v", fe.Fields)
	}
	if _, ok := findMsg[DismissModalMsg](msgs); ok {
		t.Error("form must stay open on validation errors")
	}
}

func TestResourceView_EditLoadsDetail(t *testing.T) {
	f := newFakeCategories("Snacks")
	v, _ := newTestCategoryView(f, 10)
	settle(t, v, v.Init())

	_, cmd := v.Update(keyMsg("e"))
	msgs := settle(t, v, cmd)
	if f.gets != 1 {
		t.Errorf("Get called %d times", f.gets)
	}
	open, ok := findMsg[OpenModalMsg](msgs)
	if !ok {
		t.Fatalf("expected edit form, got %v", msgs)
	}
	form := open.View.(*FormModal)
	if form.Values()["title"] != "Snacks" || form.id != "c1" {
		t.Errorf("form = %v id=%q", form.Values(), form.id)
	}
}

func TestResourceView_Search(t *testing.T) {
	f := newFakeCategories("Milk Sweets", "Dry Sweets", "Snacks")
	v, _ := newTestCategoryView(f, 10)
	settle(t, v, v.Init())

	v.Update(keyMsg("/"))
	if !v.CapturingInput() {
		t.Fatal("search box should capture input")
	}
	typeText(v, "sweet")
	if got := titles(v.Rows()); len(got) != 2 {
		t.Errorf("filtered rows = %v", got)
	}

	v.Update(keyMsg("enter"))
	if v.CapturingInput() {
		t.Error("enter should close the search box")
	}
	if len(v.Rows()) != 2 {
		t.Error("filter should stay applied")
	}

	v.Update(keyMsg("esc"))
	if len(v.Rows()) != 3 {
		t.Errorf("esc should clear the filter, rows = %v", titles(v.Rows()))
	}
}

func TestResourceView_EnterDrillsDown(t *testing.T) {
	f := newFakeCategories("Milk Sweets")
	v, _ := newTestCategoryView(f, 10)
	settle(t, v, v.Init())

	_, cmd := v.Update(keyMsg("enter"))
	push, ok := findMsg[PushViewMsg](collect(cmd))
	if !ok {
		t.Fatal("expected PushViewMsg")
	}
	if push.Mode != ModeSubCategories {
		t.Errorf("mode = %v", push.Mode)
	}
	child, ok := push.View.(*ResourceView[content.SubCategory, content.SubCategoryInput])
	if !ok {
		t.Fatalf("child = %T", push.View)
	}
	if child.Source() != "subcategories:c1" {
		t.Errorf("child source = %q", child.Source())
	}

	_, cmd = child.Update(keyMsg("esc"))
	if _, ok := findMsg[PopViewMsg](collect(cmd)); !ok {
		t.Error("esc in a child screen should pop")
	}
}

func TestResourceView_EmptyState(t *testing.T) {
	v, _ := newTestCategoryView(newFakeCategories(), 10)
	settle(t, v, v.Init())
	if got := v.View(); !strings.Contains(got, "No categories found") {
		t.Errorf("view = %q", got)
	}
}

func TestBlogPayload(t *testing.T) {
	in, err := blogPayload(map[string]string{"title": "T", "estimatedReadTime": ""})
	if err != nil || in.EstimatedReadTime != content.DefaultReadTime {
		t.Errorf("default read time: %v %v", in.EstimatedReadTime, err)
	}
	in, err = blogPayload(map[string]string{"estimatedReadTime": "12"})
	if err != nil || in.EstimatedReadTime != 12 {
		t.Errorf("read time: %v %v", in.EstimatedReadTime, err)
	}
	_, err = blogPayload(map[string]string{"estimatedReadTime": "soon"})
	if !resource.IsValidation(err) || resource.FieldErrors(err)["estimatedReadTime"] == "" {
		t.Errorf("expected a field error, got %v", err)
	}
}

func TestResourceView_FirstRowSelectedAfterLoad(t *testing.T) {
	f := newFakeCategories("Milk Sweets", "Dry Sweets")
	v, _ := newTestCategoryView(f, 10)
	if _, ok := v.Selected(); ok {
		t.Fatal("selection before any rows were loaded")
	}

	settle(t, v, v.Init())
	got, ok := v.Selected()
	if !ok || got.ID != "c1" {
		t.Fatalf("Selected() = %+v, %v; want the first row", got, ok)
	}

	// Filtering everything away and back keeps a usable cursor.
	v.query = "nothing matches"
	v.sync()
	if _, ok := v.Selected(); ok {
		t.Error("selection with no visible rows")
	}
	v.query = ""
	v.sync()
	if _, ok := v.Selected(); !ok {
		t.Error("selection lost after the rows came back")
	}
}

func TestResourceView_BusyDeleteClosesConfirmation(t *testing.T) {
	f := newFakeCategories("Milk Sweets")
	v, mgr := newTestCategoryView(f, 10)
	settle(t, v, v.Init())

	v.Update(keyMsg("d"))
	if !mgr.Snapshot().Confirmation.Open {
		t.Fatal("expected an open confirmation")
	}

	v.Update(opDoneMsg{source: "categories", op: resource.OpDeleting, err: resource.ErrBusy})
	if c := mgr.Snapshot().Confirmation; c.Open || c.TargetID != "" {
		t.Errorf("confirmation = %+v after a rejected delete", c)
	}
	if !strings.Contains(v.View(), "Another operation is in progress") {
		t.Error("expected the busy status")
	}
	if len(f.deleted) != 0 {
		t.Errorf("deleted = %v", f.deleted)
	}
}
