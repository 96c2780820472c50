package ui

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"contentadmin/internal/apiclient"
	"contentadmin/internal/auth"
	"contentadmin/internal/content"
	"contentadmin/internal/mockapi"
	"contentadmin/internal/resource"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "changeme123"
)

// newTestApp wires the app to a seeded mock API.
func newTestApp(t *testing.T) (*appModelAdapter, *auth.Service) {
	t.Helper()
	store, err := mockapi.OpenStore(filepath.Join(t.TempDir(), "mock.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := mockapi.Seed(store, testEmail, testPassword); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	srv := httptest.NewServer(mockapi.NewServer(store, mockapi.NewTokens("ui-test", time.Hour), nil).Routes())
	t.Cleanup(srv.Close)

	var svc *auth.Service
	api, err := apiclient.New(srv.URL+mockapi.BasePath, apiclient.WithTokenSource(func() string {
		if svc == nil {
			return ""
		}
		return svc.Token()
	}))
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	sessions, err := auth.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	svc = auth.NewService(api, sessions, nil)

	app := NewAppModel(AppConfig{Auth: svc, Transport: api, PageSize: 10})
	return app.AsTeaModel().(*appModelAdapter), svc
}

// feed sends msg to the app and keeps feeding the app-level messages its
// commands produce, skipping timers.
func feed(a *appModelAdapter, msg tea.Msg) {
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		_, cmd := a.Update(m)
		for _, next := range collectApp(cmd) {
			queue = append(queue, next)
		}
	}
}

// collectApp runs cmd and keeps the messages the app routes. Spinner and
// cursor ticks are dropped so the loop ends.
func collectApp(cmd tea.Cmd) []tea.Msg {
	var out []tea.Msg
	for _, m := range collect(cmd) {
		switch m.(type) {
		case loginResultMsg, loggedOutMsg, SwitchModeMsg, OpenModalMsg, DismissModalMsg,
			PushViewMsg, PopViewMsg, FormErrorsMsg, opDoneMsg, detailLoadedMsg,
			formSubmitMsg, confirmDeleteMsg, cancelDeleteMsg, LogoutMsg, tea.WindowSizeMsg:
			out = append(out, m)
		}
	}
	return out
}

func login(t *testing.T, a *appModelAdapter) {
	t.Helper()
	feed(a, LoginSubmitMsg{Email: testEmail, Password: testPassword})
	if a.Mode != ModeCategories {
		t.Fatalf("mode after login = %v", a.Mode)
	}
}

func categoryScreen(t *testing.T, a *appModelAdapter) *ResourceView[content.Category, content.CategoryInput] {
	t.Helper()
	v, ok := a.CurrentView().(*ResourceView[content.Category, content.CategoryInput])
	if !ok {
		t.Fatalf("current view = %T", a.CurrentView())
	}
	return v
}

func pressKeys(a *appModelAdapter, keys ...string) {
	for _, k := range keys {
		feed(a, keyMsg(k))
	}
}

func TestApp_StartsAtLogin(t *testing.T) {
	a, _ := newTestApp(t)
	a.Init()
	if a.Mode != ModeLogin {
		t.Fatalf("mode = %v, want login", a.Mode)
	}

	feed(a, SwitchModeMsg{Mode: ModeBlogs})
	if a.Mode != ModeLogin {
		t.Error("protected mode opened without a session")
	}
	if !strings.Contains(a.View(), msgSignInFirst) {
		t.Error("expected sign-in prompt")
	}
}

func TestApp_LoginFailureStaysOnLogin(t *testing.T) {
	a, svc := newTestApp(t)
	feed(a, LoginSubmitMsg{Email: testEmail, Password: "wrong-password"})
	if a.Mode != ModeLogin {
		t.Fatalf("mode = %v", a.Mode)
	}
	if svc.IsAuthenticated() {
		t.Error("session created on failed login")
	}
	if a.Login.message == "" {
		t.Error("expected an error on the login form")
	}
}

func TestApp_LoginLoadsCategories(t *testing.T) {
	a, _ := newTestApp(t)
	login(t, a)

	v := categoryScreen(t, a)
	if len(v.Rows()) != 3 {
		t.Errorf("rows = %d, want the 3 seeded categories", len(v.Rows()))
	}
	status, isErr := a.Status()
	if isErr || status != "Categories: page 1 of 1" {
		t.Errorf("status = %q (err=%v)", status, isErr)
	}
	if !strings.Contains(a.View(), "Milk Sweets") {
		t.Error("expected seeded category in view")
	}
}

func TestApp_LeaderSwitchesSection(t *testing.T) {
	a, _ := newTestApp(t)
	login(t, a)

	pressKeys(a, " ", "g", "b")
	if a.Mode != ModeBlogs {
		t.Fatalf("mode = %v, want blogs", a.Mode)
	}
	blogs, ok := a.CurrentView().(*ResourceView[content.Blog, content.BlogInput])
	if !ok {
		t.Fatalf("current view = %T", a.CurrentView())
	}
	if len(blogs.Rows()) != 1 {
		t.Errorf("blog rows = %d", len(blogs.Rows()))
	}

	pressKeys(a, " ", "g", "c")
	if a.Mode != ModeCategories {
		t.Fatalf("mode = %v", a.Mode)
	}
	if len(categoryScreen(t, a).Rows()) != 3 {
		t.Error("category screen lost its rows")
	}
}

func TestApp_DrillIntoSubcategories(t *testing.T) {
	a, _ := newTestApp(t)
	login(t, a)

	pressKeys(a, "enter")
	if a.Mode != ModeSubCategories {
		t.Fatalf("mode = %v, want subcategories", a.Mode)
	}
	if _, ok := a.CurrentView().(*ResourceView[content.SubCategory, content.SubCategoryInput]); !ok {
		t.Fatalf("current view = %T", a.CurrentView())
	}

	pressKeys(a, "esc")
	if a.Mode != ModeCategories {
		t.Errorf("mode after esc = %v", a.Mode)
	}
}

func TestApp_ModalCapturesKeys(t *testing.T) {
	a, _ := newTestApp(t)
	login(t, a)

	pressKeys(a, "c")
	top, ok := a.Overlays.Top()
	if !ok {
		t.Fatal("expected the create form")
	}
	form := top.(*FormModal)

	// q types into the form instead of quitting.
	_, cmd := a.Update(keyMsg("q"))
	if form.Values()["title"] != "q" {
		t.Errorf("title = %q", form.Values()["title"])
	}
	for _, m := range collect(cmd) {
		if _, quit := m.(tea.QuitMsg); quit {
			t.Fatal("q quit while a form was open")
		}
	}

	pressKeys(a, "esc")
	if a.Overlays.Len() != 0 {
		t.Error("esc should close the form")
	}
}

func TestApp_CreateCategoryThroughForm(t *testing.T) {
	a, _ := newTestApp(t)
	login(t, a)

	pressKeys(a, "c")
	top, _ := a.Overlays.Top()
	form := top.(*FormModal)
	typeText(form, "Festive Boxes")
	form.SetValue("description", "Assorted boxes")
	feed(a, keyMsg("ctrl+s"))

	if a.Overlays.Len() != 0 {
		t.Fatalf("form still open: %v", form.Errors())
	}
	if got := len(categoryScreen(t, a).Rows()); got != 4 {
		t.Errorf("rows = %d, want 4", got)
	}
	if status, _ := a.Status(); status != "Category created successfully" {
		t.Errorf("status = %q", status)
	}
}

func TestApp_DuplicateSlugKeepsFormOpen(t *testing.T) {
	a, _ := newTestApp(t)
	login(t, a)

	pressKeys(a, "c")
	top, _ := a.Overlays.Top()
	form := top.(*FormModal)
	typeText(form, "Snacks")
	form.SetValue("description", "Again")
	feed(a, keyMsg("ctrl+s"))

	if a.Overlays.Len() != 1 {
		t.Fatal("form closed on a validation error")
	}
	if form.Errors()["slug"] != "Slug already exists" {
		t.Errorf("errors = %v", form.Errors())
	}
}

func TestApp_DeleteFlow(t *testing.T) {
	a, _ := newTestApp(t)
	login(t, a)
	first := categoryScreen(t, a).Rows()[0]

	pressKeys(a, "d")
	if a.Overlays.Len() != 1 {
		t.Fatal("expected the confirm modal")
	}
	pressKeys(a, "n")
	if a.Overlays.Len() != 0 || len(categoryScreen(t, a).Rows()) != 3 {
		t.Fatal("cancel should close the modal and keep the row")
	}

	pressKeys(a, "d", "y")
	rows := categoryScreen(t, a).Rows()
	if len(rows) != 2 {
		t.Fatalf("rows = %d after delete", len(rows))
	}
	for _, r := range rows {
		if r.ID == first.ID {
			t.Error("deleted row still listed")
		}
	}
	if status, _ := a.Status(); status != "Category deleted successfully" {
		t.Errorf("status = %q", status)
	}
}

func TestApp_UnauthorizedReturnsToLogin(t *testing.T) {
	a, svc := newTestApp(t)
	login(t, a)

	feed(a, opDoneMsg{source: "categories", op: resource.OpFetching, err: resource.UnauthorizedError("Session expired")})
	if a.Mode != ModeLogin {
		t.Fatalf("mode = %v, want login", a.Mode)
	}
	if a.Login.message != msgSessionExpired {
		t.Errorf("login message = %q", a.Login.message)
	}
	if a.sections != nil {
		t.Error("screens kept after the session ended")
	}
	// The logout command runs asynchronously; run it here.
	_ = svc.Logout(context.Background())
	if svc.IsAuthenticated() {
		t.Error("session kept")
	}
}

func TestApp_Logout(t *testing.T) {
	a, svc := newTestApp(t)
	login(t, a)

	pressKeys(a, " ", "l")
	if a.Mode != ModeLogin {
		t.Fatalf("mode = %v", a.Mode)
	}
	if svc.IsAuthenticated() {
		t.Error("still authenticated after sign-out")
	}
	if a.Login.message != msgSignedOut {
		t.Errorf("login message = %q", a.Login.message)
	}
}

func TestApp_ResumesSavedSession(t *testing.T) {
	a, svc := newTestApp(t)
	if _, err := svc.Login(context.Background(), testEmail, testPassword); err != nil {
		t.Fatalf("Login: %v", err)
	}
	for _, m := range collectApp(a.Init()) {
		feed(a, m)
	}
	if a.Mode != ModeCategories {
		t.Fatalf("mode = %v", a.Mode)
	}
	if !strings.Contains(a.View(), testEmail) {
		t.Error("header should show the signed-in user")
	}
}
