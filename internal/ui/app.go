package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"contentadmin/internal/auth"
	"contentadmin/internal/content"
	"contentadmin/internal/resource"
)

// Authenticator is the auth gate the app routes through. *auth.Service
// implements it.
type Authenticator interface {
	IsAuthenticated() bool
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Logout(ctx context.Context) error
}

var _ Authenticator = (*auth.Service)(nil)

// AppConfig carries the app's collaborators.
type AppConfig struct {
	Ctx       context.Context
	Auth      Authenticator
	Transport content.Transport
	PageSize  int
	Logger    *zap.Logger
}

const (
	msgSignedOut      = "Signed out."
	msgSessionExpired = "Your session has expired. Please sign in again."
	msgSignInFirst    = "Please sign in to continue."
)

// section is a top-level area with its own drill-down stack.
type section struct {
	stack *ViewStack
	modes []AppMode
}

// sourced is implemented by screens that own async results.
type sourced interface {
	Source() string
}

// AppModel is the root model. It shows the login screen until the auth gate
// opens, then one section (categories or blogs) with modals on top.
type AppModel struct {
	Mode       AppMode
	Login      *LoginView
	Overlays   OverlayStack
	KeyHandler *KeyHandler

	ctx      context.Context
	auth     Authenticator
	screens  *Screens
	notes    *resource.NotificationQueue
	logger   *zap.Logger
	sections map[AppMode]*section
	current  AppMode // section root: ModeCategories or ModeBlogs

	status    string
	statusErr bool
	user      string
	width     int
	height    int
}

func NewAppModel(cfg AppConfig) *AppModel {
	if cfg.Ctx == nil {
		cfg.Ctx = context.Background()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	notes := &resource.NotificationQueue{}

	reg := NewKeybindRegistry()
	quit := tea.Quit
	reg.Bind("ctrl+c", quit, "Quit")
	reg.Bind("SPC q", quit, "Quit")
	reg.BindForModes("q", quit, "Quit", []AppMode{ModeCategories, ModeSubCategories, ModeBlogs})
	reg.Bind("SPC g c", func() tea.Msg { return SwitchModeMsg{Mode: ModeCategories} }, "Categories")
	reg.Bind("SPC g b", func() tea.Msg { return SwitchModeMsg{Mode: ModeBlogs} }, "Blogs")
	reg.Bind("SPC l", func() tea.Msg { return LogoutMsg{} }, "Sign out")

	return &AppModel{
		Mode:       ModeLogin,
		Login:      NewLoginView(),
		KeyHandler: NewKeyHandler(reg),
		ctx:        cfg.Ctx,
		auth:       cfg.Auth,
		notes:      notes,
		logger:     cfg.Logger,
		screens: &Screens{
			Ctx:       cfg.Ctx,
			Transport: cfg.Transport,
			PageSize:  cfg.PageSize,
			Notifier:  notes,
			Logger:    cfg.Logger,
		},
		current: ModeCategories,
	}
}

// Status returns the status line text and whether it reports an error.
func (m *AppModel) Status() (string, bool) { return m.status, m.statusErr }

// CurrentView is the screen under any modal.
func (m *AppModel) CurrentView() View {
	if m.Mode == ModeLogin {
		return m.Login
	}
	if sec := m.sections[m.current]; sec != nil {
		return sec.stack.Top()
	}
	return m.Login
}

var _ tea.Model = (*appModelAdapter)(nil)

type appModelAdapter struct {
	*AppModel
}

// AsTeaModel returns a tea.Model adapter for use with tea.NewProgram.
func (m *AppModel) AsTeaModel() tea.Model {
	return &appModelAdapter{AppModel: m}
}

func (a *appModelAdapter) Init() tea.Cmd {
	if a.auth != nil && a.auth.IsAuthenticated() {
		if s, ok := a.auth.(interface{ Session() *auth.Session }); ok {
			if sess := s.Session(); sess != nil {
				a.user = sess.User.Email
			}
		}
		return a.switchTo(ModeCategories)
	}
	return a.Login.Init()
}

func (a *appModelAdapter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, a.broadcastSize()

	case LoginSubmitMsg:
		return a, a.loginCmd(msg)

	case loginResultMsg:
		_, cmd := a.Login.Update(msg)
		if msg.err != nil {
			return a, cmd
		}
		if msg.session != nil {
			a.user = msg.session.User.Email
		}
		a.setStatus(auth.WelcomeMessage, false)
		return a, tea.Batch(cmd, a.switchTo(ModeCategories))

	case LogoutMsg:
		return a, a.logoutCmd()

	case loggedOutMsg:
		if msg.err != nil {
			a.logger.Warn("sign-out incomplete", zap.Error(msg.err))
		}
		return a, a.showLogin(msgSignedOut)

	case SwitchModeMsg:
		return a, a.switchTo(msg.Mode)

	case OpenModalMsg:
		a.Overlays.Push(msg.View)
		return a, msg.View.Init()

	case DismissModalMsg:
		a.Overlays.Pop()
		return a, nil

	case PushViewMsg:
		sec := a.sections[a.current]
		if sec == nil {
			return a, nil
		}
		sec.stack.Push(msg.View)
		sec.modes = append(sec.modes, msg.Mode)
		a.Mode = msg.Mode
		return a, tea.Batch(msg.View.Init(), a.sizeCmd())

	case PopViewMsg:
		sec := a.sections[a.current]
		if sec == nil {
			return a, nil
		}
		if _, ok := sec.stack.Pop(); ok {
			sec.modes = sec.modes[:len(sec.modes)-1]
		}
		a.Mode = sec.modes[len(sec.modes)-1]
		return a, nil

	case FormErrorsMsg:
		cmd, _ := a.Overlays.UpdateTop(msg)
		return a, cmd

	case opDoneMsg:
		if resource.IsUnauthorized(msg.err) {
			return a, a.expire()
		}
		cmd := a.routeToSource(msg.source, msg)
		a.drainNotes()
		return a, cmd

	case detailLoadedMsg:
		if resource.IsUnauthorized(msg.err) {
			return a, a.expire()
		}
		return a, a.routeToSource(msg.source, msg)

	case formSubmitMsg:
		return a, a.routeToSource(msg.source, msg)

	case confirmDeleteMsg:
		return a, a.routeToSource(msg.source, msg)

	case cancelDeleteMsg:
		return a, a.routeToSource(msg.source, msg)

	case spinner.TickMsg:
		if a.Mode == ModeLogin {
			_, cmd := a.Login.Update(msg)
			return a, cmd
		}
		return a, a.updateCurrent(msg)

	case tea.KeyMsg:
		return a, a.handleKey(msg)
	}

	if _, ok := a.Overlays.Top(); ok {
		cmd, _ := a.Overlays.UpdateTop(msg)
		return a, cmd
	}
	return a, a.updateCurrent(msg)
}

func (a *appModelAdapter) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if _, ok := a.Overlays.Top(); ok {
		cmd, _ := a.Overlays.UpdateTop(msg)
		return cmd
	}
	if a.Mode == ModeLogin {
		_, cmd := a.Login.Update(msg)
		return cmd
	}
	cur := a.CurrentView()
	if !capturesInput(cur) && a.KeyHandler != nil {
		if consumed, cmd := a.KeyHandler.Handle(msg, a.Mode); consumed {
			return cmd
		}
	}
	return a.updateCurrent(msg)
}

func (a *appModelAdapter) updateCurrent(msg tea.Msg) tea.Cmd {
	if a.Mode == ModeLogin {
		_, cmd := a.Login.Update(msg)
		return cmd
	}
	sec := a.sections[a.current]
	if sec == nil {
		return nil
	}
	v, cmd := sec.stack.Top().Update(msg)
	sec.stack.SetTop(v)
	return cmd
}

// routeToSource delivers an async result to the screen that started it,
// wherever it is in its section's stack.
func (a *appModelAdapter) routeToSource(source string, msg tea.Msg) tea.Cmd {
	match := func(v View) bool {
		s, ok := v.(sourced)
		return ok && s.Source() == source
	}
	for _, sec := range a.sections {
		if cmd, ok := sec.stack.UpdateWhere(match, msg); ok {
			return cmd
		}
	}
	return nil
}

func (a *appModelAdapter) drainNotes() {
	notes := a.notes.Drain()
	if len(notes) == 0 {
		return
	}
	last := notes[len(notes)-1]
	a.setStatus(last.Message, last.Kind == resource.NotifyError)
}

func (a *AppModel) setStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
}

// switchTo opens a section, building it on first use. Protected modes fall
// back to the login screen while the gate is closed.
func (a *appModelAdapter) switchTo(mode AppMode) tea.Cmd {
	if mode.protected() && (a.auth == nil || !a.auth.IsAuthenticated()) {
		return a.showLogin(msgSignInFirst)
	}
	if mode == ModeLogin {
		return a.showLogin("")
	}
	if mode == ModeSubCategories {
		mode = ModeCategories
	}
	a.Overlays.Clear()
	a.current = mode
	if a.sections == nil {
		a.sections = make(map[AppMode]*section)
	}
	if sec := a.sections[mode]; sec != nil {
		a.Mode = sec.modes[len(sec.modes)-1]
		return nil
	}

	var root View
	switch mode {
	case ModeBlogs:
		root = a.screens.Blogs()
	default:
		root = a.screens.Categories()
	}
	a.sections[mode] = &section{stack: NewViewStack(root), modes: []AppMode{mode}}
	a.Mode = mode
	return tea.Batch(root.Init(), a.sizeCmd())
}

// showLogin drops every screen and modal and shows the login form.
func (a *appModelAdapter) showLogin(message string) tea.Cmd {
	a.Overlays.Clear()
	a.sections = nil
	a.current = ModeCategories
	a.Mode = ModeLogin
	a.user = ""
	a.notes.Drain()
	a.setStatus("", false)
	a.Login.Reset(message)
	return a.Login.Init()
}

// expire handles an Unauthorized response from any screen.
func (a *appModelAdapter) expire() tea.Cmd {
	a.logger.Info("session rejected by the API")
	var logout tea.Cmd
	if a.auth != nil {
		ctx, svc := a.ctx, a.auth
		logout = func() tea.Msg {
			if err := svc.Logout(ctx); err != nil {
				a.logger.Warn("clearing expired session", zap.Error(err))
			}
			return nil
		}
	}
	return tea.Batch(logout, a.showLogin(msgSessionExpired))
}

func (a *appModelAdapter) loginCmd(msg LoginSubmitMsg) tea.Cmd {
	if a.auth == nil {
		return func() tea.Msg {
			return loginResultMsg{err: errors.New("no authentication configured")}
		}
	}
	ctx, svc := a.ctx, a.auth
	return func() tea.Msg {
		sess, err := svc.Login(ctx, msg.Email, msg.Password)
		return loginResultMsg{session: sess, err: err}
	}
}

func (a *appModelAdapter) logoutCmd() tea.Cmd {
	if a.auth == nil {
		return func() tea.Msg { return loggedOutMsg{} }
	}
	ctx, svc := a.ctx, a.auth
	return func() tea.Msg {
		return loggedOutMsg{err: svc.Logout(ctx)}
	}
}

func (a *appModelAdapter) sizeCmd() tea.Cmd {
	if a.width == 0 {
		return nil
	}
	size := tea.WindowSizeMsg{Width: a.width, Height: a.height}
	return func() tea.Msg { return size }
}

func (a *appModelAdapter) broadcastSize() tea.Cmd {
	size := tea.WindowSizeMsg{Width: a.width, Height: a.height}
	var cmds []tea.Cmd
	for _, sec := range a.sections {
		cmd, _ := sec.stack.UpdateWhere(func(View) bool { return true }, size)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (a *appModelAdapter) View() string {
	if a.Mode == ModeLogin {
		return a.place(a.Login.View())
	}

	var b strings.Builder
	b.WriteString(a.header() + "\n")
	if top, ok := a.Overlays.Top(); ok {
		b.WriteString(a.place(top.View()))
	} else {
		b.WriteString(a.CurrentView().View())
	}
	if a.status != "" {
		style := Styles.StatusOK
		if a.statusErr {
			style = Styles.StatusErr
		}
		b.WriteString("\n" + style.Render(a.status))
	}
	if help := RenderKeybindHelp(a.KeyHandler, a.Mode); help != "" {
		b.WriteString("\n" + help)
	} else {
		b.WriteString("\n" + Styles.Hint.Render("SPC: menu"))
	}
	return b.String()
}

func (a *appModelAdapter) header() string {
	tab := func(label string, mode AppMode) string {
		if a.current == mode {
			return Styles.Selected.Render("[" + label + "]")
		}
		return Styles.Muted.Render(" " + label + " ")
	}
	left := Styles.Title.Render("Content Admin") + "  " + tab("Categories", ModeCategories) + " " + tab("Blogs", ModeBlogs)
	if a.user == "" {
		return left
	}
	return left + "  " + Styles.Muted.Render(a.user)
}

func (a *appModelAdapter) place(s string) string {
	if a.width == 0 || a.height == 0 {
		return s
	}
	return lipgloss.PlaceHorizontal(a.width, lipgloss.Center, s)
}
