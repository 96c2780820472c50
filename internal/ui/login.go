package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"contentadmin/internal/resource"
)

// LoginView is the sign-in screen shown while no session is active.
type LoginView struct {
	email    textinput.Model
	password textinput.Model
	focus    int // 0 email, 1 password

	spinner    spinner.Model
	submitting bool
	errors     map[string]string
	message    string
}

var _ View = (*LoginView)(nil)

func NewLoginView() *LoginView {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 40
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 50
	password.Width = 40
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent))

	return &LoginView{email: email, password: password, spinner: s}
}

func (v *LoginView) CapturingInput() bool { return true }

// Reset clears the password and any error, keeping the email.
func (v *LoginView) Reset(message string) {
	v.password.SetValue("")
	v.submitting = false
	v.errors = nil
	v.message = message
}

func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *LoginView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		v.submitting = false
		if msg.err != nil {
			v.password.SetValue("")
			v.errors = resource.FieldErrors(msg.err)
			v.message = resource.Message(msg.err)
			if _, bad := v.errors["email"]; bad {
				return v, v.setFocus(0)
			}
			return v, v.setFocus(1)
		}
		return v, nil
	case spinner.TickMsg:
		if !v.submitting {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	case tea.KeyMsg:
		if v.submitting {
			return v, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			return v, v.setFocus(1 - v.focus)
		case "enter":
			if v.focus == 0 {
				return v, v.setFocus(1)
			}
			return v, v.submit()
		}
	}

	var cmd tea.Cmd
	if v.focus == 0 {
		v.email, cmd = v.email.Update(msg)
	} else {
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd
}

func (v *LoginView) setFocus(i int) tea.Cmd {
	v.focus = i
	if i == 0 {
		v.password.Blur()
		return v.email.Focus()
	}
	v.email.Blur()
	return v.password.Focus()
}

func (v *LoginView) submit() tea.Cmd {
	v.submitting = true
	v.errors = nil
	v.message = ""
	msg := LoginSubmitMsg{
		Email:    strings.TrimSpace(v.email.Value()),
		Password: v.password.Value(),
	}
	return tea.Batch(func() tea.Msg { return msg }, v.spinner.Tick)
}

func (v *LoginView) View() string {
	var b strings.Builder
	b.WriteString(Styles.Title.Render("Sign in to the dashboard") + "\n\n")

	b.WriteString(Styles.Label.Render("Email") + "\n" + v.email.View() + "\n")
	if e := v.errors["email"]; e != "" {
		b.WriteString(Styles.FieldErr.Render(e) + "\n")
	}
	b.WriteString("\n" + Styles.Label.Render("Password") + "\n" + v.password.View() + "\n")
	if e := v.errors["password"]; e != "" {
		b.WriteString(Styles.FieldErr.Render(e) + "\n")
	}

	b.WriteString("\n")
	switch {
	case v.submitting:
		b.WriteString(v.spinner.View() + " Signing in…")
	case v.message != "" && len(v.errors) == 0:
		b.WriteString(Styles.StatusErr.Render(v.message))
	default:
		b.WriteString(Styles.Hint.Render("Tab: switch field  Enter: sign in  ctrl+c: quit"))
	}
	return Styles.Box.Render(b.String())
}
