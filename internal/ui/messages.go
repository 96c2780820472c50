package ui

import (
	"contentadmin/internal/auth"
	"contentadmin/internal/resource"
)

// LoginSubmitMsg is sent by the login form.
type LoginSubmitMsg struct {
	Email    string
	Password string
}

// loginResultMsg carries the outcome of a sign-in.
type loginResultMsg struct {
	session *auth.Session
	err     error
}

// LogoutMsg asks the app to sign out (SPC l).
type LogoutMsg struct{}

type loggedOutMsg struct{ err error }

// SwitchModeMsg jumps to a top-level section (SPC g c, SPC g b).
type SwitchModeMsg struct {
	Mode AppMode
}

// OpenModalMsg pushes a modal onto the overlay stack.
type OpenModalMsg struct {
	View View
}

// DismissModalMsg closes the topmost modal.
type DismissModalMsg struct{}

// PushViewMsg drills into a child screen of the current section.
type PushViewMsg struct {
	View View
	Mode AppMode
}

// PopViewMsg returns to the parent screen.
type PopViewMsg struct{}

// FormErrorsMsg is routed to the open form after a rejected submission.
type FormErrorsMsg struct {
	Message string
	Fields  map[string]string
}

// formSubmitMsg is sent by a form modal to the screen that opened it.
type formSubmitMsg struct {
	source string
	id     string // empty when creating
	values map[string]string
}

// opDoneMsg reports that a manager call started by screen source finished.
type opDoneMsg struct {
	source string
	op     resource.Op
	err    error
}

// detailLoadedMsg carries an item fetched for an edit form.
type detailLoadedMsg struct {
	source string
	item   any
	err    error
}

type confirmDeleteMsg struct{ source string }

type cancelDeleteMsg struct{ source string }
