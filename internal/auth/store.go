package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// SessionDirEnv overrides the session directory (tests, multiple profiles).
	SessionDirEnv = "CONTENTADMIN_SESSION_DIR"
	// DefaultSessionBase is the default directory under the user's home.
	DefaultSessionBase = ".contentadmin"

	sessionFile = "session.json"
)

// Role is the account role the API reports at sign-in.
type Role string

const (
	RoleSudoAdmin Role = "SUDOADMIN"
	RoleAdmin     Role = "ADMIN"
	RoleUser      Role = "USER"
)

// Allowed reports whether the role may use the dashboard.
func (r Role) Allowed() bool {
	switch r {
	case RoleSudoAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// User is the signed-in account.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session is what survives between runs.
type Session struct {
	User      User      `json:"user"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the session's token has a known expiry before now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store persists the session as JSON in a single file.
// Layout: ~/.contentadmin/session.json
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, at $CONTENTADMIN_SESSION_DIR when
// dir is empty, or at the user's home + DefaultSessionBase.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = os.Getenv(SessionDirEnv)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, DefaultSessionBase)
	}
	return &Store{dir: dir}, nil
}

// Path is the session file location.
func (s *Store) Path() string {
	return filepath.Join(s.dir, sessionFile)
}

// Load reads the saved session. A missing file yields (nil, nil).
func (s *Store) Load() (*Session, error) {
	b, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", s.Path(), err)
	}
	return &sess, nil
}

// Save writes the session readable only by the current user.
func (s *Store) Save(sess *Session) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	b, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path())
}

// Clear removes the saved session. Clearing a missing session is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
