// Package auth is the dashboard's authentication gate: sign-in with role
// filtering, sign-out, and the persisted session the rest of the program
// checks before showing protected screens.
package auth

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"contentadmin/internal/apiclient"
	"contentadmin/internal/jsonutil"
	"contentadmin/internal/resource"
	"contentadmin/internal/validation"
)

// WelcomeMessage is shown after a successful sign-in.
const WelcomeMessage = "Hey Admin, Welcome back to the dashboard."

// TokenCookie is the cookie the API sets at sign-in.
const TokenCookie = "accessToken"

// Transport is what the service needs from the API client.
type Transport interface {
	Post(ctx context.Context, path string, body apiclient.Body, opts ...apiclient.RequestOption) (*apiclient.Response, error)
	Get(ctx context.Context, path string, opts ...apiclient.RequestOption) (*apiclient.Response, error)
	Cookie(name string) string
	ClearCookies()
}

var _ Transport = (*apiclient.Client)(nil)

// Credentials are validated locally before they are sent.
type Credentials struct {
	Email    string `json:"email" validate:"required,min=8,max=40,email"`
	Password string `json:"password" validate:"required,min=7,max=50"`
}

// Service signs users in and out and answers IsAuthenticated.
type Service struct {
	api    Transport
	store  *Store
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	session *Session
}

// NewService loads any saved session from store.
func NewService(api Transport, store *Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{api: api, store: store, logger: logger, now: time.Now}
	sess, err := store.Load()
	if err != nil {
		logger.Warn("discarding unreadable session", zap.Error(err))
		_ = store.Clear()
		sess = nil
	}
	s.session = sess
	return s
}

// IsAuthenticated reports whether a session exists and has not expired.
func (s *Service) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil && !s.session.Expired(s.now())
}

// Session returns a copy of the current session, or nil.
func (s *Service) Session() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

// Token is an apiclient.TokenSource for the current session.
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

// Login signs in. Accounts whose role is not allowed are rejected with an
// Unauthorized error even when the API accepted the credentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	creds := Credentials{Email: email, Password: password}
	if err := validation.Struct(creds); err != nil {
		return nil, err
	}
	resp, err := s.api.Post(ctx, "auth/signin", apiclient.JSON(creds))
	if err != nil {
		return nil, err
	}

	var user User
	if err := jsonutil.DecodeFirst(resp.Body, &user, "signin", "data.user", "user", "data", ""); err != nil {
		return nil, resource.ServerError(resp.Status, "malformed sign-in response")
	}
	if user.Email == "" {
		user.Email = email
	}
	if !user.Role.Allowed() {
		s.logger.Warn("sign-in rejected", zap.String("email", user.Email), zap.String("role", string(user.Role)))
		s.api.ClearCookies()
		return nil, resource.UnauthorizedError("You are not authorized.")
	}

	token := s.extractToken(resp.Body)
	sess := &Session{
		User:      user,
		Token:     token,
		ExpiresAt: TokenExpiry(token),
		CreatedAt: s.now(),
	}
	if err := s.store.Save(sess); err != nil {
		s.logger.Warn("session not persisted", zap.Error(err))
	}
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
	s.logger.Info("signed in", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	cp := *sess
	return &cp, nil
}

// Logout tells the API to end the session and forgets it locally. The local
// session is dropped even if the API call fails.
func (s *Service) Logout(ctx context.Context) error {
	if _, err := s.api.Get(ctx, "users/logout"); err != nil {
		s.logger.Warn("logout request failed", zap.Error(err))
	}
	s.api.ClearCookies()
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
	return s.store.Clear()
}

func (s *Service) extractToken(body []byte) string {
	for _, path := range []string{"token", "accessToken", "data.token", "data.accessToken"} {
		if tok, ok := jsonutil.StringAt(body, path); ok && tok != "" {
			return tok
		}
	}
	return s.api.Cookie(TokenCookie)
}

// TokenExpiry reads the exp claim of a JWT without verifying it. Opaque or
// malformed tokens have no known expiry.
func TokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
