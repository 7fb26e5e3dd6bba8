// Package session holds the client's authentication state. A Session is
// constructed explicitly and passed to whatever needs it.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/internal/logger"
	"github.com/yairfalse/apidrift/internal/storage"
	"github.com/yairfalse/apidrift/pkg/types"
)

// Authenticator is the backend side of signup and login
type Authenticator interface {
	Signup(ctx context.Context, creds types.Credentials) error
	Login(ctx context.Context, creds types.Credentials) (string, error)
}

// Listener is told whenever the authenticated state flips
type Listener func(authenticated bool)

// Session tracks whether a user is logged in
type Session struct {
	store storage.TokenStore
	auth  Authenticator
	log   logger.Logger

	mu            sync.RWMutex
	token         string
	authenticated bool
	listeners     []Listener
}

// New creates an unauthenticated session. Call Hydrate to pick up a
// persisted token.
func New(store storage.TokenStore, auth Authenticator, log logger.Logger) *Session {
	if log == nil {
		log = logger.NewNop()
	}
	return &Session{
		store: store,
		auth:  auth,
		log:   log.WithField("component", "session"),
	}
}

// SetAuthenticator sets the backend used by Login and Signup
func (s *Session) SetAuthenticator(auth Authenticator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = auth
}

// Hydrate loads the persisted token. Its presence alone means the session
// is authenticated; a stale token is discovered on the first 401.
func (s *Session) Hydrate() error {
	token, err := s.store.Load()
	if err != nil {
		return errors.New(errors.ErrorTypeFileSystem, "Cannot read saved session").
			WithCause(err.Error()).
			Wrap(err)
	}
	s.setState(token)
	return nil
}

// Token returns the current bearer token, or ""
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a token is held
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Login exchanges credentials for a token and persists it. Backend errors
// are returned as they are.
func (s *Session) Login(ctx context.Context, email, password string) error {
	creds, err := credentials(email, password)
	if err != nil {
		return err
	}

	auth := s.authenticator()
	if auth == nil {
		return errors.ConfigurationError("No authenticator configured", nil)
	}

	token, err := auth.Login(ctx, creds)
	if err != nil {
		return err
	}

	if err := s.store.Save(token); err != nil {
		return errors.New(errors.ErrorTypeFileSystem, "Cannot save session").
			WithCause(err.Error()).
			Wrap(err)
	}
	s.setState(token)
	s.log.WithField("email", creds.Email).Info("logged in")
	return nil
}

// Signup registers the account and then logs in with the same credentials
func (s *Session) Signup(ctx context.Context, email, password string) error {
	creds, err := credentials(email, password)
	if err != nil {
		return err
	}

	auth := s.authenticator()
	if auth == nil {
		return errors.ConfigurationError("No authenticator configured", nil)
	}

	if err := auth.Signup(ctx, creds); err != nil {
		return err
	}
	return s.Login(ctx, creds.Email, creds.Password)
}

// Logout forgets the token. The in-memory state is cleared even when the
// persisted token cannot be removed.
func (s *Session) Logout() error {
	err := s.store.Clear()
	if err != nil {
		s.log.Error("failed to clear persisted token", err)
	}
	s.setState("")
	if err != nil {
		return errors.New(errors.ErrorTypeFileSystem, "Cannot remove saved session").
			WithCause(err.Error()).
			Wrap(err)
	}
	return nil
}

// HandleUnauthorized is the 401 hook of the API client
func (s *Session) HandleUnauthorized() {
	s.log.Warn("backend rejected the session token")
	_ = s.Logout()
}

// OnChange registers a listener for authentication state changes
func (s *Session) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Session) authenticator() Authenticator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth
}

// setState updates the token and notifies listeners outside the lock when
// the authenticated flag changes
func (s *Session) setState(token string) {
	s.mu.Lock()
	was := s.authenticated
	s.token = token
	s.authenticated = token != ""
	now := s.authenticated
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	if was == now {
		return
	}
	for _, l := range listeners {
		l(now)
	}
}

func credentials(email, password string) (types.Credentials, error) {
	creds := types.Credentials{Email: strings.TrimSpace(email), Password: password}
	if creds.Email == "" || creds.Password == "" {
		return creds, errors.ValidationError("Email and password are required")
	}
	return creds, nil
}
