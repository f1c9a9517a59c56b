// Package session holds the client's authentication state: the bearer credential sent with
// every request and the identity it belongs to. A token is held exactly when a user is held.
package session

import (
	"errors"
	"strings"
	"sync"

	"TaskClient/models"
)

// Scheme is the authorization scheme the backend expects.
const Scheme = "Bearer"

// ErrIncomplete is returned by Begin when the token or the username is missing.
var ErrIncomplete = errors.New("session needs both a token and a user")

// Store keeps the current token and user. The zero value is a logged-out store.
type Store struct {
	mu    sync.RWMutex
	token string
	user  *models.User
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// BearerToken derives the Authorization header value from the token returned by the server.
// A token that already carries the scheme is not prefixed twice.
func BearerToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) > len(Scheme) && strings.EqualFold(raw[:len(Scheme)+1], Scheme+" ") {
		return Scheme + " " + strings.TrimSpace(raw[len(Scheme)+1:])
	}
	return Scheme + " " + raw
}

// Begin stores the bearer credential for raw together with user.
func (s *Store) Begin(raw string, user models.User) error {
	if strings.TrimSpace(raw) == "" || user.Username == "" {
		return ErrIncomplete
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = BearerToken(raw)
	s.user = &user
	return nil
}

// Clear drops the token and the user. It has no network effect.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}

// Token returns the Authorization header value, if a session is active.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// User returns the logged-in user, if any.
func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// LoggedIn reports whether a session is active.
func (s *Store) LoggedIn() bool {
	_, ok := s.Token()
	return ok
}
