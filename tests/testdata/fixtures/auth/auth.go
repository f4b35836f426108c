package auth

import (
	"errors"
	"time"
)

// ErrInvalidCredentials is returned when authentication fails
var ErrInvalidCredentials = errors.New("invalid credentials")

// Session represents an authenticated user session
type Session struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// Authenticator validates credentials and issues sessions
type Authenticator interface {
	Authenticate(user, pass string) (*Session, error)
	Revoke(token string) error
}

// MemoryAuthenticator keeps sessions in memory, for tests and demos
type MemoryAuthenticator struct {
	sessions map[string]*Session
}

// NewMemoryAuthenticator creates an empty in-memory authenticator
func NewMemoryAuthenticator() *MemoryAuthenticator {
	return &MemoryAuthenticator{sessions: make(map[string]*Session)}
}

// Authenticate checks the credentials and issues a session token
func (a *MemoryAuthenticator) Authenticate(user, pass string) (*Session, error) {
	if user == "" || pass == "" {
		return nil, ErrInvalidCredentials
	}
	s := &Session{
		UserID:    user,
		Token:     "tok-" + user,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	a.sessions[s.Token] = s
	return s, nil
}

// Revoke invalidates a session token
func (a *MemoryAuthenticator) Revoke(token string) error {
	delete(a.sessions, token)
	return nil
}
