// Package session holds who is logged in at the terminal.
package session

import (
	"fmt"
	"sync"

	"github.com/jhamir14/restaurant/internal"
)

type Identity struct {
	Token    string
	UserID   int64
	Username string
	IsAdmin  bool
}

// Session is the lifetime of one login. Every login and logout runs the
// registered reset hooks so no state outlives the identity it belonged to.
type Session struct {
	mu       sync.RWMutex
	identity *Identity
	hooks    []func()
}

func New() *Session {
	return &Session{}
}

// OnChange registers fn to run after every login and logout.
func (s *Session) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Login replaces the current identity with the one carried by token. The
// signature is checked by the api on every request, not here.
func (s *Session) Login(token string) (Identity, error) {
	decoded, err := internal.DecodeToken(token)
	if err != nil {
		return Identity{}, fmt.Errorf("failed logging in with error=%w", err)
	}
	identity := Identity{Token: token, UserID: decoded.UserID, Username: decoded.Username, IsAdmin: decoded.IsAdmin}

	s.mu.Lock()
	s.identity = &identity
	hooks := append([]func(){}, s.hooks...)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
	return identity, nil
}

func (s *Session) Logout() {
	s.mu.Lock()
	s.identity = nil
	hooks := append([]func(){}, s.hooks...)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

// Current returns the logged in identity, ok is false when nobody is.
func (s *Session) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

func (s *Session) Token() string {
	identity, _ := s.Current()
	return identity.Token
}
