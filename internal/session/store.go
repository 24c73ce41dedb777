// Package session resolves request credentials to user identities so the
// pipeline core never sees cookies or passwords.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuthFunc validates a name/password pair. It stands between the HTTP
// boundary and whatever credential store a deployment uses.
type AuthFunc func(username, password string) bool

type entry struct {
	userID    string
	expiresAt time.Time
}

// Store maps session tokens to user identities with a fixed TTL. Expired
// entries are dropped lazily on the next lookup, there is no sweeper.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Create issues a fresh token bound to userID.
func (s *Store) Create(userID string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.entries[token] = entry{userID: userID, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return token
}

// Resolve returns the user behind a token. An expired token behaves exactly
// like an unknown one.
func (s *Store) Resolve(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[token]
	if !ok {
		return "", false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, token)
		return "", false
	}
	return e.userID, true
}

// Drop invalidates a token on logout.
func (s *Store) Drop(token string) {
	s.mu.Lock()
	delete(s.entries, token)
	s.mu.Unlock()
}

// StaticAuth builds an AuthFunc from "name:password" pairs, comma-separated.
// Suitable for local deployments where no external identity provider exists.
func StaticAuth(spec string) AuthFunc {
	creds := map[string]string{}
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, pass, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		creds[name] = pass
	}
	return func(username, password string) bool {
		want, ok := creds[username]
		return ok && want == password
	}
}
