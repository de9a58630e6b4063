// Package credstore owns the persisted session: the bearer token and the
// serialized user record. It is the single writer surface for auth state;
// every write publishes on the auth bus before returning.
package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/baderboshnak/golden-shen/internal/authbus"
	"github.com/baderboshnak/golden-shen/internal/domain"
	"github.com/baderboshnak/golden-shen/internal/kv"
)

const (
	keyToken = "auth.token"
	keyUser  = "auth.user"
)

type Store struct {
	kv  kv.Store
	bus *authbus.Bus

	// lastSeen tracks the token value already announced on the bus, so the
	// watcher does not re-announce this process's own writes.
	mu       sync.Mutex
	lastSeen string
}

func New(store kv.Store, bus *authbus.Bus) *Store {
	return &Store{kv: store, bus: bus}
}

// Token returns the current bearer token, or "" when logged out. Any read
// failure reads as logged-out.
func (s *Store) Token(ctx context.Context) string {
	data, err := s.kv.Get(ctx, keyToken)
	if err != nil {
		return ""
	}
	return string(data)
}

// User returns the persisted user record. A missing or malformed record
// fails closed: ok is false and no error escapes.
func (s *Store) User(ctx context.Context) (domain.User, bool) {
	data, err := s.kv.Get(ctx, keyUser)
	if err != nil {
		return domain.User{}, false
	}
	var u domain.User
	if err := json.Unmarshal(data, &u); err != nil {
		return domain.User{}, false
	}
	return u, true
}

func (s *Store) Session(ctx context.Context) domain.Session {
	token := s.Token(ctx)
	if token == "" {
		return domain.Session{}
	}
	u, ok := s.User(ctx)
	if !ok {
		return domain.Session{Token: token}
	}
	return domain.Session{Token: token, User: u}
}

// SetSession persists a new session and publishes a login event. The event
// is published synchronously so readers scheduled next observe the new state.
func (s *Store) SetSession(ctx context.Context, token string, user domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, keyToken, []byte(token)); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, keyUser, data); err != nil {
		return err
	}

	s.mu.Lock()
	s.lastSeen = token
	s.mu.Unlock()

	s.bus.Publish(authbus.Event{Kind: authbus.KindLogin})
	return nil
}

// Clear removes the session and publishes a logout event. Both keys are
// always attempted; the first failure is still reported.
func (s *Store) Clear(ctx context.Context) error {
	errToken := s.kv.Delete(ctx, keyToken)
	errUser := s.kv.Delete(ctx, keyUser)

	s.mu.Lock()
	s.lastSeen = ""
	s.mu.Unlock()

	s.bus.Publish(authbus.Event{Kind: authbus.KindLogout})
	return errors.Join(errToken, errUser)
}
