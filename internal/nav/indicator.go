// Package nav derives the navigation affordances from the current session.
// It is a read-only projection: session truth lives in the credential store.
package nav

import (
	"context"
	"sync"

	"github.com/baderboshnak/golden-shen/internal/authbus"
	"github.com/baderboshnak/golden-shen/internal/domain"
)

// LoginPath is where a logout lands.
const LoginPath = "/login"

// State is what the navigation bar needs to render.
type State struct {
	LoggedIn    bool
	Admin       bool
	DisplayName string
}

// SessionStore is the slice of the credential store the indicator uses.
type SessionStore interface {
	Session(ctx context.Context) domain.Session
	Clear(ctx context.Context) error
}

type listener struct {
	id uint64
	fn func(State)
}

type Indicator struct {
	creds SessionStore

	mu        sync.Mutex
	nextID    uint64
	listeners []listener
}

func NewIndicator(creds SessionStore) *Indicator {
	return &Indicator{creds: creds}
}

// State derives the indicator booleans from the session. A missing or
// unparsable user record fails closed: not logged-in-as-admin, no name.
func (i *Indicator) State(ctx context.Context) State {
	s := i.creds.Session(ctx)
	if !s.Valid() {
		return State{}
	}
	return State{
		LoggedIn:    true,
		Admin:       s.User.IsAdmin(),
		DisplayName: s.User.Username,
	}
}

// Bind re-derives on every auth event and notifies registered listeners.
// Cancel the returned subscription when the consumer goes away.
func (i *Indicator) Bind(bus *authbus.Bus) *authbus.Subscription {
	return bus.Subscribe(func(authbus.Event) {
		state := i.State(context.Background())
		i.mu.Lock()
		listeners := make([]listener, len(i.listeners))
		copy(listeners, i.listeners)
		i.mu.Unlock()
		for _, l := range listeners {
			l.fn(state)
		}
	})
}

// OnChange registers a listener for re-derived states. A consumer that
// registers repeatedly must cancel the returned handle, or its callbacks
// accumulate.
func (i *Indicator) OnChange(fn func(State)) *ListenerHandle {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.nextID++
	id := i.nextID
	i.listeners = append(i.listeners, listener{id: id, fn: fn})
	return &ListenerHandle{ind: i, id: id}
}

func (i *Indicator) remove(id uint64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for n, l := range i.listeners {
		if l.id == id {
			i.listeners = append(i.listeners[:n], i.listeners[n+1:]...)
			return
		}
	}
}

// ListenerHandle unregisters its listener. Cancel is idempotent.
type ListenerHandle struct {
	ind  *Indicator
	id   uint64
	once sync.Once
}

func (h *ListenerHandle) Cancel() {
	h.once.Do(func() { h.ind.remove(h.id) })
}

// Logout clears the credential store, which also publishes the logout
// event, and returns the view to navigate to.
func (i *Indicator) Logout(ctx context.Context) (string, error) {
	if err := i.creds.Clear(ctx); err != nil {
		return LoginPath, err
	}
	return LoginPath, nil
}
