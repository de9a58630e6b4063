// Package authbus is the process-wide channel for authentication change
// signals. Durable-storage change notifications do not reach the writer's
// own process, so every session writer must publish here as well.
package authbus

import "sync"

type Kind string

const (
	KindLogin   Kind = "login"
	KindLogout  Kind = "logout"
	KindChanged Kind = "changed"
)

// Event carries no payload; listeners re-read the credential store.
type Event struct {
	Kind Kind
}

type Handler func(Event)

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus delivers events synchronously, in subscription order. Publish happens
// on the emitter's goroutine so a listener observes the new stored state
// before the emitting call returns.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscriber
}

func New() *Bus {
	return &Bus{}
}

// Subscribe registers a handler and returns its subscription. Cancelling is
// idempotent: a component that mounts and unmounts repeatedly must not
// accumulate listeners, or a leaked handler could apply state from a
// previous session onto a new one.
func (b *Bus) Subscribe(h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, handler: h})
	return &Subscription{bus: b, id: id}
}

func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		handlers = append(handlers, s.handler)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(e)
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Len reports the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

type Subscription struct {
	bus  *Bus
	id   uint64
	once sync.Once
}

func (s *Subscription) Cancel() {
	s.once.Do(func() { s.bus.remove(s.id) })
}
