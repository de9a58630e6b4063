// Package cart maintains the session-scoped cart snapshot and keeps it
// consistent with authentication transitions. The snapshot is never patched
// locally: every operation replaces it wholesale with the backend's
// authoritative response.
package cart

import (
	"context"
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/baderboshnak/golden-shen/internal/api"
	"github.com/baderboshnak/golden-shen/internal/authbus"
	"github.com/baderboshnak/golden-shen/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Service is the backend cart surface the coordinator drives. *api.Client
// satisfies it.
type Service interface {
	GetCart(ctx context.Context) (domain.CartSnapshot, error)
	AddToCart(ctx context.Context, productID string, quantity int) (domain.CartSnapshot, error)
	UpdateCartItem(ctx context.Context, productID string, quantity int) (domain.CartSnapshot, error)
	RemoveCartItem(ctx context.Context, productID string) (domain.CartSnapshot, error)
	Checkout(ctx context.Context) (string, error)
}

// SessionSource provides the current bearer token, "" when logged out.
type SessionSource interface {
	Token(ctx context.Context) string
}

type Coordinator struct {
	svc      Service
	sessions SessionSource

	mu       sync.Mutex
	snapshot domain.CartSnapshot
	// epoch increments on every auth transition. A response that resolves
	// after the session changed carries a stale epoch and is discarded, so
	// a previous session's cart can never be applied to a new one.
	epoch uint64

	inflight atomic.Int32
	sfg      singleflight.Group
}

func NewCoordinator(svc Service, sessions SessionSource) *Coordinator {
	return &Coordinator{
		svc:      svc,
		sessions: sessions,
		snapshot: domain.EmptySnapshot(),
	}
}

// Bind subscribes the coordinator to auth events: a session appearing
// triggers a refresh, a session disappearing clears the snapshot
// synchronously, before the emitting call returns.
func (c *Coordinator) Bind(bus *authbus.Bus) *authbus.Subscription {
	return bus.Subscribe(func(authbus.Event) {
		ctx := context.Background()
		if c.sessions.Token(ctx) == "" {
			c.clear()
			return
		}
		c.bumpEpoch()
		c.Refresh(ctx)
	})
}

// Snapshot returns the current cart state.
func (c *Coordinator) Snapshot() domain.CartSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Loading reports whether any backend call is in flight.
func (c *Coordinator) Loading() bool { return c.inflight.Load() > 0 }

// Refresh replaces the snapshot from the backend. With no session it resets
// to empty without touching the network. Failures are swallowed here: an
// empty cart is always a safe degraded state, stale or partial carts are not.
func (c *Coordinator) Refresh(ctx context.Context) {
	if c.sessions.Token(ctx) == "" {
		c.clear()
		return
	}

	epoch := c.currentEpoch()
	c.inflight.Add(1)
	defer c.inflight.Add(-1)

	// the flight is keyed by epoch so concurrent refreshes within one session
	// coalesce, but a refresh started after an auth transition never joins a
	// call that was issued under the previous session's token
	v, err, _ := c.sfg.Do(strconv.FormatUint(epoch, 10), func() (any, error) {
		return c.svc.GetCart(ctx)
	})
	if err != nil {
		log.Printf("cart refresh failed: %v", err)
		c.apply(epoch, domain.EmptySnapshot())
		return
	}
	c.apply(epoch, v.(domain.CartSnapshot))
}

// AddItem adds quantity units of a product and applies the backend's
// resulting cart. The displayed cart only changes after the backend
// confirms; there is no optimistic local increment.
func (c *Coordinator) AddItem(ctx context.Context, productID string, quantity int) error {
	if c.sessions.Token(ctx) == "" {
		return api.ErrNoSession
	}

	epoch := c.currentEpoch()
	c.inflight.Add(1)
	defer c.inflight.Add(-1)

	snap, err := c.svc.AddToCart(ctx, productID, quantity)
	if err != nil {
		return err
	}
	c.apply(epoch, snap)
	return nil
}

func (c *Coordinator) RemoveItem(ctx context.Context, productID string) error {
	if c.sessions.Token(ctx) == "" {
		return api.ErrNoSession
	}

	epoch := c.currentEpoch()
	c.inflight.Add(1)
	defer c.inflight.Add(-1)

	snap, err := c.svc.RemoveCartItem(ctx, productID)
	if err != nil {
		return err
	}
	c.apply(epoch, snap)
	return nil
}

// UpdateQuantity sets a line's quantity. Zero or negative delegates to
// RemoveItem: removal is the canonical representation of "no longer in
// cart", a non-positive quantity is never persisted.
func (c *Coordinator) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return c.RemoveItem(ctx, productID)
	}
	if c.sessions.Token(ctx) == "" {
		return api.ErrNoSession
	}

	epoch := c.currentEpoch()
	c.inflight.Add(1)
	defer c.inflight.Add(-1)

	snap, err := c.svc.UpdateCartItem(ctx, productID, quantity)
	if err != nil {
		return err
	}
	c.apply(epoch, snap)
	return nil
}

// Checkout places the order, refreshes to reflect the emptied server cart,
// and returns the order id. Unlike Refresh, failures propagate: this is a
// user-initiated, consequential action.
func (c *Coordinator) Checkout(ctx context.Context) (string, error) {
	if c.sessions.Token(ctx) == "" {
		return "", api.ErrNoSession
	}

	c.inflight.Add(1)
	orderID, err := c.svc.Checkout(ctx)
	c.inflight.Add(-1)
	if err != nil {
		return "", err
	}

	c.Refresh(ctx)
	return orderID, nil
}

func (c *Coordinator) clear() {
	c.mu.Lock()
	c.epoch++
	c.snapshot = domain.EmptySnapshot()
	c.mu.Unlock()
}

func (c *Coordinator) bumpEpoch() {
	c.mu.Lock()
	c.epoch++
	c.mu.Unlock()
}

func (c *Coordinator) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// apply installs a snapshot only if the session epoch it was fetched under
// is still current. Session validity is checked at apply time, not just at
// call time: a component may outlive the session its request started in.
func (c *Coordinator) apply(epoch uint64, snap domain.CartSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return
	}
	c.snapshot = snap
}
