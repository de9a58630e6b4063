package credstore

import (
	"context"
	"time"

	"github.com/baderboshnak/golden-shen/internal/authbus"
)

// Watcher polls the durable store for token changes made by another
// process, the analog of the browser storage event: best-effort and
// asynchronous relative to the writer. Changes written through this
// process's own Store are already announced and are not re-announced.
type Watcher struct {
	store    *Store
	interval time.Duration
}

func NewWatcher(store *Store, interval time.Duration) *Watcher {
	return &Watcher{store: store, interval: interval}
}

func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Poll performs a single check against the durable store.
func (w *Watcher) Poll(ctx context.Context) {
	token := w.store.Token(ctx)

	w.store.mu.Lock()
	changed := token != w.store.lastSeen
	if changed {
		w.store.lastSeen = token
	}
	w.store.mu.Unlock()

	if changed {
		w.store.bus.Publish(authbus.Event{Kind: authbus.KindChanged})
	}
}
