package store

import (
	"log/slog"
	"sync"
	"time"

	"go-reseller-ws/internal/notify"

	"github.com/google/uuid"
)

// CartRegistry holds one CartStore per visitor cart id.
type CartRegistry struct {
	notifier notify.Notifier
	logger   *slog.Logger

	mu    sync.Mutex
	carts map[uuid.UUID]*CartStore
}

func NewCartRegistry(notifier notify.Notifier, logger *slog.Logger) *CartRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartRegistry{
		notifier: notifier,
		logger:   logger,
		carts:    make(map[uuid.UUID]*CartStore),
	}
}

func (r *CartRegistry) Create() (uuid.UUID, *CartStore) {
	id := uuid.New()
	scope := id.String()
	var n notify.Notifier = notify.Nop()
	if r.notifier != nil {
		n = notify.NotifierFunc(func(evt notify.Event) {
			evt.Scope = scope
			r.notifier.Notify(evt)
		})
	}
	cart := NewCartStore(n, r.logger.With("cart_id", scope))

	r.mu.Lock()
	r.carts[id] = cart
	r.mu.Unlock()
	return id, cart
}

func (r *CartRegistry) Get(id uuid.UUID) (*CartStore, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[id]
	return cart, ok
}

func (r *CartRegistry) Drop(id uuid.UUID) {
	r.mu.Lock()
	delete(r.carts, id)
	r.mu.Unlock()
}

func (r *CartRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}

// Sweep drops carts untouched for longer than maxIdle and returns how many were dropped.
func (r *CartRegistry) Sweep(now time.Time, maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for id, cart := range r.carts {
		if now.Sub(cart.IdleSince()) > maxIdle {
			delete(r.carts, id)
			dropped++
		}
	}
	if dropped > 0 {
		r.logger.Info("swept idle carts", "dropped", dropped, "remaining", len(r.carts))
	}
	return dropped
}
