package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go-reseller-ws/internal/model"
	"go-reseller-ws/internal/notify"
	"go-reseller-ws/internal/pricing"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRecentOrders   = 5
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 200 * time.Millisecond
)

// DashboardSource is the order/catalog repository a CatalogStore loads from.
type DashboardSource interface {
	GetResellerStats(ctx context.Context, resellerID uuid.UUID) (*model.DashboardStats, error)
	GetOrdersByReseller(ctx context.Context, resellerID uuid.UUID, limit int) ([]model.Order, error)
	GetResellerProducts(ctx context.Context, resellerID uuid.UUID) ([]model.ResellerProduct, error)
}

// ListingPersister saves listing changes. When configured, a mutation commits
// to the store only after the persister succeeds.
type ListingPersister interface {
	CreateListing(ctx context.Context, listing *model.ResellerProduct) error
	UpdateListing(ctx context.Context, listing *model.ResellerProduct) error
}

type LoadStatus string

const (
	LoadIdle    LoadStatus = "idle"
	LoadLoading LoadStatus = "loading"
	LoadReady   LoadStatus = "ready"
	LoadFailed  LoadStatus = "failed"
)

type LoadState struct {
	Status     LoadStatus `json:"status"`
	Err        error      `json:"-"`
	LoadedAt   time.Time  `json:"loaded_at,omitempty"`
	Generation uint64     `json:"generation"`
}

type CatalogOption func(*CatalogStore)

// WithRetry sets how many times each dashboard fetch is attempted and the first backoff interval.
func WithRetry(maxAttempts int, initial time.Duration) CatalogOption {
	return func(s *CatalogStore) {
		if maxAttempts >= 1 {
			s.maxAttempts = uint(maxAttempts)
		}
		if initial > 0 {
			s.initialBackoff = initial
		}
	}
}

func WithRecentOrderLimit(n int) CatalogOption {
	return func(s *CatalogStore) {
		if n > 0 {
			s.recentLimit = n
		}
	}
}

func WithPersister(p ListingPersister) CatalogOption {
	return func(s *CatalogStore) { s.persister = p }
}

func WithClock(now func() time.Time) CatalogOption {
	return func(s *CatalogStore) { s.now = now }
}

// CatalogStore is one reseller's view of their listings, recent orders and stats.
// Listings are keyed by product id.
type CatalogStore struct {
	resellerID     uuid.UUID
	source         DashboardSource
	persister      ListingPersister
	notifier       notify.Notifier
	logger         *slog.Logger
	now            func() time.Time
	maxAttempts    uint
	initialBackoff time.Duration
	recentLimit    int

	mu         sync.Mutex
	listings   map[uuid.UUID]model.ResellerProduct
	order      []uuid.UUID
	orders     []model.Order
	stats      model.DashboardStats
	state      LoadState
	generation uint64
	cancelLoad context.CancelFunc
	// settled is closed when the in-flight load commits, fails or is superseded
	settled chan struct{}
}

func NewCatalogStore(resellerID uuid.UUID, source DashboardSource, notifier notify.Notifier, logger *slog.Logger, opts ...CatalogOption) *CatalogStore {
	if notifier == nil {
		notifier = notify.Nop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &CatalogStore{
		resellerID:     resellerID,
		source:         source,
		notifier:       notifier,
		logger:         logger.With("component", "catalog_store", "reseller_id", resellerID.String()),
		now:            time.Now,
		maxAttempts:    defaultMaxAttempts,
		initialBackoff: defaultInitialBackoff,
		recentLimit:    defaultRecentOrders,
		listings:       make(map[uuid.UUID]model.ResellerProduct),
		state:          LoadState{Status: LoadIdle},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CatalogStore) ResellerID() uuid.UUID {
	return s.resellerID
}

type dashboardSnapshot struct {
	stats    model.DashboardStats
	orders   []model.Order
	listings []model.ResellerProduct
}

// LoadDashboard fetches stats, recent orders and listings and commits all three
// in one transition. A newer call cancels the in-flight one; a superseded load
// never commits and returns ErrLoadSuperseded, so the final state always comes
// from the most recently requested load.
func (s *CatalogStore) LoadDashboard(ctx context.Context) error {
	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	s.generation++
	gen := s.generation
	s.cancelLoad = cancel
	s.settle()
	s.settled = make(chan struct{})
	s.state = LoadState{Status: LoadLoading, Generation: gen, LoadedAt: s.state.LoadedAt}
	s.mu.Unlock()

	snap, err := s.fetch(loadCtx)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded dashboard load", "generation", gen)
		return ErrLoadSuperseded
	}
	s.cancelLoad = nil
	s.settle()
	if err != nil {
		s.state = LoadState{Status: LoadFailed, Err: err, Generation: gen, LoadedAt: s.state.LoadedAt}
		s.mu.Unlock()
		s.logger.Error("dashboard load failed", "error", err)
		s.notifier.Notify(notify.Event{
			Type:    notify.EventDashboardFailed,
			Level:   notify.LevelError,
			Message: "Failed to load dashboard",
			Scope:   s.resellerID.String(),
		})
		return err
	}

	s.listings = make(map[uuid.UUID]model.ResellerProduct, len(snap.listings))
	s.order = s.order[:0]
	for _, rp := range snap.listings {
		if _, dup := s.listings[rp.ProductID]; !dup {
			s.order = append(s.order, rp.ProductID)
		}
		s.listings[rp.ProductID] = normalizeListing(rp)
	}
	s.orders = snap.orders
	s.stats = snap.stats
	s.state = LoadState{Status: LoadReady, Generation: gen, LoadedAt: s.now()}
	s.mu.Unlock()

	s.notifier.Notify(notify.Event{
		Type:    notify.EventDashboardLoaded,
		Level:   notify.LevelInfo,
		Message: "Dashboard updated",
		Scope:   s.resellerID.String(),
	})
	return nil
}

// settle wakes Wait callers. Runs under s.mu.
func (s *CatalogStore) settle() {
	if s.settled != nil {
		close(s.settled)
		s.settled = nil
	}
}

// Wait blocks until no load is in flight and returns the error of the load
// that settled last, or nil when it committed.
func (s *CatalogStore) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		state, settled := s.state, s.settled
		s.mu.Unlock()
		if state.Status != LoadLoading || settled == nil {
			return state.Err
		}
		select {
		case <-settled:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// HasData reports whether any load has ever committed. Later loads in flight
// or failed leave the previous data readable.
func (s *CatalogStore) HasData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.state.LoadedAt.IsZero()
}

func (s *CatalogStore) fetch(ctx context.Context) (*dashboardSnapshot, error) {
	var snap dashboardSnapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := withRetry(gctx, s, "stats", func(ctx context.Context) (*model.DashboardStats, error) {
			return s.source.GetResellerStats(ctx, s.resellerID)
		})
		if err != nil {
			return err
		}
		if stats != nil {
			snap.stats = *stats
		}
		return nil
	})
	g.Go(func() error {
		orders, err := withRetry(gctx, s, "orders", func(ctx context.Context) ([]model.Order, error) {
			return s.source.GetOrdersByReseller(ctx, s.resellerID, s.recentLimit)
		})
		if err != nil {
			return err
		}
		snap.orders = recentOrders(orders, s.recentLimit)
		return nil
	})
	g.Go(func() error {
		listings, err := withRetry(gctx, s, "products", func(ctx context.Context) ([]model.ResellerProduct, error) {
			return s.source.GetResellerProducts(ctx, s.resellerID)
		})
		if err != nil {
			return err
		}
		snap.listings = listings
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func withRetry[T any](ctx context.Context, s *CatalogStore, what string, fn func(context.Context) (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initialBackoff
	b.MaxInterval = 10 * s.initialBackoff

	attempt := 0
	v, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil {
			return v, backoff.Permanent(ctx.Err())
		}
		s.logger.Warn("dashboard fetch failed", "fetch", what, "attempt", attempt, "error", err)
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(s.maxAttempts))
	if err != nil {
		return v, errors.Wrapf(err, "fetch %s", what)
	}
	return v, nil
}

func recentOrders(orders []model.Order, limit int) []model.Order {
	out := make([]model.Order, len(orders))
	copy(out, orders)
	sort.Stable(model.ByRecency(out))
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// normalizeListing detaches the record from caller memory and re-derives markup.
func normalizeListing(rp model.ResellerProduct) model.ResellerProduct {
	rp = rp.Clone()
	if rp.IsCommunityExclusive() {
		rp.SellingPrice = rp.BasePrice()
	}
	rp.Markup = pricing.ComputeMarkup(rp.BasePrice(), rp.SellingPrice)
	return rp
}

// SetProductActive hides or shows a listing. The brand product is not touched.
func (s *CatalogStore) SetProductActive(ctx context.Context, productID uuid.UUID, isActive bool) (model.ResellerProduct, error) {
	s.mu.Lock()
	current, ok := s.listings[productID]
	if !ok {
		s.mu.Unlock()
		return model.ResellerProduct{}, ErrProductNotFound
	}

	next := current.Clone()
	next.IsActive = isActive
	if err := s.persist(ctx, &next, false); err != nil {
		s.mu.Unlock()
		return model.ResellerProduct{}, err
	}
	s.listings[productID] = next
	s.mu.Unlock()

	state := "hidden from"
	if isActive {
		state = "shown on"
	}
	s.notifier.Notify(notify.Event{
		Type:    notify.EventProductActiveChanged,
		Level:   notify.LevelSuccess,
		Message: fmt.Sprintf("'%s' is now %s your storefront", productName(next), state),
		Scope:   s.resellerID.String(),
		Data:    map[string]interface{}{"product_id": productID, "is_active": isActive},
	})
	return next.Clone(), nil
}

// SetProductPrice replaces selling price and markup together. A price outside
// the platform bounds is rejected with a *pricing.ValidationError and nothing changes.
func (s *CatalogStore) SetProductPrice(ctx context.Context, productID uuid.UUID, newSellingPrice int64) (model.ResellerProduct, error) {
	if err := pricing.ValidatePrice(newSellingPrice).Err(); err != nil {
		return model.ResellerProduct{}, err
	}

	s.mu.Lock()
	current, ok := s.listings[productID]
	if !ok {
		s.mu.Unlock()
		return model.ResellerProduct{}, ErrProductNotFound
	}
	if current.IsCommunityExclusive() {
		s.mu.Unlock()
		return model.ResellerProduct{}, ErrExclusivePricing
	}

	next := current.Clone()
	next.SellingPrice = newSellingPrice
	next.Markup = pricing.ComputeMarkup(next.BasePrice(), newSellingPrice)
	if err := s.persist(ctx, &next, false); err != nil {
		s.mu.Unlock()
		return model.ResellerProduct{}, err
	}
	s.listings[productID] = next
	s.mu.Unlock()

	s.notifier.Notify(notify.Event{
		Type:    notify.EventProductPriceUpdated,
		Level:   notify.LevelSuccess,
		Message: fmt.Sprintf("Price for '%s' updated", productName(next)),
		Scope:   s.resellerID.String(),
		Data: map[string]interface{}{
			"product_id":    productID,
			"selling_price": next.SellingPrice,
			"markup":        next.Markup,
		},
	})
	return next.Clone(), nil
}

// OptIn lists a brand product on this reseller's storefront. Community-exclusive
// products ignore sellingPrice and list at base price.
func (s *CatalogStore) OptIn(ctx context.Context, product *model.Product, sellingPrice int64) (model.ResellerProduct, error) {
	if product == nil || !product.IsActive {
		return model.ResellerProduct{}, ErrListingUnavailable
	}
	if product.IsCommunityExclusive {
		sellingPrice = product.BasePrice
	} else if err := pricing.ValidatePrice(sellingPrice).Err(); err != nil {
		return model.ResellerProduct{}, err
	}

	s.mu.Lock()
	if _, exists := s.listings[product.ID]; exists {
		s.mu.Unlock()
		return model.ResellerProduct{}, ErrAlreadyListed
	}

	p := *product
	listing := normalizeListing(model.ResellerProduct{
		BaseModel:    model.BaseModel{ID: uuid.New()},
		ProductID:    product.ID,
		ResellerID:   s.resellerID,
		Product:      &p,
		SellingPrice: sellingPrice,
		IsActive:     true,
	})
	if err := s.persist(ctx, &listing, true); err != nil {
		s.mu.Unlock()
		return model.ResellerProduct{}, err
	}
	s.listings[product.ID] = listing
	s.order = append(s.order, product.ID)
	s.mu.Unlock()

	s.notifier.Notify(notify.Event{
		Type:    notify.EventProductListed,
		Level:   notify.LevelSuccess,
		Message: fmt.Sprintf("'%s' added to your storefront", product.Name),
		Scope:   s.resellerID.String(),
		Data:    map[string]interface{}{"product_id": product.ID},
	})
	return listing.Clone(), nil
}

// persist runs under s.mu: a mutation and its database write commit together,
// and readers of this reseller wait for the write.
func (s *CatalogStore) persist(ctx context.Context, listing *model.ResellerProduct, create bool) error {
	if s.persister == nil {
		return nil
	}
	// the persister must not keep the relation pointer
	saved := listing.Clone()
	saved.Product = nil
	var err error
	if create {
		err = s.persister.CreateListing(ctx, &saved)
	} else {
		err = s.persister.UpdateListing(ctx, &saved)
	}
	if err != nil {
		return errors.Wrap(err, "persist listing")
	}
	return nil
}

// RefreshProducts replaces the brand product inside each matching listing and
// re-derives markup. Products this reseller has not listed are ignored.
func (s *CatalogStore) RefreshProducts(products []model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range products {
		rp, ok := s.listings[products[i].ID]
		if !ok {
			continue
		}
		p := products[i]
		rp.Product = &p
		s.listings[p.ID] = normalizeListing(rp)
	}
}

// ProductIDs lists the listed product ids in load order.
func (s *CatalogStore) ProductIDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, len(s.order))
	copy(out, s.order)
	return out
}

func (s *CatalogStore) Product(productID uuid.UUID) (model.ResellerProduct, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rp, ok := s.listings[productID]
	if !ok {
		return model.ResellerProduct{}, false
	}
	return rp.Clone(), true
}

// Products returns every listing in the order it was loaded or listed.
func (s *CatalogStore) Products() []model.ResellerProduct {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(func(model.ResellerProduct) bool { return true })
}

// ActiveProducts returns the listings a storefront visitor can buy.
func (s *CatalogStore) ActiveProducts() []model.ResellerProduct {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(func(rp model.ResellerProduct) bool { return rp.IsPurchasable() })
}

func (s *CatalogStore) collect(keep func(model.ResellerProduct) bool) []model.ResellerProduct {
	out := make([]model.ResellerProduct, 0, len(s.order))
	for _, id := range s.order {
		rp := s.listings[id]
		if keep(rp) {
			out = append(out, rp.Clone())
		}
	}
	return out
}

func (s *CatalogStore) RecentOrders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Stats returns the last fetched order figures with product counts recomputed
// from the current listing table.
func (s *CatalogStore) Stats() model.DashboardStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.stats
	var total, active int64
	for _, rp := range s.listings {
		total++
		if rp.IsActive {
			active++
		}
	}
	stats.TotalProducts, stats.ActiveProducts = total, active
	return stats
}

func (s *CatalogStore) State() LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func productName(rp model.ResellerProduct) string {
	if rp.Product == nil {
		return rp.ProductID.String()
	}
	return rp.Product.Name
}
