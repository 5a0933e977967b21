package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"go-reseller-ws/internal/model"
	"go-reseller-ws/internal/notify"
	"go-reseller-ws/internal/repository"
	"go-reseller-ws/internal/store"
)

var ErrCatalogProductNotFound = errors.New("product not found")

const sharedLoadTimeout = 30 * time.Second

// DashboardView is the reseller dashboard payload.
type DashboardView struct {
	State        store.LoadState         `json:"state"`
	Stats        model.DashboardStats    `json:"stats"`
	RecentOrders []model.Order           `json:"recent_orders"`
	Products     []model.ResellerProduct `json:"products"`
}

type CatalogService interface {
	// Dashboard reloads the reseller's catalog from the database and returns it.
	Dashboard(ctx context.Context, resellerID uuid.UUID) (*DashboardView, error)
	OptIn(ctx context.Context, resellerID, productID uuid.UUID, sellingPrice int64) (model.ResellerProduct, error)
	SetPrice(ctx context.Context, resellerID, productID uuid.UUID, sellingPrice int64) (model.ResellerProduct, error)
	SetActive(ctx context.Context, resellerID, productID uuid.UUID, isActive bool) (model.ResellerProduct, error)
	ActiveListings(ctx context.Context, resellerID uuid.UUID) ([]model.ResellerProduct, error)
	Listing(ctx context.Context, resellerID, productID uuid.UUID) (model.ResellerProduct, error)
}

type catalogService struct {
	source   repository.DashboardRepository
	listings repository.ResellerProductRepository
	products repository.ProductRepository
	notifier notify.Notifier
	logger   *slog.Logger
	opts     []store.CatalogOption

	mu     sync.Mutex
	stores map[uuid.UUID]*store.CatalogStore
	loads  singleflight.Group
}

func NewCatalogService(
	source repository.DashboardRepository,
	listings repository.ResellerProductRepository,
	products repository.ProductRepository,
	notifier notify.Notifier,
	logger *slog.Logger,
	opts ...store.CatalogOption,
) CatalogService {
	return &catalogService{
		source:   source,
		listings: listings,
		products: products,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
		stores:   make(map[uuid.UUID]*store.CatalogStore),
	}
}

func (s *catalogService) storeFor(resellerID uuid.UUID) *store.CatalogStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.stores[resellerID]
	if !ok {
		opts := append([]store.CatalogOption{store.WithPersister(s.listings)}, s.opts...)
		cs = store.NewCatalogStore(resellerID, s.source, s.notifier, s.logger, opts...)
		s.stores[resellerID] = cs
	}
	return cs
}

// loaded returns the reseller's store, loading it first when no load has ever
// committed. Once data exists, reads never start a load, so they cannot
// supersede a reseller's own dashboard refresh. Concurrent first uses share
// one load.
func (s *catalogService) loaded(ctx context.Context, resellerID uuid.UUID) (*store.CatalogStore, error) {
	cs := s.storeFor(resellerID)
	if cs.HasData() {
		return cs, nil
	}
	ch := s.loads.DoChan(resellerID.String(), func() (interface{}, error) {
		if cs.HasData() {
			return nil, nil
		}
		// shared by every waiter, so no single caller's cancellation applies
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		return nil, cs.LoadDashboard(loadCtx)
	})

	var err error
	select {
	case res := <-ch:
		err = res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if errors.Is(err, store.ErrLoadSuperseded) {
		err = cs.Wait(ctx)
	}
	if err != nil {
		return nil, err
	}
	return cs, nil
}

// refresh re-reads the brand products behind the given listings so price and
// availability follow the brand's current record.
func (s *catalogService) refresh(ctx context.Context, cs *store.CatalogStore, productIDs ...uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	products, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return err
	}
	cs.RefreshProducts(products)
	return nil
}

// loadedFresh is loaded followed by a refresh of productIDs.
func (s *catalogService) loadedFresh(ctx context.Context, resellerID uuid.UUID, productIDs ...uuid.UUID) (*store.CatalogStore, error) {
	cs, err := s.loaded(ctx, resellerID)
	if err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, cs, productIDs...); err != nil {
		return nil, err
	}
	return cs, nil
}

func (s *catalogService) Dashboard(ctx context.Context, resellerID uuid.UUID) (*DashboardView, error) {
	cs := s.storeFor(resellerID)
	err := cs.LoadDashboard(ctx)
	if errors.Is(err, store.ErrLoadSuperseded) {
		// a newer load replaced this one; its outcome is the dashboard's
		err = cs.Wait(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &DashboardView{
		State:        cs.State(),
		Stats:        cs.Stats(),
		RecentOrders: cs.RecentOrders(),
		Products:     cs.Products(),
	}, nil
}

func (s *catalogService) OptIn(ctx context.Context, resellerID, productID uuid.UUID, sellingPrice int64) (model.ResellerProduct, error) {
	cs, err := s.loaded(ctx, resellerID)
	if err != nil {
		return model.ResellerProduct{}, err
	}
	product, err := s.products.FindByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ResellerProduct{}, ErrCatalogProductNotFound
	}
	if err != nil {
		return model.ResellerProduct{}, err
	}
	return cs.OptIn(ctx, product, sellingPrice)
}

func (s *catalogService) SetPrice(ctx context.Context, resellerID, productID uuid.UUID, sellingPrice int64) (model.ResellerProduct, error) {
	cs, err := s.loadedFresh(ctx, resellerID, productID)
	if err != nil {
		return model.ResellerProduct{}, err
	}
	return cs.SetProductPrice(ctx, productID, sellingPrice)
}

func (s *catalogService) SetActive(ctx context.Context, resellerID, productID uuid.UUID, isActive bool) (model.ResellerProduct, error) {
	cs, err := s.loadedFresh(ctx, resellerID, productID)
	if err != nil {
		return model.ResellerProduct{}, err
	}
	return cs.SetProductActive(ctx, productID, isActive)
}

func (s *catalogService) ActiveListings(ctx context.Context, resellerID uuid.UUID) ([]model.ResellerProduct, error) {
	cs, err := s.loaded(ctx, resellerID)
	if err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, cs, cs.ProductIDs()...); err != nil {
		return nil, err
	}
	return cs.ActiveProducts(), nil
}

func (s *catalogService) Listing(ctx context.Context, resellerID, productID uuid.UUID) (model.ResellerProduct, error) {
	cs, err := s.loadedFresh(ctx, resellerID, productID)
	if err != nil {
		return model.ResellerProduct{}, err
	}
	rp, ok := cs.Product(productID)
	if !ok {
		return model.ResellerProduct{}, store.ErrProductNotFound
	}
	return rp, nil
}
