package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go-reseller-ws/internal/model"

	"github.com/google/uuid"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errBoom = errors.New("boom")

func newProduct(name string, base int64, rate, stock int) *model.Product {
	return &model.Product{
		BaseModel:      model.BaseModel{ID: uuid.New()},
		BrandID:        uuid.New(),
		SKU:            "SKU-" + name,
		Name:           name,
		BasePrice:      base,
		CommissionRate: rate,
		Stock:          stock,
		IsActive:       true,
	}
}

func newListing(resellerID uuid.UUID, p *model.Product, selling int64) model.ResellerProduct {
	return model.ResellerProduct{
		BaseModel:    model.BaseModel{ID: uuid.New()},
		ProductID:    p.ID,
		ResellerID:   resellerID,
		Product:      p,
		SellingPrice: selling,
		Markup:       selling - p.BasePrice,
		IsActive:     true,
	}
}

type fakeSource struct {
	stats    *model.DashboardStats
	orders   []model.Order
	listings []model.ResellerProduct

	statsCalls    atomic.Int32
	ordersCalls   atomic.Int32
	productsCalls atomic.Int32

	// when set, replaces the canned products response
	productsFn func(ctx context.Context, call int32) ([]model.ResellerProduct, error)
	statsFn    func(ctx context.Context, call int32) (*model.DashboardStats, error)
	lastLimit  atomic.Int32
}

func (f *fakeSource) GetResellerStats(ctx context.Context, _ uuid.UUID) (*model.DashboardStats, error) {
	call := f.statsCalls.Add(1)
	if f.statsFn != nil {
		return f.statsFn(ctx, call)
	}
	return f.stats, nil
}

func (f *fakeSource) GetOrdersByReseller(_ context.Context, _ uuid.UUID, limit int) ([]model.Order, error) {
	f.ordersCalls.Add(1)
	f.lastLimit.Store(int32(limit))
	return f.orders, nil
}

func (f *fakeSource) GetResellerProducts(ctx context.Context, _ uuid.UUID) ([]model.ResellerProduct, error) {
	call := f.productsCalls.Add(1)
	if f.productsFn != nil {
		return f.productsFn(ctx, call)
	}
	return f.listings, nil
}

type fakePersister struct {
	mu      sync.Mutex
	fail    error
	created []model.ResellerProduct
	updated []model.ResellerProduct
}

func (p *fakePersister) CreateListing(_ context.Context, rp *model.ResellerProduct) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.created = append(p.created, *rp)
	return nil
}

func (p *fakePersister) UpdateListing(_ context.Context, rp *model.ResellerProduct) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.updated = append(p.updated, *rp)
	return nil
}

func orderAt(resellerID uuid.UUID, at time.Time, status model.OrderStatus, items ...model.OrderItem) model.Order {
	o := model.Order{
		BaseModel:  model.BaseModel{ID: uuid.New(), CreatedAt: at},
		ResellerID: resellerID,
		Items:      items,
		Status:     status,
	}
	o.Total = o.ComputeTotal()
	return o
}
