package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-reseller-ws/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) find(match func(*model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) mutate(id uuid.UUID, fn func(*model.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	fn(u)
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hashed string) error {
	return r.mutate(id, func(u *model.User) { u.Password = hashed })
}

func (r *fakeUserRepo) UpdateTokenVersion(_ context.Context, id uuid.UUID, version string) error {
	return r.mutate(id, func(u *model.User) { u.TokenVersion = version })
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	return r.mutate(id, func(*model.User) {})
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*model.Product
}

func newFakeProductRepo(products ...*model.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[uuid.UUID]*model.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) FindByBrand(_ context.Context, brandID uuid.UUID) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.products {
		if p.BrandID == brandID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

// edit changes a stored product the way another process writing the table would.
func (r *fakeProductRepo) edit(id uuid.UUID, fn func(*model.Product)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.products[id]
	fn(&cp)
	r.products[id] = &cp
}

func (r *fakeProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) Update(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) DecrementStock(_ *gorm.DB, id uuid.UUID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		p.Stock -= quantity
	}
	return nil
}

type fakeDashboardRepo struct {
	listings []model.ResellerProduct
	loads    atomic.Int32
	// onLoad, when set, runs inside every products fetch with its call number
	onLoad func(call int32)
}

func (r *fakeDashboardRepo) GetResellerStats(context.Context, uuid.UUID) (*model.DashboardStats, error) {
	return &model.DashboardStats{}, nil
}

func (r *fakeDashboardRepo) GetOrdersByReseller(context.Context, uuid.UUID, int) ([]model.Order, error) {
	return nil, nil
}

func (r *fakeDashboardRepo) GetResellerProducts(context.Context, uuid.UUID) ([]model.ResellerProduct, error) {
	call := r.loads.Add(1)
	if r.onLoad != nil {
		r.onLoad(call)
	}
	return r.listings, nil
}

type fakeListingRepo struct {
	mu      sync.Mutex
	created []model.ResellerProduct
	updated []model.ResellerProduct
}

func (r *fakeListingRepo) CreateListing(_ context.Context, rp *model.ResellerProduct) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, *rp)
	return nil
}

func (r *fakeListingRepo) UpdateListing(_ context.Context, rp *model.ResellerProduct) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, *rp)
	return nil
}

func (r *fakeListingRepo) FindByReseller(context.Context, uuid.UUID) ([]model.ResellerProduct, error) {
	return nil, nil
}

func testProduct(name string, base int64, stock int) *model.Product {
	return &model.Product{
		BaseModel:      model.BaseModel{ID: uuid.New()},
		BrandID:        uuid.New(),
		SKU:            "SKU-" + name,
		Name:           name,
		BasePrice:      base,
		CommissionRate: 10,
		Stock:          stock,
		IsActive:       true,
	}
}

func testListing(resellerID uuid.UUID, p *model.Product, selling int64, active bool) model.ResellerProduct {
	return model.ResellerProduct{
		BaseModel:    model.BaseModel{ID: uuid.New()},
		ProductID:    p.ID,
		ResellerID:   resellerID,
		Product:      p,
		SellingPrice: selling,
		Markup:       selling - p.BasePrice,
		IsActive:     active,
	}
}
