package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-reseller-ws/internal/notify"
)

func validProductInput() ProductInput {
	return ProductInput{
		SKU:            "BTK-001",
		Name:           "Kemeja Batik",
		BasePrice:      180000,
		CommissionRate: 20,
		Stock:          10,
	}
}

func TestBrandService_CreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	rec := &notify.Recorder{}
	svc := NewBrandService(newFakeProductRepo(), rec)
	brandID := uuid.New()

	p, err := svc.CreateProduct(ctx, brandID, validProductInput())
	require.NoError(t, err)
	assert.Equal(t, brandID, p.BrandID)
	assert.True(t, p.IsActive)

	_, err = svc.CreateProduct(ctx, brandID, validProductInput())
	assert.ErrorIs(t, err, ErrSKUExists)

	update := validProductInput()
	update.Stock = 4
	inactive := false
	update.IsActive = &inactive
	updated, err := svc.UpdateProduct(ctx, brandID, p.ID, update)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Stock)
	assert.False(t, updated.IsActive)

	_, err = svc.UpdateProduct(ctx, uuid.New(), p.ID, update)
	assert.ErrorIs(t, err, ErrNotProductOwner)
	_, err = svc.UpdateProduct(ctx, brandID, uuid.New(), update)
	assert.ErrorIs(t, err, ErrCatalogProductNotFound)

	products, err := svc.ListProducts(ctx, brandID)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	assert.Equal(t, []notify.EventType{notify.EventBrandProductCreated, notify.EventBrandProductUpdated}, rec.Types())
}

func TestBrandService_ValidatesInput(t *testing.T) {
	svc := NewBrandService(newFakeProductRepo(), nil)
	in := validProductInput()
	in.CommissionRate = 150

	_, err := svc.CreateProduct(context.Background(), uuid.New(), in)
	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "lte", inputErr.Fields[0].Tag)
}

func TestBrandService_PricingLockedAfterCreate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProductRepo()
	svc := NewBrandService(repo, nil)
	brandID := uuid.New()

	p, err := svc.CreateProduct(ctx, brandID, validProductInput())
	require.NoError(t, err)

	tests := map[string]func(*ProductInput){
		"base price":      func(in *ProductInput) { in.BasePrice = 200000 },
		"commission rate": func(in *ProductInput) { in.CommissionRate = 25 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			update := validProductInput()
			mutate(&update)

			_, err := svc.UpdateProduct(ctx, brandID, p.ID, update)
			assert.ErrorIs(t, err, ErrPricingLocked)

			stored, err := repo.FindByID(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(180000), stored.BasePrice)
			assert.Equal(t, 20, stored.CommissionRate)
		})
	}
}
