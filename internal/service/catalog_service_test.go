package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-reseller-ws/internal/model"
	"go-reseller-ws/internal/notify"
	"go-reseller-ws/internal/store"
)

type catalogFixture struct {
	resellerID uuid.UUID
	shown      *model.Product
	hidden     *model.Product
	spare      *model.Product
	dashboard  *fakeDashboardRepo
	listings   *fakeListingRepo
	products   *fakeProductRepo
	catalog    CatalogService
}

func newCatalogFixture() *catalogFixture {
	resellerID := uuid.New()
	shown := testProduct("Kemeja", 180000, 10)
	hidden := testProduct("Tas", 90000, 3)
	spare := testProduct("Sepatu", 400000, 2)

	dash := &fakeDashboardRepo{listings: []model.ResellerProduct{
		testListing(resellerID, shown, 250000, true),
		testListing(resellerID, hidden, 120000, false),
	}}
	listings := &fakeListingRepo{}
	products := newFakeProductRepo(shown, hidden, spare)
	catalog := NewCatalogService(dash, listings, products, &notify.Recorder{}, discardLogger(),
		store.WithRetry(1, time.Millisecond))

	return &catalogFixture{
		resellerID: resellerID,
		shown:      shown,
		hidden:     hidden,
		spare:      spare,
		dashboard:  dash,
		listings:   listings,
		products:   products,
		catalog:    catalog,
	}
}

func TestCatalogService_LoadsOnceForReads(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.catalog.ActiveListings(ctx, f.resellerID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	active, err := f.catalog.ActiveListings(ctx, f.resellerID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, f.shown.ID, active[0].ProductID)
	assert.Equal(t, int32(1), f.dashboard.loads.Load())
}

func TestCatalogService_DashboardReloads(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	view, err := f.catalog.Dashboard(ctx, f.resellerID)
	require.NoError(t, err)
	assert.Equal(t, store.LoadReady, view.State.Status)
	assert.Len(t, view.Products, 2)
	assert.Equal(t, int64(1), view.Stats.ActiveProducts)

	_, err = f.catalog.Dashboard(ctx, f.resellerID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.dashboard.loads.Load())
}

func TestCatalogService_MutationsPersist(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	rp, err := f.catalog.SetPrice(ctx, f.resellerID, f.shown.ID, 275000)
	require.NoError(t, err)
	assert.Equal(t, int64(95000), rp.Markup)

	_, err = f.catalog.SetActive(ctx, f.resellerID, f.hidden.ID, true)
	require.NoError(t, err)

	require.Len(t, f.listings.updated, 2)
	assert.Equal(t, int64(275000), f.listings.updated[0].SellingPrice)
	assert.True(t, f.listings.updated[1].IsActive)

	listed, err := f.catalog.OptIn(ctx, f.resellerID, f.spare.ID, 450000)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), listed.Markup)
	require.Len(t, f.listings.created, 1)

	active, err := f.catalog.ActiveListings(ctx, f.resellerID)
	require.NoError(t, err)
	assert.Len(t, active, 3)
}

func TestCatalogService_Errors(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	_, err := f.catalog.OptIn(ctx, f.resellerID, uuid.New(), 5000)
	assert.ErrorIs(t, err, ErrCatalogProductNotFound)

	_, err = f.catalog.OptIn(ctx, f.resellerID, f.shown.ID, 5000)
	assert.ErrorIs(t, err, store.ErrAlreadyListed)

	_, err = f.catalog.Listing(ctx, f.resellerID, f.spare.ID)
	assert.ErrorIs(t, err, store.ErrProductNotFound)

	_, err = f.catalog.SetPrice(ctx, f.resellerID, uuid.New(), 5000)
	assert.ErrorIs(t, err, store.ErrProductNotFound)
}

func TestCatalogService_ReadsDoNotSupersedeDashboard(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	_, err := f.catalog.ActiveListings(ctx, f.resellerID)
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	f.dashboard.onLoad = func(call int32) {
		if call == 2 {
			close(started)
			<-release
		}
	}

	dashErr := make(chan error, 1)
	go func() {
		_, err := f.catalog.Dashboard(ctx, f.resellerID)
		dashErr <- err
	}()
	<-started

	for i := 0; i < 20; i++ {
		active, err := f.catalog.ActiveListings(ctx, f.resellerID)
		require.NoError(t, err)
		assert.Len(t, active, 1)
		_, err = f.catalog.Listing(ctx, f.resellerID, f.shown.ID)
		require.NoError(t, err)
	}
	close(release)

	assert.NoError(t, <-dashErr)
	assert.Equal(t, int32(2), f.dashboard.loads.Load())
}

func TestCatalogService_OverlappingDashboardsBothSucceed(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	f.dashboard.onLoad = func(call int32) {
		if call == 1 {
			close(started)
			<-release
		}
	}

	firstErr := make(chan error, 1)
	go func() {
		_, err := f.catalog.Dashboard(ctx, f.resellerID)
		firstErr <- err
	}()
	<-started

	view, err := f.catalog.Dashboard(ctx, f.resellerID)
	require.NoError(t, err)
	assert.Equal(t, store.LoadReady, view.State.Status)
	close(release)

	assert.NoError(t, <-firstErr)
}

func TestCatalogService_SharedLoadOutlivesCancelledCaller(t *testing.T) {
	f := newCatalogFixture()
	started := make(chan struct{})
	release := make(chan struct{})
	f.dashboard.onLoad = func(call int32) {
		if call == 1 {
			close(started)
			<-release
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := f.catalog.ActiveListings(ctx, f.resellerID)
		firstErr <- err
	}()
	<-started

	secondErr := make(chan error, 1)
	go func() {
		_, err := f.catalog.ActiveListings(context.Background(), f.resellerID)
		secondErr <- err
	}()

	cancel()
	assert.True(t, errors.Is(<-firstErr, context.Canceled))
	close(release)

	assert.NoError(t, <-secondErr)
	assert.Equal(t, int32(1), f.dashboard.loads.Load())
	assert.Equal(t, store.LoadReady, f.catalog.(*catalogService).storeFor(f.resellerID).State().Status)
}

func TestCatalogService_FollowsBrandProductChanges(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	carts := NewCartService(store.NewCartRegistry(&notify.Recorder{}, discardLogger()), f.catalog, time.Hour)
	cart := carts.Create()

	_, err := f.catalog.Dashboard(ctx, f.resellerID)
	require.NoError(t, err)

	f.products.edit(f.shown.ID, func(p *model.Product) { p.IsActive = false })

	active, err := f.catalog.ActiveListings(ctx, f.resellerID)
	require.NoError(t, err)
	assert.Empty(t, active)
	_, err = carts.AddItem(ctx, cart.ID, f.resellerID, f.shown.ID)
	assert.ErrorIs(t, err, store.ErrListingUnavailable)

	f.products.edit(f.shown.ID, func(p *model.Product) {
		p.IsActive = true
		p.Stock = 0
	})
	_, err = carts.AddItem(ctx, cart.ID, f.resellerID, f.shown.ID)
	assert.ErrorIs(t, err, store.ErrOutOfStock)
}

func TestCatalogService_SetPriceUsesCurrentBasePrice(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	_, err := f.catalog.ActiveListings(ctx, f.resellerID)
	require.NoError(t, err)

	f.products.edit(f.shown.ID, func(p *model.Product) { p.BasePrice = 200000 })

	rp, err := f.catalog.SetPrice(ctx, f.resellerID, f.shown.ID, 260000)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), rp.Markup)
	require.Len(t, f.listings.updated, 1)
	assert.Equal(t, int64(60000), f.listings.updated[0].Markup)
}
