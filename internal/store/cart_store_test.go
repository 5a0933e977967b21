package store

import (
	"testing"
	"time"

	"go-reseller-ws/internal/notify"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCart() (*CartStore, *notify.Recorder) {
	rec := &notify.Recorder{}
	return NewCartStore(rec, newDiscardLogger()), rec
}

func TestCartStore_AddItem_IncrementsExistingLine(t *testing.T) {
	cart, rec := newTestCart()
	resellerID := uuid.New()
	listing := newListing(resellerID, newProduct("Kemeja", 180000, 20, 10), 250000)

	first, err := cart.AddItem(listing, resellerID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)
	assert.Equal(t, int64(250000), first.UnitPrice)

	second, err := cart.AddItem(listing, resellerID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Quantity)

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, resellerID, cart.ResellerID())
	assert.Equal(t, []notify.EventType{notify.EventCartItemAdded, notify.EventCartItemAdded}, rec.Types())
}

func TestCartStore_AddItem_ClampsToRecordedStock(t *testing.T) {
	cart, _ := newTestCart()
	resellerID := uuid.New()
	p := newProduct("Tas", 90000, 10, 2)
	listing := newListing(resellerID, p, 120000)

	for i := 0; i < 4; i++ {
		_, err := cart.AddItem(listing, resellerID)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, cart.ItemCount())

	// stock is snapshotted at first add
	p.Stock = 50
	item, err := cart.AddItem(listing, resellerID)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
}

func TestCartStore_ItemCountAndSubtotal(t *testing.T) {
	cart, _ := newTestCart()
	resellerID := uuid.New()
	a := newListing(resellerID, newProduct("A", 10000, 0, 10), 15000)
	b := newListing(resellerID, newProduct("B", 20000, 0, 10), 25000)

	itemA, err := cart.AddItem(a, resellerID)
	require.NoError(t, err)
	itemB, err := cart.AddItem(b, resellerID)
	require.NoError(t, err)

	_, _, err = cart.SetQuantity(itemA.ID, 2)
	require.NoError(t, err)
	_, _, err = cart.SetQuantity(itemB.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, 5, cart.ItemCount())
	assert.Equal(t, int64(2*15000+3*25000), cart.Subtotal())
}

func TestCartStore_SetQuantity(t *testing.T) {
	cart, rec := newTestCart()
	resellerID := uuid.New()
	listing := newListing(resellerID, newProduct("Kemeja", 180000, 20, 10), 250000)
	added, err := cart.AddItem(listing, resellerID)
	require.NoError(t, err)

	item, kept, err := cart.SetQuantity(added.ID, 15)
	require.NoError(t, err)
	assert.True(t, kept)
	assert.Equal(t, 10, item.Quantity)

	_, kept, err = cart.SetQuantity(added.ID, 0)
	require.NoError(t, err)
	assert.False(t, kept)
	assert.Empty(t, cart.Items())
	assert.Equal(t, uuid.Nil, cart.ResellerID())
	assert.Contains(t, rec.Types(), notify.EventCartItemRemoved)

	_, _, err = cart.SetQuantity(added.ID, 3)
	assert.ErrorIs(t, err, ErrItemNotFound)
	_, _, err = cart.SetQuantity(uuid.New(), 0)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestCartStore_RemoveItem(t *testing.T) {
	cart, _ := newTestCart()
	resellerID := uuid.New()
	a := newListing(resellerID, newProduct("A", 10000, 0, 10), 15000)
	b := newListing(resellerID, newProduct("B", 20000, 0, 10), 25000)
	itemA, _ := cart.AddItem(a, resellerID)
	_, _ = cart.AddItem(b, resellerID)

	require.NoError(t, cart.RemoveItem(itemA.ID))
	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "B", items[0].Name)
	assert.Equal(t, resellerID, cart.ResellerID())

	assert.ErrorIs(t, cart.RemoveItem(itemA.ID), ErrItemNotFound)
}

func TestCartStore_AddItem_Rejections(t *testing.T) {
	resellerID := uuid.New()

	t.Run("reseller mismatch", func(t *testing.T) {
		cart, _ := newTestCart()
		listing := newListing(resellerID, newProduct("A", 10000, 0, 10), 15000)
		_, err := cart.AddItem(listing, uuid.New())
		assert.ErrorIs(t, err, ErrResellerMismatch)
	})

	t.Run("inactive listing", func(t *testing.T) {
		cart, _ := newTestCart()
		listing := newListing(resellerID, newProduct("A", 10000, 0, 10), 15000)
		listing.IsActive = false
		_, err := cart.AddItem(listing, resellerID)
		assert.ErrorIs(t, err, ErrListingUnavailable)
	})

	t.Run("inactive brand product", func(t *testing.T) {
		cart, _ := newTestCart()
		p := newProduct("A", 10000, 0, 10)
		p.IsActive = false
		_, err := cart.AddItem(newListing(resellerID, p, 15000), resellerID)
		assert.ErrorIs(t, err, ErrListingUnavailable)
	})

	t.Run("out of stock", func(t *testing.T) {
		cart, _ := newTestCart()
		_, err := cart.AddItem(newListing(resellerID, newProduct("A", 10000, 0, 0), 15000), resellerID)
		assert.ErrorIs(t, err, ErrOutOfStock)
	})

	t.Run("other reseller", func(t *testing.T) {
		cart, _ := newTestCart()
		_, err := cart.AddItem(newListing(resellerID, newProduct("A", 10000, 0, 5), 15000), resellerID)
		require.NoError(t, err)

		other := uuid.New()
		_, err = cart.AddItem(newListing(other, newProduct("B", 10000, 0, 5), 15000), other)
		assert.ErrorIs(t, err, ErrCrossResellerCart)
		assert.Len(t, cart.Items(), 1)
	})
}

func TestCartStore_CommunityExclusiveUsesBasePrice(t *testing.T) {
	cart, _ := newTestCart()
	resellerID := uuid.New()
	voucher := "member"
	p := newProduct("Paket Komunitas", 75000, 0, 5)
	p.IsCommunityExclusive = true
	p.RequiredVoucherType = &voucher
	listing := newListing(resellerID, p, 99000)

	item, err := cart.AddItem(listing, resellerID)
	require.NoError(t, err)
	assert.Equal(t, int64(75000), item.UnitPrice)
	assert.True(t, item.IsCommunityExclusive)
	require.NotNil(t, item.RequiredVoucherType)
	assert.Equal(t, "member", *item.RequiredVoucherType)

	voucher = "changed"
	assert.Equal(t, "member", *cart.Items()[0].RequiredVoucherType)
}

func TestCartStore_PriceIsSnapshotted(t *testing.T) {
	cart, _ := newTestCart()
	resellerID := uuid.New()
	listing := newListing(resellerID, newProduct("A", 10000, 0, 5), 15000)
	_, err := cart.AddItem(listing, resellerID)
	require.NoError(t, err)

	listing.SellingPrice = 30000
	item, err := cart.AddItem(listing, resellerID)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), item.UnitPrice)
}

func TestCartStore_Clear(t *testing.T) {
	cart, rec := newTestCart()
	resellerID := uuid.New()
	_, err := cart.AddItem(newListing(resellerID, newProduct("A", 10000, 0, 5), 15000), resellerID)
	require.NoError(t, err)

	cart.Clear()
	assert.Empty(t, cart.Items())
	assert.Zero(t, cart.ItemCount())
	assert.Zero(t, cart.Subtotal())
	assert.Equal(t, uuid.Nil, cart.ResellerID())
	assert.Equal(t, notify.EventCartCleared, rec.Types()[len(rec.Types())-1])

	other := uuid.New()
	_, err = cart.AddItem(newListing(other, newProduct("B", 10000, 0, 5), 15000), other)
	assert.NoError(t, err, "a cleared cart accepts another reseller")
}

func TestCartRegistry(t *testing.T) {
	rec := &notify.Recorder{}
	reg := NewCartRegistry(rec, newDiscardLogger())

	idleID, idle := reg.Create()
	freshID, fresh := reg.Create()
	assert.Equal(t, 2, reg.Len())

	got, ok := reg.Get(freshID)
	require.True(t, ok)
	assert.Same(t, fresh, got)

	resellerID := uuid.New()
	_, err := fresh.AddItem(newListing(resellerID, newProduct("A", 10000, 0, 5), 15000), resellerID)
	require.NoError(t, err)
	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, freshID.String(), events[0].Scope)

	idle.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	idle.Clear()

	dropped := reg.Sweep(time.Now(), 2*time.Hour)
	assert.Equal(t, 1, dropped)
	_, ok = reg.Get(idleID)
	assert.False(t, ok)
	_, ok = reg.Get(freshID)
	assert.True(t, ok)

	reg.Drop(freshID)
	assert.Zero(t, reg.Len())
}
