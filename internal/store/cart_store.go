package store

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go-reseller-ws/internal/model"
	"go-reseller-ws/internal/notify"

	"github.com/google/uuid"
)

// CartStore is a single-seller cart. Every item belongs to the same reseller;
// adding a listing from another reseller is rejected with ErrCrossResellerCart
// until the cart is cleared.
type CartStore struct {
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time

	mu         sync.Mutex
	resellerID uuid.UUID
	items      []model.CartItem
	touchedAt  time.Time
}

func NewCartStore(notifier notify.Notifier, logger *slog.Logger) *CartStore {
	if notifier == nil {
		notifier = notify.Nop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CartStore{
		notifier:  notifier,
		logger:    logger.With("component", "cart_store"),
		now:       time.Now,
		touchedAt: time.Now(),
	}
}

// AddItem puts one unit of the listing in the cart. Repeated adds of the same
// product increment quantity up to the stock recorded at first add.
func (c *CartStore) AddItem(listing model.ResellerProduct, resellerID uuid.UUID) (model.CartItem, error) {
	if listing.ResellerID != resellerID {
		return model.CartItem{}, ErrResellerMismatch
	}
	if !listing.IsPurchasable() {
		return model.CartItem{}, ErrListingUnavailable
	}
	if !listing.Product.InStock() {
		return model.CartItem{}, ErrOutOfStock
	}

	c.mu.Lock()
	if len(c.items) > 0 && c.resellerID != resellerID {
		c.mu.Unlock()
		return model.CartItem{}, ErrCrossResellerCart
	}

	var item model.CartItem
	idx := c.indexOfProduct(listing.ProductID, resellerID)
	if idx >= 0 {
		if c.items[idx].Quantity < c.items[idx].Stock {
			c.items[idx].Quantity++
		} else {
			c.logger.Debug("quantity clamped to recorded stock", "product_id", listing.ProductID, "stock", c.items[idx].Stock)
		}
		item = c.items[idx]
	} else {
		item = snapshot(listing, c.now())
		c.items = append(c.items, item)
		c.resellerID = resellerID
	}
	c.touchedAt = c.now()
	c.mu.Unlock()

	c.notifier.Notify(notify.Event{
		Type:    notify.EventCartItemAdded,
		Level:   notify.LevelSuccess,
		Message: fmt.Sprintf("'%s' added to cart", item.Name),
		Data:    map[string]interface{}{"item_id": item.ID, "quantity": item.Quantity},
	})
	return copyItem(item), nil
}

func snapshot(listing model.ResellerProduct, now time.Time) model.CartItem {
	p := listing.Product
	item := model.CartItem{
		ID:                   uuid.New(),
		ResellerProductID:    listing.ID,
		ProductID:            listing.ProductID,
		ResellerID:           listing.ResellerID,
		SKU:                  p.SKU,
		Name:                 p.Name,
		ImageURL:             p.ImageURL,
		UnitPrice:            listing.EffectivePrice(),
		Stock:                p.Stock,
		Quantity:             1,
		IsCommunityExclusive: p.IsCommunityExclusive,
		AddedAt:              now,
	}
	if p.RequiredVoucherType != nil {
		v := *p.RequiredVoucherType
		item.RequiredVoucherType = &v
	}
	return item
}

func (c *CartStore) RemoveItem(itemID uuid.UUID) error {
	c.mu.Lock()
	idx := c.indexOf(itemID)
	if idx < 0 {
		c.mu.Unlock()
		return ErrItemNotFound
	}
	removed := c.items[idx]
	c.removeAt(idx)
	c.mu.Unlock()

	c.notifier.Notify(notify.Event{
		Type:    notify.EventCartItemRemoved,
		Level:   notify.LevelInfo,
		Message: fmt.Sprintf("'%s' removed from cart", removed.Name),
		Data:    map[string]interface{}{"item_id": itemID},
	})
	return nil
}

// SetQuantity clamps quantity to [1, recorded stock]. A quantity below 1
// removes the item; kept reports whether it is still in the cart.
func (c *CartStore) SetQuantity(itemID uuid.UUID, quantity int) (item model.CartItem, kept bool, err error) {
	if quantity < 1 {
		if err := c.RemoveItem(itemID); err != nil {
			return model.CartItem{}, false, err
		}
		return model.CartItem{}, false, nil
	}

	c.mu.Lock()
	idx := c.indexOf(itemID)
	if idx < 0 {
		c.mu.Unlock()
		return model.CartItem{}, false, ErrItemNotFound
	}
	if quantity > c.items[idx].Stock {
		c.logger.Debug("quantity clamped to recorded stock", "item_id", itemID, "requested", quantity, "stock", c.items[idx].Stock)
		quantity = c.items[idx].Stock
	}
	c.items[idx].Quantity = quantity
	item = c.items[idx]
	c.touchedAt = c.now()
	c.mu.Unlock()

	c.notifier.Notify(notify.Event{
		Type:    notify.EventCartItemUpdated,
		Level:   notify.LevelInfo,
		Message: fmt.Sprintf("'%s' quantity set to %d", item.Name, item.Quantity),
		Data:    map[string]interface{}{"item_id": itemID, "quantity": item.Quantity},
	})
	return copyItem(item), true, nil
}

// ItemCount sums quantities over the current items.
func (c *CartStore) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

func (c *CartStore) Subtotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, item := range c.items {
		total += item.LineTotal()
	}
	return total
}

func (c *CartStore) Items() []model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.CartItem, len(c.items))
	for i, item := range c.items {
		out[i] = copyItem(item)
	}
	return out
}

// ResellerID is uuid.Nil while the cart is empty.
func (c *CartStore) ResellerID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resellerID
}

func (c *CartStore) Clear() {
	c.mu.Lock()
	c.items = nil
	c.resellerID = uuid.Nil
	c.touchedAt = c.now()
	c.mu.Unlock()

	c.notifier.Notify(notify.Event{
		Type:    notify.EventCartCleared,
		Level:   notify.LevelInfo,
		Message: "Cart cleared",
	})
}

// IdleSince reports when the cart was last mutated.
func (c *CartStore) IdleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touchedAt
}

func (c *CartStore) indexOf(itemID uuid.UUID) int {
	for i := range c.items {
		if c.items[i].ID == itemID {
			return i
		}
	}
	return -1
}

func (c *CartStore) indexOfProduct(productID, resellerID uuid.UUID) int {
	for i := range c.items {
		if c.items[i].ProductID == productID && c.items[i].ResellerID == resellerID {
			return i
		}
	}
	return -1
}

func (c *CartStore) removeAt(idx int) {
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	if len(c.items) == 0 {
		c.items = nil
		c.resellerID = uuid.Nil
	}
	c.touchedAt = c.now()
}

func copyItem(item model.CartItem) model.CartItem {
	if item.RequiredVoucherType != nil {
		v := *item.RequiredVoucherType
		item.RequiredVoucherType = &v
	}
	return item
}
