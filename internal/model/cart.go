package model

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a price-locked line in a visitor cart. UnitPrice and Stock are
// captured when the item is first added and never refreshed.
type CartItem struct {
	ID                   uuid.UUID `json:"id"`
	ResellerProductID    uuid.UUID `json:"reseller_product_id"`
	ProductID            uuid.UUID `json:"product_id"`
	ResellerID           uuid.UUID `json:"reseller_id"`
	SKU                  string    `json:"sku"`
	Name                 string    `json:"name"`
	ImageURL             string    `json:"image_url,omitempty"`
	UnitPrice            int64     `json:"unit_price"`
	Stock                int       `json:"stock"`
	Quantity             int       `json:"quantity"`
	IsCommunityExclusive bool      `json:"is_community_exclusive"`
	RequiredVoucherType  *string   `json:"required_voucher_type,omitempty"`
	AddedAt              time.Time `json:"added_at"`
}

func (i CartItem) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}
