package model

import "github.com/google/uuid"

// ResellerProduct is a reseller's listing of a brand Product.
// Markup is always SellingPrice - Product.BasePrice; it is derived, never edited directly.
type ResellerProduct struct {
	BaseModel
	ProductID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reseller_listing" json:"product_id"`
	ResellerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reseller_listing;index" json:"reseller_id"`
	Product      *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	SellingPrice int64     `gorm:"not null" json:"selling_price"`
	Markup       int64     `gorm:"not null" json:"markup"`
	IsActive     bool      `gorm:"not null" json:"is_active"` // reseller-side visibility only
}

// BasePrice returns 0 when the product relation was not loaded.
func (rp *ResellerProduct) BasePrice() int64 {
	if rp.Product == nil {
		return 0
	}
	return rp.Product.BasePrice
}

func (rp *ResellerProduct) IsCommunityExclusive() bool {
	return rp.Product != nil && rp.Product.IsCommunityExclusive
}

// IsPurchasable reports whether visitors can add the listing to a cart:
// both the reseller listing and the brand product must be active.
func (rp *ResellerProduct) IsPurchasable() bool {
	return rp.IsActive && rp.Product != nil && rp.Product.IsActive
}

// EffectivePrice is what a buyer pays. Community-exclusive products have no
// reseller markup layer and always sell at base price.
func (rp *ResellerProduct) EffectivePrice() int64 {
	if rp.IsCommunityExclusive() {
		return rp.BasePrice()
	}
	return rp.SellingPrice
}

// Clone returns a copy that shares no pointers with rp.
func (rp ResellerProduct) Clone() ResellerProduct {
	if rp.Product != nil {
		p := *rp.Product
		if p.RequiredVoucherType != nil {
			v := *p.RequiredVoucherType
			p.RequiredVoucherType = &v
		}
		rp.Product = &p
	}
	return rp
}
