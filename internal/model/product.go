package model

import "github.com/google/uuid"

// Product is a brand-owned catalog item. BasePrice and CommissionRate are set
// by the brand; stock only moves through settled orders.
type Product struct {
	BaseModel
	BrandID     uuid.UUID `gorm:"type:uuid;not null;index" json:"brand_id"`
	SKU         string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required,max=50"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"type:varchar(500)" json:"image_url" validate:"omitempty,url"`

	BasePrice      int64 `gorm:"not null" json:"base_price" validate:"gte=0"`
	CommissionRate int   `gorm:"not null" json:"commission_rate" validate:"gte=0,lte=100"` // percent of markup
	Stock          int   `gorm:"not null" json:"stock" validate:"gte=0"`
	IsActive       bool  `gorm:"not null" json:"is_active"`

	IsCommunityExclusive bool    `gorm:"not null" json:"is_community_exclusive"`
	RequiredVoucherType  *string `gorm:"type:varchar(50)" json:"required_voucher_type,omitempty"`
}

func (p *Product) InStock() bool {
	return p.Stock > 0
}
