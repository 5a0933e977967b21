package model

import (
	"go-reseller-ws/internal/pricing"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// IsOpen reports whether the order still needs fulfilment work.
func (s OrderStatus) IsOpen() bool {
	return s == OrderPending || s == OrderProcessing
}

type CustomerInfo struct {
	Name    string `gorm:"type:varchar(100);not null" json:"name"`
	Email   string `gorm:"type:varchar(255);not null" json:"email"`
	Phone   string `gorm:"type:varchar(20);not null" json:"phone"`
	Address string `gorm:"type:text" json:"address,omitempty"`
}

// Order is a settled purchase. It is written by the settlement worker and read-only afterwards.
type Order struct {
	BaseModel
	ResellerID uuid.UUID    `gorm:"type:uuid;not null;index" json:"reseller_id"`
	Customer   CustomerInfo `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`
	Items      []OrderItem  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total      int64        `gorm:"not null" json:"total"`
	Status     OrderStatus  `gorm:"type:varchar(20);not null;index" json:"status"`
}

// OrderItem captures listing prices at purchase time.
type OrderItem struct {
	BaseModel
	OrderID           uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID         uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	ResellerProductID uuid.UUID `gorm:"type:uuid" json:"reseller_product_id"`
	Name              string    `gorm:"type:varchar(255)" json:"name"`
	BasePrice         int64     `gorm:"not null" json:"base_price"`
	SellingPrice      int64     `gorm:"not null" json:"selling_price"`
	CommissionRate    int       `gorm:"not null" json:"commission_rate"`
	Quantity          int       `gorm:"not null" json:"quantity"`
}

func (i OrderItem) LineTotal() int64 {
	return i.SellingPrice * int64(i.Quantity)
}

func (i OrderItem) Markup() int64 {
	return pricing.ComputeMarkup(i.BasePrice, i.SellingPrice) * int64(i.Quantity)
}

// Commission is floored per unit, then multiplied by quantity.
func (i OrderItem) Commission() int64 {
	return pricing.ComputeCommission(i.BasePrice, i.SellingPrice, i.CommissionRate) * int64(i.Quantity)
}

// ComputeTotal sums the captured line totals.
func (o *Order) ComputeTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.LineTotal()
	}
	return total
}

// ByRecency sorts orders newest first.
type ByRecency []Order

func (o ByRecency) Len() int           { return len(o) }
func (o ByRecency) Less(i, j int) bool { return o[i].CreatedAt.After(o[j].CreatedAt) }
func (o ByRecency) Swap(i, j int)      { o[i], o[j] = o[j], o[i] }

// DashboardStats is an aggregated, recomputed view for one reseller.
type DashboardStats struct {
	TotalOrders     int64 `json:"total_orders"`
	PendingOrders   int64 `json:"pending_orders"`
	TotalRevenue    int64 `json:"total_revenue"`
	TotalMarkup     int64 `json:"total_markup"`
	TotalCommission int64 `json:"total_commission"`
	NetEarnings     int64 `json:"net_earnings"`
	TotalProducts   int64 `json:"total_products"`
	ActiveProducts  int64 `json:"active_products"`
}
