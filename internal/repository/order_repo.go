package repository

import (
	"context"

	"go-reseller-ws/internal/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	// Create inserts a settled order and its items and decrements stock.
	// created is false when an order with the same id already exists.
	Create(ctx context.Context, order *model.Order) (created bool, err error)
	FindByReseller(ctx context.Context, resellerID uuid.UUID, limit int) ([]model.Order, error)
	GetResellerStats(ctx context.Context, resellerID uuid.UUID) (*model.DashboardStats, error)
}

type orderRepo struct {
	db       *gorm.DB
	products ProductRepository
}

func NewOrderRepo(db *gorm.DB, products ProductRepository) OrderRepository {
	return &orderRepo{db: db, products: products}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Omit(clause.Associations).
			Create(order)
		if res.Error != nil {
			return errors.Wrap(res.Error, "insert order")
		}
		if res.RowsAffected == 0 {
			return nil
		}

		for i := range order.Items {
			order.Items[i].OrderID = order.ID
		}
		if len(order.Items) > 0 {
			if err := tx.Create(&order.Items).Error; err != nil {
				return errors.Wrap(err, "insert order items")
			}
		}
		for _, item := range order.Items {
			if err := r.products.DecrementStock(tx, item.ProductID, item.Quantity); err != nil {
				return errors.Wrapf(err, "decrement stock for %s", item.ProductID)
			}
		}
		created = true
		return nil
	})
	return created, err
}

func (r *orderRepo) FindByReseller(ctx context.Context, resellerID uuid.UUID, limit int) ([]model.Order, error) {
	var orders []model.Order
	q := r.db.WithContext(ctx).
		Preload("Items").
		Where("reseller_id = ?", resellerID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&orders).Error
	return orders, err
}

type itemAggregate struct {
	TotalMarkup     int64
	TotalCommission int64
}

// GetResellerStats aggregates in SQL with the same rules as store.ComputeStats:
// cancelled orders are excluded and commission is floored per unit.
func (r *orderRepo) GetResellerStats(ctx context.Context, resellerID uuid.UUID) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	db := r.db.WithContext(ctx)

	err := db.Model(&model.Order{}).
		Select(`
			COUNT(*) AS total_orders,
			COALESCE(SUM(CASE WHEN status IN ? THEN 1 ELSE 0 END), 0) AS pending_orders,
			COALESCE(SUM(total), 0) AS total_revenue
		`, []model.OrderStatus{model.OrderPending, model.OrderProcessing}).
		Where("reseller_id = ? AND status <> ?", resellerID, model.OrderCancelled).
		Scan(&stats).Error
	if err != nil {
		return nil, errors.Wrap(err, "aggregate orders")
	}

	var agg itemAggregate
	err = db.Table("order_items AS oi").
		Select(`
			COALESCE(SUM((oi.selling_price - oi.base_price) * oi.quantity), 0) AS total_markup,
			COALESCE(SUM(
				CASE WHEN oi.commission_rate > 0
					THEN FLOOR((oi.selling_price - oi.base_price) * oi.commission_rate / 100.0)
					ELSE 0
				END * oi.quantity
			), 0)::bigint AS total_commission
		`).
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.reseller_id = ? AND o.status <> ?", resellerID, model.OrderCancelled).
		Where("o.deleted_at IS NULL AND oi.deleted_at IS NULL").
		Scan(&agg).Error
	if err != nil {
		return nil, errors.Wrap(err, "aggregate order items")
	}
	stats.TotalMarkup = agg.TotalMarkup
	stats.TotalCommission = agg.TotalCommission
	stats.NetEarnings = agg.TotalMarkup - agg.TotalCommission

	// Product counts
	if err := db.Model(&model.ResellerProduct{}).Where("reseller_id = ?", resellerID).Count(&stats.TotalProducts).Error; err != nil {
		return nil, errors.Wrap(err, "count listings")
	}
	if err := db.Model(&model.ResellerProduct{}).Where("reseller_id = ? AND is_active = ?", resellerID, true).Count(&stats.ActiveProducts).Error; err != nil {
		return nil, errors.Wrap(err, "count active listings")
	}

	return &stats, nil
}
