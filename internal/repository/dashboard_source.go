package repository

import (
	"context"

	"go-reseller-ws/internal/model"

	"github.com/google/uuid"
)

// DashboardRepository is what a reseller dashboard loads from.
type DashboardRepository interface {
	GetResellerStats(ctx context.Context, resellerID uuid.UUID) (*model.DashboardStats, error)
	GetOrdersByReseller(ctx context.Context, resellerID uuid.UUID, limit int) ([]model.Order, error)
	GetResellerProducts(ctx context.Context, resellerID uuid.UUID) ([]model.ResellerProduct, error)
}

type dashboardRepo struct {
	orders   OrderRepository
	listings ResellerProductRepository
}

func NewDashboardRepo(orders OrderRepository, listings ResellerProductRepository) DashboardRepository {
	return &dashboardRepo{orders: orders, listings: listings}
}

func (r *dashboardRepo) GetResellerStats(ctx context.Context, resellerID uuid.UUID) (*model.DashboardStats, error) {
	return r.orders.GetResellerStats(ctx, resellerID)
}

func (r *dashboardRepo) GetOrdersByReseller(ctx context.Context, resellerID uuid.UUID, limit int) ([]model.Order, error) {
	return r.orders.FindByReseller(ctx, resellerID, limit)
}

func (r *dashboardRepo) GetResellerProducts(ctx context.Context, resellerID uuid.UUID) ([]model.ResellerProduct, error) {
	return r.listings.FindByReseller(ctx, resellerID)
}
