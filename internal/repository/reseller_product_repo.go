package repository

import (
	"context"

	"go-reseller-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResellerProductRepository interface {
	CreateListing(ctx context.Context, listing *model.ResellerProduct) error
	UpdateListing(ctx context.Context, listing *model.ResellerProduct) error
	FindByReseller(ctx context.Context, resellerID uuid.UUID) ([]model.ResellerProduct, error)
}

type resellerProductRepo struct {
	db *gorm.DB
}

func NewResellerProductRepo(db *gorm.DB) ResellerProductRepository {
	return &resellerProductRepo{db}
}

func (r *resellerProductRepo) CreateListing(ctx context.Context, listing *model.ResellerProduct) error {
	return r.db.WithContext(ctx).Omit("Product").Create(listing).Error
}

// UpdateListing writes the reseller-editable columns only. A map is used so
// is_active=false is not skipped as a zero value.
func (r *resellerProductRepo) UpdateListing(ctx context.Context, listing *model.ResellerProduct) error {
	res := r.db.WithContext(ctx).Model(&model.ResellerProduct{}).
		Where("id = ? AND reseller_id = ?", listing.ID, listing.ResellerID).
		Updates(map[string]interface{}{
			"selling_price": listing.SellingPrice,
			"markup":        listing.Markup,
			"is_active":     listing.IsActive,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *resellerProductRepo) FindByReseller(ctx context.Context, resellerID uuid.UUID) ([]model.ResellerProduct, error) {
	var listings []model.ResellerProduct
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("reseller_id = ?", resellerID).
		Order("created_at ASC").
		Find(&listings).Error
	return listings, err
}
