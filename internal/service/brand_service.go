package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-reseller-ws/internal/model"
	"go-reseller-ws/internal/notify"
	"go-reseller-ws/internal/repository"
	"go-reseller-ws/pkg/validator"
)

var (
	ErrSKUExists       = errors.New("SKU already exists")
	ErrNotProductOwner = errors.New("product belongs to another brand")
	ErrPricingLocked   = errors.New("base price and commission rate cannot change after a product is created")
)

// ProductInput is the brand-supplied part of a Product. BasePrice and
// CommissionRate are fixed at creation; updates must repeat them unchanged.
type ProductInput struct {
	SKU                  string  `json:"sku" validate:"required,max=50"`
	Name                 string  `json:"name" validate:"required,max=255"`
	Description          string  `json:"description"`
	ImageURL             string  `json:"image_url" validate:"omitempty,url"`
	BasePrice            int64   `json:"base_price" validate:"gte=0"`
	CommissionRate       int     `json:"commission_rate" validate:"gte=0,lte=100"`
	Stock                int     `json:"stock" validate:"gte=0"`
	IsActive             *bool   `json:"is_active"`
	IsCommunityExclusive bool    `json:"is_community_exclusive"`
	RequiredVoucherType  *string `json:"required_voucher_type" validate:"omitempty,max=50"`
}

// InputError carries the struct validation failures of a ProductInput.
type InputError struct {
	Fields []*validator.ErrorResponse
}

func (e *InputError) Error() string {
	first := e.Fields[0]
	return fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", first.FailedField, first.Tag)
}

type BrandService interface {
	ListProducts(ctx context.Context, brandID uuid.UUID) ([]model.Product, error)
	CreateProduct(ctx context.Context, brandID uuid.UUID, input ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, brandID, productID uuid.UUID, input ProductInput) (*model.Product, error)
}

type brandService struct {
	productRepo repository.ProductRepository
	notifier    notify.Notifier
}

func NewBrandService(productRepo repository.ProductRepository, notifier notify.Notifier) BrandService {
	if notifier == nil {
		notifier = notify.Nop()
	}
	return &brandService{productRepo: productRepo, notifier: notifier}
}

func (s *brandService) ListProducts(ctx context.Context, brandID uuid.UUID) ([]model.Product, error) {
	return s.productRepo.FindByBrand(ctx, brandID)
}

func validateInput(input *ProductInput) error {
	input.SKU = strings.TrimSpace(input.SKU)
	if errs := validator.ValidateStruct(input); len(errs) > 0 {
		return &InputError{Fields: errs}
	}
	return nil
}

func (in ProductInput) apply(p *model.Product) {
	p.SKU = in.SKU
	p.Name = in.Name
	p.Description = in.Description
	p.ImageURL = in.ImageURL
	p.BasePrice = in.BasePrice
	p.CommissionRate = in.CommissionRate
	p.Stock = in.Stock
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.IsCommunityExclusive = in.IsCommunityExclusive
	p.RequiredVoucherType = in.RequiredVoucherType
}

func (s *brandService) CreateProduct(ctx context.Context, brandID uuid.UUID, input ProductInput) (*model.Product, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	if _, err := s.productRepo.FindBySKU(ctx, input.SKU); err == nil {
		return nil, ErrSKUExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product := &model.Product{BrandID: brandID, IsActive: true}
	input.apply(product)
	product.CreatedBy = brandID.String()
	product.UpdatedBy = brandID.String()

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.notifier.Notify(notify.Event{
		Type:    notify.EventBrandProductCreated,
		Level:   notify.LevelSuccess,
		Message: fmt.Sprintf("New product '%s' is available", product.Name),
		Data: map[string]interface{}{
			"product_id": product.ID,
			"sku":        product.SKU,
			"base_price": product.BasePrice,
		},
	})
	return product, nil
}

func (s *brandService) UpdateProduct(ctx context.Context, brandID, productID uuid.UUID, input ProductInput) (*model.Product, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.FindByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCatalogProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if existing.BrandID != brandID {
		return nil, ErrNotProductOwner
	}
	// reseller markups and commissions are derived from these two
	if input.BasePrice != existing.BasePrice || input.CommissionRate != existing.CommissionRate {
		return nil, ErrPricingLocked
	}
	if input.SKU != existing.SKU {
		if _, err := s.productRepo.FindBySKU(ctx, input.SKU); err == nil {
			return nil, ErrSKUExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	input.apply(existing)
	existing.UpdatedBy = brandID.String()
	if err := s.productRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.notifier.Notify(notify.Event{
		Type:    notify.EventBrandProductUpdated,
		Level:   notify.LevelInfo,
		Message: fmt.Sprintf("Product '%s' was updated", existing.Name),
		Data: map[string]interface{}{
			"product_id": existing.ID,
			"stock":      existing.Stock,
			"is_active":  existing.IsActive,
		},
	})
	return existing, nil
}
