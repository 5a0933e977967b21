package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go-reseller-ws/internal/model"
	"go-reseller-ws/internal/repository"
)

var ErrStorefrontNotFound = errors.New("storefront not found")

// StorefrontListing is what a visitor sees for one listing: no base price,
// markup or commission.
type StorefrontListing struct {
	ProductID            string  `json:"product_id"`
	SKU                  string  `json:"sku"`
	Name                 string  `json:"name"`
	Description          string  `json:"description"`
	ImageURL             string  `json:"image_url"`
	Price                int64   `json:"price"`
	Stock                int     `json:"stock"`
	IsCommunityExclusive bool    `json:"is_community_exclusive"`
	RequiredVoucherType  *string `json:"required_voucher_type,omitempty"`
}

type Storefront struct {
	ResellerID string              `json:"reseller_id"`
	Profile    model.PublicProfile `json:"profile"`
	Products   []StorefrontListing `json:"products"`
}

type StorefrontService interface {
	Get(ctx context.Context, username string) (*Storefront, error)
}

type storefrontService struct {
	userRepo repository.UserRepository
	catalog  CatalogService
}

func NewStorefrontService(userRepo repository.UserRepository, catalog CatalogService) StorefrontService {
	return &storefrontService{userRepo: userRepo, catalog: catalog}
}

func (s *storefrontService) Get(ctx context.Context, username string) (*Storefront, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.ToLower(username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStorefrontNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleReseller || !user.IsActive {
		return nil, ErrStorefrontNotFound
	}

	listings, err := s.catalog.ActiveListings(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	products := make([]StorefrontListing, 0, len(listings))
	for i := range listings {
		rp := &listings[i]
		p := rp.Product
		products = append(products, StorefrontListing{
			ProductID:            rp.ProductID.String(),
			SKU:                  p.SKU,
			Name:                 p.Name,
			Description:          p.Description,
			ImageURL:             p.ImageURL,
			Price:                rp.EffectivePrice(),
			Stock:                p.Stock,
			IsCommunityExclusive: p.IsCommunityExclusive,
			RequiredVoucherType:  p.RequiredVoucherType,
		})
	}

	return &Storefront{
		ResellerID: user.ID.String(),
		Profile:    user.ToPublicProfile(),
		Products:   products,
	}, nil
}
