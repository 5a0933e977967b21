package store

import "errors"

var (
	ErrProductNotFound    = errors.New("product is not listed by this reseller")
	ErrAlreadyListed      = errors.New("product is already listed by this reseller")
	ErrExclusivePricing   = errors.New("community-exclusive products are sold at base price")
	ErrLoadSuperseded     = errors.New("dashboard load superseded by a newer request")
	ErrListingUnavailable = errors.New("listing is not available for purchase")
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrResellerMismatch   = errors.New("listing does not belong to this reseller")
	ErrCrossResellerCart  = errors.New("cart already holds items from another reseller")
	ErrItemNotFound       = errors.New("cart item not found")
	ErrInvalidRole        = errors.New("invalid session role")
	ErrInvalidSession     = errors.New("session user requires an id")
)
