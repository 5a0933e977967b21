package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"go-reseller-ws/internal/model"
	"go-reseller-ws/internal/store"
)

var ErrCartNotFound = errors.New("cart not found")

type CartView struct {
	ID         uuid.UUID        `json:"id"`
	ResellerID *uuid.UUID       `json:"reseller_id"`
	Items      []model.CartItem `json:"items"`
	ItemCount  int              `json:"item_count"`
	Subtotal   int64            `json:"subtotal"`
}

type CartService interface {
	Create() CartView
	Get(cartID uuid.UUID) (CartView, error)
	AddItem(ctx context.Context, cartID, resellerID, productID uuid.UUID) (CartView, error)
	SetQuantity(cartID, itemID uuid.UUID, quantity int) (CartView, error)
	RemoveItem(cartID, itemID uuid.UUID) (CartView, error)
	Clear(cartID uuid.UUID) (CartView, error)
	// Sweep drops carts idle longer than the configured expiry.
	Sweep(now time.Time) int
}

type cartService struct {
	carts      *store.CartRegistry
	catalog    CatalogService
	idleExpiry time.Duration
}

func NewCartService(carts *store.CartRegistry, catalog CatalogService, idleExpiry time.Duration) CartService {
	return &cartService{carts: carts, catalog: catalog, idleExpiry: idleExpiry}
}

func view(id uuid.UUID, cart *store.CartStore) CartView {
	v := CartView{
		ID:        id,
		Items:     cart.Items(),
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal(),
	}
	if rid := cart.ResellerID(); rid != uuid.Nil {
		v.ResellerID = &rid
	}
	return v
}

func (s *cartService) cart(id uuid.UUID) (*store.CartStore, error) {
	cart, ok := s.carts.Get(id)
	if !ok {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

func (s *cartService) Create() CartView {
	id, cart := s.carts.Create()
	return view(id, cart)
}

func (s *cartService) Get(cartID uuid.UUID) (CartView, error) {
	cart, err := s.cart(cartID)
	if err != nil {
		return CartView{}, err
	}
	return view(cartID, cart), nil
}

func (s *cartService) AddItem(ctx context.Context, cartID, resellerID, productID uuid.UUID) (CartView, error) {
	cart, err := s.cart(cartID)
	if err != nil {
		return CartView{}, err
	}
	listing, err := s.catalog.Listing(ctx, resellerID, productID)
	if err != nil {
		return CartView{}, err
	}
	if _, err := cart.AddItem(listing, resellerID); err != nil {
		return CartView{}, err
	}
	return view(cartID, cart), nil
}

func (s *cartService) SetQuantity(cartID, itemID uuid.UUID, quantity int) (CartView, error) {
	cart, err := s.cart(cartID)
	if err != nil {
		return CartView{}, err
	}
	if _, _, err := cart.SetQuantity(itemID, quantity); err != nil {
		return CartView{}, err
	}
	return view(cartID, cart), nil
}

func (s *cartService) RemoveItem(cartID, itemID uuid.UUID) (CartView, error) {
	cart, err := s.cart(cartID)
	if err != nil {
		return CartView{}, err
	}
	if err := cart.RemoveItem(itemID); err != nil {
		return CartView{}, err
	}
	return view(cartID, cart), nil
}

func (s *cartService) Clear(cartID uuid.UUID) (CartView, error) {
	cart, err := s.cart(cartID)
	if err != nil {
		return CartView{}, err
	}
	cart.Clear()
	return view(cartID, cart), nil
}

func (s *cartService) Sweep(now time.Time) int {
	return s.carts.Sweep(now, s.idleExpiry)
}
