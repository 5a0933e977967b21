package handler

import (
	"go-reseller-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CartHandler struct {
	service service.CartService
}

func NewCartHandler(s service.CartService) *CartHandler {
	return &CartHandler{service: s}
}

type AddCartItemRequest struct {
	ResellerID uuid.UUID `json:"reseller_id" validate:"uuid_required"`
	ProductID  uuid.UUID `json:"product_id" validate:"uuid_required"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// POST /api/v1/carts
func (h *CartHandler) Create(c *fiber.Ctx) error {
	return c.Status(201).JSON(h.service.Create())
}

// GET /api/v1/carts/:id
func (h *CartHandler) Get(c *fiber.Ctx) error {
	cartID, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	cart, err := h.service.Get(cartID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

// POST /api/v1/carts/:id/items
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	cartID, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req AddCartItemRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	cart, err := h.service.AddItem(c.UserContext(), cartID, req.ResellerID, req.ProductID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(cart)
}

// UpdateItem sets an item quantity; 0 or less removes it
// PUT /api/v1/carts/:id/items/:itemId
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	cartID, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	itemID, err := paramUUID(c, "itemId")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateCartItemRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	cart, err := h.service.SetQuantity(cartID, itemID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

// DELETE /api/v1/carts/:id/items/:itemId
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	cartID, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	itemID, err := paramUUID(c, "itemId")
	if err != nil {
		return respondError(c, err)
	}

	cart, err := h.service.RemoveItem(cartID, itemID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

// Clear empties the cart; the id stays valid
// DELETE /api/v1/carts/:id
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	cartID, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	cart, err := h.service.Clear(cartID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}
