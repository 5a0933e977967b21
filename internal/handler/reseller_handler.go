package handler

import (
	"go-reseller-ws/internal/middleware"
	"go-reseller-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ResellerHandler struct {
	catalog service.CatalogService
}

func NewResellerHandler(catalog service.CatalogService) *ResellerHandler {
	return &ResellerHandler{catalog: catalog}
}

type OptInRequest struct {
	ProductID    uuid.UUID `json:"product_id" validate:"uuid_required"`
	SellingPrice int64     `json:"selling_price"`
}

type SetPriceRequest struct {
	SellingPrice int64 `json:"selling_price"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// GET /api/v1/reseller/dashboard
func (h *ResellerHandler) Dashboard(c *fiber.Ctx) error {
	view, err := h.catalog.Dashboard(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// OptIn lists a brand product on the caller's storefront
// POST /api/v1/reseller/products
func (h *ResellerHandler) OptIn(c *fiber.Ctx) error {
	var req OptInRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	listing, err := h.catalog.OptIn(c.UserContext(), middleware.UserID(c), req.ProductID, req.SellingPrice)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product listed", "data": listing})
}

// PUT /api/v1/reseller/products/:id/price
func (h *ResellerHandler) SetPrice(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req SetPriceRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	listing, err := h.catalog.SetPrice(c.UserContext(), middleware.UserID(c), productID, req.SellingPrice)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Price updated", "data": listing})
}

// PUT /api/v1/reseller/products/:id/active
func (h *ResellerHandler) SetActive(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req SetActiveRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	listing, err := h.catalog.SetActive(c.UserContext(), middleware.UserID(c), productID, *req.IsActive)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Listing updated", "data": listing})
}
