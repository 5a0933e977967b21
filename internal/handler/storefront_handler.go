package handler

import (
	"go-reseller-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type StorefrontHandler struct {
	service service.StorefrontService
}

func NewStorefrontHandler(s service.StorefrontService) *StorefrontHandler {
	return &StorefrontHandler{service: s}
}

// GetStorefront returns a reseller's bio-link page
// GET /api/v1/store/:username
func (h *StorefrontHandler) GetStorefront(c *fiber.Ctx) error {
	front, err := h.service.Get(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(front)
}
