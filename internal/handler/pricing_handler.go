package handler

import (
	"go-reseller-ws/internal/pricing"

	"github.com/gofiber/fiber/v2"
)

type PricingHandler struct{}

func NewPricingHandler() *PricingHandler {
	return &PricingHandler{}
}

type QuoteRequest struct {
	BasePrice      int64 `json:"base_price" validate:"gte=0"`
	SellingPrice   int64 `json:"selling_price"`
	CommissionRate int   `json:"commission_rate" validate:"gte=0,lte=100"`
}

// Quote previews markup, commission and earnings for a candidate selling price
// POST /api/v1/pricing/quote
func (h *PricingHandler) Quote(c *fiber.Ctx) error {
	var req QuoteRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := pricing.ValidatePrice(req.SellingPrice).Err(); err != nil {
		return respondError(c, err)
	}
	return c.JSON(pricing.Quote(req.BasePrice, req.SellingPrice, req.CommissionRate))
}

// ValidateContact checks checkout contact details and returns the normalized phone
// POST /api/v1/pricing/contact
func (h *PricingHandler) ValidateContact(c *fiber.Ctx) error {
	var info pricing.ContactInfo
	if err := bindJSON(c, &info); err != nil {
		return respondError(c, err)
	}
	if err := pricing.ValidateContactInfo(info).Err(); err != nil {
		return respondError(c, err)
	}
	phone, _ := pricing.NormalizePhone(info.Phone)
	return c.JSON(fiber.Map{"valid": true, "phone": phone})
}
