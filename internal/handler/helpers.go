package handler

import (
	"errors"
	"log/slog"

	"go-reseller-ws/internal/pricing"
	"go-reseller-ws/internal/service"
	"go-reseller-ws/internal/store"
	"go-reseller-ws/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{store.ErrProductNotFound, fiber.StatusNotFound},
	{store.ErrItemNotFound, fiber.StatusNotFound},
	{service.ErrCatalogProductNotFound, fiber.StatusNotFound},
	{service.ErrCartNotFound, fiber.StatusNotFound},
	{service.ErrStorefrontNotFound, fiber.StatusNotFound},
	{store.ErrAlreadyListed, fiber.StatusConflict},
	{store.ErrCrossResellerCart, fiber.StatusConflict},
	{store.ErrLoadSuperseded, fiber.StatusConflict},
	{service.ErrSKUExists, fiber.StatusConflict},
	{service.ErrEmailTaken, fiber.StatusConflict},
	{service.ErrUsernameTaken, fiber.StatusConflict},
	{store.ErrExclusivePricing, fiber.StatusBadRequest},
	{store.ErrListingUnavailable, fiber.StatusBadRequest},
	{store.ErrOutOfStock, fiber.StatusBadRequest},
	{store.ErrResellerMismatch, fiber.StatusBadRequest},
	{service.ErrInvalidRole, fiber.StatusBadRequest},
	{service.ErrPasswordTooShort, fiber.StatusBadRequest},
	{service.ErrWrongPassword, fiber.StatusBadRequest},
	{service.ErrUserNotFound, fiber.StatusBadRequest},
	{service.ErrPricingLocked, fiber.StatusConflict},
	{service.ErrNotProductOwner, fiber.StatusForbidden},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{service.ErrUserInactive, fiber.StatusUnauthorized},
}

// respondError maps service and store errors to a status and a fiber.Map body.
func respondError(c *fiber.Ctx, err error) error {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		body := fiber.Map{"error": reqErr.message}
		if len(reqErr.fields) > 0 {
			body["fields"] = reqErr.fields
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	var vErr *pricing.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Validation failed", "fields": vErr.Fields})
	}
	var inErr *service.InputError
	if errors.As(err, &inErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": inErr.Error(), "fields": inErr.Fields})
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return c.Status(e.status).JSON(fiber.Map{"error": e.err.Error()})
		}
	}
	slog.Error("request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

type requestError struct {
	message string
	fields  []*validator.ErrorResponse
}

func (e *requestError) Error() string { return e.message }

// bindJSON decodes a JSON body and runs struct validation on it.
func bindJSON(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return &requestError{message: "Invalid JSON"}
	}
	if errs := validator.ValidateStruct(out); len(errs) > 0 {
		return &requestError{message: "Invalid request", fields: errs}
	}
	return nil
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, &requestError{message: "Invalid " + name}
	}
	return id, nil
}
