package handler

import (
	"go-reseller-ws/internal/middleware"
	"go-reseller-ws/internal/model"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Auth       *AuthHandler
	Storefront *StorefrontHandler
	Cart       *CartHandler
	Reseller   *ResellerHandler
	Brand      *BrandHandler
	Pricing    *PricingHandler
}

// SetupRoutes mounts the /api/v1 tree. requireAuth guards every reseller and brand route.
func SetupRoutes(app *fiber.App, h Handlers, requireAuth fiber.Handler) {
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Post("/register", h.Auth.Register)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Get("/me", requireAuth, h.Auth.Me)

	api.Get("/store/:username", h.Storefront.GetStorefront)

	carts := api.Group("/carts")
	carts.Post("/", h.Cart.Create)
	carts.Get("/:id", h.Cart.Get)
	carts.Delete("/:id", h.Cart.Clear)
	carts.Post("/:id/items", h.Cart.AddItem)
	carts.Put("/:id/items/:itemId", h.Cart.UpdateItem)
	carts.Delete("/:id/items/:itemId", h.Cart.RemoveItem)

	api.Post("/pricing/quote", h.Pricing.Quote)
	api.Post("/pricing/contact", h.Pricing.ValidateContact)

	// ============ PROTECTED ROUTES ============
	reseller := api.Group("/reseller", requireAuth, middleware.RequireRole(model.RoleReseller))
	reseller.Get("/dashboard", h.Reseller.Dashboard)
	reseller.Post("/products", h.Reseller.OptIn)
	reseller.Put("/products/:id/price", h.Reseller.SetPrice)
	reseller.Put("/products/:id/active", h.Reseller.SetActive)

	brand := api.Group("/brand", requireAuth, middleware.RequireRole(model.RoleBrand))
	brand.Get("/products", h.Brand.GetProducts)
	brand.Post("/products", h.Brand.CreateProduct)
	brand.Put("/products/:id", h.Brand.UpdateProduct)
}
