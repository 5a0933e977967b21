package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-reseller-ws/config"
	"go-reseller-ws/internal/handler"
	"go-reseller-ws/internal/middleware"
	"go-reseller-ws/internal/model"
	"go-reseller-ws/internal/notify"
	"go-reseller-ws/internal/rabbitmq"
	"go-reseller-ws/internal/repository"
	"go-reseller-ws/internal/service"
	"go-reseller-ws/internal/store"
	"go-reseller-ws/internal/ws"
	"go-reseller-ws/pkg/database"
	"go-reseller-ws/pkg/jwt"
	"go-reseller-ws/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
)

const cartSweepInterval = 10 * time.Minute

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	appLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.Database)
	if err != nil {
		appLogger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	// Auto Migrate (production should use a separate migration tool)
	if err := db.AutoMigrate(&model.User{}, &model.SocialLink{}, &model.Product{}, &model.ResellerProduct{}, &model.Order{}, &model.OrderItem{}); err != nil {
		appLogger.Error("auto migrate failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub(appLogger)
	go wsHub.Run(ctx)
	notifier := notify.Multi(wsHub, notify.NewLogNotifier(appLogger))

	// 4. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	listingRepo := repository.NewResellerProductRepo(db)
	orderRepo := repository.NewOrderRepo(db, productRepo)
	userRepo := repository.NewUserRepo(db)
	dashboardRepo := repository.NewDashboardRepo(orderRepo, listingRepo)

	tokens := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(userRepo, tokens)
	catalogService := service.NewCatalogService(dashboardRepo, listingRepo, productRepo, notifier, appLogger,
		store.WithRetry(cfg.Dashboard.RetryAttempts, cfg.Dashboard.RetryInitial),
		store.WithRecentOrderLimit(cfg.Dashboard.RecentOrders),
	)
	cartService := service.NewCartService(store.NewCartRegistry(notifier, appLogger), catalogService, cfg.Dashboard.CartIdleExpiry)
	storefrontService := service.NewStorefrontService(userRepo, catalogService)
	brandService := service.NewBrandService(productRepo, notifier)

	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Storefront: handler.NewStorefrontHandler(storefrontService),
		Cart:       handler.NewCartHandler(cartService),
		Reseller:   handler.NewResellerHandler(catalogService),
		Brand:      handler.NewBrandHandler(brandService),
		Pricing:    handler.NewPricingHandler(),
	}

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.HTTP.AppName,
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 6. Routes
	handler.SetupRoutes(app, handlers, middleware.RequireAuth(authService))

	// WebSocket Route. ?token= subscribes to the caller's own events, ?cart= to one cart.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.SendStatus(fiber.StatusUpgradeRequired)
		}
		var scopes []string
		if token := c.Query("token"); token != "" {
			user, err := authService.ValidateToken(c.UserContext(), token)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
			}
			scopes = append(scopes, user.ID.String())
		}
		if cartID := c.Query("cart"); cartID != "" {
			id, err := uuid.Parse(cartID)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid cart ID"})
			}
			scopes = append(scopes, id.String())
		}
		c.Locals("ws_scopes", scopes)
		return c.Next()
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		scopes, _ := c.Locals("ws_scopes").([]string)
		client := ws.NewClient(c, scopes...)
		wsHub.Join(client)
		defer wsHub.Leave(client)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	go sweepCarts(ctx, cartService, appLogger)
	go relayNotifications(ctx, cfg.RabbitMQ, wsHub, appLogger)

	// 7. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.HTTP.Port); err != nil {
			appLogger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	appLogger.Info("server exited")
}

// relayNotifications forwards events published by the order worker to the hub.
// The API keeps serving without it when RabbitMQ is unreachable.
func relayNotifications(ctx context.Context, cfg config.RabbitMQConfig, hub *ws.Hub, logger *slog.Logger) {
	consumer, err := rabbitmq.NewConsumer(cfg, logger)
	if err != nil {
		logger.Warn("notification relay disabled", "error", err)
		return
	}
	defer consumer.Close()
	if err := consumer.ConsumeFanout(ctx, cfg.NotifyExchange, rabbitmq.RelayTo(hub)); err != nil && ctx.Err() == nil {
		logger.Error("notification relay stopped", "error", err)
	}
}

func sweepCarts(ctx context.Context, carts service.CartService, logger *slog.Logger) {
	ticker := time.NewTicker(cartSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := carts.Sweep(now); n > 0 {
				logger.Info("expired idle carts", "count", n)
			}
		}
	}
}
