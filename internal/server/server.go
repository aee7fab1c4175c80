// Package server assembles the storefront's Fiber application.
package server

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

// New wires repositories, services and handlers into a Fiber app.
// publisher may be nil, in which case no events are published.
func New(cfg *config.Config, db *gorm.DB, publisher services.Publisher, gateway services.PaymentGateway) *fiber.App {
	store := repositories.NewGORMStore(db)

	// --- Initialize Services ---
	authService := services.NewAuthService(store.Users(), cfg.JWTSecret)
	productService := services.NewProductService(store)
	cartService := services.NewCartService(store)
	orderService := services.NewOrderService(store, cfg.Delivery, publisher)
	paymentService := services.NewPaymentService(store, gateway, publisher)
	addressService := services.NewAddressService(store)
	reviewService := services.NewReviewService(store)
	wishlistService := services.NewWishlistService(store)

	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: errorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New()) // Request logger
	app.Use(cors.New(cors.Config{AllowCredentials: false}))

	app.Get("/health", healthHandler(db))

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	authRequired := middleware.AuthRequired(authService)

	handlers.NewAuthHandler(authService, cartService, cfg.SessionCookie).RegisterRoutes(apiV1)
	handlers.NewProductHandler(productService).RegisterRoutes(apiV1)
	handlers.NewReviewHandler(reviewService).RegisterRoutes(apiV1, authRequired)
	handlers.NewCartHandler(cartService, cfg.SessionCookie).RegisterRoutes(apiV1,
		middleware.OptionalAuth(authService),
		middleware.Session(cfg.SessionCookie),
	)
	handlers.NewOrderHandler(orderService).RegisterRoutes(apiV1, authRequired)
	handlers.NewPaymentHandler(paymentService).RegisterRoutes(apiV1, authRequired)
	handlers.NewAddressHandler(addressService).RegisterRoutes(apiV1, authRequired)
	handlers.NewWishlistHandler(wishlistService).RegisterRoutes(apiV1, authRequired)

	return app
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		database := "connected"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			database = "unavailable"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": database,
		})
	}
}

// errorHandler keeps routing and panic errors in the same envelope as the handlers.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
