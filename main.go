package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/gateway/khalti"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/server"
	"storefront/internal/services"
	"storefront/internal/telemetry"
	"storefront/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	tp, err := telemetry.InitTracer("storefront", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	app, cleanup, err := newApp(cfg)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	defer cleanup()

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// newApp opens the database, connects the event publisher when one is
// configured and builds the HTTP app. cleanup releases what was opened.
func newApp(cfg *config.Config) (*fiber.App, func(), error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	seedProducts(services.NewProductService(repositories.NewGORMStore(db)))

	var publisher services.Publisher
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL == "" {
		log.Println("RABBITMQ_URL not set, events will not be published")
	} else {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			// The storefront works without events; publishing is best-effort.
			log.Printf("Failed to initialize RabbitMQ client, continuing without events: %v", err)
		} else {
			publisher = mqClient
			go func() {
				log.Println("Starting RabbitMQ consumer for storefront events...")
				if err := mqClient.ConsumeEvents(rabbitmq.LogEvent); err != nil {
					log.Printf("Failed to start RabbitMQ consumer: %v", err)
				}
			}()
		}
	}

	app := server.New(cfg, db, publisher, khalti.NewClient(cfg.Khalti))

	cleanup := func() {
		if mqClient != nil {
			if err := mqClient.Close(); err != nil {
				log.Printf("Error closing RabbitMQ client: %v", err)
			}
		}
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return app, cleanup, nil
}

// seedProducts adds a small demo catalog the first time the database is used.
func seedProducts(productService *services.ProductService) {
	ctx := context.Background()
	existing, err := productService.ListProducts(ctx, repositories.ProductFilter{})
	if err != nil {
		log.Printf("Error checking catalog before seeding: %v", err)
		return
	}
	if len(existing) > 0 {
		return
	}

	products := []models.Product{
		{Name: "Trail Running Shoes", SKU: "SHOE-TRAIL-01", Description: "Lightweight trail shoes", Price: decimal.NewFromInt(4500), SalePrice: decimal.NewNullDecimal(decimal.NewFromInt(3999)), Stock: 10, IsActive: true},
		{Name: "Canvas Backpack", SKU: "BAG-CANVAS-01", Description: "Everyday 20L backpack", Price: decimal.NewFromInt(2200), Stock: 25, IsActive: true},
		{Name: "Wool Beanie", SKU: "HAT-WOOL-01", Description: "Hand-knitted wool beanie", Price: decimal.NewFromInt(650), Stock: 50, IsActive: true},
	}
	for i := range products {
		if err := productService.CreateProduct(ctx, &products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
			continue
		}
		log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
		seedImages(ctx, productService, &products[i])
	}
}

// seedImages gives a seeded product a gallery with its front shot as cover.
func seedImages(ctx context.Context, productService *services.ProductService, product *models.Product) {
	var cover string
	for pos, view := range []string{"front", "side"} {
		image := &models.ProductImage{
			URL:      fmt.Sprintf("/static/products/%s-%s.jpg", product.Slug, view),
			AltText:  product.Name + " (" + view + ")",
			Position: pos,
		}
		if err := productService.AddImage(ctx, product.ID, image); err != nil {
			log.Printf("Error seeding image for %s: %v", product.Name, err)
			return
		}
		if view == "front" {
			cover = image.ID
		}
	}
	if _, err := productService.SetPrimaryImage(ctx, product.ID, cover); err != nil {
		log.Printf("Error setting cover image for %s: %v", product.Name, err)
	}
}
