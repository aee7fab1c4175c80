package repositories

import (
	"context"

	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// GetForUser returns not-found when the order belongs to someone else.
	GetForUser(ctx context.Context, id, userID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	// UpdateStatus writes status and payment status only. The order number and totals are never rewritten.
	UpdateStatus(ctx context.Context, order *models.Order) error
	NumberExists(ctx context.Context, number string) (bool, error)
	// HasFulfilledItem reports whether the user bought sku on an order in a fulfilled status.
	HasFulfilledItem(ctx context.Context, userID, sku string) (bool, error)
}
