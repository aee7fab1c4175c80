package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// WishlistRepository defines the interface for wishlist data access.
type WishlistRepository interface {
	Get(ctx context.Context, userID, productID string) (*models.WishlistItem, error)
	Create(ctx context.Context, item *models.WishlistItem) error
	Delete(ctx context.Context, userID, productID string) error
	ListByUser(ctx context.Context, userID string) ([]models.WishlistItem, error)
}

// GORMWishlistRepository is a GORM implementation of WishlistRepository.
type GORMWishlistRepository struct {
	db *gorm.DB
}

// NewGORMWishlistRepository creates a new instance of GORMWishlistRepository.
func NewGORMWishlistRepository(db *gorm.DB) *GORMWishlistRepository {
	return &GORMWishlistRepository{db: db}
}

func (r *GORMWishlistRepository) Get(ctx context.Context, userID, productID string) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := r.db.WithContext(ctx).First(&item, "user_id = ? AND product_id = ?", userID, productID).Error
	if err != nil {
		return nil, lookupErr(err, "wishlist item")
	}
	return &item, nil
}

func (r *GORMWishlistRepository) Create(ctx context.Context, item *models.WishlistItem) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return nil
}

func (r *GORMWishlistRepository) Delete(ctx context.Context, userID, productID string) error {
	res := r.db.WithContext(ctx).Delete(&models.WishlistItem{}, "user_id = ? AND product_id = ?", userID, productID)
	if res.Error != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("wishlist item")
	}
	return nil
}

// ListByUser retrieves the user's wishlist with products, newest first.
func (r *GORMWishlistRepository) ListByUser(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return items, nil
}
