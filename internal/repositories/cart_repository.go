package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// CartRepository defines the interface for cart and cart item data access.
type CartRepository interface {
	GetByUser(ctx context.Context, userID string) (*models.Cart, error)
	GetBySession(ctx context.Context, sessionKey string) (*models.Cart, error)
	GetByID(ctx context.Context, id string) (*models.Cart, error)
	// Create inserts a cart. A second cart for the same owner fails with gorm.ErrDuplicatedKey.
	Create(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, id string) error

	GetItem(ctx context.Context, id string) (*models.CartItem, error)
	FindItem(ctx context.Context, cartID, productID string) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	SetItemQuantity(ctx context.Context, id string, quantity int) error
	// IncrementItem adds n to the stored quantity in a single UPDATE.
	IncrementItem(ctx context.Context, id string, n int) error
	DeleteItem(ctx context.Context, id string) error
	ClearItems(ctx context.Context, cartID string) error
}

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func (r *GORMCartRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		Preload("Items.Product")
}

func (r *GORMCartRepository) GetByUser(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.withItems(ctx).First(&cart, "user_id = ?", userID).Error; err != nil {
		return nil, lookupErr(err, "cart")
	}
	return &cart, nil
}

func (r *GORMCartRepository) GetBySession(ctx context.Context, sessionKey string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.withItems(ctx).First(&cart, "session_key = ?", sessionKey).Error; err != nil {
		return nil, lookupErr(err, "cart")
	}
	return &cart, nil
}

func (r *GORMCartRepository) GetByID(ctx context.Context, id string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.withItems(ctx).First(&cart, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "cart")
	}
	return &cart, nil
}

func (r *GORMCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(cart).Error; err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Cart{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// GetItem retrieves a cart item with its product.
func (r *GORMCartRepository) GetItem(ctx context.Context, id string) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).Preload("Product").First(&item, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "cart item")
	}
	return &item, nil
}

// FindItem retrieves the row for product in cart, if any.
func (r *GORMCartRepository) FindItem(ctx context.Context, cartID, productID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).First(&item, "cart_id = ? AND product_id = ?", cartID, productID).Error
	if err != nil {
		return nil, lookupErr(err, "cart item")
	}
	return &item, nil
}

func (r *GORMCartRepository) CreateItem(ctx context.Context, item *models.CartItem) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create cart item: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) SetItemQuantity(ctx context.Context, id string, quantity int) error {
	err := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) IncrementItem(ctx context.Context, id string, n int) error {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", n))
	if res.Error != nil {
		return fmt.Errorf("failed to increment cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("cart item")
	}
	return nil
}

func (r *GORMCartRepository) DeleteItem(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) ClearItems(ctx context.Context, cartID string) error {
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
