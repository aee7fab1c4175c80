package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// WishlistService manages a user's wishlist.
type WishlistService struct {
	store repositories.Store
}

// NewWishlistService creates a new WishlistService.
func NewWishlistService(store repositories.Store) *WishlistService {
	return &WishlistService{store: store}
}

// AddToWishlist adds the product unless already present. added is false for
// a product that was already on the list.
func (s *WishlistService) AddToWishlist(ctx context.Context, userID, productID string) (item *models.WishlistItem, added bool, err error) {
	product, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, false, err
	}
	if !product.IsActive {
		return nil, false, apperr.NotFound("product")
	}

	item, err = s.store.Wishlist().Get(ctx, userID, product.ID)
	if err == nil {
		return item, false, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, false, err
	}

	item = &models.WishlistItem{UserID: userID, ProductID: product.ID}
	if err := s.store.Wishlist().Create(ctx, item); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			item, err = s.store.Wishlist().Get(ctx, userID, product.ID)
			return item, false, err
		}
		return nil, false, err
	}
	item.Product = *product
	return item, true, nil
}

func (s *WishlistService) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	return s.store.Wishlist().Delete(ctx, userID, productID)
}

func (s *WishlistService) ListWishlist(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	return s.store.Wishlist().ListByUser(ctx, userID)
}
