package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/telemetry"
)

// MergeStatus describes what happened to the session cart at login.
type MergeStatus string

const (
	MergeNoSessionCart MergeStatus = "no-session-cart"
	MergeMerged        MergeStatus = "merged"
	MergeFailed        MergeStatus = "merge-failed"
)

// CartService handles business logic related to carts.
type CartService struct {
	store repositories.Store
}

// NewCartService creates a new CartService.
func NewCartService(store repositories.Store) *CartService {
	return &CartService{store: store}
}

func findCart(ctx context.Context, store repositories.Store, id Identity) (*models.Cart, error) {
	switch {
	case id.UserID != "":
		return store.Carts().GetByUser(ctx, id.UserID)
	case id.SessionKey != "":
		return store.Carts().GetBySession(ctx, id.SessionKey)
	default:
		return nil, apperr.Validation("no user or session to own a cart")
	}
}

// getOrCreateCart reports created=true only when this call inserted the cart.
// Losing a create race to a concurrent request is resolved by looking the cart
// up again.
func getOrCreateCart(ctx context.Context, store repositories.Store, id Identity) (*models.Cart, bool, error) {
	cart, err := findCart(ctx, store, id)
	if err == nil {
		return cart, false, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, false, err
	}

	cart = &models.Cart{Items: []models.CartItem{}}
	if id.UserID != "" {
		userID := id.UserID
		cart.UserID = &userID
	} else {
		key := id.SessionKey
		cart.SessionKey = &key
	}

	// Savepoint, so a duplicate key does not poison an enclosing transaction.
	err = store.Transaction(ctx, func(tx repositories.Store) error {
		return tx.Carts().Create(ctx, cart)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		cart, err = findCart(ctx, store, id)
		return cart, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return cart, true, nil
}

// GetOrCreateCart returns the identity's cart, creating an empty one on first use.
func (s *CartService) GetOrCreateCart(ctx context.Context, id Identity) (*models.Cart, bool, error) {
	return getOrCreateCart(ctx, s.store, id)
}

// AddItem adds quantity units of a product, summing into an existing line.
// Stock is not checked.
func (s *CartService) AddItem(ctx context.Context, id Identity, productID string, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("quantity must be a positive integer", "quantity")
	}

	product, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, apperr.NotFound("product")
	}

	cart, _, err := s.GetOrCreateCart(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		return addToCart(ctx, tx, cart.ID, product.ID, quantity)
	})
	if err != nil {
		return nil, err
	}
	return s.store.Carts().GetByID(ctx, cart.ID)
}

// addToCart increments the product's line in place. A line inserted by a
// concurrent request between the lookup and the insert is incremented instead.
func addToCart(ctx context.Context, tx repositories.Store, cartID, productID string, quantity int) error {
	existing, err := tx.Carts().FindItem(ctx, cartID, productID)
	switch {
	case err == nil:
		return tx.Carts().IncrementItem(ctx, existing.ID, quantity)
	case !apperr.Is(err, apperr.KindNotFound):
		return err
	}

	// Savepoint, so the duplicate key does not abort the enclosing transaction.
	err = tx.Transaction(ctx, func(sp repositories.Store) error {
		return sp.Carts().CreateItem(ctx, &models.CartItem{
			CartID:    cartID,
			ProductID: productID,
			Quantity:  quantity,
		})
	})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	existing, err = tx.Carts().FindItem(ctx, cartID, productID)
	if err != nil {
		return err
	}
	return tx.Carts().IncrementItem(ctx, existing.ID, quantity)
}

// ownedItem returns the item only if it sits in the identity's cart.
func (s *CartService) ownedItem(ctx context.Context, id Identity, itemID string) (*models.Cart, *models.CartItem, error) {
	cart, err := findCart(ctx, s.store, id)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, nil, apperr.NotFound("cart item")
	}
	if err != nil {
		return nil, nil, err
	}
	item, err := s.store.Carts().GetItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if item.CartID != cart.ID {
		return nil, nil, apperr.NotFound("cart item")
	}
	return cart, item, nil
}

// RemoveItem deletes a line from the identity's cart.
func (s *CartService) RemoveItem(ctx context.Context, id Identity, itemID string) (*models.Cart, error) {
	cart, item, err := s.ownedItem(ctx, id, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Carts().DeleteItem(ctx, item.ID); err != nil {
		return nil, err
	}
	return s.store.Carts().GetByID(ctx, cart.ID)
}

// UpdateQuantity overwrites a line's quantity. Zero or less removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, id Identity, itemID string, quantity int) (*models.Cart, error) {
	cart, item, err := s.ownedItem(ctx, id, itemID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		err = s.store.Carts().DeleteItem(ctx, item.ID)
	} else {
		err = s.store.Carts().SetItemQuantity(ctx, item.ID, quantity)
	}
	if err != nil {
		return nil, err
	}
	return s.store.Carts().GetByID(ctx, cart.ID)
}

// MergeOnLogin folds the anonymous session cart into the user's cart and
// deletes the session cart, all in one transaction.
func (s *CartService) MergeOnLogin(ctx context.Context, sessionKey, userID string) (status MergeStatus, err error) {
	if sessionKey == "" {
		return MergeNoSessionCart, nil
	}

	ctx, span := telemetry.Start(ctx, "cart.merge", attribute.String("user.id", userID))
	defer func() { telemetry.End(span, err) }()

	status = MergeNoSessionCart
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		sessionCart, err := tx.Carts().GetBySession(ctx, sessionKey)
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		userCart, _, err := getOrCreateCart(ctx, tx, Identity{UserID: userID})
		if err != nil {
			return err
		}

		for _, item := range sessionCart.Items {
			if err := addToCart(ctx, tx, userCart.ID, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("failed to merge cart item %s: %w", item.ID, err)
			}
		}

		if err := tx.Carts().ClearItems(ctx, sessionCart.ID); err != nil {
			return err
		}
		if err := tx.Carts().Delete(ctx, sessionCart.ID); err != nil {
			return err
		}
		status = MergeMerged
		return nil
	})
	if err != nil {
		log.Printf("Cart merge for user %s failed: %v", userID, err)
		return MergeFailed, err
	}
	return status, nil
}
