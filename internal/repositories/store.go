package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storefront/internal/apperr"
)

// Store groups the repositories behind one unit of work. Repositories
// obtained from the Store handed to a Transaction callback share its
// transaction.
type Store interface {
	Products() ProductRepository
	Users() UserRepository
	Carts() CartRepository
	Orders() OrderRepository
	Payments() PaymentRepository
	Addresses() AddressRepository
	Reviews() ReviewRepository
	Wishlist() WishlistRepository

	// Transaction runs fn atomically. Any error returned by fn rolls back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// GORMStore is a GORM implementation of Store.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore creates a new instance of GORMStore.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

func (s *GORMStore) Products() ProductRepository { return NewGORMProductRepository(s.db) }
func (s *GORMStore) Users() UserRepository { return NewGORMUserRepository(s.db) }
func (s *GORMStore) Carts() CartRepository { return NewGORMCartRepository(s.db) }
func (s *GORMStore) Orders() OrderRepository { return NewGORMOrderRepository(s.db) }
func (s *GORMStore) Payments() PaymentRepository { return NewGORMPaymentRepository(s.db) }
func (s *GORMStore) Addresses() AddressRepository { return NewGORMAddressRepository(s.db) }
func (s *GORMStore) Reviews() ReviewRepository { return NewGORMReviewRepository(s.db) }
func (s *GORMStore) Wishlist() WishlistRepository { return NewGORMWishlistRepository(s.db) }

// Transaction implements Store.
func (s *GORMStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMStore(tx))
	})
}

// lookupErr turns a missing record into a not-found error for entity.
func lookupErr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity)
	}
	return fmt.Errorf("failed to get %s: %w", entity, err)
}
