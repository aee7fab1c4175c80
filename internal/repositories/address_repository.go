package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// AddressRepository defines the interface for shipping address data access.
type AddressRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.ShippingAddress, error)
	GetForUser(ctx context.Context, id, userID string) (*models.ShippingAddress, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	Create(ctx context.Context, address *models.ShippingAddress) error
	Update(ctx context.Context, address *models.ShippingAddress) error
	Delete(ctx context.Context, id, userID string) error
	// ClearDefault unflags every address of the user except exceptID.
	ClearDefault(ctx context.Context, userID, exceptID string) error
}

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

// NewGORMAddressRepository creates a new instance of GORMAddressRepository.
func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{db: db}
}

// ListByUser retrieves the user's addresses, default first.
func (r *GORMAddressRepository) ListByUser(ctx context.Context, userID string) ([]models.ShippingAddress, error) {
	var addresses []models.ShippingAddress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default desc, created_at desc").
		Find(&addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

func (r *GORMAddressRepository) GetForUser(ctx context.Context, id, userID string) (*models.ShippingAddress, error) {
	var address models.ShippingAddress
	if err := r.db.WithContext(ctx).First(&address, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, lookupErr(err, "address")
	}
	return &address, nil
}

func (r *GORMAddressRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ShippingAddress{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count addresses: %w", err)
	}
	return count, nil
}

func (r *GORMAddressRepository) Create(ctx context.Context, address *models.ShippingAddress) error {
	if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

func (r *GORMAddressRepository) Update(ctx context.Context, address *models.ShippingAddress) error {
	if err := r.db.WithContext(ctx).Save(address).Error; err != nil {
		return fmt.Errorf("failed to update address: %w", err)
	}
	return nil
}

func (r *GORMAddressRepository) Delete(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).Delete(&models.ShippingAddress{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete address: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("address")
	}
	return nil
}

func (r *GORMAddressRepository) ClearDefault(ctx context.Context, userID, exceptID string) error {
	err := r.db.WithContext(ctx).Model(&models.ShippingAddress{}).
		Where("user_id = ? AND id <> ? AND is_default = ?", userID, exceptID, true).
		Update("is_default", false).Error
	if err != nil {
		return fmt.Errorf("failed to clear default address: %w", err)
	}
	return nil
}
