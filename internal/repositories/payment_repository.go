package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// PaymentRepository defines the interface for payment data access.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	// GetForUser returns not-found when the payment belongs to someone else.
	GetForUser(ctx context.Context, id, userID string) (*models.Payment, error)
	UpdateStatus(ctx context.Context, payment *models.Payment) error
	CreateTransaction(ctx context.Context, txn *models.GatewayTransaction) error
}

// GORMPaymentRepository is a GORM implementation of PaymentRepository.
type GORMPaymentRepository struct {
	db *gorm.DB
}

// NewGORMPaymentRepository creates a new instance of GORMPaymentRepository.
func NewGORMPaymentRepository(db *gorm.DB) *GORMPaymentRepository {
	return &GORMPaymentRepository{db: db}
}

func (r *GORMPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *GORMPaymentRepository) GetForUser(ctx context.Context, id, userID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Preload("Order").
		First(&payment, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, lookupErr(err, "payment")
	}
	return &payment, nil
}

// UpdateStatus writes the payment status and gateway transaction id.
func (r *GORMPaymentRepository) UpdateStatus(ctx context.Context, payment *models.Payment) error {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", payment.ID).
		Updates(map[string]interface{}{
			"status":         payment.Status,
			"transaction_id": payment.TransactionID,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update payment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("payment")
	}
	return nil
}

func (r *GORMPaymentRepository) CreateTransaction(ctx context.Context, txn *models.GatewayTransaction) error {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return fmt.Errorf("failed to record gateway transaction: %w", err)
	}
	return nil
}
