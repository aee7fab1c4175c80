package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"storefront/internal/apperr"
	"storefront/internal/gateway/khalti"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/telemetry"
)

// PaymentGateway verifies tokens issued by the external payment widget and
// builds the payload that opens it.
type PaymentGateway interface {
	Checkout(orderID, orderNumber string, amount decimal.Decimal, customer khalti.CustomerInfo) khalti.CheckoutPayload
	Verify(ctx context.Context, token string, amount int64) (*khalti.Verification, error)
}

// VerifyRequest is the gateway callback forwarded by the browser.
type VerifyRequest struct {
	Token     string `json:"token" form:"token" validate:"required"`
	PaymentID string `json:"payment_id" form:"payment_id" validate:"required"`
	// Amount in paisa. Zero means the payment's own amount.
	Amount int64 `json:"amount" form:"amount" validate:"gte=0"`
}

// PaymentService handles business logic related to payments.
type PaymentService struct {
	store     repositories.Store
	gateway   PaymentGateway
	publisher Publisher
}

// NewPaymentService creates a new PaymentService. publisher may be nil.
func NewPaymentService(store repositories.Store, gateway PaymentGateway, publisher Publisher) *PaymentService {
	return &PaymentService{
		store:     store,
		gateway:   gateway,
		publisher: publisher,
	}
}

func payable(order *models.Order) error {
	if order.Status == models.OrderCancelled || order.Status == models.OrderRefunded {
		return apperr.Conflict("order is " + string(order.Status))
	}
	if order.PaymentStatus == models.PaymentCompleted {
		return apperr.Conflict("order is already paid")
	}
	return nil
}

// InitiateKhalti records a pending gateway payment for the order and returns
// the widget payload. The order is left untouched.
func (s *PaymentService) InitiateKhalti(ctx context.Context, userID, orderID string) (*models.Payment, *khalti.CheckoutPayload, error) {
	order, err := s.store.Orders().GetForUser(ctx, orderID, userID)
	if err != nil {
		return nil, nil, err
	}
	if err := payable(order); err != nil {
		return nil, nil, err
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	payment := &models.Payment{
		OrderID: order.ID,
		UserID:  userID,
		Amount:  order.TotalAmount,
		Method:  models.PaymentKhalti,
		Status:  models.PaymentPending,
	}
	if err := s.store.Payments().Create(ctx, payment); err != nil {
		return nil, nil, err
	}

	payload := s.gateway.Checkout(order.ID, order.OrderNumber, order.TotalAmount, khalti.CustomerInfo{
		Name:  user.FullName(),
		Email: user.Email,
	})
	return payment, &payload, nil
}

// VerifyKhalti asks the gateway to confirm the token. On success the payment
// completes and the order is confirmed as paid in one transaction. On failure
// nothing changes and the gateway's error is returned.
func (s *PaymentService) VerifyKhalti(ctx context.Context, userID string, req VerifyRequest) (payment *models.Payment, err error) {
	if err := ValidateStruct(&req); err != nil {
		return nil, err
	}

	ctx, span := telemetry.Start(ctx, "payment.verify", attribute.String("payment.id", req.PaymentID))
	defer func() { telemetry.End(span, err) }()

	payment, err = s.store.Payments().GetForUser(ctx, req.PaymentID, userID)
	if err != nil {
		return nil, err
	}
	if payment.Method != models.PaymentKhalti {
		return nil, apperr.Validation("payment was not made through the gateway", "payment_id")
	}
	if payment.Status != models.PaymentPending {
		return nil, apperr.Conflict("payment is not awaiting verification")
	}

	expected := khalti.ToPaisa(payment.Amount)
	amount := req.Amount
	if amount == 0 {
		amount = expected
	}
	if amount != expected {
		return nil, apperr.Validation("amount does not match the payment", "amount")
	}

	result, err := s.gateway.Verify(ctx, req.Token, amount)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		payment.Status = models.PaymentCompleted
		payment.TransactionID = result.Idx
		if err := tx.Payments().UpdateStatus(ctx, payment); err != nil {
			return err
		}

		var err error
		order, err = tx.Orders().GetByID(ctx, payment.OrderID)
		if err != nil {
			return err
		}
		if err := order.ConfirmPaid(); err != nil {
			return err
		}
		if err := tx.Orders().UpdateStatus(ctx, order); err != nil {
			return err
		}

		return tx.Payments().CreateTransaction(ctx, &models.GatewayTransaction{
			PaymentID:    payment.ID,
			Token:        req.Token,
			GatewayIdx:   result.Idx,
			Amount:       payment.Amount,
			Status:       result.State.Name,
			ResponseData: string(result.Raw),
		})
	})
	if err != nil {
		payment.Status = models.PaymentPending
		payment.TransactionID = ""
		return nil, fmt.Errorf("failed to record verified payment: %w", err)
	}

	payment.Order = order
	publish(s.publisher, EventPaymentCompleted, paymentEvent(payment))
	publish(s.publisher, EventOrderConfirmed, orderEvent(order))
	return payment, nil
}

// InitiateCOD confirms the order with cash to be collected on delivery.
func (s *PaymentService) InitiateCOD(ctx context.Context, userID, orderID string) (*models.Payment, error) {
	var payment *models.Payment
	var order *models.Order
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		var err error
		order, err = tx.Orders().GetForUser(ctx, orderID, userID)
		if err != nil {
			return err
		}
		if err := payable(order); err != nil {
			return err
		}
		if err := order.ConfirmCashOnDelivery(); err != nil {
			return err
		}

		payment = &models.Payment{
			OrderID: order.ID,
			UserID:  userID,
			Amount:  order.TotalAmount,
			Method:  models.PaymentCashOnDelivery,
			Status:  models.PaymentProcessing,
		}
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return err
		}
		return tx.Orders().UpdateStatus(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	payment.Order = order
	publish(s.publisher, EventOrderConfirmed, orderEvent(order))
	return payment, nil
}

// GetPayment retrieves one of the user's payments with its order.
func (s *PaymentService) GetPayment(ctx context.Context, userID, paymentID string) (*models.Payment, error) {
	return s.store.Payments().GetForUser(ctx, paymentID, userID)
}

// CancelPayment cancels the payment and cascades to its order. Cancelling
// twice rewrites the same values.
func (s *PaymentService) CancelPayment(ctx context.Context, userID, paymentID string) (*models.Payment, error) {
	var payment *models.Payment
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		var err error
		payment, err = tx.Payments().GetForUser(ctx, paymentID, userID)
		if err != nil {
			return err
		}
		order, err := tx.Orders().GetByID(ctx, payment.OrderID)
		if err != nil {
			return err
		}
		if err := order.CancelFromPayment(); err != nil {
			return err
		}

		payment.Status = models.PaymentCancelled
		if err := tx.Payments().UpdateStatus(ctx, payment); err != nil {
			return err
		}
		payment.Order = order
		return tx.Orders().UpdateStatus(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	publish(s.publisher, EventPaymentCancelled, paymentEvent(payment))
	publish(s.publisher, EventOrderCancelled, orderEvent(payment.Order))
	return payment, nil
}
