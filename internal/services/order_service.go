package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"storefront/internal/apperr"
	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/telemetry"
)

const (
	orderNumberPrefix      = "EB"
	maxOrderNumberAttempts = 100
)

// CheckoutRequest is the shipping and payment form submitted at checkout.
type CheckoutRequest struct {
	FirstName      string                `json:"first_name" form:"first_name" validate:"required"`
	LastName       string                `json:"last_name" form:"last_name" validate:"required"`
	Phone          string                `json:"phone" form:"phone" validate:"required,max=20"`
	Address        string                `json:"address" form:"address" validate:"required"`
	City           string                `json:"city" form:"city" validate:"required,max=100"`
	PostalCode     string                `json:"postal_code" form:"postal_code" validate:"max=10"`
	Province       string                `json:"province" form:"province" validate:"required,max=100"`
	DeliveryMethod models.DeliveryMethod `json:"delivery_method" form:"delivery_method" validate:"oneof=standard express"`
	PaymentMethod  models.PaymentMethod  `json:"payment_method" form:"payment_method" validate:"oneof=khalti cod"`
}

func (r *CheckoutRequest) normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
	r.City = strings.TrimSpace(r.City)
	r.PostalCode = strings.TrimSpace(r.PostalCode)
	r.Province = strings.TrimSpace(r.Province)
	if r.DeliveryMethod == "" {
		r.DeliveryMethod = models.DeliveryStandard
	}
	if r.PaymentMethod == "" {
		r.PaymentMethod = models.PaymentKhalti
	}
}

func (r *CheckoutRequest) shippingBlock() string {
	return fmt.Sprintf("%s %s\n%s\n%s, %s %s",
		r.FirstName, r.LastName, r.Address, r.City, r.Province, r.PostalCode)
}

// DeliveryFee applies the fee schedule: express is flat, standard is waived
// from the free-shipping threshold upwards.
func DeliveryFee(method models.DeliveryMethod, subtotal decimal.Decimal, cfg config.DeliveryConfig) decimal.Decimal {
	switch method {
	case models.DeliveryExpress:
		return decimal.NewFromFloat(cfg.ExpressFee)
	case models.DeliveryStandard:
		if subtotal.GreaterThanOrEqual(decimal.NewFromFloat(cfg.FreeShippingThreshold)) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(cfg.StandardFee)
	}
	return decimal.Zero
}

// TrackingStep is one stage of the fulfilment pipeline.
type TrackingStep struct {
	Status  models.OrderStatus `json:"status"`
	Reached bool               `json:"reached"`
}

// Tracking summarises where an order is.
type Tracking struct {
	OrderID       string               `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	CanCancel     bool                 `json:"can_cancel"`
	Steps         []TrackingStep       `json:"steps"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

var fulfilmentSteps = []models.OrderStatus{
	models.OrderPending,
	models.OrderConfirmed,
	models.OrderProcessing,
	models.OrderShipped,
	models.OrderDelivered,
}

// OrderService handles business logic related to orders.
type OrderService struct {
	store     repositories.Store
	delivery  config.DeliveryConfig
	publisher Publisher
	now       func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(store repositories.Store, delivery config.DeliveryConfig, publisher Publisher) *OrderService {
	return &OrderService{
		store:     store,
		delivery:  delivery,
		publisher: publisher,
		now:       time.Now,
	}
}

// Checkout turns the user's cart into a pending order and empties the cart.
// Nothing is written unless every step succeeds.
func (s *OrderService) Checkout(ctx context.Context, userID string, req CheckoutRequest) (order *models.Order, err error) {
	req.normalize()
	if err := ValidateStruct(&req); err != nil {
		return nil, err
	}

	ctx, span := telemetry.Start(ctx, "order.checkout", attribute.String("user.id", userID))
	defer func() { telemetry.End(span, err) }()

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		cart, err := tx.Carts().GetByUser(ctx, userID)
		if apperr.Is(err, apperr.KindNotFound) || (err == nil && cart.IsEmpty()) {
			return apperr.Validation("your cart is empty")
		}
		if err != nil {
			return err
		}

		subtotal := cart.TotalAmount()
		fee := DeliveryFee(req.DeliveryMethod, subtotal, s.delivery)
		order = &models.Order{
			UserID:          userID,
			Status:          models.OrderPending,
			Subtotal:        subtotal,
			DeliveryFee:     fee,
			TotalAmount:     subtotal.Add(fee),
			ShippingAddress: req.shippingBlock(),
			ShippingPhone:   req.Phone,
			ShippingEmail:   user.Email,
			DeliveryMethod:  req.DeliveryMethod,
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   models.PaymentPending,
		}
		if err := s.insertOrder(ctx, tx, order); err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, ci := range cart.Items {
			productID := ci.ProductID
			items = append(items, models.OrderItem{
				OrderID:     order.ID,
				ProductID:   &productID,
				ProductName: ci.Product.Name,
				ProductSKU:  ci.Product.SKU,
				Quantity:    ci.Quantity,
				UnitPrice:   ci.Product.EffectivePrice(),
			})
		}
		if err := tx.Orders().CreateItems(ctx, items); err != nil {
			return err
		}
		order.Items = items

		return tx.Carts().ClearItems(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("order.number", order.OrderNumber))
	publish(s.publisher, EventOrderCreated, orderEvent(order))
	return order, nil
}

// insertOrder numbers the order from the clock and inserts it. Taken numbers
// get a -n suffix, including one claimed by a concurrent checkout between the
// lookup and the insert.
func (s *OrderService) insertOrder(ctx context.Context, tx repositories.Store, order *models.Order) error {
	base := orderNumberPrefix + strconv.FormatInt(s.now().Unix(), 10)
	for n := 0; n < maxOrderNumberAttempts; n++ {
		candidate := base
		if n > 0 {
			candidate = fmt.Sprintf("%s-%d", base, n)
		}
		exists, err := tx.Orders().NumberExists(ctx, candidate)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		order.OrderNumber = candidate
		// Savepoint, so a duplicate number does not abort the checkout.
		err = tx.Transaction(ctx, func(sp repositories.Store) error {
			return sp.Orders().Create(ctx, order)
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return fmt.Errorf("could not allocate an order number from %s", base)
}

// ListOrders retrieves the user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.store.Orders().ListByUser(ctx, userID)
}

// GetOrder retrieves one of the user's orders.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	return s.store.Orders().GetForUser(ctx, orderID, userID)
}

// TrackOrder reports the order's progress through fulfilment.
func (s *OrderService) TrackOrder(ctx context.Context, userID, orderID string) (*Tracking, error) {
	order, err := s.store.Orders().GetForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	reached := -1
	for i, st := range fulfilmentSteps {
		if st == order.Status {
			reached = i
		}
	}
	if reached < 0 {
		// cancelled and refunded orders only ever got as far as being placed
		reached = 0
	}
	steps := make([]TrackingStep, len(fulfilmentSteps))
	for i, st := range fulfilmentSteps {
		steps[i] = TrackingStep{Status: st, Reached: i <= reached}
	}

	return &Tracking{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		CanCancel:     order.CanBeCancelled(),
		Steps:         steps,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}, nil
}

// CancelOrder cancels a pending or confirmed order.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	var order *models.Order
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		var err error
		order, err = tx.Orders().GetForUser(ctx, orderID, userID)
		if err != nil {
			return err
		}
		if err := order.Cancel(); err != nil {
			return err
		}
		return tx.Orders().UpdateStatus(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	publish(s.publisher, EventOrderCancelled, orderEvent(order))
	return order, nil
}
