package services

import (
	"log"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

// Event names published after a committed state change.
const (
	EventOrderCreated     = "order.created"
	EventOrderCancelled   = "order.cancelled"
	EventOrderConfirmed   = "order.confirmed"
	EventPaymentCompleted = "payment.completed"
	EventPaymentCancelled = "payment.cancelled"
)

// Publisher delivers domain events to a message broker.
type Publisher interface {
	Publish(event string, payload interface{}) error
}

// OrderEvent is the payload of every order.* event.
type OrderEvent struct {
	OrderID       string               `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	UserID        string               `json:"user_id"`
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
}

// PaymentEvent is the payload of every payment.* event.
type PaymentEvent struct {
	PaymentID     string               `json:"payment_id"`
	OrderID       string               `json:"order_id"`
	UserID        string               `json:"user_id"`
	Method        models.PaymentMethod `json:"payment_method"`
	Status        models.PaymentStatus `json:"status"`
	Amount        decimal.Decimal      `json:"amount"`
	TransactionID string               `json:"transaction_id,omitempty"`
}

func orderEvent(o *models.Order) OrderEvent {
	return OrderEvent{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   o.TotalAmount,
	}
}

func paymentEvent(p *models.Payment) PaymentEvent {
	return PaymentEvent{
		PaymentID:     p.ID,
		OrderID:       p.OrderID,
		UserID:        p.UserID,
		Method:        p.Method,
		Status:        p.Status,
		Amount:        p.Amount,
		TransactionID: p.TransactionID,
	}
}

// publish is best effort: the state change is already committed.
func publish(p Publisher, event string, payload interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(event, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", event, err)
	}
}
