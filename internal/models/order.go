package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/apperr"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// FulfilledStatuses are the order states that count as a completed purchase.
var FulfilledStatuses = []OrderStatus{OrderDelivered}

// DeliveryMethod selects the delivery fee rule.
type DeliveryMethod string

const (
	DeliveryStandard DeliveryMethod = "standard"
	DeliveryExpress  DeliveryMethod = "express"
)

// Order is an immutable-total snapshot of a cart at checkout.
type Order struct {
	Base
	OrderNumber     string          `json:"order_number" gorm:"uniqueIndex;type:varchar(32)"`
	UserID          string          `json:"user_id" gorm:"type:varchar(36);index"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);default:pending"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2)"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee" gorm:"type:decimal(10,2)"`
	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2)"`
	ShippingAddress string          `json:"shipping_address" gorm:"type:text"`
	ShippingPhone   string          `json:"shipping_phone" gorm:"type:varchar(20)"`
	ShippingEmail   string          `json:"shipping_email" gorm:"type:varchar(255)"`
	DeliveryMethod  DeliveryMethod  `json:"delivery_method" gorm:"type:varchar(20)"`
	PaymentMethod   PaymentMethod   `json:"payment_method" gorm:"type:varchar(20)"`
	PaymentStatus   PaymentStatus   `json:"payment_status" gorm:"type:varchar(20);default:pending"`
	Items           []OrderItem     `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// CanBeCancelled is true only for pending and confirmed orders.
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderPending || o.Status == OrderConfirmed
}

// Cancel moves the order to cancelled or reports a conflict without changing it.
func (o *Order) Cancel() error {
	if !o.CanBeCancelled() {
		return apperr.Conflict("order cannot be cancelled at this stage")
	}
	o.Status = OrderCancelled
	return nil
}

// CancelFromPayment cascades a payment cancellation. An already cancelled
// order is left as is.
func (o *Order) CancelFromPayment() error {
	if o.Status == OrderCancelled {
		return nil
	}
	return o.Cancel()
}

// ConfirmPaid records a verified gateway payment.
func (o *Order) ConfirmPaid() error {
	if o.Status != OrderPending && o.Status != OrderConfirmed {
		return apperr.Conflict("order cannot be confirmed in status " + string(o.Status))
	}
	o.Status = OrderConfirmed
	o.PaymentStatus = PaymentCompleted
	return nil
}

// ConfirmCashOnDelivery confirms the order while the money is still to be collected.
func (o *Order) ConfirmCashOnDelivery() error {
	if o.Status != OrderPending && o.Status != OrderConfirmed {
		return apperr.Conflict("order cannot be confirmed in status " + string(o.Status))
	}
	o.Status = OrderConfirmed
	o.PaymentStatus = PaymentPending
	return nil
}

// OrderItem copies the product details at checkout time.
type OrderItem struct {
	Base
	OrderID     string          `json:"order_id" gorm:"type:varchar(36);index"`
	ProductID   *string         `json:"product_id,omitempty" gorm:"type:varchar(36)"`
	ProductName string          `json:"product_name" gorm:"type:varchar(200)"`
	ProductSKU  string          `json:"product_sku" gorm:"type:varchar(100);index"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2)"`
	TotalPrice  decimal.Decimal `json:"total_price" gorm:"type:decimal(10,2)"`
}

// BeforeSave keeps the line total in step with quantity and unit price.
func (i *OrderItem) BeforeSave(tx *gorm.DB) error {
	i.TotalPrice = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
	return nil
}
