package models

import "github.com/shopspring/decimal"

// PaymentMethod is how an order is paid.
type PaymentMethod string

const (
	PaymentKhalti         PaymentMethod = "khalti"
	PaymentCashOnDelivery PaymentMethod = "cod"
)

// PaymentStatus is the state of a payment attempt, also mirrored on the order.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentRefunded   PaymentStatus = "refunded"
)

// Payment is one attempt to collect funds for an order.
type Payment struct {
	Base
	OrderID       string          `json:"order_id" gorm:"type:varchar(36);index"`
	Order         *Order          `json:"order,omitempty"`
	UserID        string          `json:"user_id" gorm:"type:varchar(36);index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(10,2)"`
	Method        PaymentMethod   `json:"payment_method" gorm:"type:varchar(20)"`
	Status        PaymentStatus   `json:"status" gorm:"type:varchar(20);default:pending"`
	TransactionID string          `json:"transaction_id" gorm:"type:varchar(100)"`
}

// GatewayTransaction is the audit row of a successful gateway verification.
type GatewayTransaction struct {
	Base
	PaymentID    string          `json:"payment_id" gorm:"type:varchar(36);index"`
	Token        string          `json:"token" gorm:"type:varchar(255)"`
	GatewayIdx   string          `json:"gateway_idx" gorm:"type:varchar(100)"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(10,2)"`
	Status       string          `json:"status" gorm:"type:varchar(50)"`
	ResponseData string          `json:"response_data" gorm:"type:text"`
}
