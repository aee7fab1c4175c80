package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/database/dbtest"
	"storefront/internal/gateway/khalti"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// MockPublisher is a mock implementation of services.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(event string, payload interface{}) error {
	args := m.Called(event, payload)
	return args.Error(0)
}

// MockGateway is a mock implementation of services.PaymentGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Checkout(orderID, orderNumber string, amount decimal.Decimal, customer khalti.CustomerInfo) khalti.CheckoutPayload {
	args := m.Called(orderID, orderNumber, amount, customer)
	return args.Get(0).(khalti.CheckoutPayload)
}

func (m *MockGateway) Verify(ctx context.Context, token string, amount int64) (*khalti.Verification, error) {
	args := m.Called(token, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*khalti.Verification), args.Error(1)
}

func newTestStore(t *testing.T) (*gorm.DB, repositories.Store) {
	db := dbtest.Open(t)
	return db, repositories.NewGORMStore(db)
}

func seedUser(t *testing.T, store repositories.Store, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "hashed",
		FirstName: "Test",
		LastName:  "User",
	}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func seedProduct(t *testing.T, store repositories.Store, sku, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:     "Product " + sku,
		Slug:     sku,
		SKU:      sku,
		Price:    decimal.RequireFromString(price),
		Stock:    10,
		IsActive: true,
	}
	require.NoError(t, store.Products().Create(context.Background(), product))
	return product
}

func seedOrder(t *testing.T, store repositories.Store, userID string, status models.OrderStatus, total string) *models.Order {
	t.Helper()
	ctx := context.Background()
	order := &models.Order{
		OrderNumber:   "EB-" + uuid.NewString()[:13],
		UserID:        userID,
		Status:        models.OrderPending,
		PaymentStatus: models.PaymentPending,
		TotalAmount:   decimal.RequireFromString(total),
	}
	require.NoError(t, store.Orders().Create(ctx, order))
	if status != models.OrderPending {
		order.Status = status
		require.NoError(t, store.Orders().UpdateStatus(ctx, order))
	}
	return order
}

func qty(t *testing.T, cart *models.Cart, productID string) int {
	t.Helper()
	for _, item := range cart.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}
