package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

var testDelivery = config.DeliveryConfig{ExpressFee: 200, StandardFee: 100, FreeShippingThreshold: 1000}

func validCheckout() services.CheckoutRequest {
	return services.CheckoutRequest{
		FirstName:  "Jane",
		LastName:   "Doe",
		Phone:      "9800000000",
		Address:    "Lazimpat 12",
		City:       "Kathmandu",
		PostalCode: "44600",
		Province:   "Bagmati",
	}
}

func TestDeliveryFee(t *testing.T) {
	tests := []struct {
		name     string
		method   models.DeliveryMethod
		subtotal string
		want     string
	}{
		{"standard above threshold", models.DeliveryStandard, "1500", "0"},
		{"standard at threshold", models.DeliveryStandard, "1000", "0"},
		{"standard below threshold", models.DeliveryStandard, "500", "100"},
		{"express small", models.DeliveryExpress, "500", "200"},
		{"express large", models.DeliveryExpress, "5000", "200"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.DeliveryFee(tt.method, decimal.RequireFromString(tt.subtotal), testDelivery)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestOrderService_Checkout(t *testing.T) {
	_, store := newTestStore(t)
	pub := new(MockPublisher)
	carts := services.NewCartService(store)
	orders := services.NewOrderService(store, testDelivery, pub)
	ctx := context.Background()

	user := seedUser(t, store, "buyer")
	a := seedProduct(t, store, "SKU-A", "300.00")
	b := seedProduct(t, store, "SKU-B", "100.00")
	me := services.Identity{UserID: user.ID}
	_, err := carts.AddItem(ctx, me, a.ID, 1)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, me, b.ID, 2)
	require.NoError(t, err)

	pub.On("Publish", services.EventOrderCreated, mock.AnythingOfType("services.OrderEvent")).Return(nil).Once()

	req := validCheckout()
	req.FirstName = "  Jane "
	order, err := orders.Checkout(ctx, user.ID, req)
	require.NoError(t, err)

	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Equal(t, models.PaymentKhalti, order.PaymentMethod)
	assert.Equal(t, models.DeliveryStandard, order.DeliveryMethod)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(500)))
	assert.True(t, order.DeliveryFee.Equal(decimal.NewFromInt(100)))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, "Jane Doe\nLazimpat 12\nKathmandu, Bagmati 44600", order.ShippingAddress)
	assert.Equal(t, user.Email, order.ShippingEmail)
	assert.Regexp(t, `^EB\d+`, order.OrderNumber)

	stored, err := orders.GetOrder(ctx, user.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	for _, item := range stored.Items {
		assert.True(t, item.TotalPrice.Equal(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))))
	}

	cart, err := store.Carts().GetByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	pub.AssertExpectations(t)
}

func TestOrderService_Checkout_SnapshotSurvivesPriceChange(t *testing.T) {
	_, store := newTestStore(t)
	carts := services.NewCartService(store)
	orders := services.NewOrderService(store, testDelivery, nil)
	ctx := context.Background()

	user := seedUser(t, store, "buyer")
	product := seedProduct(t, store, "SKU-A", "1200.00")
	_, err := carts.AddItem(ctx, services.Identity{UserID: user.ID}, product.ID, 1)
	require.NoError(t, err)

	order, err := orders.Checkout(ctx, user.ID, validCheckout())
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(1200)))

	product.Price = decimal.RequireFromString("99.00")
	product.Name = "Renamed"
	require.NoError(t, store.Products().Update(ctx, product))

	stored, err := orders.GetOrder(ctx, user.ID, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(decimal.NewFromInt(1200)))
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, "Product SKU-A", stored.Items[0].ProductName)
	assert.Equal(t, "SKU-A", stored.Items[0].ProductSKU)
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	db, store := newTestStore(t)
	orders := services.NewOrderService(store, testDelivery, nil)
	ctx := context.Background()
	user := seedUser(t, store, "buyer")

	_, err := orders.Checkout(ctx, user.ID, validCheckout())
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, _, err = services.NewCartService(store).GetOrCreateCart(ctx, services.Identity{UserID: user.ID})
	require.NoError(t, err)
	_, err = orders.Checkout(ctx, user.ID, validCheckout())
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOrderService_Checkout_MissingFields(t *testing.T) {
	_, store := newTestStore(t)
	orders := services.NewOrderService(store, testDelivery, nil)
	user := seedUser(t, store, "buyer")

	req := validCheckout()
	req.Phone = "   "
	req.City = ""
	_, err := orders.Checkout(context.Background(), user.ID, req)

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.ElementsMatch(t, []string{"phone", "city"}, e.Fields)
	assert.Contains(t, e.Message, "phone")

	req = validCheckout()
	req.DeliveryMethod = "drone"
	_, err = orders.Checkout(context.Background(), user.ID, req)
	e, ok = apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"delivery_method"}, e.Fields)
}

func TestOrderService_Checkout_ExpressAndCOD(t *testing.T) {
	_, store := newTestStore(t)
	carts := services.NewCartService(store)
	orders := services.NewOrderService(store, testDelivery, nil)
	ctx := context.Background()
	user := seedUser(t, store, "buyer")
	product := seedProduct(t, store, "SKU-A", "1500")
	_, err := carts.AddItem(ctx, services.Identity{UserID: user.ID}, product.ID, 1)
	require.NoError(t, err)

	req := validCheckout()
	req.DeliveryMethod = models.DeliveryExpress
	req.PaymentMethod = models.PaymentCashOnDelivery
	order, err := orders.Checkout(ctx, user.ID, req)
	require.NoError(t, err)
	assert.True(t, order.DeliveryFee.Equal(decimal.NewFromInt(200)))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(1700)))
	assert.Equal(t, models.PaymentCashOnDelivery, order.PaymentMethod)
}

// failingItemsStore breaks order item inserts inside transactions.
type failingItemsStore struct {
	repositories.Store
}

func (s failingItemsStore) Transaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repositories.Store) error {
		return fn(failingItemsStore{tx})
	})
}

func (s failingItemsStore) Orders() repositories.OrderRepository {
	return failingOrders{s.Store.Orders()}
}

type failingOrders struct {
	repositories.OrderRepository
}

func (failingOrders) CreateItems(ctx context.Context, items []models.OrderItem) error {
	return errors.New("disk full")
}

func TestOrderService_Checkout_RollsBack(t *testing.T) {
	db, store := newTestStore(t)
	carts := services.NewCartService(store)
	pub := new(MockPublisher)
	orders := services.NewOrderService(failingItemsStore{store}, testDelivery, pub)
	ctx := context.Background()
	user := seedUser(t, store, "buyer")
	product := seedProduct(t, store, "SKU-A", "10")
	_, err := carts.AddItem(ctx, services.Identity{UserID: user.ID}, product.ID, 2)
	require.NoError(t, err)

	_, err = orders.Checkout(ctx, user.ID, validCheckout())
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&count).Error)
	assert.Zero(t, count)

	cart, err := store.Carts().GetByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, qty(t, cart, product.ID))
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestOrderService_CancelOrder(t *testing.T) {
	_, store := newTestStore(t)
	pub := new(MockPublisher)
	orders := services.NewOrderService(store, testDelivery, pub)
	ctx := context.Background()
	user := seedUser(t, store, "buyer")
	pub.On("Publish", services.EventOrderCancelled, mock.Anything).Return(nil)

	for _, status := range []models.OrderStatus{models.OrderPending, models.OrderConfirmed} {
		order := seedOrder(t, store, user.ID, status, "100")
		cancelled, err := orders.CancelOrder(ctx, user.ID, order.ID)
		require.NoError(t, err, status)
		assert.Equal(t, models.OrderCancelled, cancelled.Status)
	}

	rejected := []models.OrderStatus{
		models.OrderProcessing, models.OrderShipped, models.OrderDelivered,
		models.OrderCancelled, models.OrderRefunded,
	}
	for _, status := range rejected {
		order := seedOrder(t, store, user.ID, status, "100")
		_, err := orders.CancelOrder(ctx, user.ID, order.ID)
		assert.True(t, apperr.Is(err, apperr.KindConflict), status)

		stored, err := orders.GetOrder(ctx, user.ID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, status, stored.Status)
	}
	pub.AssertNumberOfCalls(t, "Publish", 2)
}

func TestOrderService_OwnershipHidesOrders(t *testing.T) {
	_, store := newTestStore(t)
	orders := services.NewOrderService(store, testDelivery, nil)
	ctx := context.Background()
	owner := seedUser(t, store, "owner")
	other := seedUser(t, store, "other")
	order := seedOrder(t, store, owner.ID, models.OrderPending, "100")

	_, err := orders.GetOrder(ctx, other.ID, order.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = orders.TrackOrder(ctx, other.ID, order.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = orders.CancelOrder(ctx, other.ID, order.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	list, err := orders.ListOrders(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOrderService_TrackOrder(t *testing.T) {
	_, store := newTestStore(t)
	orders := services.NewOrderService(store, testDelivery, nil)
	user := seedUser(t, store, "buyer")
	order := seedOrder(t, store, user.ID, models.OrderShipped, "100")

	tracking, err := orders.TrackOrder(context.Background(), user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, tracking.Status)
	assert.False(t, tracking.CanCancel)
	require.Len(t, tracking.Steps, 5)
	assert.True(t, tracking.Steps[3].Reached)
	assert.False(t, tracking.Steps[4].Reached)
}
