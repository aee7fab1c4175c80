package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
	"storefront/internal/database/dbtest"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

func fixedClockOrders(t *testing.T, store repositories.Store) *OrderService {
	t.Helper()
	svc := NewOrderService(store, config.DeliveryConfig{}, nil)
	fixed := time.Unix(1700000000, 0)
	svc.now = func() time.Time { return fixed }
	return svc
}

func TestInsertOrder_SuffixesCollisions(t *testing.T) {
	store := repositories.NewGORMStore(dbtest.Open(t))
	svc := fixedClockOrders(t, store)
	ctx := context.Background()

	want := []string{"EB1700000000", "EB1700000000-1", "EB1700000000-2"}
	for _, expected := range want {
		order := &models.Order{UserID: "u1"}
		require.NoError(t, svc.insertOrder(ctx, store, order))
		assert.Equal(t, expected, order.OrderNumber)
	}
}

// blindNumbersStore reports every order number as free, like a concurrent
// checkout that has not committed yet.
type blindNumbersStore struct {
	repositories.Store
}

func (s blindNumbersStore) Transaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repositories.Store) error {
		return fn(blindNumbersStore{tx})
	})
}

func (s blindNumbersStore) Orders() repositories.OrderRepository {
	return blindNumbersOrders{s.Store.Orders()}
}

type blindNumbersOrders struct {
	repositories.OrderRepository
}

func (blindNumbersOrders) NumberExists(ctx context.Context, number string) (bool, error) {
	return false, nil
}

func TestInsertOrder_RetriesAfterDuplicateNumber(t *testing.T) {
	store := repositories.NewGORMStore(dbtest.Open(t))
	ctx := context.Background()
	require.NoError(t, store.Orders().Create(ctx, &models.Order{OrderNumber: "EB1700000000", UserID: "u1"}))

	blind := blindNumbersStore{store}
	svc := fixedClockOrders(t, blind)
	order := &models.Order{UserID: "u2"}
	err := store.Transaction(ctx, func(tx repositories.Store) error {
		return svc.insertOrder(ctx, blindNumbersStore{tx}, order)
	})
	require.NoError(t, err)
	assert.Equal(t, "EB1700000000-1", order.OrderNumber)

	saved, err := store.Orders().GetForUser(ctx, order.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, "EB1700000000-1", saved.OrderNumber)
}
