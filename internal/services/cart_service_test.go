package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

func TestCartService_GetOrCreateCart(t *testing.T) {
	_, store := newTestStore(t)
	svc := services.NewCartService(store)
	ctx := context.Background()
	guest := services.Identity{SessionKey: "sess-1"}

	cart, created, err := svc.GetOrCreateCart(ctx, guest)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, cart.SessionKey)
	assert.Nil(t, cart.UserID)

	again, created, err := svc.GetOrCreateCart(ctx, guest)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, cart.ID, again.ID)

	_, _, err = svc.GetOrCreateCart(ctx, services.Identity{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCartService_GetOrCreateCart_Concurrent(t *testing.T) {
	_, store := newTestStore(t)
	svc := services.NewCartService(store)
	user := seedUser(t, store, "racer")

	const callers = 5
	var wg sync.WaitGroup
	ids := make([]string, callers)
	createdFlags := make([]bool, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cart, created, err := svc.GetOrCreateCart(context.Background(), services.Identity{UserID: user.ID})
			errs[i] = err
			if err == nil {
				ids[i] = cart.ID
				createdFlags[i] = created
			}
		}(i)
	}
	wg.Wait()

	createdCount := 0
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
		if createdFlags[i] {
			createdCount++
		}
	}
	assert.Equal(t, 1, createdCount)
}

func TestCartService_AddItem_SumsExistingLine(t *testing.T) {
	_, store := newTestStore(t)
	svc := services.NewCartService(store)
	ctx := context.Background()
	product := seedProduct(t, store, "SKU-A", "100.00")
	id := services.Identity{SessionKey: "sess-1"}

	_, err := svc.AddItem(ctx, id, product.ID, 2)
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, id, product.ID, 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 5, cart.TotalItems())
	assert.True(t, cart.TotalAmount().Equal(decimal.NewFromInt(500)))
}

// staleLineStore hides cart lines from the next misses lookups, as if a
// concurrent request inserted the line right after this one looked.
type staleLineStore struct {
	repositories.Store
	misses *int
}

func (s staleLineStore) Transaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repositories.Store) error {
		return fn(staleLineStore{tx, s.misses})
	})
}

func (s staleLineStore) Carts() repositories.CartRepository {
	return staleLineCarts{s.Store.Carts(), s.misses}
}

type staleLineCarts struct {
	repositories.CartRepository
	misses *int
}

func (c staleLineCarts) FindItem(ctx context.Context, cartID, productID string) (*models.CartItem, error) {
	if *c.misses > 0 {
		*c.misses--
		return nil, apperr.NotFound("cart item")
	}
	return c.CartRepository.FindItem(ctx, cartID, productID)
}

func TestCartService_AddItem_LostInsertRaceIncrements(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()
	product := seedProduct(t, store, "SKU-A", "100.00")
	id := services.Identity{SessionKey: "sess-1"}

	_, err := services.NewCartService(store).AddItem(ctx, id, product.ID, 2)
	require.NoError(t, err)

	misses := 1
	cart, err := services.NewCartService(staleLineStore{store, &misses}).AddItem(ctx, id, product.ID, 3)
	require.NoError(t, err)
	assert.Zero(t, misses)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestCartService_AddItem_Rejects(t *testing.T) {
	_, store := newTestStore(t)
	svc := services.NewCartService(store)
	ctx := context.Background()
	product := seedProduct(t, store, "SKU-A", "100.00")
	id := services.Identity{SessionKey: "sess-1"}

	for _, q := range []int{0, -1} {
		_, err := svc.AddItem(ctx, id, product.ID, q)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "quantity %d", q)
	}

	_, err := svc.AddItem(ctx, id, "missing", 1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCartService_AddItem_IgnoresStock(t *testing.T) {
	_, store := newTestStore(t)
	svc := services.NewCartService(store)
	product := seedProduct(t, store, "SKU-A", "10")

	cart, err := svc.AddItem(context.Background(), services.Identity{SessionKey: "s"}, product.ID, 50)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.False(t, cart.Items[0].IsAvailable())
}

func TestCartService_TotalAmountUsesEffectivePrice(t *testing.T) {
	_, store := newTestStore(t)
	svc := services.NewCartService(store)
	ctx := context.Background()
	a := seedProduct(t, store, "SKU-A", "100.00")
	b := seedProduct(t, store, "SKU-B", "80.00")
	b.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString("60.00"))
	require.NoError(t, store.Products().Update(ctx, b))
	id := services.Identity{SessionKey: "sess-1"}

	_, err := svc.AddItem(ctx, id, a.ID, 2)
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, id, b.ID, 3)
	require.NoError(t, err)

	expected := decimal.Zero
	for _, item := range cart.Items {
		expected = expected.Add(item.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	assert.True(t, cart.TotalAmount().Equal(expected))
	assert.True(t, cart.TotalAmount().Equal(decimal.NewFromInt(380)), cart.TotalAmount().String())
}

func TestCartService_UpdateQuantity(t *testing.T) {
	_, store := newTestStore(t)
	svc := services.NewCartService(store)
	ctx := context.Background()
	product := seedProduct(t, store, "SKU-A", "10")
	id := services.Identity{SessionKey: "sess-1"}

	cart, err := svc.AddItem(ctx, id, product.ID, 1)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	cart, err = svc.UpdateQuantity(ctx, id, itemID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, cart.Items[0].Quantity)

	cart, err = svc.UpdateQuantity(ctx, id, itemID, 0)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCartService_ItemOwnership(t *testing.T) {
	_, store := newTestStore(t)
	svc := services.NewCartService(store)
	ctx := context.Background()
	product := seedProduct(t, store, "SKU-A", "10")
	owner := services.Identity{SessionKey: "owner"}
	intruder := services.Identity{SessionKey: "intruder"}

	cart, err := svc.AddItem(ctx, owner, product.ID, 1)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	_, err = svc.RemoveItem(ctx, intruder, itemID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, _, err = svc.GetOrCreateCart(ctx, intruder)
	require.NoError(t, err)
	_, err = svc.UpdateQuantity(ctx, intruder, itemID, 5)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	cart, err = svc.RemoveItem(ctx, owner, itemID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCartService_MergeOnLogin(t *testing.T) {
	db, store := newTestStore(t)
	svc := services.NewCartService(store)
	ctx := context.Background()
	a := seedProduct(t, store, "SKU-A", "10")
	b := seedProduct(t, store, "SKU-B", "20")
	user := seedUser(t, store, "merger")
	guest := services.Identity{SessionKey: "sess-merge"}
	member := services.Identity{UserID: user.ID}

	_, err := svc.AddItem(ctx, guest, a.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, guest, b.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, member, a.ID, 1)
	require.NoError(t, err)

	status, err := svc.MergeOnLogin(ctx, "sess-merge", user.ID)
	require.NoError(t, err)
	assert.Equal(t, services.MergeMerged, status)

	cart, err := store.Carts().GetByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, 3, qty(t, cart, a.ID))
	assert.Equal(t, 1, qty(t, cart, b.ID))

	_, err = store.Carts().GetBySession(ctx, "sess-merge")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	var orphans int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id <> ?", cart.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)
}

func TestCartService_MergeOnLogin_CreatesUserCart(t *testing.T) {
	_, store := newTestStore(t)
	svc := services.NewCartService(store)
	ctx := context.Background()
	a := seedProduct(t, store, "SKU-A", "10")
	user := seedUser(t, store, "fresh")

	_, err := svc.AddItem(ctx, services.Identity{SessionKey: "sess"}, a.ID, 4)
	require.NoError(t, err)

	status, err := svc.MergeOnLogin(ctx, "sess", user.ID)
	require.NoError(t, err)
	assert.Equal(t, services.MergeMerged, status)

	cart, err := store.Carts().GetByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, qty(t, cart, a.ID))
}

func TestCartService_MergeOnLogin_NoSessionCart(t *testing.T) {
	_, store := newTestStore(t)
	svc := services.NewCartService(store)
	user := seedUser(t, store, "nobody")

	status, err := svc.MergeOnLogin(context.Background(), "", user.ID)
	require.NoError(t, err)
	assert.Equal(t, services.MergeNoSessionCart, status)

	status, err = svc.MergeOnLogin(context.Background(), "unknown-session", user.ID)
	require.NoError(t, err)
	assert.Equal(t, services.MergeNoSessionCart, status)

	_, err = store.Carts().GetByUser(context.Background(), user.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "no cart is created when there is nothing to merge")
}
