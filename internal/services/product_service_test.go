package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

func TestProductService_CreateProduct(t *testing.T) {
	_, store := newTestStore(t)
	svc := services.NewProductService(store)
	ctx := context.Background()

	product := &models.Product{Name: "Trail Runner 2", SKU: "TR-2", Price: decimal.NewFromInt(4500), Stock: 3, IsActive: true}
	require.NoError(t, svc.CreateProduct(ctx, product))
	assert.Equal(t, "trail-runner-2", product.Slug)
	assert.NotEmpty(t, product.ID)

	bad := &models.Product{Name: "No", SKU: "", Price: decimal.NewFromInt(1)}
	err := svc.CreateProduct(ctx, bad)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	pricey := &models.Product{
		Name:      "Sale Shoe",
		SKU:       "SS-1",
		Price:     decimal.NewFromInt(100),
		SalePrice: decimal.NewNullDecimal(decimal.NewFromInt(150)),
	}
	err = svc.CreateProduct(ctx, pricey)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"sale_price"}, e.Fields)
}

func TestProductService_ListAndGet(t *testing.T) {
	_, store := newTestStore(t)
	svc := services.NewProductService(store)
	ctx := context.Background()
	active := seedProduct(t, store, "SKU-ON", "10")
	hidden := seedProduct(t, store, "SKU-OFF", "10")
	hidden.IsActive = false
	require.NoError(t, store.Products().Update(ctx, hidden))

	list, err := svc.ListProducts(ctx, repositories.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)

	list, err = svc.ListProducts(ctx, repositories.ProductFilter{Search: "nothing-matches"})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.GetProduct(ctx, hidden.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestProductService_SetPrimaryImage(t *testing.T) {
	_, store := newTestStore(t)
	svc := services.NewProductService(store)
	ctx := context.Background()
	product := seedProduct(t, store, "SKU-I", "10")
	other := seedProduct(t, store, "SKU-J", "10")

	front := &models.ProductImage{URL: "/img/front.jpg", IsPrimary: true}
	side := &models.ProductImage{URL: "/img/side.jpg", Position: 1}
	foreign := &models.ProductImage{URL: "/img/other.jpg", IsPrimary: true}
	require.NoError(t, svc.AddImage(ctx, product.ID, front))
	require.NoError(t, svc.AddImage(ctx, product.ID, side))
	require.NoError(t, svc.AddImage(ctx, other.ID, foreign))

	updated, err := svc.SetPrimaryImage(ctx, product.ID, side.ID)
	require.NoError(t, err)

	primaries := 0
	for _, img := range updated.Images {
		if img.IsPrimary {
			primaries++
			assert.Equal(t, side.ID, img.ID)
		}
	}
	assert.Equal(t, 1, primaries)

	_, err = svc.SetPrimaryImage(ctx, product.ID, foreign.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	otherProduct, err := store.Products().GetByID(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, otherProduct.Images, 1)
	assert.True(t, otherProduct.Images[0].IsPrimary)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "running-shoes-v2", services.Slugify("  Running Shoes -- V2! "))
	assert.Equal(t, "", services.Slugify("!!!"))
}
