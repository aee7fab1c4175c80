package repositories

import (
	"context"

	"storefront/internal/models"
)

// ProductFilter narrows a product listing. Empty fields are ignored.
type ProductFilter struct {
	CategoryID string
	BrandID    string
	Search     string
}

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error

	CreateCategory(ctx context.Context, category *models.Category) error
	CreateBrand(ctx context.Context, brand *models.Brand) error

	CreateImage(ctx context.Context, image *models.ProductImage) error
	GetImage(ctx context.Context, productID, imageID string) (*models.ProductImage, error)
	// ClearPrimaryImages unflags every image of the product.
	ClearPrimaryImages(ctx context.Context, productID string) error
	MarkImagePrimary(ctx context.Context, imageID string) error
}
