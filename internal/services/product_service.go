package services

import (
	"context"
	"strings"
	"unicode"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// ProductService handles business logic related to products.
type ProductService struct {
	store repositories.Store
}

// NewProductService creates a new ProductService.
func NewProductService(store repositories.Store) *ProductService {
	return &ProductService{
		store: store,
	}
}

// ListProducts retrieves active products matching filter.
func (s *ProductService) ListProducts(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, error) {
	return s.store.Products().List(ctx, filter)
}

// GetProduct retrieves an active product. Inactive products are not found.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, apperr.NotFound("product")
	}
	return product, nil
}

func checkPricing(p *models.Product) error {
	if p.Price.IsNegative() {
		return apperr.Validation("price must not be negative", "price")
	}
	if p.SalePrice.Valid && (p.SalePrice.Decimal.IsNegative() || p.SalePrice.Decimal.GreaterThan(p.Price)) {
		return apperr.Validation("sale_price must be between 0 and price", "sale_price")
	}
	return nil
}

// CreateProduct validates and stores a new catalog product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := ValidateStruct(product); err != nil {
		return err
	}
	if err := checkPricing(product); err != nil {
		return err
	}
	if product.Slug == "" {
		product.Slug = Slugify(product.Name)
	}
	return s.store.Products().Create(ctx, product)
}

// UpdateProduct validates and saves a catalog product.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := ValidateStruct(product); err != nil {
		return err
	}
	if err := checkPricing(product); err != nil {
		return err
	}
	return s.store.Products().Update(ctx, product)
}

func (s *ProductService) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.Slug == "" {
		category.Slug = Slugify(category.Name)
	}
	return s.store.Products().CreateCategory(ctx, category)
}

func (s *ProductService) CreateBrand(ctx context.Context, brand *models.Brand) error {
	if brand.Slug == "" {
		brand.Slug = Slugify(brand.Name)
	}
	return s.store.Products().CreateBrand(ctx, brand)
}

// AddImage attaches an image to a product. A primary image demotes the
// current one in the same transaction.
func (s *ProductService) AddImage(ctx context.Context, productID string, image *models.ProductImage) error {
	return s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.Products().GetByID(ctx, productID); err != nil {
			return err
		}
		image.ProductID = productID
		if image.IsPrimary {
			if err := tx.Products().ClearPrimaryImages(ctx, productID); err != nil {
				return err
			}
		}
		return tx.Products().CreateImage(ctx, image)
	})
}

// SetPrimaryImage makes imageID the product's only primary image.
func (s *ProductService) SetPrimaryImage(ctx context.Context, productID, imageID string) (*models.Product, error) {
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		image, err := tx.Products().GetImage(ctx, productID, imageID)
		if err != nil {
			return err
		}
		if err := tx.Products().ClearPrimaryImages(ctx, productID); err != nil {
			return err
		}
		return tx.Products().MarkImagePrimary(ctx, image.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.store.Products().GetByID(ctx, productID)
}

// Slugify lowercases s and joins its letter and digit runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}
