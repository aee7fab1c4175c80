package models

import "github.com/shopspring/decimal"

// Category groups products for browsing.
type Category struct {
	Base
	Name     string `json:"name" gorm:"type:varchar(100)"`
	Slug     string `json:"slug" gorm:"uniqueIndex;type:varchar(120)"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
}

// Brand is the manufacturer of a product.
type Brand struct {
	Base
	Name     string `json:"name" gorm:"type:varchar(100)"`
	Slug     string `json:"slug" gorm:"uniqueIndex;type:varchar(120)"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
}

// Product represents a product in the store.
type Product struct {
	Base
	Name        string              `json:"name" gorm:"type:varchar(200)" validate:"required,min=3,max=200"`
	Slug        string              `json:"slug" gorm:"uniqueIndex;type:varchar(200)"`
	SKU         string              `json:"sku" gorm:"uniqueIndex;type:varchar(100)" validate:"required,max=100"`
	Description string              `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	CategoryID  *string             `json:"category_id,omitempty" gorm:"type:varchar(36);index"`
	Category    *Category           `json:"category,omitempty"`
	BrandID     *string             `json:"brand_id,omitempty" gorm:"type:varchar(36);index"`
	Brand       *Brand              `json:"brand,omitempty"`
	Price       decimal.Decimal     `json:"price" gorm:"type:decimal(10,2)"`
	SalePrice   decimal.NullDecimal `json:"sale_price" gorm:"type:decimal(10,2)"`
	Stock       int                 `json:"stock" validate:"gte=0"`
	IsActive    bool                `json:"is_active" gorm:"default:true"`
	Images      []ProductImage      `json:"images,omitempty"`
}

// EffectivePrice is the sale price when one is set, the base price otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid {
		return p.SalePrice.Decimal
	}
	return p.Price
}

// DiscountPercentage is the whole-number discount a sale price gives.
func (p *Product) DiscountPercentage() int {
	if !p.SalePrice.Valid || !p.Price.GreaterThan(p.SalePrice.Decimal) {
		return 0
	}
	off := p.Price.Sub(p.SalePrice.Decimal).Div(p.Price).Mul(decimal.NewFromInt(100))
	return int(off.IntPart())
}

// InStock reports whether any units are on hand.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// ProductImage is one picture of a product. At most one per product is primary.
type ProductImage struct {
	Base
	ProductID string `json:"product_id" gorm:"type:varchar(36);index"`
	URL       string `json:"url" gorm:"type:varchar(500)"`
	AltText   string `json:"alt_text" gorm:"type:varchar(200)"`
	IsPrimary bool   `json:"is_primary"`
	Position  int    `json:"position"`
}
