package models

import "github.com/shopspring/decimal"

// Cart is owned by either a user or an anonymous session, never both.
type Cart struct {
	Base
	UserID     *string    `json:"user_id,omitempty" gorm:"type:varchar(36);uniqueIndex"`
	SessionKey *string    `json:"session_key,omitempty" gorm:"type:varchar(64);uniqueIndex"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID"`
}

// TotalItems is the sum of item quantities.
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalAmount is the sum of line totals at current prices.
func (c *Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].LineTotal())
	}
	return total
}

// IsEmpty reports whether the cart has no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CartItem is one product line. (CartID, ProductID) is unique.
type CartItem struct {
	Base
	CartID    string  `json:"cart_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_product"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_product"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
}

// LineTotal is the product's effective price times quantity. Product must be loaded.
func (i *CartItem) LineTotal() decimal.Decimal {
	return i.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// IsAvailable reports whether stock covers the quantity. Informational only.
func (i *CartItem) IsAvailable() bool {
	return i.Product.IsActive && i.Product.Stock >= i.Quantity
}
