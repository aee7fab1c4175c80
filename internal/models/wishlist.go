package models

// WishlistItem marks a product a user wants to keep track of.
type WishlistItem struct {
	Base
	UserID    string  `json:"user_id" gorm:"type:varchar(36);uniqueIndex:idx_wishlist_user_product"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36);uniqueIndex:idx_wishlist_user_product"`
	Product   Product `json:"product"`
}
