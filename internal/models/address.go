package models

// ShippingAddress is a saved delivery address. At most one per user is default.
type ShippingAddress struct {
	Base
	UserID     string `json:"user_id" gorm:"type:varchar(36);index"`
	FullName   string `json:"full_name" gorm:"type:varchar(200)"`
	Phone      string `json:"phone" gorm:"type:varchar(20)"`
	Address    string `json:"address" gorm:"type:text"`
	City       string `json:"city" gorm:"type:varchar(100)"`
	PostalCode string `json:"postal_code" gorm:"type:varchar(10)"`
	Province   string `json:"province" gorm:"type:varchar(100)"`
	IsDefault  bool   `json:"is_default"`
}
