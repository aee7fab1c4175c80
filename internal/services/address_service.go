package services

import (
	"context"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// AddressInput is the editable part of a shipping address.
type AddressInput struct {
	FullName   string `json:"full_name" validate:"required,max=200"`
	Phone      string `json:"phone" validate:"required,max=20"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"max=10"`
	Province   string `json:"province" validate:"required,max=100"`
	IsDefault  bool   `json:"is_default"`
}

func (in *AddressInput) normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	in.Province = strings.TrimSpace(in.Province)
}

func (in *AddressInput) apply(a *models.ShippingAddress) {
	a.FullName = in.FullName
	a.Phone = in.Phone
	a.Address = in.Address
	a.City = in.City
	a.PostalCode = in.PostalCode
	a.Province = in.Province
}

// AddressService manages a user's saved shipping addresses.
type AddressService struct {
	store repositories.Store
}

// NewAddressService creates a new AddressService.
func NewAddressService(store repositories.Store) *AddressService {
	return &AddressService{store: store}
}

func (s *AddressService) ListAddresses(ctx context.Context, userID string) ([]models.ShippingAddress, error) {
	return s.store.Addresses().ListByUser(ctx, userID)
}

func (s *AddressService) GetAddress(ctx context.Context, userID, id string) (*models.ShippingAddress, error) {
	return s.store.Addresses().GetForUser(ctx, id, userID)
}

// CreateAddress saves a new address. A user's first address is always the default.
func (s *AddressService) CreateAddress(ctx context.Context, userID string, in AddressInput) (*models.ShippingAddress, error) {
	in.normalize()
	if err := ValidateStruct(&in); err != nil {
		return nil, err
	}

	address := &models.ShippingAddress{UserID: userID, IsDefault: in.IsDefault}
	in.apply(address)

	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		count, err := tx.Addresses().CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		if count == 0 {
			address.IsDefault = true
		}
		if err := tx.Addresses().Create(ctx, address); err != nil {
			return err
		}
		if address.IsDefault {
			return tx.Addresses().ClearDefault(ctx, userID, address.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// UpdateAddress edits an address. Asking for default demotes the others.
func (s *AddressService) UpdateAddress(ctx context.Context, userID, id string, in AddressInput) (*models.ShippingAddress, error) {
	in.normalize()
	if err := ValidateStruct(&in); err != nil {
		return nil, err
	}

	var address *models.ShippingAddress
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		var err error
		address, err = tx.Addresses().GetForUser(ctx, id, userID)
		if err != nil {
			return err
		}
		in.apply(address)
		if in.IsDefault {
			address.IsDefault = true
		}
		if err := tx.Addresses().Update(ctx, address); err != nil {
			return err
		}
		if address.IsDefault {
			return tx.Addresses().ClearDefault(ctx, userID, address.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// SetDefaultAddress promotes one address and demotes every other in the same write.
func (s *AddressService) SetDefaultAddress(ctx context.Context, userID, id string) (*models.ShippingAddress, error) {
	var address *models.ShippingAddress
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		var err error
		address, err = tx.Addresses().GetForUser(ctx, id, userID)
		if err != nil {
			return err
		}
		if err := tx.Addresses().ClearDefault(ctx, userID, address.ID); err != nil {
			return err
		}
		address.IsDefault = true
		return tx.Addresses().Update(ctx, address)
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func (s *AddressService) DeleteAddress(ctx context.Context, userID, id string) error {
	return s.store.Addresses().Delete(ctx, id, userID)
}
