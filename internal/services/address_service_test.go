package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
	"storefront/internal/services"
)

func addressInput(name string, isDefault bool) services.AddressInput {
	return services.AddressInput{
		FullName:  name,
		Phone:     "9800000000",
		Address:   "Street 1",
		City:      "Pokhara",
		Province:  "Gandaki",
		IsDefault: isDefault,
	}
}

func defaults(t *testing.T, svc *services.AddressService, userID string) []string {
	t.Helper()
	list, err := svc.ListAddresses(context.Background(), userID)
	require.NoError(t, err)
	var names []string
	for _, a := range list {
		if a.IsDefault {
			names = append(names, a.FullName)
		}
	}
	return names
}

func TestAddressService_FirstAddressIsDefault(t *testing.T) {
	_, store := newTestStore(t)
	svc := services.NewAddressService(store)
	user := seedUser(t, store, "addr")

	first, err := svc.CreateAddress(context.Background(), user.ID, addressInput("Home", false))
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	second, err := svc.CreateAddress(context.Background(), user.ID, addressInput("Office", false))
	require.NoError(t, err)
	assert.False(t, second.IsDefault)
	assert.Equal(t, []string{"Home"}, defaults(t, svc, user.ID))
}

func TestAddressService_SetDefaultDemotesOthers(t *testing.T) {
	_, store := newTestStore(t)
	svc := services.NewAddressService(store)
	ctx := context.Background()
	user := seedUser(t, store, "addr")
	neighbour := seedUser(t, store, "neighbour")

	_, err := svc.CreateAddress(ctx, user.ID, addressInput("Home", true))
	require.NoError(t, err)
	office, err := svc.CreateAddress(ctx, user.ID, addressInput("Office", false))
	require.NoError(t, err)
	_, err = svc.CreateAddress(ctx, neighbour.ID, addressInput("Next door", true))
	require.NoError(t, err)

	_, err = svc.SetDefaultAddress(ctx, user.ID, office.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Office"}, defaults(t, svc, user.ID))
	assert.Equal(t, []string{"Next door"}, defaults(t, svc, neighbour.ID))

	_, err = svc.CreateAddress(ctx, user.ID, addressInput("Cabin", true))
	require.NoError(t, err)
	assert.Equal(t, []string{"Cabin"}, defaults(t, svc, user.ID))

	_, err = svc.UpdateAddress(ctx, user.ID, office.ID, addressInput("Office HQ", true))
	require.NoError(t, err)
	assert.Equal(t, []string{"Office HQ"}, defaults(t, svc, user.ID))
}

func TestAddressService_Ownership(t *testing.T) {
	_, store := newTestStore(t)
	svc := services.NewAddressService(store)
	ctx := context.Background()
	owner := seedUser(t, store, "owner")
	other := seedUser(t, store, "other")
	addr, err := svc.CreateAddress(ctx, owner.ID, addressInput("Home", false))
	require.NoError(t, err)

	_, err = svc.GetAddress(ctx, other.ID, addr.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = svc.SetDefaultAddress(ctx, other.ID, addr.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.True(t, apperr.Is(svc.DeleteAddress(ctx, other.ID, addr.ID), apperr.KindNotFound))

	require.NoError(t, svc.DeleteAddress(ctx, owner.ID, addr.ID))
}

func TestAddressService_Validation(t *testing.T) {
	_, store := newTestStore(t)
	svc := services.NewAddressService(store)
	user := seedUser(t, store, "addr")

	in := addressInput("", false)
	in.City = " "
	_, err := svc.CreateAddress(context.Background(), user.ID, in)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"full_name", "city"}, e.Fields)
}
