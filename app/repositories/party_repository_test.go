package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/models"
)

func TestUsers_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := &models.User{Name: "Asha", Email: "asha@bazaar.test", Phone: "+15551110000"}
	require.NoError(t, u.SetPassword("password123"))
	require.NoError(t, s.Users.Create(ctx, u))
	assert.Equal(t, models.RoleCustomer, u.Role)

	dup := &models.User{Name: "Other", Email: "asha@bazaar.test", Phone: "+15551110001", PasswordHash: "x"}
	assert.ErrorIs(t, s.Users.Create(ctx, dup), models.ErrDuplicateKey)

	got, err := s.Users.FindByEmail(ctx, "asha@bazaar.test")
	require.NoError(t, err)
	assert.True(t, got.CheckPassword("password123"))

	_, err = s.Users.FindByEmail(ctx, "nobody@bazaar.test")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestShops_TransitionsAndUniqueName(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	shop := newShop(t, s)

	suspended, err := s.Shops.Transition(ctx, shop.ID, models.ShopSuspended)
	require.NoError(t, err)
	assert.False(t, suspended.Open())

	_, err = s.Shops.Transition(ctx, shop.ID, models.ShopRejected)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	got, err := s.Shops.Find(ctx, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShopSuspended, got.Status)

	twin := &models.Shop{VendorID: shop.VendorID, Name: shop.Name, Address: "elsewhere", Phone: "+15550001111"}
	assert.ErrorIs(t, s.Shops.Create(ctx, twin), models.ErrDuplicateKey)

	shops, err := s.Shops.ListByVendor(ctx, shop.VendorID)
	require.NoError(t, err)
	assert.Len(t, shops, 1)
}

func TestVendors_Transition(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := &models.User{Name: "V", Email: "v@bazaar.test", Phone: "+15552220000", PasswordHash: "x", Role: models.RoleVendor}
	require.NoError(t, s.Users.Create(ctx, u))
	v := &models.Vendor{UserID: u.ID, BusinessName: "V Ltd", Phone: u.Phone}
	require.NoError(t, s.Vendors.Create(ctx, v))
	assert.Equal(t, models.VendorPending, v.Status)

	got, err := s.Vendors.Transition(ctx, v.ID, models.VendorApproved)
	require.NoError(t, err)
	assert.Equal(t, models.VendorApproved, got.Status)

	_, err = s.Vendors.Transition(ctx, v.ID, models.VendorPending)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	orphan := &models.Vendor{UserID: 999, BusinessName: "Ghost", Phone: "+15552220001"}
	assert.ErrorIs(t, s.Vendors.Create(ctx, orphan), models.ErrNotFound)
}
