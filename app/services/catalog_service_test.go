package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
)

func TestCatalogService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.product(t, "100", 2)

	off, err := e.catalog.SetActive(ctx, p.ID, false)
	require.NoError(t, err)
	assert.False(t, off.Available)
	assert.Equal(t, models.ProductInactive, off.Status)

	on, err := e.catalog.SetActive(ctx, p.ID, true)
	require.NoError(t, err)
	assert.True(t, on.Available)

	gone, err := e.catalog.Discontinue(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductDiscontinued, gone.Status)
	assert.False(t, gone.Available)

	_, err = e.catalog.SetActive(ctx, p.ID, true)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = e.catalog.SetDiscount(ctx, p.ID, 101)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCatalogService_RestockAndLowStock(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.product(t, "100", 0)
	e.product(t, "100", 50)

	low, err := e.catalog.LowStock(ctx)
	require.NoError(t, err)
	assert.Empty(t, low)

	restocked, err := e.catalog.Restock(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.True(t, restocked.Available)

	low, err = e.catalog.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, p.ID, low[0].ID)

	list, pag, err := e.catalog.List(ctx, repositories.ProductFilter{AvailableOnly: true}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, pag.Total)
	assert.Len(t, list, 2)
}

func TestCatalogService_AddProductNeedsOpenShop(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, err := e.accounts.TransitionShop(ctx, e.shop.ID, models.ShopSuspended)
	require.NoError(t, err)

	p := models.NewProduct(e.shop.ID, "Late", dec("10"), 1)
	assert.ErrorIs(t, e.catalog.AddProduct(ctx, p), models.ErrConflict)
}

func TestAccountService(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.user(t, models.RoleVendor)

	got, err := e.accounts.Authenticate(ctx, u.Email, "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	_, err = e.accounts.Authenticate(ctx, u.Email, "wrong-password")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = e.accounts.Register(ctx, "Dup", u.Email, "+15559990000", "password123", models.RoleCustomer)
	assert.ErrorIs(t, err, models.ErrDuplicateKey)

	v, err := e.accounts.RegisterVendor(ctx, u.ID, "Pending Co", u.Phone)
	require.NoError(t, err)
	err = e.accounts.OpenShop(ctx, &models.Shop{VendorID: v.ID, Name: "Too Soon", Address: "x", Phone: u.Phone})
	assert.ErrorIs(t, err, models.ErrConflict)
}
