package repositories_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	_ "github.com/shashiranjanraj/bazaar/database/migrations"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newStore(t *testing.T) *repositories.Store {
	t.Helper()
	db, err := database.Open("sqlite", database.MemoryDSN(t.Name()))
	require.NoError(t, err)
	_, err = migration.New(db).Run(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repositories.New(db)
}

var seq int

// newShop creates a user, an approved vendor and an approved shop.
func newShop(t *testing.T, s *repositories.Store) *models.Shop {
	t.Helper()
	ctx := context.Background()
	seq++
	u := &models.User{
		Name:  "Vendor",
		Email: fmt.Sprintf("vendor%d@bazaar.test", seq),
		Phone: fmt.Sprintf("+1555000%04d", seq),
		Role:  models.RoleVendor,
	}
	require.NoError(t, u.SetPassword("password123"))
	require.NoError(t, s.Users.Create(ctx, u))

	v := &models.Vendor{UserID: u.ID, BusinessName: "Traders", Phone: u.Phone, Status: models.VendorApproved}
	require.NoError(t, s.Vendors.Create(ctx, v))

	shop := &models.Shop{VendorID: v.ID, Name: fmt.Sprintf("Shop %d", seq), Address: "1 Main St", Phone: u.Phone, Status: models.ShopApproved}
	require.NoError(t, s.Shops.Create(ctx, shop))
	return shop
}

func newProduct(t *testing.T, s *repositories.Store, shop *models.Shop, price string, stock int) *models.Product {
	t.Helper()
	p := models.NewProduct(shop.ID, "Item", dec(price), stock)
	require.NoError(t, s.Catalog.Create(context.Background(), p))
	return p
}

func itoa(id uint) string { return fmt.Sprint(id) }
