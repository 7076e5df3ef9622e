package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/services"
	_ "github.com/shashiranjanraj/bazaar/database/migrations"
	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/event"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type env struct {
	store    *repositories.Store
	events   *event.Dispatcher
	accounts *services.AccountService
	catalog  *services.CatalogService
	carts    *services.CartService
	checkout *services.CheckoutService
	orders   *services.OrderService
	shop     *models.Shop
	n        int
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open("sqlite", database.MemoryDSN(t.Name()))
	require.NoError(t, err)
	_, err = migration.New(db).Run(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store := repositories.New(db)
	cached := repositories.NewCachedCatalog(store.Catalog, cache.New(nil, "", 0))
	d := event.New()
	e := &env{
		store:    store,
		events:   d,
		accounts: services.NewAccountService(store),
		catalog:  services.NewCatalogService(store, cached),
		carts:    services.NewCartService(store, cached),
		checkout: services.NewCheckoutService(store, cached, d),
		orders:   services.NewOrderService(store, cached, d),
	}

	owner := e.user(t, models.RoleVendor)
	v, err := e.accounts.RegisterVendor(ctx, owner.ID, "Traders", owner.Phone)
	require.NoError(t, err)
	_, err = e.accounts.TransitionVendor(ctx, v.ID, models.VendorApproved)
	require.NoError(t, err)
	shop := &models.Shop{VendorID: v.ID, Name: "Corner Shop", Address: "1 Main St", Phone: owner.Phone}
	require.NoError(t, e.accounts.OpenShop(ctx, shop))
	e.shop, err = e.accounts.TransitionShop(ctx, shop.ID, models.ShopApproved)
	require.NoError(t, err)
	return e
}

func (e *env) user(t *testing.T, role models.Role) *models.User {
	t.Helper()
	e.n++
	u, err := e.accounts.Register(context.Background(), "User",
		fmt.Sprintf("user%d@bazaar.test", e.n), fmt.Sprintf("+1555300%04d", e.n), "password123", role)
	require.NoError(t, err)
	return u
}

func (e *env) product(t *testing.T, price string, stock int) *models.Product {
	t.Helper()
	p := models.NewProduct(e.shop.ID, "Item", dec(price), stock)
	require.NoError(t, e.catalog.AddProduct(context.Background(), p))
	return p
}

func (e *env) add(t *testing.T, userID, productID uint, qty int) *models.CartLine {
	t.Helper()
	l, err := e.carts.Add(context.Background(), userID, productID, qty, nil, nil)
	require.NoError(t, err)
	return l
}

func (e *env) stock(t *testing.T, productID uint) int {
	t.Helper()
	p, err := e.store.Catalog.Find(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}
