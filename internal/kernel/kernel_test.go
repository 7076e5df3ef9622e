package kernel_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/services"
	_ "github.com/shashiranjanraj/bazaar/database/migrations"
	"github.com/shashiranjanraj/bazaar/database/seeders"
	"github.com/shashiranjanraj/bazaar/internal/kernel"
	"github.com/shashiranjanraj/bazaar/pkg/audit"
	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
)

// TestKernel_EndToEnd drives the seeded demo catalog through cart,
// checkout and fulfilment with redis and the audit trail attached.
func TestKernel_EndToEnd(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open("sqlite", database.MemoryDSN(t.Name()))
	require.NoError(t, err)
	_, err = migration.New(db).Run(ctx)
	require.NoError(t, err)
	require.NoError(t, seeders.RunAll(ctx, db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	trail := audit.NewMemoryTrail()
	k := kernel.New(db, cache.New(rdb, "bazaar:", time.Minute), trail)
	t.Cleanup(func() { _ = k.Close(ctx) })

	customer, err := k.Accounts.Authenticate(ctx, "customer@bazaar.test", "password123")
	require.NoError(t, err)

	var jacket models.Product
	require.NoError(t, db.Where("name = ?", "Denim Jacket").First(&jacket).Error)

	_, err = k.Carts.Add(ctx, customer.ID, jacket.ID, 2, nil, nil)
	require.NoError(t, err)
	order, err := k.Checkout.Checkout(ctx, services.CheckoutRequest{
		UserID: customer.ID, DeliveryAddress: "4 Hill Lane", DeliveryPhone: "+15550009999", PaymentMethod: "cod",
	})
	require.NoError(t, err)
	// 4500 less 10% is 4050; two of them.
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(8100)))

	cached, err := k.Catalog.Product(ctx, jacket.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, cached.Stock)
	assert.True(t, mr.Exists(fmt.Sprintf("bazaar:product:%d", jacket.ID)))

	_, err = k.Orders.Transition(ctx, order.ID, models.OrderConfirmed)
	require.NoError(t, err)
	_, err = k.Orders.Transition(ctx, order.ID, models.OrderCancelled)
	require.NoError(t, err)

	restored, err := k.Catalog.Product(ctx, jacket.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, restored.Stock, "cancel restocks and invalidates the cache")

	history, err := trail.History(ctx, "order", order.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "placed", history[0].Action)
	assert.Equal(t, "CANCELLED", history[2].To)

	drained, err := k.Queue.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, drained, "notifications ride the redis queue")

	notes, err := k.Store.Records.Notifications(ctx, customer.ID, true)
	require.NoError(t, err)
	assert.Len(t, notes, 3)
}
