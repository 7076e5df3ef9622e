package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
)

func newCached(t *testing.T, s *repositories.Store) (*repositories.CachedCatalog, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return repositories.NewCachedCatalog(s.Catalog, cache.New(rdb, "bazaar:", time.Minute)), mr
}

func TestCachedCatalog_ReadThroughAndInvalidate(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	shop := newShop(t, s)
	p := newProduct(t, s, shop, "250.00", 4)
	c, mr := newCached(t, s)

	hits := testutil.ToFloat64(metrics.CacheHits.WithLabelValues("catalog"))

	first, err := c.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists("bazaar:product:"+itoa(p.ID)))

	// A write that bypasses the decorator is invisible until invalidation.
	_, err = s.Catalog.DecrementStock(ctx, p.ID, 1)
	require.NoError(t, err)
	cached, err := c.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Stock, cached.Stock)
	assert.True(t, cached.Price.Equal(dec("250")))
	assert.Equal(t, hits+1, testutil.ToFloat64(metrics.CacheHits.WithLabelValues("catalog")))

	c.Invalidate(ctx, p.ID)
	fresh, err := c.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, fresh.Stock)

	require.NoError(t, fresh.SetDiscount(20))
	require.NoError(t, c.Update(ctx, fresh))
	assert.False(t, mr.Exists("bazaar:product:"+itoa(p.ID)))

	again, err := c.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, again.Discount)
}

func TestCachedCatalog_RedisDownFallsThrough(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	shop := newShop(t, s)
	p := newProduct(t, s, shop, "10", 1)
	c, mr := newCached(t, s)
	mr.Close()

	got, err := c.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = c.Find(ctx, p.ID+99)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
