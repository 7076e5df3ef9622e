package repositories

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
)

// CachedCatalog serves product reads through redis and drops the cached
// copy on every write it performs. Reads made inside a transaction must go
// to the CatalogRepository directly; call Invalidate after commit.
type CachedCatalog struct {
	repo  *CatalogRepository
	store *cache.Store
}

func NewCachedCatalog(repo *CatalogRepository, store *cache.Store) *CachedCatalog {
	return &CachedCatalog{repo: repo, store: store}
}

func productKey(id uint) string { return fmt.Sprintf("product:%d", id) }

// Find returns the product from cache, or loads and caches it. Cache
// failures are logged and fall through to the database.
func (c *CachedCatalog) Find(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	hit, err := c.store.Get(ctx, productKey(id), &p)
	if err != nil {
		logger.WithCtx(ctx).Warn("catalog cache read failed", "product_id", id, "error", err)
	}
	if hit {
		metrics.CacheHits.WithLabelValues("catalog").Inc()
		return &p, nil
	}
	metrics.CacheMisses.WithLabelValues("catalog").Inc()

	fresh, err := c.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.store.Set(ctx, productKey(id), fresh); err != nil {
		logger.WithCtx(ctx).Warn("catalog cache write failed", "product_id", id, "error", err)
	}
	return fresh, nil
}

// Invalidate drops the cached copies of ids.
func (c *CachedCatalog) Invalidate(ctx context.Context, ids ...uint) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		logger.WithCtx(ctx).Warn("catalog cache invalidate failed", "product_ids", ids, "error", err)
	}
}

func (c *CachedCatalog) Create(ctx context.Context, p *models.Product) error {
	return c.repo.Create(ctx, p)
}

func (c *CachedCatalog) Update(ctx context.Context, p *models.Product) error {
	defer c.Invalidate(ctx, p.ID)
	return c.repo.Update(ctx, p)
}

func (c *CachedCatalog) IncrementStock(ctx context.Context, id uint, qty int) (*models.Product, error) {
	defer c.Invalidate(ctx, id)
	return c.repo.IncrementStock(ctx, id, qty)
}

func (c *CachedCatalog) DecrementStock(ctx context.Context, id uint, qty int) (*models.Product, error) {
	defer c.Invalidate(ctx, id)
	return c.repo.DecrementStock(ctx, id, qty)
}

// Repo exposes the uncached repository.
func (c *CachedCatalog) Repo() *CatalogRepository { return c.repo }
