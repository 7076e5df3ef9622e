// Package kernel is the composition root: it opens the database, redis and
// the audit trail from config and wires the repositories, services and
// listeners on top of them.
package kernel

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/jobs"
	"github.com/shashiranjanraj/bazaar/app/listeners"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/pkg/audit"
	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/event"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
	"github.com/shashiranjanraj/bazaar/pkg/workerpool"
)

type Kernel struct {
	DB     *gorm.DB
	Store  *repositories.Store
	Cache  *cache.Store
	Trail  audit.Trail
	Events *event.Dispatcher
	Pool   *workerpool.Pool
	Queue  *queue.Manager

	Accounts *services.AccountService
	Catalog  *services.CatalogService
	Carts    *services.CartService
	Checkout *services.CheckoutService
	Orders   *services.OrderService
}

// Boot connects everything config names. Redis is optional: when it cannot
// be reached the catalog runs uncached.
func Boot(ctx context.Context) (*Kernel, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("kernel: config: %w", err)
	}
	if err := database.Connect(); err != nil {
		return nil, err
	}

	store, err := cache.Connect(ctx, "bazaar:")
	if err != nil {
		logger.WithCtx(ctx).Warn("redis unavailable, catalog cache disabled", "error", err)
	}

	trail, err := audit.Open(ctx, config.AuditMongoURI(), config.AuditMongoDB(), config.AuditMongoCollection())
	if err != nil {
		return nil, fmt.Errorf("kernel: audit: %w", err)
	}

	return New(database.DB, store, trail), nil
}

// New wires a Kernel over already-open resources.
func New(db *gorm.DB, c *cache.Store, trail audit.Trail) *Kernel {
	store := repositories.New(db)
	catalog := repositories.NewCachedCatalog(store.Catalog, c)
	pool := workerpool.New(config.EventWorkers())
	events := event.New(event.WithPool(pool))

	var driver queue.Driver = queue.NewMemoryDriver()
	if rdb := c.Client(); rdb != nil {
		driver = queue.NewRedisDriver(rdb, "bazaar:queue:jobs")
	}
	q := queue.New(driver, queue.WithFailedStore(db))
	jobs.Register(q, store)
	listeners.Register(events, q, trail)

	return &Kernel{
		DB:     db,
		Store:  store,
		Cache:  c,
		Trail:  trail,
		Events: events,
		Pool:   pool,
		Queue:  q,

		Accounts: services.NewAccountService(store),
		Catalog:  services.NewCatalogService(store, catalog),
		Carts:    services.NewCartService(store, catalog),
		Checkout: services.NewCheckoutService(store, catalog, events),
		Orders:   services.NewOrderService(store, catalog, events),
	}
}

// Close waits for async listeners, runs whatever jobs are still queued and
// releases every resource.
func (k *Kernel) Close(ctx context.Context) error {
	k.Events.Wait()
	k.Pool.Shutdown()
	k.Queue.Stop()

	var errs []error
	if n, err := k.Queue.Drain(ctx); err != nil {
		errs = append(errs, err)
	} else if n > 0 {
		logger.WithCtx(ctx).Info("kernel: drained queued jobs", "count", n)
	}
	if err := k.Trail.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := k.Cache.Close(); err != nil {
		errs = append(errs, err)
	}
	if sqlDB, err := k.DB.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	}
	return errors.Join(errs...)
}
