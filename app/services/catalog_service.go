package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/orm"
)

// CatalogService manages products on behalf of their shops. Reads are
// served through the catalog cache.
type CatalogService struct {
	store   *repositories.Store
	catalog *repositories.CachedCatalog
}

func NewCatalogService(store *repositories.Store, catalog *repositories.CachedCatalog) *CatalogService {
	return &CatalogService{store: store, catalog: catalog}
}

// AddProduct lists p in an approved shop.
func (s *CatalogService) AddProduct(ctx context.Context, p *models.Product) error {
	shop, err := s.store.Shops.Find(ctx, p.ShopID)
	if err != nil {
		return err
	}
	if !shop.Open() {
		return fmt.Errorf("shop %d is %s: %w", shop.ID, shop.Status, models.ErrConflict)
	}
	if err := s.catalog.Create(ctx, p); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("product listed", "product_id", p.ID, "shop_id", p.ShopID, "sku", p.SKU)
	return nil
}

func (s *CatalogService) AddVariant(ctx context.Context, v *models.Variant) error {
	return s.store.Catalog.CreateVariant(ctx, v)
}

func (s *CatalogService) Product(ctx context.Context, id uint) (*models.Product, error) {
	return s.catalog.Find(ctx, id)
}

func (s *CatalogService) List(ctx context.Context, f repositories.ProductFilter, page, limit int) ([]models.Product, orm.Pagination, error) {
	return s.store.Catalog.List(ctx, f, page, limit)
}

// Restock adds qty units.
func (s *CatalogService) Restock(ctx context.Context, id uint, qty int) (*models.Product, error) {
	return s.catalog.IncrementStock(ctx, id, qty)
}

// SetActive toggles the active flag.
func (s *CatalogService) SetActive(ctx context.Context, id uint, active bool) (*models.Product, error) {
	return s.mutate(ctx, id, func(p *models.Product) error { return p.SetActive(active) })
}

// SetDiscount sets the discount percent.
func (s *CatalogService) SetDiscount(ctx context.Context, id uint, percent int) (*models.Product, error) {
	return s.mutate(ctx, id, func(p *models.Product) error { return p.SetDiscount(percent) })
}

// Discontinue retires the product for good.
func (s *CatalogService) Discontinue(ctx context.Context, id uint) (*models.Product, error) {
	return s.mutate(ctx, id, func(p *models.Product) error {
		p.Discontinue()
		return nil
	})
}

// LowStock lists active products at or below the low-stock threshold.
func (s *CatalogService) LowStock(ctx context.Context) ([]models.Product, error) {
	return s.store.Catalog.ListLowStock(ctx)
}

// mutate applies fn to a fresh copy and saves it, retrying once when a
// concurrent stock change bumped the version in between.
func (s *CatalogService) mutate(ctx context.Context, id uint, fn func(*models.Product) error) (*models.Product, error) {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		var p *models.Product
		p, err = s.store.Catalog.Find(ctx, id)
		if err != nil {
			return nil, err
		}
		if err = fn(p); err != nil {
			return nil, err
		}
		if err = s.catalog.Update(ctx, p); err == nil {
			return p, nil
		}
		if !isConflict(err) {
			return nil, err
		}
	}
	return nil, err
}
