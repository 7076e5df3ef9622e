package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/orm"
)

// StockError reports a decrement the row could not absorb.
type StockError struct {
	Entity   string
	ID       uint
	Have     int
	Want     int
	Inactive bool
}

func (e *StockError) Error() string {
	if e.Inactive {
		return fmt.Sprintf("%s %d: %s: not active", e.Entity, e.ID, models.ErrConflict)
	}
	return fmt.Sprintf("%s %d: %s: insufficient stock: have %d, want %d", e.Entity, e.ID, models.ErrConflict, e.Have, e.Want)
}

func (e *StockError) Unwrap() error { return models.ErrConflict }

// CatalogRepository persists products and their variants.
//
// Product rows carry a version. Update is a compare-and-swap on it; stock
// changes go through DecrementStock/IncrementStock, which adjust stock and
// the derived columns in a single statement and bump the version.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Create validates and inserts p. The owning shop must exist.
func (r *CatalogRepository) Create(ctx context.Context, p *models.Product) error {
	p.EnsureSKU()
	if err := p.Validate(); err != nil {
		return err
	}
	p.Refresh()
	p.Version = 1

	db := r.db.WithContext(ctx)
	if err := db.Select("id").First(&models.Shop{}, p.ShopID).Error; err != nil {
		return translate(fmt.Sprintf("shop %d", p.ShopID), err)
	}
	return translate("product", db.Omit(clause.Associations).Create(p).Error)
}

// Find loads a product without its variants.
func (r *CatalogRepository) Find(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(fmt.Sprintf("product %d", id), err)
	}
	return &p, nil
}

// FindWithVariants loads a product and its variants in id order.
func (r *CatalogRepository) FindWithVariants(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&p, id).Error
	if err != nil {
		return nil, translate(fmt.Sprintf("product %d", id), err)
	}
	return &p, nil
}

// Update writes every column of p if its version still matches the row.
// On success p.Version is advanced; a stale p yields ErrConflict.
func (r *CatalogRepository) Update(ctx context.Context, p *models.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.Refresh()
	next := p.Version + 1
	stamp := time.Now().UTC()

	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(map[string]interface{}{
			"shop_id":     p.ShopID,
			"name":        p.Name,
			"description": p.Description,
			"price":       p.Price,
			"stock":       p.Stock,
			"is_active":   p.IsActive,
			"available":   p.Available,
			"discount":    p.Discount,
			"sku":         p.SKU,
			"status":      p.Status,
			"sizes":       p.Sizes,
			"colors":      p.Colors,
			"tags":        p.Tags,
			"version":     next,
			"updated_at":  stamp,
		})
	if res.Error != nil {
		return translate("product", res.Error)
	}
	if res.RowsAffected == 0 {
		return r.missOrStale(ctx, p.ID)
	}
	p.Version = next
	p.UpdatedAt = stamp
	return nil
}

func (r *CatalogRepository) missOrStale(ctx context.Context, id uint) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return translate("product", err)
	}
	if n == 0 {
		return notFound("product", id)
	}
	return conflict("product", id, "stale version")
}

// DecrementStock takes qty units from an active product in one conditional
// UPDATE, so concurrent callers can never drive stock below zero. It
// returns the product as stored afterwards.
func (r *CatalogRepository) DecrementStock(ctx context.Context, id uint, qty int) (*models.Product, error) {
	if qty < 1 {
		return nil, &models.ValidationError{Entity: "product", Fields: map[string]string{"quantity": "The quantity must be at least 1."}}
	}
	// Assignments are emitted in key order and every CASE reads the old
	// stock, which keeps MySQL's left-to-right SET evaluation correct too.
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND is_active = ? AND stock >= ?", id, true, qty).
		Updates(map[string]interface{}{
			"available": gorm.Expr("CASE WHEN stock > ? THEN ? ELSE ? END", qty, true, false),
			"status":    gorm.Expr("CASE WHEN stock = ? AND status = ? THEN ? ELSE status END", qty, models.ProductActive, models.ProductOutOfStock),
			"stock":     gorm.Expr("stock - ?", qty),
			"version":   gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, translate("product", res.Error)
	}
	if res.RowsAffected == 0 {
		p, err := r.Find(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &StockError{Entity: "product", ID: id, Have: p.Stock, Want: qty, Inactive: !p.IsActive}
	}
	return r.Find(ctx, id)
}

// IncrementStock returns qty units to a product.
func (r *CatalogRepository) IncrementStock(ctx context.Context, id uint, qty int) (*models.Product, error) {
	if qty < 1 {
		return nil, &models.ValidationError{Entity: "product", Fields: map[string]string{"quantity": "The quantity must be at least 1."}}
	}
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"available": gorm.Expr("CASE WHEN is_active = ? THEN ? ELSE ? END", true, true, false),
			"status":    gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", models.ProductOutOfStock, models.ProductActive),
			"stock":     gorm.Expr("stock + ?", qty),
			"version":   gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, translate("product", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFound("product", id)
	}
	return r.Find(ctx, id)
}

// CreateVariant inserts v under an existing product.
func (r *CatalogRepository) CreateVariant(ctx context.Context, v *models.Variant) error {
	v.EnsureSKU()
	if err := v.Validate(); err != nil {
		return err
	}
	db := r.db.WithContext(ctx)
	if err := db.Select("id").First(&models.Product{}, v.ProductID).Error; err != nil {
		return translate(fmt.Sprintf("product %d", v.ProductID), err)
	}
	return translate("variant", db.Create(v).Error)
}

func (r *CatalogRepository) FindVariant(ctx context.Context, id uint) (*models.Variant, error) {
	var v models.Variant
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, translate(fmt.Sprintf("variant %d", id), err)
	}
	return &v, nil
}

// DecrementVariantStock is DecrementStock for a variant row.
func (r *CatalogRepository) DecrementVariantStock(ctx context.Context, id uint, qty int) (*models.Variant, error) {
	if qty < 1 {
		return nil, &models.ValidationError{Entity: "variant", Fields: map[string]string{"quantity": "The quantity must be at least 1."}}
	}
	res := r.db.WithContext(ctx).Model(&models.Variant{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return nil, translate("variant", res.Error)
	}
	if res.RowsAffected == 0 {
		v, err := r.FindVariant(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &StockError{Entity: "variant", ID: id, Have: v.Stock, Want: qty}
	}
	return r.FindVariant(ctx, id)
}

func (r *CatalogRepository) IncrementVariantStock(ctx context.Context, id uint, qty int) (*models.Variant, error) {
	if qty < 1 {
		return nil, &models.ValidationError{Entity: "variant", Fields: map[string]string{"quantity": "The quantity must be at least 1."}}
	}
	res := r.db.WithContext(ctx).Model(&models.Variant{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return nil, translate("variant", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFound("variant", id)
	}
	return r.FindVariant(ctx, id)
}

// ProductFilter narrows List.
type ProductFilter struct {
	ShopID        uint
	AvailableOnly bool
}

// List returns one page of products in id order.
func (r *CatalogRepository) List(ctx context.Context, f ProductFilter, page, limit int) ([]models.Product, orm.Pagination, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).Order("id")
	if f.ShopID != 0 {
		q = q.Where("shop_id = ?", f.ShopID)
	}
	if f.AvailableOnly {
		q = q.Where("available = ?", true)
	}
	var out []models.Product
	p, err := orm.Paginate(q, page, limit, &out)
	if err != nil {
		return nil, p, translate("product", err)
	}
	return out, p, nil
}

// ListLowStock returns active products with 0 < stock ≤ LowStockThreshold,
// lowest stock first.
func (r *CatalogRepository) ListLowStock(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND stock > 0 AND stock <= ?", true, models.LowStockThreshold).
		Order("stock, id").
		Find(&out).Error
	if err != nil {
		return nil, translate("product", err)
	}
	return out, nil
}

// IsStockError reports whether err is a refused decrement and returns it.
func IsStockError(err error) (*StockError, bool) {
	var se *StockError
	ok := errors.As(err, &se)
	return se, ok
}
