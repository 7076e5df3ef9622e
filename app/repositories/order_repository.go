package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/orm"
)

// OrderRepository persists orders together with their lines.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts o and its lines.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	if o.Status == "" {
		o.Status = models.OrderPending
	}
	o.Version = 1
	return translate("order", r.db.WithContext(ctx).Create(o).Error)
}

// Find loads an order with its lines in insertion order.
func (r *OrderRepository) Find(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&o, id).Error
	if err != nil {
		return nil, translate(fmt.Sprintf("order %d", id), err)
	}
	return &o, nil
}

// ListByUser returns one page of the user's orders, newest first, without
// lines.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uint, page, limit int) ([]models.Order, orm.Pagination, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Order("id desc")
	var out []models.Order
	p, err := orm.Paginate(q, page, limit, &out)
	if err != nil {
		return nil, p, translate("order", err)
	}
	return out, p, nil
}

// UpdateStatus persists o.Status if the row still holds o.Version.
func (r *OrderRepository) UpdateStatus(ctx context.Context, o *models.Order) error {
	next := o.Version + 1
	stamp := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND version = ?", o.ID, o.Version).
		Updates(map[string]interface{}{"status": o.Status, "version": next, "updated_at": stamp})
	if res.Error != nil {
		return translate("order", res.Error)
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", o.ID).Count(&n).Error; err != nil {
			return translate("order", err)
		}
		if n == 0 {
			return notFound("order", o.ID)
		}
		return conflict("order", o.ID, "stale version")
	}
	o.Version = next
	o.UpdatedAt = stamp
	return nil
}
