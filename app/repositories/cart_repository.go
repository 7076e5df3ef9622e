package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
)

// CartRepository persists cart lines. A user holds at most one line per
// product/variant/selection; Add merges into an existing match.
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// Add inserts line, or adds its quantity to the user's matching line and
// returns that one.
func (r *CartRepository) Add(ctx context.Context, line *models.CartLine) (*models.CartLine, error) {
	if err := line.Validate(); err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx)

	var existing []models.CartLine
	if err := db.Where("user_id = ? AND product_id = ?", line.UserID, line.ProductID).Order("id").Find(&existing).Error; err != nil {
		return nil, translate("cart_line", err)
	}
	for i := range existing {
		if !existing[i].SameItem(line) {
			continue
		}
		if err := existing[i].SetQuantity(existing[i].Quantity + line.Quantity); err != nil {
			return nil, err
		}
		if err := db.Save(&existing[i]).Error; err != nil {
			return nil, translate("cart_line", err)
		}
		return &existing[i], nil
	}

	if err := db.Create(line).Error; err != nil {
		return nil, translate("cart_line", err)
	}
	return line, nil
}

func (r *CartRepository) Find(ctx context.Context, id uint) (*models.CartLine, error) {
	var l models.CartLine
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, translate(fmt.Sprintf("cart_line %d", id), err)
	}
	return &l, nil
}

// Save writes a line loaded with Find back after a model-level change.
func (r *CartRepository) Save(ctx context.Context, l *models.CartLine) error {
	if err := l.Validate(); err != nil {
		return err
	}
	return translate("cart_line", r.db.WithContext(ctx).Save(l).Error)
}

func (r *CartRepository) Remove(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.CartLine{}, id)
	if res.Error != nil {
		return translate("cart_line", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("cart_line", id)
	}
	return nil
}

// List returns the user's lines in insertion order.
func (r *CartRepository) List(ctx context.Context, userID uint) ([]models.CartLine, error) {
	var out []models.CartLine
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&out).Error; err != nil {
		return nil, translate("cart_line", err)
	}
	return out, nil
}

// Clear deletes every line of the user and returns how many were removed.
func (r *CartRepository) Clear(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartLine{})
	return res.RowsAffected, translate("cart_line", res.Error)
}
