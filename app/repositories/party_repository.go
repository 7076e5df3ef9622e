package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create validates and inserts u. A taken email or phone is ErrDuplicateKey.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	return translate("user", r.db.WithContext(ctx).Create(u).Error)
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(fmt.Sprintf("user %d", id), err)
	}
	return &u, nil
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate("user "+email, err)
	}
	return &u, nil
}

// VendorRepository handles database operations for Vendor.
type VendorRepository struct {
	db *gorm.DB
}

func (r *VendorRepository) Create(ctx context.Context, v *models.Vendor) error {
	if err := v.Validate(); err != nil {
		return err
	}
	db := r.db.WithContext(ctx)
	if err := db.Select("id").First(&models.User{}, v.UserID).Error; err != nil {
		return translate(fmt.Sprintf("user %d", v.UserID), err)
	}
	return translate("vendor", db.Create(v).Error)
}

func (r *VendorRepository) Find(ctx context.Context, id uint) (*models.Vendor, error) {
	var v models.Vendor
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, translate(fmt.Sprintf("vendor %d", id), err)
	}
	return &v, nil
}

// Transition loads the vendor, applies the status change and saves it.
func (r *VendorRepository) Transition(ctx context.Context, id uint, to models.VendorStatus) (*models.Vendor, error) {
	v, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := v.TransitionTo(to); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(v).Update("status", v.Status).Error; err != nil {
		return nil, translate("vendor", err)
	}
	return v, nil
}

// ShopRepository handles database operations for Shop.
type ShopRepository struct {
	db *gorm.DB
}

// Create validates and inserts s under an existing vendor. Shop names are
// unique.
func (r *ShopRepository) Create(ctx context.Context, s *models.Shop) error {
	if err := s.Validate(); err != nil {
		return err
	}
	db := r.db.WithContext(ctx)
	if err := db.Select("id").First(&models.Vendor{}, s.VendorID).Error; err != nil {
		return translate(fmt.Sprintf("vendor %d", s.VendorID), err)
	}
	return translate("shop", db.Create(s).Error)
}

func (r *ShopRepository) Find(ctx context.Context, id uint) (*models.Shop, error) {
	var s models.Shop
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, translate(fmt.Sprintf("shop %d", id), err)
	}
	return &s, nil
}

// Transition loads the shop, applies the status change and saves it.
func (r *ShopRepository) Transition(ctx context.Context, id uint, to models.ShopStatus) (*models.Shop, error) {
	s, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.TransitionTo(to); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(s).Update("status", s.Status).Error; err != nil {
		return nil, translate("shop", err)
	}
	return s, nil
}

// ListByVendor returns the vendor's shops in id order.
func (r *ShopRepository) ListByVendor(ctx context.Context, vendorID uint) ([]models.Shop, error) {
	var out []models.Shop
	if err := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID).Order("id").Find(&out).Error; err != nil {
		return nil, translate("shop", err)
	}
	return out, nil
}
