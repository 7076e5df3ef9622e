package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
)

// AccountService registers marketplace parties and moves vendors and shops
// through their approval lifecycle.
type AccountService struct {
	store *repositories.Store
}

func NewAccountService(store *repositories.Store) *AccountService {
	return &AccountService{store: store}
}

// Register creates a user with a hashed password.
func (s *AccountService) Register(ctx context.Context, name, email, phone, password string, role models.Role) (*models.User, error) {
	u := &models.User{Name: name, Email: email, Phone: phone, Role: role}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	if err := s.store.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Authenticate returns the user whose email and password match. Any
// mismatch is reported as not found.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.store.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !u.CheckPassword(password) {
		return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
	}
	return u, nil
}

// RegisterVendor creates a PENDING vendor for an existing user.
func (s *AccountService) RegisterVendor(ctx context.Context, userID uint, businessName, phone string) (*models.Vendor, error) {
	v := &models.Vendor{UserID: userID, BusinessName: businessName, Phone: phone}
	if err := s.store.Vendors.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *AccountService) TransitionVendor(ctx context.Context, id uint, to models.VendorStatus) (*models.Vendor, error) {
	return s.store.Vendors.Transition(ctx, id, to)
}

// OpenShop creates a PENDING shop. Only an approved vendor may open one.
func (s *AccountService) OpenShop(ctx context.Context, shop *models.Shop) error {
	v, err := s.store.Vendors.Find(ctx, shop.VendorID)
	if err != nil {
		return err
	}
	if v.Status != models.VendorApproved {
		return fmt.Errorf("vendor %d is %s: %w", v.ID, v.Status, models.ErrConflict)
	}
	shop.Status = models.ShopPending
	return s.store.Shops.Create(ctx, shop)
}

func (s *AccountService) TransitionShop(ctx context.Context, id uint, to models.ShopStatus) (*models.Shop, error) {
	return s.store.Shops.Transition(ctx, id, to)
}
