package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleVendor   Role = "VENDOR"
	RoleAdmin    Role = "ADMIN"
)

// User is a marketplace account. Email and phone are unique.
type User struct {
	gorm.Model
	Name         string `gorm:"size:255;not null"             json:"name"  validate:"required,max=255"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email" validate:"required,email"`
	Phone        string `gorm:"size:32;uniqueIndex;not null"  json:"phone" validate:"required,phone"`
	PasswordHash string `gorm:"size:255;not null"             json:"-"`
	Role         Role   `gorm:"size:20;not null"              json:"role"  validate:"required,in=CUSTOMER,VENDOR,ADMIN"`
}

// SetPassword stores a bcrypt hash of plain.
func (u *User) SetPassword(plain string) error {
	if len(plain) < 8 {
		return invalid("user", "password", "The password must be at least 8 characters.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

func (u *User) Validate() error {
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	return check("user", u)
}

// Vendor is a seller account awaiting or holding marketplace approval.
type Vendor struct {
	gorm.Model
	UserID       uint         `gorm:"not null;uniqueIndex"         json:"user_id"       validate:"required"`
	BusinessName string       `gorm:"size:255;not null"            json:"business_name" validate:"required,max=255"`
	Phone        string       `gorm:"size:32;uniqueIndex;not null" json:"phone"         validate:"required,phone"`
	Status       VendorStatus `gorm:"size:20;not null;index"       json:"status"`
}

func (v *Vendor) Validate() error {
	if v.Status == "" {
		v.Status = VendorPending
	}
	return check("vendor", v)
}

// TransitionTo applies VendorTransitions.
func (v *Vendor) TransitionTo(to VendorStatus) error {
	if err := VendorTransitions.Check("vendor", v.Status, to); err != nil {
		return err
	}
	v.Status = to
	return nil
}

// Shop is a vendor's storefront. Shop names are unique.
type Shop struct {
	gorm.Model
	VendorID    uint       `gorm:"not null;index"                json:"vendor_id"   validate:"required"`
	Name        string     `gorm:"size:255;uniqueIndex;not null" json:"name"        validate:"required,max=255"`
	Description string     `gorm:"type:text"                     json:"description"`
	Address     string     `gorm:"type:text;not null"            json:"address"     validate:"required"`
	Phone       string     `gorm:"size:32;not null"              json:"phone"       validate:"required,phone"`
	Status      ShopStatus `gorm:"size:20;not null;index"        json:"status"`

	// Opaque JSON text columns; not parsed here.
	OpeningHours string `gorm:"type:text" json:"opening_hours" validate:"nullable,json"`
	SocialLinks  string `gorm:"type:text" json:"social_links"  validate:"nullable,json"`
}

func (s *Shop) Validate() error {
	if s.Status == "" {
		s.Status = ShopPending
	}
	return check("shop", s)
}

// TransitionTo applies ShopTransitions.
func (s *Shop) TransitionTo(to ShopStatus) error {
	if err := ShopTransitions.Check("shop", s.Status, to); err != nil {
		return err
	}
	s.Status = to
	return nil
}

// Open reports whether the shop may sell.
func (s *Shop) Open() bool { return s.Status == ShopApproved }
