// Package repositories persists the models through gorm. Every repository
// wraps a *gorm.DB that is either the connection pool or an open
// transaction; Store.Transaction hands out a Store bound to a transaction
// so a service can compose several repositories atomically.
package repositories

import (
	"context"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB

	Users   *UserRepository
	Vendors *VendorRepository
	Shops   *ShopRepository
	Catalog *CatalogRepository
	Carts   *CartRepository
	Orders  *OrderRepository
	Records *RecordRepository
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:      db,
		Users:   &UserRepository{db: db},
		Vendors: &VendorRepository{db: db},
		Shops:   &ShopRepository{db: db},
		Catalog: &CatalogRepository{db: db},
		Carts:   &CartRepository{db: db},
		Orders:  &OrderRepository{db: db},
		Records: &RecordRepository{db: db},
	}
}

// DB returns the underlying handle.
func (s *Store) DB() *gorm.DB { return s.db }

// Transaction runs fn with a Store bound to a single transaction. fn's
// error rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
