package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
)

// CartItem is a cart line priced against the live catalog.
type CartItem struct {
	Line      models.CartLine
	Product   *models.Product
	Variant   *models.Variant
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// CartService edits a user's cart. Lines never carry a price; every read
// reprices them from the catalog.
type CartService struct {
	store   *repositories.Store
	catalog *repositories.CachedCatalog
}

func NewCartService(store *repositories.Store, catalog *repositories.CachedCatalog) *CartService {
	return &CartService{store: store, catalog: catalog}
}

// Add puts qty of a product (optionally a specific variant) in the cart,
// merging with an identical line. The product must be available now;
// stock is only reserved at checkout.
func (s *CartService) Add(ctx context.Context, userID, productID uint, qty int, variantID *uint, selection models.Attributes) (*models.CartLine, error) {
	p, err := s.catalog.Find(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive || (variantID == nil && !p.Available) {
		return nil, fmt.Errorf("product %d is not available: %w", productID, models.ErrConflict)
	}

	line, err := models.NewCartLine(userID, productID, qty, selection)
	if err != nil {
		return nil, err
	}
	if variantID != nil {
		v, err := s.store.Catalog.FindVariant(ctx, *variantID)
		if err != nil {
			return nil, err
		}
		if err := line.AttachVariant(v); err != nil {
			return nil, err
		}
	}
	return s.store.Carts.Add(ctx, line)
}

// owned loads a line and hides other users' lines behind ErrNotFound.
func (s *CartService) owned(ctx context.Context, userID, lineID uint) (*models.CartLine, error) {
	l, err := s.store.Carts.Find(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if l.UserID != userID {
		return nil, fmt.Errorf("cart_line %d: %w", lineID, models.ErrNotFound)
	}
	return l, nil
}

func (s *CartService) SetQuantity(ctx context.Context, userID, lineID uint, qty int) (*models.CartLine, error) {
	l, err := s.owned(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}
	if err := l.SetQuantity(qty); err != nil {
		return nil, err
	}
	return l, s.store.Carts.Save(ctx, l)
}

// AttachVariant points an existing line at one of its product's variants.
// If the user already holds a line for that exact item, the quantities are
// merged into it and the edited line is removed; the surviving line is
// returned.
func (s *CartService) AttachVariant(ctx context.Context, userID, lineID, variantID uint) (*models.CartLine, error) {
	l, err := s.owned(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}
	v, err := s.store.Catalog.FindVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if err := l.AttachVariant(v); err != nil {
		return nil, err
	}

	out := l
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		lines, err := tx.Carts.List(ctx, userID)
		if err != nil {
			return err
		}
		for i := range lines {
			other := &lines[i]
			if other.ID == l.ID || !other.SameItem(l) {
				continue
			}
			if err := other.SetQuantity(other.Quantity + l.Quantity); err != nil {
				return err
			}
			if err := tx.Carts.Save(ctx, other); err != nil {
				return err
			}
			out = other
			return tx.Carts.Remove(ctx, l.ID)
		}
		return tx.Carts.Save(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CartService) Remove(ctx context.Context, userID, lineID uint) error {
	if _, err := s.owned(ctx, userID, lineID); err != nil {
		return err
	}
	return s.store.Carts.Remove(ctx, lineID)
}

func (s *CartService) Clear(ctx context.Context, userID uint) error {
	_, err := s.store.Carts.Clear(ctx, userID)
	return err
}

// Items returns the cart priced at current catalog prices.
func (s *CartService) Items(ctx context.Context, userID uint) ([]CartItem, error) {
	lines, err := s.store.Carts.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]CartItem, 0, len(lines))
	for _, l := range lines {
		item := CartItem{Line: l}
		if item.Product, err = s.catalog.Find(ctx, l.ProductID); err != nil {
			return nil, err
		}
		if l.VariantID != nil {
			if item.Variant, err = s.store.Catalog.FindVariant(ctx, *l.VariantID); err != nil {
				return nil, err
			}
		}
		if item.UnitPrice, err = l.UnitPrice(item.Product, item.Variant); err != nil {
			return nil, err
		}
		item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		out = append(out, item)
	}
	return out, nil
}

// Subtotal sums the live subtotals of every line.
func (s *CartService) Subtotal(ctx context.Context, userID uint) (decimal.Decimal, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal)
	}
	return total, nil
}
