package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is a user's pending intent to buy. It stores no price: the unit
// price is always re-derived from the live catalog.
type CartLine struct {
	ID        uint       `gorm:"primaryKey"          json:"id"`
	UserID    uint       `gorm:"not null;index"      json:"user_id"    validate:"required"`
	ProductID uint       `gorm:"not null;index"      json:"product_id" validate:"required"`
	VariantID *uint      `gorm:"index"               json:"variant_id,omitempty"`
	Quantity  int        `gorm:"not null"            json:"quantity"   validate:"required,gte=1"`
	Selection Attributes `gorm:"type:text"           json:"selection"`
	CreatedAt time.Time  `gorm:"autoCreateTime"      json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"      json:"updated_at"`
}

// NewCartLine validates and returns a new line.
func NewCartLine(userID, productID uint, quantity int, selection Attributes) (*CartLine, error) {
	l := &CartLine{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		Selection: selection.Clone(),
		CreatedAt: now(),
	}
	if err := check("cart_line", l); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *CartLine) Validate() error { return check("cart_line", l) }

// SetQuantity replaces the quantity; it must be ≥ 1.
func (l *CartLine) SetQuantity(q int) error {
	if q < 1 {
		return invalid("cart_line", "quantity", "The quantity must be at least 1.")
	}
	l.Quantity = q
	return nil
}

// AttachVariant links the line to v, which must refine the line's product.
func (l *CartLine) AttachVariant(v *Variant) error {
	if v == nil || v.ID == 0 {
		return invalid("cart_line", "variant_id", "The variant is required.")
	}
	if v.ProductID != l.ProductID {
		return invalid("cart_line", "variant_id", "The variant does not belong to this product.")
	}
	id := v.ID
	l.VariantID = &id
	return nil
}

// DetachVariant clears the variant link.
func (l *CartLine) DetachVariant() { l.VariantID = nil }

// SameItem reports whether other targets the same product, variant and
// selection, i.e. whether the two lines should be merged.
func (l *CartLine) SameItem(other *CartLine) bool {
	if l.ProductID != other.ProductID {
		return false
	}
	switch {
	case l.VariantID == nil && other.VariantID == nil:
	case l.VariantID != nil && other.VariantID != nil && *l.VariantID == *other.VariantID:
	default:
		return false
	}
	return l.Selection.Equal(other.Selection)
}

// UnitPrice is the live price of the line's item.
func (l *CartLine) UnitPrice(p *Product, v *Variant) (decimal.Decimal, error) {
	if err := l.matches(p, v); err != nil {
		return decimal.Zero, err
	}
	return p.SellingPrice(v)
}

// Subtotal is UnitPrice × Quantity at the current catalog price.
func (l *CartLine) Subtotal(p *Product, v *Variant) (decimal.Decimal, error) {
	unit, err := l.UnitPrice(p, v)
	if err != nil {
		return decimal.Zero, err
	}
	return unit.Mul(decimal.NewFromInt(int64(l.Quantity))), nil
}

// ToOrderLine snapshots the line into an OrderLine priced at p's current
// selling price. Later catalog changes do not affect the returned line.
func (l *CartLine) ToOrderLine(p *Product, v *Variant) (*OrderLine, error) {
	unit, err := l.UnitPrice(p, v)
	if err != nil {
		return nil, err
	}
	ol, err := NewOrderLine(0, p.ID, l.Quantity, unit)
	if err != nil {
		return nil, err
	}
	ol.ProductName = p.Name
	ol.Selection = l.Selection.Clone()
	if v != nil {
		id := v.ID
		ol.VariantID = &id
		ol.SKU = v.SKU
	} else {
		ol.SKU = p.SKU
	}
	return ol, nil
}

func (l *CartLine) matches(p *Product, v *Variant) error {
	if p == nil || p.ID != l.ProductID {
		return invalid("cart_line", "product_id", "The product does not match the cart line.")
	}
	switch {
	case l.VariantID == nil && v != nil:
		return invalid("cart_line", "variant_id", "The cart line has no variant attached.")
	case l.VariantID != nil && (v == nil || v.ID != *l.VariantID):
		return invalid("cart_line", "variant_id", "The variant does not match the cart line.")
	}
	return nil
}
