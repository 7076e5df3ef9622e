package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// LowStockThreshold is the inclusive upper bound for "low stock".
	LowStockThreshold = 5

	// CurrencyScale is the number of fractional digits kept on money columns.
	CurrencyScale = 2
)

var hundred = decimal.NewFromInt(100)

// Product is a sellable catalog item owned by a shop.
//
// Available is derived: Stock > 0 && IsActive. Use SetStock / SetActive, or
// call Refresh after writing either field directly. Repositories call Refresh
// on every save path.
type Product struct {
	gorm.Model
	ShopID      uint            `gorm:"not null;index"                json:"shop_id"     validate:"required"`
	Name        string          `gorm:"size:255;not null;index"       json:"name"        validate:"required,max=255"`
	Description string          `gorm:"type:text"                     json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"   json:"price"       validate:"gt=0"`
	Stock       int             `gorm:"not null"                      json:"stock"       validate:"gte=0"`
	IsActive    bool            `gorm:"not null"                      json:"is_active"`
	Available   bool            `gorm:"not null;index"                json:"available"`
	Discount    int             `gorm:"not null"                      json:"discount"    validate:"between=0,100"`
	SKU         string          `gorm:"size:100;uniqueIndex;not null" json:"sku"`
	Status      ProductStatus   `gorm:"size:20;not null"              json:"status"      validate:"required,in=ACTIVE,INACTIVE,OUT_OF_STOCK,DISCONTINUED"`
	Version     int             `gorm:"not null"                      json:"version"`

	// Opaque JSON text columns; not parsed here.
	Sizes  string `gorm:"type:text" json:"sizes"  validate:"nullable,json"`
	Colors string `gorm:"type:text" json:"colors" validate:"nullable,json"`
	Tags   string `gorm:"type:text" json:"tags"   validate:"nullable,json"`

	Variants []Variant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
}

// NewProduct returns an active product with derived fields computed and a
// fresh SKU.
func NewProduct(shopID uint, name string, price decimal.Decimal, stock int) *Product {
	p := &Product{
		ShopID:   shopID,
		Name:     name,
		Price:    price,
		Stock:    stock,
		IsActive: true,
		Status:   ProductActive,
	}
	p.EnsureSKU()
	p.Refresh()
	return p
}

// Refresh recomputes Available from Stock and IsActive and moves Status
// between ACTIVE and OUT_OF_STOCK to follow the stock level. Idempotent.
func (p *Product) Refresh() {
	p.Available = p.Stock > 0 && p.IsActive
	switch {
	case p.Status == ProductActive && p.Stock == 0:
		p.Status = ProductOutOfStock
	case p.Status == ProductOutOfStock && p.Stock > 0:
		p.Status = ProductActive
	}
}

// SetStock replaces the stock level and recomputes Available.
func (p *Product) SetStock(n int) error {
	if n < 0 {
		return invalid("product", "stock", "The stock must be greater than or equal to 0.")
	}
	p.Stock = n
	p.Refresh()
	return nil
}

// SetActive toggles the active flag (and the matching status) and
// recomputes Available. A discontinued product cannot be reactivated.
func (p *Product) SetActive(active bool) error {
	if active && p.Status == ProductDiscontinued {
		return &TransitionError{Entity: "product", From: string(p.Status), To: string(ProductActive)}
	}
	p.IsActive = active
	switch {
	case p.Status == ProductDiscontinued:
	case active:
		p.Status = ProductActive
	default:
		p.Status = ProductInactive
	}
	p.Refresh()
	return nil
}

// Discontinue retires the product. Products are never hard-deleted.
func (p *Product) Discontinue() {
	p.IsActive = false
	p.Status = ProductDiscontinued
	p.Refresh()
}

// SetDiscount sets the discount percent; valid range is [0,100].
func (p *Product) SetDiscount(percent int) error {
	if percent < 0 || percent > 100 {
		return invalid("product", "discount", "The discount must be between 0 and 100.")
	}
	p.Discount = percent
	return nil
}

// PriceWithDiscount returns price - price*discount/100. A discount ≤ 0
// yields the base price unchanged.
func (p *Product) PriceWithDiscount() decimal.Decimal {
	if p.Discount <= 0 {
		return p.Price
	}
	d := p.Discount
	if d > 100 {
		d = 100
	}
	cut := p.Price.Mul(decimal.NewFromInt(int64(d))).Div(hundred)
	return p.Price.Sub(cut)
}

// SellingPrice is the live unit price of the product, or of variant v when
// non-nil: the discounted parent price plus the variant adjustment, floored
// at zero and rounded to CurrencyScale.
func (p *Product) SellingPrice(v *Variant) (decimal.Decimal, error) {
	price := p.PriceWithDiscount()
	if v != nil {
		if v.ProductID != p.ID {
			return decimal.Zero, invalid("variant", "product_id", "The variant does not belong to this product.")
		}
		price = price.Add(v.PriceAdjustment)
	}
	if price.IsNegative() {
		price = decimal.Zero
	}
	return price.Round(CurrencyScale), nil
}

// IsInStock reports Stock > 0.
func (p *Product) IsInStock() bool { return p.Stock > 0 }

// IsLowStock reports 0 < Stock ≤ LowStockThreshold.
func (p *Product) IsLowStock() bool {
	return p.Stock > 0 && p.Stock <= LowStockThreshold
}

// EnsureSKU mints a SKU when none was supplied.
func (p *Product) EnsureSKU() {
	if p.SKU == "" {
		p.SKU = NewSKU("PRD")
	}
}

// Validate checks field rules. Missing status defaults to ACTIVE or
// INACTIVE from the active flag.
func (p *Product) Validate() error {
	if p.Status == "" {
		if p.IsActive {
			p.Status = ProductActive
		} else {
			p.Status = ProductInactive
		}
	}
	return check("product", p)
}

// Variant refines a product (color, size, model …) with its own stock,
// price delta and SKU. Variant stock is independent of the parent's stock.
type Variant struct {
	gorm.Model
	ProductID       uint            `gorm:"not null;index"                json:"product_id"       validate:"required"`
	Attributes      Attributes      `gorm:"type:text"                     json:"attributes"`
	PriceAdjustment decimal.Decimal `gorm:"type:decimal(12,2);not null"   json:"price_adjustment"`
	Stock           int             `gorm:"not null"                      json:"stock"            validate:"gte=0"`
	SKU             string          `gorm:"size:100;uniqueIndex;not null" json:"sku"`
}

// NewVariant returns a variant of productID with a fresh SKU.
func NewVariant(productID uint, attrs Attributes, adjustment decimal.Decimal, stock int) *Variant {
	v := &Variant{
		ProductID:       productID,
		Attributes:      attrs.Clone(),
		PriceAdjustment: adjustment,
		Stock:           stock,
	}
	v.EnsureSKU()
	return v
}

// SetStock replaces the variant stock level.
func (v *Variant) SetStock(n int) error {
	if n < 0 {
		return invalid("variant", "stock", "The stock must be greater than or equal to 0.")
	}
	v.Stock = n
	return nil
}

// IsInStock reports Stock > 0.
func (v *Variant) IsInStock() bool { return v.Stock > 0 }

// EnsureSKU mints a SKU when none was supplied.
func (v *Variant) EnsureSKU() {
	if v.SKU == "" {
		v.SKU = NewSKU("VAR")
	}
}

func (v *Variant) Validate() error { return check("variant", v) }
