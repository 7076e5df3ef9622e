package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// now is the clock used for UpdatedAt/PlacedAt stamps.
var now = func() time.Time { return time.Now().UTC() }

// OrderLine is an immutable price snapshot inside an order.
//
// TotalPrice == UnitPrice × Quantity holds after every setter call. A side
// that was never set (Quantity 0, UnitPrice invalid) suppresses the
// recompute, so a line built up field by field multiplies exactly once,
// when the second side becomes known.
type OrderLine struct {
	ID          uint                `gorm:"primaryKey"                 json:"id"`
	OrderID     uint                `gorm:"not null;index"             json:"order_id"`
	ProductID   uint                `gorm:"not null;index"             json:"product_id"`
	VariantID   *uint               `gorm:"index"                      json:"variant_id,omitempty"`
	ProductName string              `gorm:"size:255"                   json:"product_name"`
	SKU         string              `gorm:"size:100"                   json:"sku"`
	Quantity    int                 `gorm:"not null"                   json:"quantity"`
	UnitPrice   decimal.NullDecimal `gorm:"type:decimal(12,2)"         json:"unit_price"`
	TotalPrice  decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"total_price"`
	Selection   Attributes          `gorm:"type:text"                  json:"selection"`
	Sealed      bool                `gorm:"not null"                   json:"sealed"`
	CreatedAt   time.Time           `gorm:"autoCreateTime"             json:"created_at"`
}

// NewOrderLine builds a line and computes its total.
func NewOrderLine(orderID, productID uint, quantity int, unitPrice decimal.Decimal) (*OrderLine, error) {
	if productID == 0 {
		return nil, invalid("order_line", "product_id", "The product_id field is required.")
	}
	l := &OrderLine{OrderID: orderID, ProductID: productID}
	if err := l.SetQuantity(quantity); err != nil {
		return nil, err
	}
	if err := l.SetUnitPrice(unitPrice); err != nil {
		return nil, err
	}
	return l, nil
}

// SetQuantity replaces the quantity and, if the unit price is known,
// recomputes the total.
func (l *OrderLine) SetQuantity(q int) error {
	if l.Sealed {
		return invalid("order_line", "quantity", "The quantity is frozen once the order is placed.")
	}
	if q < 1 {
		return invalid("order_line", "quantity", "The quantity must be at least 1.")
	}
	l.Quantity = q
	if l.UnitPrice.Valid {
		l.TotalPrice = l.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(q)))
	}
	return nil
}

// SetUnitPrice replaces the unit price and, if the quantity is known,
// recomputes the total.
func (l *OrderLine) SetUnitPrice(price decimal.Decimal) error {
	if l.Sealed {
		return invalid("order_line", "unit_price", "The unit price is frozen once the order is placed.")
	}
	if price.IsNegative() {
		return invalid("order_line", "unit_price", "The unit price must be greater than or equal to 0.")
	}
	l.UnitPrice = decimal.NullDecimal{Decimal: price, Valid: true}
	if l.Quantity > 0 {
		l.TotalPrice = price.Mul(decimal.NewFromInt(int64(l.Quantity)))
	}
	return nil
}

// Recompute re-derives TotalPrice. Both inputs must be set.
func (l *OrderLine) Recompute() error {
	if !l.UnitPrice.Valid {
		return invalid("order_line", "unit_price", "The unit price is required.")
	}
	if l.Quantity < 1 {
		return invalid("order_line", "quantity", "The quantity must be at least 1.")
	}
	l.TotalPrice = l.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(l.Quantity)))
	return nil
}

// Order is the aggregate root: an ordered list of lines, a status and a
// total. The total is maintained by the aggregate's own mutators; callers
// that edit Lines directly must call RecomputeTotal.
type Order struct {
	gorm.Model
	UserID          uint            `gorm:"not null;index"               json:"user_id"          validate:"required"`
	Lines           []OrderLine     `gorm:"foreignKey:OrderID"           json:"lines"`
	Status          OrderStatus     `gorm:"size:20;not null;index"       json:"status"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"  json:"total_amount"`
	NeedsDelivery   bool            `gorm:"not null"                     json:"needs_delivery"`
	DeliveryAddress string          `gorm:"type:text"                    json:"delivery_address"`
	DeliveryPhone   string          `gorm:"size:32"                      json:"delivery_phone"`
	PlacedAt        *time.Time      `json:"placed_at,omitempty"`
	Version         int             `gorm:"not null"                     json:"version"`
}

// NewOrder returns an empty PENDING order for userID.
func NewOrder(userID uint) *Order {
	t := now()
	o := &Order{UserID: userID, Status: OrderPending, TotalAmount: decimal.Zero}
	o.CreatedAt = t
	o.UpdatedAt = t
	return o
}

// Placed reports whether Place has succeeded.
func (o *Order) Placed() bool { return o.PlacedAt != nil }

// AddLine appends l and recomputes the total.
func (o *Order) AddLine(l *OrderLine) error {
	if o.Placed() {
		return invalid("order", "lines", "Lines cannot be added after the order is placed.")
	}
	if err := l.Recompute(); err != nil {
		return err
	}
	o.Lines = append(o.Lines, *l)
	return o.RecomputeTotal()
}

// RemoveLine drops the line at index i, preserving the order of the rest.
func (o *Order) RemoveLine(i int) error {
	if o.Placed() {
		return invalid("order", "lines", "Lines cannot be removed after the order is placed.")
	}
	if i < 0 || i >= len(o.Lines) {
		return invalid("order", "lines", "The line index is out of range.")
	}
	// Capped at i so append copies instead of shifting the shared array.
	o.Lines = append(o.Lines[:i:i], o.Lines[i+1:]...)
	return o.RecomputeTotal()
}

// SetLineQuantity changes the quantity of line i and recomputes the total.
func (o *Order) SetLineQuantity(i, q int) error {
	if i < 0 || i >= len(o.Lines) {
		return invalid("order", "lines", "The line index is out of range.")
	}
	if err := o.Lines[i].SetQuantity(q); err != nil {
		return err
	}
	return o.RecomputeTotal()
}

// RecomputeTotal sets TotalAmount to the sum of line totals.
func (o *Order) RecomputeTotal() error {
	total := decimal.Zero
	for i := range o.Lines {
		if err := o.Lines[i].Recompute(); err != nil {
			return err
		}
		total = total.Add(o.Lines[i].TotalPrice)
	}
	o.TotalAmount = total
	o.touch()
	return nil
}

// SetDelivery records the delivery destination and marks the order as
// needing delivery.
func (o *Order) SetDelivery(address, phone string) error {
	in := struct {
		Address string `json:"delivery_address" validate:"required"`
		Phone   string `json:"delivery_phone"   validate:"required,phone"`
	}{address, phone}
	if err := check("order", in); err != nil {
		return err
	}
	o.DeliveryAddress = address
	o.DeliveryPhone = phone
	o.NeedsDelivery = true
	o.touch()
	return nil
}

// Place freezes the lines. After Place no unit price can change.
func (o *Order) Place() error {
	if o.Placed() {
		return invalid("order", "placed_at", "The order is already placed.")
	}
	if err := check("order", o); err != nil {
		return err
	}
	if len(o.Lines) == 0 {
		return invalid("order", "lines", "The order must contain at least one line.")
	}
	if o.NeedsDelivery && (o.DeliveryAddress == "" || o.DeliveryPhone == "") {
		return invalid("order", "delivery_address", "The delivery address and phone are required.")
	}
	if err := o.RecomputeTotal(); err != nil {
		return err
	}
	for i := range o.Lines {
		o.Lines[i].Sealed = true
	}
	t := now()
	o.PlacedAt = &t
	o.touch()
	return nil
}

// TransitionTo moves the order to status to if OrderTransitions allows it.
func (o *Order) TransitionTo(to OrderStatus) error {
	if err := OrderTransitions.Check("order", o.Status, to); err != nil {
		return err
	}
	o.Status = to
	o.touch()
	return nil
}

// IsTerminal reports whether the order can no longer change status.
func (o *Order) IsTerminal() bool { return OrderTransitions.Terminal(o.Status) }

func (o *Order) touch() { o.UpdatedAt = now() }
