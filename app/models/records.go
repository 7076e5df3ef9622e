package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment, Invoice, Delivery and Notification are flat status records
// written by external services. They reference an order by id only.

type Payment struct {
	gorm.Model
	OrderID        uint            `gorm:"not null;index"              json:"order_id" validate:"required"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"   validate:"gte=0"`
	Method         string          `gorm:"size:50;not null"            json:"method"   validate:"required"`
	Status         PaymentStatus   `gorm:"size:20;not null;index"      json:"status"   validate:"required,in=PENDING,COMPLETED,FAILED,REFUNDED"`
	TransactionRef string          `gorm:"size:255"                    json:"transaction_ref"`
}

// NewPayment returns a PENDING payment for the order's current total.
func NewPayment(o *Order, method string) *Payment {
	return &Payment{OrderID: o.ID, Amount: o.TotalAmount, Method: method, Status: PaymentPending}
}

type Invoice struct {
	gorm.Model
	OrderID  uint            `gorm:"not null;index"               json:"order_id" validate:"required"`
	Number   string          `gorm:"size:64;uniqueIndex;not null" json:"number"   validate:"required,max=64"`
	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null"  json:"amount"   validate:"gte=0"`
	Status   InvoiceStatus   `gorm:"size:20;not null"             json:"status"   validate:"required,in=DRAFT,ISSUED,PAID,CANCELLED"`
	IssuedAt *time.Time      `json:"issued_at,omitempty"`
}

// NewInvoice returns a DRAFT invoice for the order's current total.
func NewInvoice(o *Order, number string) *Invoice {
	return &Invoice{OrderID: o.ID, Number: number, Amount: o.TotalAmount, Status: InvoiceDraft}
}

type Delivery struct {
	gorm.Model
	OrderID        uint           `gorm:"not null;index"         json:"order_id" validate:"required"`
	Address        string         `gorm:"type:text;not null"     json:"address"  validate:"required"`
	Phone          string         `gorm:"size:32;not null"       json:"phone"    validate:"required,phone"`
	Carrier        string         `gorm:"size:100"               json:"carrier"`
	TrackingNumber string         `gorm:"size:100;index"         json:"tracking_number"`
	Status         DeliveryStatus `gorm:"size:20;not null;index" json:"status"   validate:"required,in=PENDING,IN_TRANSIT,DELIVERED,FAILED"`
	ShippedAt      *time.Time     `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time     `json:"delivered_at,omitempty"`
}

// NewDelivery copies the order's delivery destination.
func NewDelivery(o *Order) *Delivery {
	return &Delivery{OrderID: o.ID, Address: o.DeliveryAddress, Phone: o.DeliveryPhone, Status: DeliveryPending}
}

type Notification struct {
	gorm.Model
	UserID  uint   `gorm:"not null;index"    json:"user_id" validate:"required"`
	OrderID *uint  `gorm:"index"             json:"order_id,omitempty"`
	Type    string `gorm:"size:50;not null"  json:"type"    validate:"required"`
	Title   string `gorm:"size:255;not null" json:"title"   validate:"required,max=255"`
	Message string `gorm:"type:text"         json:"message"`
	Read    bool   `gorm:"not null"          json:"read"`
}

// ValidateRecord runs field rules on an ancillary record.
func ValidateRecord(entity string, rec interface{}) error { return check(entity, rec) }
