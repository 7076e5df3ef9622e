package models

// Transitions is an explicit legal-edge table for a status enum. A state
// with no entry (or an empty entry) is terminal.
type Transitions[S ~string] map[S][]S

// Allows reports whether to is reachable from from in one step.
func (t Transitions[S]) Allows(from, to S) bool {
	for _, s := range t[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (t Transitions[S]) Terminal(s S) bool { return len(t[s]) == 0 }

// Check returns a *TransitionError when from → to is not in the table.
func (t Transitions[S]) Check(entity string, from, to S) error {
	if !t.Allows(from, to) {
		return &TransitionError{Entity: entity, From: string(from), To: string(to)}
	}
	return nil
}

// ─── Order ────────────────────────────────────────────────────────────────────

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderReturned  OrderStatus = "RETURNED"
)

// OrderTransitions is the default order lifecycle: the forward chain
// PENDING → CONFIRMED → SHIPPED → DELIVERED, the PAID marker reachable
// before shipment, and CANCELLED/RETURNED from every non-terminal state.
var OrderTransitions = Transitions[OrderStatus]{
	OrderPending:   {OrderConfirmed, OrderPaid, OrderCancelled, OrderReturned},
	OrderPaid:      {OrderConfirmed, OrderShipped, OrderCancelled, OrderReturned},
	OrderConfirmed: {OrderPaid, OrderShipped, OrderCancelled, OrderReturned},
	OrderShipped:   {OrderDelivered, OrderCancelled, OrderReturned},
	OrderDelivered: nil,
	OrderCancelled: nil,
	OrderReturned:  nil,
}

// ─── Shop / Vendor ────────────────────────────────────────────────────────────

type ShopStatus string

const (
	ShopPending   ShopStatus = "PENDING"
	ShopApproved  ShopStatus = "APPROVED"
	ShopRejected  ShopStatus = "REJECTED"
	ShopSuspended ShopStatus = "SUSPENDED"
)

var ShopTransitions = Transitions[ShopStatus]{
	ShopPending:   {ShopApproved, ShopRejected},
	ShopApproved:  {ShopSuspended},
	ShopSuspended: {ShopApproved},
	ShopRejected:  nil,
}

type VendorStatus string

const (
	VendorPending   VendorStatus = "PENDING"
	VendorApproved  VendorStatus = "APPROVED"
	VendorRejected  VendorStatus = "REJECTED"
	VendorSuspended VendorStatus = "SUSPENDED"
)

var VendorTransitions = Transitions[VendorStatus]{
	VendorPending:   {VendorApproved, VendorRejected},
	VendorApproved:  {VendorSuspended},
	VendorSuspended: {VendorApproved},
	VendorRejected:  nil,
}

// ─── Catalog ──────────────────────────────────────────────────────────────────

type ProductStatus string

const (
	ProductActive       ProductStatus = "ACTIVE"
	ProductInactive     ProductStatus = "INACTIVE"
	ProductOutOfStock   ProductStatus = "OUT_OF_STOCK"
	ProductDiscontinued ProductStatus = "DISCONTINUED"
)

// ─── Ancillary records ────────────────────────────────────────────────────────

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "PENDING"
	DeliveryInTransit DeliveryStatus = "IN_TRANSIT"
	DeliveryDelivered DeliveryStatus = "DELIVERED"
	DeliveryFailed    DeliveryStatus = "FAILED"
)

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "DRAFT"
	InvoiceIssued    InvoiceStatus = "ISSUED"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)
