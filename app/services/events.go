package services

import (
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
)

// Event names fired on the dispatcher after the owning transaction commits.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
	EventLowStock           = "catalog.low_stock"
)

type OrderPlaced struct {
	Order *models.Order
}

type OrderStatusChanged struct {
	OrderID uint
	UserID  uint
	From    models.OrderStatus
	To      models.OrderStatus
	At      time.Time
}

// LowStock is fired when a decrement moves a product into the low-stock
// band.
type LowStock struct {
	ProductID uint
	ShopID    uint
	Name      string
	Stock     int
}
