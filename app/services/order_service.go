package services

import (
	"context"
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/event"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
	"github.com/shashiranjanraj/bazaar/pkg/orm"
)

// OrderService reads orders and drives their status lifecycle.
type OrderService struct {
	store   *repositories.Store
	catalog *repositories.CachedCatalog
	events  *event.Dispatcher
}

func NewOrderService(store *repositories.Store, catalog *repositories.CachedCatalog, events *event.Dispatcher) *OrderService {
	return &OrderService{store: store, catalog: catalog, events: events}
}

func (s *OrderService) Find(ctx context.Context, id uint) (*models.Order, error) {
	return s.store.Orders.Find(ctx, id)
}

func (s *OrderService) ListByUser(ctx context.Context, userID uint, page, limit int) ([]models.Order, orm.Pagination, error) {
	return s.store.Orders.ListByUser(ctx, userID, page, limit)
}

// Transition moves an order to status to and applies the side effects of
// the new status on the order's records in the same transaction:
//
//	PAID                 payment COMPLETED, invoice ISSUED
//	SHIPPED / DELIVERED  delivery IN_TRANSIT / DELIVERED
//	CANCELLED / RETURNED stock returned, completed payment REFUNDED
func (s *OrderService) Transition(ctx context.Context, id uint, to models.OrderStatus) (*models.Order, error) {
	ctx = logger.With(ctx, "order_id", id)

	var (
		order    *models.Order
		from     models.OrderStatus
		restored []uint
	)
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		restored = restored[:0]
		o, err := tx.Orders.Find(ctx, id)
		if err != nil {
			return err
		}
		from = o.Status
		if err := o.TransitionTo(to); err != nil {
			return err
		}
		if err := tx.Orders.UpdateStatus(ctx, o); err != nil {
			return err
		}

		switch to {
		case models.OrderPaid:
			err = s.markPaid(ctx, tx, o)
		case models.OrderShipped, models.OrderDelivered:
			err = s.advanceDelivery(ctx, tx, o, to)
		case models.OrderCancelled, models.OrderReturned:
			restored, err = s.unwind(ctx, tx, o)
		}
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		logger.WithCtx(ctx).Warn("order transition failed", "to", to, "error", err)
		return nil, err
	}

	s.catalog.Invalidate(ctx, restored...)
	metrics.OrderTransitions.WithLabelValues(string(from), string(to)).Inc()
	logger.WithCtx(ctx).Info("order status changed", "from", from, "to", to)
	s.events.Fire(ctx, EventOrderStatusChanged, OrderStatusChanged{
		OrderID: order.ID, UserID: order.UserID, From: from, To: to, At: order.UpdatedAt,
	})
	return order, nil
}

func (s *OrderService) markPaid(ctx context.Context, tx *repositories.Store, o *models.Order) error {
	pay, err := tx.Records.PaymentForOrder(ctx, o.ID)
	switch {
	case err == nil:
		pay.Status = models.PaymentCompleted
		if err := tx.Records.SavePayment(ctx, pay); err != nil {
			return err
		}
	case !isNotFound(err):
		return err
	}

	if _, err := tx.Records.InvoiceForOrder(ctx, o.ID); err == nil {
		return nil
	} else if !isNotFound(err) {
		return err
	}
	inv := models.NewInvoice(o, models.NewSKU("INV"))
	issued := time.Now().UTC()
	inv.Status = models.InvoiceIssued
	inv.IssuedAt = &issued
	return tx.Records.CreateInvoice(ctx, inv)
}

func (s *OrderService) advanceDelivery(ctx context.Context, tx *repositories.Store, o *models.Order, to models.OrderStatus) error {
	d, err := tx.Records.DeliveryForOrder(ctx, o.ID)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	stamp := time.Now().UTC()
	if to == models.OrderShipped {
		d.Status = models.DeliveryInTransit
		d.ShippedAt = &stamp
	} else {
		d.Status = models.DeliveryDelivered
		d.DeliveredAt = &stamp
	}
	return tx.Records.SaveDelivery(ctx, d)
}

// unwind returns every line's quantity to stock and refunds a completed
// payment. It returns the ids of the products touched.
func (s *OrderService) unwind(ctx context.Context, tx *repositories.Store, o *models.Order) ([]uint, error) {
	var touched []uint
	for _, l := range o.Lines {
		var err error
		if l.VariantID != nil {
			_, err = tx.Catalog.IncrementVariantStock(ctx, *l.VariantID, l.Quantity)
		} else {
			_, err = tx.Catalog.IncrementStock(ctx, l.ProductID, l.Quantity)
		}
		if isNotFound(err) {
			logger.WithCtx(ctx).Warn("restock skipped, catalog item gone", "product_id", l.ProductID)
			continue
		}
		if err != nil {
			return nil, err
		}
		touched = append(touched, l.ProductID)
	}

	pay, err := tx.Records.PaymentForOrder(ctx, o.ID)
	switch {
	case isNotFound(err):
		return touched, nil
	case err != nil:
		return nil, err
	case pay.Status == models.PaymentCompleted:
		pay.Status = models.PaymentRefunded
		return touched, tx.Records.SavePayment(ctx, pay)
	}
	return touched, nil
}
