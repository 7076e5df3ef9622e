package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/event"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
)

// CheckoutRequest describes one checkout. Delivery details are optional;
// when either is given both are required. An empty PaymentMethod skips the
// payment record.
type CheckoutRequest struct {
	UserID          uint
	DeliveryAddress string
	DeliveryPhone   string
	PaymentMethod   string
}

// CheckoutService turns a cart into a placed order.
type CheckoutService struct {
	store   *repositories.Store
	catalog *repositories.CachedCatalog
	events  *event.Dispatcher
}

func NewCheckoutService(store *repositories.Store, catalog *repositories.CachedCatalog, events *event.Dispatcher) *CheckoutService {
	return &CheckoutService{store: store, catalog: catalog, events: events}
}

// Checkout converts the user's cart in one transaction: each line is
// snapshotted at the current selling price, its stock is taken atomically,
// the order is placed and saved and the cart is emptied. Any failure rolls
// the whole checkout back, including stock already taken.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (order *models.Order, err error) {
	start := time.Now()
	defer func() { metrics.ObserveCheckout(err, start) }()
	ctx = logger.With(ctx, "user_id", req.UserID)

	var (
		touched []uint
		low     []LowStock
	)
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		touched, low = touched[:0], low[:0]

		lines, err := tx.Carts.List(ctx, req.UserID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return &models.ValidationError{Entity: "cart", Fields: map[string]string{"lines": "The cart is empty."}}
		}

		o := models.NewOrder(req.UserID)
		if req.DeliveryAddress != "" || req.DeliveryPhone != "" {
			if err := o.SetDelivery(req.DeliveryAddress, req.DeliveryPhone); err != nil {
				return err
			}
		}

		for i := range lines {
			cl := &lines[i]
			p, err := tx.Catalog.Find(ctx, cl.ProductID)
			if err != nil {
				return err
			}
			var v *models.Variant
			if cl.VariantID != nil {
				if v, err = tx.Catalog.FindVariant(ctx, *cl.VariantID); err != nil {
					return err
				}
			}

			ol, err := cl.ToOrderLine(p, v)
			if err != nil {
				return err
			}
			if err := s.reserve(ctx, tx, p, v, cl.Quantity, &low); err != nil {
				return err
			}
			touched = append(touched, p.ID)
			if err := o.AddLine(ol); err != nil {
				return err
			}
		}

		if err := o.Place(); err != nil {
			return err
		}
		if err := tx.Orders.Create(ctx, o); err != nil {
			return err
		}
		if req.PaymentMethod != "" {
			if err := tx.Records.CreatePayment(ctx, models.NewPayment(o, req.PaymentMethod)); err != nil {
				return err
			}
		}
		if o.NeedsDelivery {
			if err := tx.Records.CreateDelivery(ctx, models.NewDelivery(o)); err != nil {
				return err
			}
		}
		if _, err := tx.Carts.Clear(ctx, req.UserID); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		logger.WithCtx(ctx).Warn("checkout failed", "error", err)
		return nil, err
	}

	s.catalog.Invalidate(ctx, touched...)
	metrics.OrdersPlaced.Inc()
	metrics.OrderRevenue.Add(order.TotalAmount.InexactFloat64())
	logger.WithCtx(ctx).Info("order placed", "order_id", order.ID, "lines", len(order.Lines), "total", order.TotalAmount.StringFixed(models.CurrencyScale))

	s.events.Fire(ctx, EventOrderPlaced, OrderPlaced{Order: order})
	for _, l := range low {
		s.events.Fire(ctx, EventLowStock, l)
	}
	return order, nil
}

// reserve takes qty from the variant when there is one, else from the
// product. A variant line still requires an active parent.
func (s *CheckoutService) reserve(ctx context.Context, tx *repositories.Store, p *models.Product, v *models.Variant, qty int, low *[]LowStock) error {
	var err error
	switch {
	case v != nil && !p.IsActive:
		err = &repositories.StockError{Entity: "product", ID: p.ID, Have: p.Stock, Want: qty, Inactive: true}
	case v != nil:
		_, err = tx.Catalog.DecrementVariantStock(ctx, v.ID, qty)
	default:
		var after *models.Product
		after, err = tx.Catalog.DecrementStock(ctx, p.ID, qty)
		if err == nil && after.IsLowStock() && after.Stock+qty > models.LowStockThreshold {
			*low = append(*low, LowStock{ProductID: after.ID, ShopID: after.ShopID, Name: after.Name, Stock: after.Stock})
		}
	}
	if se, ok := repositories.IsStockError(err); ok {
		reason := "insufficient"
		if se.Inactive {
			reason = "unavailable"
		}
		metrics.StockRejections.WithLabelValues(reason).Inc()
		return fmt.Errorf("checkout: %w", err)
	}
	return err
}
