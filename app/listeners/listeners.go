// Package listeners subscribes the side effects of order events: the audit
// trail, customer notifications and low-stock alerts. Notifications go
// through the job queue.
package listeners

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/bazaar/app/jobs"
	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/audit"
	"github.com/shashiranjanraj/bazaar/pkg/event"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
)

// Register wires every listener onto d.
func Register(d *event.Dispatcher, q *queue.Manager, trail audit.Trail) {
	d.Listen(services.EventOrderPlaced, auditPlaced(trail))
	d.Listen(services.EventOrderStatusChanged, auditStatus(trail))
	d.Listen(services.EventOrderPlaced, notifyPlaced(q))
	d.Listen(services.EventOrderStatusChanged, notifyStatus(q))
	d.ListenAsync(services.EventLowStock, lowStock)
}

func auditPlaced(trail audit.Trail) event.Handler {
	return func(ctx context.Context, payload interface{}) {
		evt, ok := payload.(services.OrderPlaced)
		if !ok {
			return
		}
		o := evt.Order
		err := trail.Record(ctx, audit.Entry{
			Time:     *o.PlacedAt,
			Entity:   "order",
			EntityID: o.ID,
			Action:   "placed",
			To:       string(o.Status),
			UserID:   o.UserID,
			Attrs: map[string]string{
				"total": o.TotalAmount.StringFixed(models.CurrencyScale),
				"lines": fmt.Sprint(len(o.Lines)),
			},
		})
		if err != nil {
			logger.WithCtx(ctx).Error("audit: record failed", "order_id", o.ID, "error", err)
		}
	}
}

func auditStatus(trail audit.Trail) event.Handler {
	return func(ctx context.Context, payload interface{}) {
		evt, ok := payload.(services.OrderStatusChanged)
		if !ok {
			return
		}
		err := trail.Record(ctx, audit.Entry{
			Time:     evt.At,
			Entity:   "order",
			EntityID: evt.OrderID,
			Action:   "status_changed",
			From:     string(evt.From),
			To:       string(evt.To),
			UserID:   evt.UserID,
		})
		if err != nil {
			logger.WithCtx(ctx).Error("audit: record failed", "order_id", evt.OrderID, "error", err)
		}
	}
}

func notifyPlaced(q *queue.Manager) event.Handler {
	return func(ctx context.Context, payload interface{}) {
		evt, ok := payload.(services.OrderPlaced)
		if !ok {
			return
		}
		o := evt.Order
		id := o.ID
		notify(ctx, q, &jobs.SendNotification{
			UserID:  o.UserID,
			OrderID: &id,
			Type:    "order",
			Title:   fmt.Sprintf("Order #%d placed", o.ID),
			Message: fmt.Sprintf("We received your order of %d item(s) totalling %s.", len(o.Lines), o.TotalAmount.StringFixed(models.CurrencyScale)),
		})
	}
}

func notifyStatus(q *queue.Manager) event.Handler {
	return func(ctx context.Context, payload interface{}) {
		evt, ok := payload.(services.OrderStatusChanged)
		if !ok {
			return
		}
		id := evt.OrderID
		notify(ctx, q, &jobs.SendNotification{
			UserID:  evt.UserID,
			OrderID: &id,
			Type:    "order",
			Title:   fmt.Sprintf("Order #%d is %s", evt.OrderID, evt.To),
		})
	}
}

func notify(ctx context.Context, q *queue.Manager, job *jobs.SendNotification) {
	if err := q.Dispatch(ctx, jobs.SendNotificationJob, job); err != nil {
		logger.WithCtx(ctx).Error("notification: dispatch failed", "user_id", job.UserID, "error", err)
	}
}

func lowStock(ctx context.Context, payload interface{}) {
	evt, ok := payload.(services.LowStock)
	if !ok {
		return
	}
	metrics.LowStockAlerts.Inc()
	logger.WithCtx(ctx).Warn("product stock is low",
		"product_id", evt.ProductID, "shop_id", evt.ShopID, "name", evt.Name, "stock", evt.Stock)
}
