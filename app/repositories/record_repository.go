package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
)

// RecordRepository persists the flat per-order records: payments,
// invoices, deliveries and notifications.
type RecordRepository struct {
	db *gorm.DB
}

func (r *RecordRepository) create(ctx context.Context, entity string, rec interface{}) error {
	if err := models.ValidateRecord(entity, rec); err != nil {
		return err
	}
	return translate(entity, r.db.WithContext(ctx).Create(rec).Error)
}

func (r *RecordRepository) save(ctx context.Context, entity string, rec interface{}) error {
	if err := models.ValidateRecord(entity, rec); err != nil {
		return err
	}
	return translate(entity, r.db.WithContext(ctx).Save(rec).Error)
}

// latestForOrder loads the newest record of dest's type for orderID.
func (r *RecordRepository) latestForOrder(ctx context.Context, entity string, orderID uint, dest interface{}) error {
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id desc").First(dest).Error
	return translate(fmt.Sprintf("%s for order %d", entity, orderID), err)
}

func (r *RecordRepository) CreatePayment(ctx context.Context, p *models.Payment) error {
	return r.create(ctx, "payment", p)
}

func (r *RecordRepository) SavePayment(ctx context.Context, p *models.Payment) error {
	return r.save(ctx, "payment", p)
}

func (r *RecordRepository) PaymentForOrder(ctx context.Context, orderID uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.latestForOrder(ctx, "payment", orderID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RecordRepository) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	return r.create(ctx, "invoice", inv)
}

func (r *RecordRepository) InvoiceForOrder(ctx context.Context, orderID uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.latestForOrder(ctx, "invoice", orderID, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *RecordRepository) CreateDelivery(ctx context.Context, d *models.Delivery) error {
	return r.create(ctx, "delivery", d)
}

func (r *RecordRepository) SaveDelivery(ctx context.Context, d *models.Delivery) error {
	return r.save(ctx, "delivery", d)
}

func (r *RecordRepository) DeliveryForOrder(ctx context.Context, orderID uint) (*models.Delivery, error) {
	var d models.Delivery
	if err := r.latestForOrder(ctx, "delivery", orderID, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *RecordRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.create(ctx, "notification", n)
}

// Notifications returns the user's notifications, newest first.
func (r *RecordRepository) Notifications(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where(map[string]interface{}{"read": false})
	}
	var out []models.Notification
	if err := q.Order("id desc").Find(&out).Error; err != nil {
		return nil, translate("notification", err)
	}
	return out, nil
}
