package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/models"
)

func TestRecords_PaymentAndNotifications(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	o := placedOrder(t, 2, 1)
	require.NoError(t, s.Orders.Create(ctx, o))

	pay := models.NewPayment(o, "card")
	require.NoError(t, s.Records.CreatePayment(ctx, pay))
	pay.Status = models.PaymentCompleted
	require.NoError(t, s.Records.SavePayment(ctx, pay))

	got, err := s.Records.PaymentForOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, got.Status)
	assert.True(t, got.Amount.Equal(o.TotalAmount))

	_, err = s.Records.InvoiceForOrder(ctx, o.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	bad := &models.Payment{OrderID: o.ID, Method: "card", Status: "LOST"}
	assert.ErrorIs(t, s.Records.CreatePayment(ctx, bad), models.ErrValidation)

	oid := o.ID
	require.NoError(t, s.Records.CreateNotification(ctx, &models.Notification{UserID: 2, OrderID: &oid, Type: "order", Title: "Placed"}))
	require.NoError(t, s.Records.CreateNotification(ctx, &models.Notification{UserID: 2, Type: "promo", Title: "Sale", Read: true}))

	unread, err := s.Records.Notifications(ctx, 2, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "Placed", unread[0].Title)

	all, err := s.Records.Notifications(ctx, 2, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
