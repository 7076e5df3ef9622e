package models_test

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/models"
)

func TestOrderLine_RecomputesOnEitherSide(t *testing.T) {
	l, err := models.NewOrderLine(1, 2, 3, dec("2500"))
	require.NoError(t, err)
	assert.True(t, l.TotalPrice.Equal(dec("7500")))

	require.NoError(t, l.SetQuantity(5))
	assert.True(t, l.TotalPrice.Equal(dec("12500")))

	require.NoError(t, l.SetUnitPrice(dec("2000")))
	assert.True(t, l.TotalPrice.Equal(dec("10000")))
}

func TestOrderLine_UnsetSideSuppressesRecompute(t *testing.T) {
	l := &models.OrderLine{ProductID: 1}
	require.NoError(t, l.SetQuantity(4))
	assert.True(t, l.TotalPrice.IsZero(), "no unit price yet")

	require.NoError(t, l.SetUnitPrice(dec("12.50")))
	assert.True(t, l.TotalPrice.Equal(dec("50")))

	l2 := &models.OrderLine{ProductID: 1}
	require.NoError(t, l2.SetUnitPrice(dec("3.10")))
	assert.True(t, l2.TotalPrice.IsZero(), "no quantity yet")
	require.NoError(t, l2.SetQuantity(3))
	assert.True(t, l2.TotalPrice.Equal(dec("9.30")))
}

func TestOrderLine_InvariantAfterRandomMutations(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	l, err := models.NewOrderLine(1, 1, 1, dec("0.01"))
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		if r.Intn(2) == 0 {
			require.NoError(t, l.SetQuantity(1+r.Intn(50)))
		} else {
			cents := decimal.New(int64(r.Intn(1_000_000)), -2)
			require.NoError(t, l.SetUnitPrice(cents))
		}
		want := l.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(l.Quantity)))
		require.True(t, l.TotalPrice.Equal(want), "step %d: %s != %s", i, l.TotalPrice, want)
	}
}

func TestOrderLine_RejectsInvalidInput(t *testing.T) {
	_, err := models.NewOrderLine(1, 1, 0, dec("10"))
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = models.NewOrderLine(1, 1, 1, dec("-1"))
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = models.NewOrderLine(1, 0, 1, dec("1"))
	assert.True(t, errors.Is(err, models.ErrValidation))

	empty := &models.OrderLine{}
	assert.True(t, errors.Is(empty.Recompute(), models.ErrValidation), "missing inputs are explicit errors")
}

func TestOrder_TotalFollowsLines(t *testing.T) {
	o := models.NewOrder(9)
	assert.Equal(t, models.OrderPending, o.Status)

	a, _ := models.NewOrderLine(0, 1, 2, dec("100.25"))
	b, _ := models.NewOrderLine(0, 2, 1, dec("49.50"))
	c, _ := models.NewOrderLine(0, 3, 3, dec("1"))
	require.NoError(t, o.AddLine(a))
	require.NoError(t, o.AddLine(b))
	require.NoError(t, o.AddLine(c))
	assert.True(t, o.TotalAmount.Equal(dec("253.00")))

	require.NoError(t, o.SetLineQuantity(1, 2))
	assert.True(t, o.TotalAmount.Equal(dec("302.50")))

	require.NoError(t, o.RemoveLine(0))
	assert.True(t, o.TotalAmount.Equal(dec("102")))
	require.Len(t, o.Lines, 2)
	assert.Equal(t, uint(2), o.Lines[0].ProductID, "order preserved")
	assert.Equal(t, uint(3), o.Lines[1].ProductID)

	assert.Error(t, o.RemoveLine(5))
}

func TestOrder_RemoveLineLeavesEarlierSliceIntact(t *testing.T) {
	o := models.NewOrder(9)
	for pid := uint(1); pid <= 3; pid++ {
		l, err := models.NewOrderLine(0, pid, 1, dec("10"))
		require.NoError(t, err)
		require.NoError(t, o.AddLine(l))
	}
	before := o.Lines

	require.NoError(t, o.RemoveLine(0))
	require.Len(t, o.Lines, 2)
	assert.Equal(t, uint(2), o.Lines[0].ProductID)

	require.Len(t, before, 3)
	assert.Equal(t, []uint{1, 2, 3}, []uint{before[0].ProductID, before[1].ProductID, before[2].ProductID})
}

func TestOrder_PlaceSealsLines(t *testing.T) {
	o := models.NewOrder(9)
	require.True(t, errors.Is(o.Place(), models.ErrValidation), "empty order")

	l, _ := models.NewOrderLine(0, 1, 2, dec("10"))
	require.NoError(t, o.AddLine(l))
	require.NoError(t, o.Place())
	assert.True(t, o.Placed())

	assert.True(t, errors.Is(o.Lines[0].SetUnitPrice(dec("1")), models.ErrValidation))
	assert.True(t, errors.Is(o.Lines[0].SetQuantity(9), models.ErrValidation))
	assert.True(t, o.Lines[0].UnitPrice.Decimal.Equal(dec("10")))

	extra, _ := models.NewOrderLine(0, 2, 1, dec("5"))
	assert.Error(t, o.AddLine(extra))
	assert.Error(t, o.Place(), "already placed")
}

func TestOrder_PlaceRequiresDeliveryDetails(t *testing.T) {
	o := models.NewOrder(9)
	l, _ := models.NewOrderLine(0, 1, 1, dec("10"))
	require.NoError(t, o.AddLine(l))
	o.NeedsDelivery = true
	assert.True(t, errors.Is(o.Place(), models.ErrValidation))

	assert.Error(t, o.SetDelivery("", "+15550100"))
	require.NoError(t, o.SetDelivery("12 Market St", "+1 555 0100"))
	require.NoError(t, o.Place())
}

func TestOrder_Transitions(t *testing.T) {
	o := models.NewOrder(1)
	require.NoError(t, o.TransitionTo(models.OrderCancelled))
	assert.True(t, o.IsTerminal())

	o = models.NewOrder(1)
	for _, s := range []models.OrderStatus{models.OrderConfirmed, models.OrderPaid, models.OrderShipped, models.OrderDelivered} {
		require.NoError(t, o.TransitionTo(s), "to %s", s)
	}
	err := o.TransitionTo(models.OrderReturned)
	var terr *models.TransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "DELIVERED", terr.From)
	assert.True(t, errors.Is(err, models.ErrInvalidTransition))
	assert.Equal(t, models.OrderDelivered, o.Status)
}

func TestOrder_TransitionTableTerminalsHaveNoExits(t *testing.T) {
	terminal := []models.OrderStatus{models.OrderDelivered, models.OrderCancelled, models.OrderReturned}
	for _, from := range terminal {
		for to := range models.OrderTransitions {
			assert.False(t, models.OrderTransitions.Allows(from, to), "%s → %s", from, to)
		}
	}
	for from, exits := range models.OrderTransitions {
		if models.OrderTransitions.Terminal(from) {
			continue
		}
		assert.Contains(t, exits, models.OrderCancelled, "cancel from %s", from)
		assert.Contains(t, exits, models.OrderReturned, "return from %s", from)
	}
	assert.False(t, models.OrderTransitions.Allows(models.OrderPending, models.OrderDelivered))
}

func TestOrder_MutationsRefreshUpdatedAt(t *testing.T) {
	o := models.NewOrder(1)
	stale := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	o.UpdatedAt = stale
	l, _ := models.NewOrderLine(0, 1, 1, dec("1"))
	require.NoError(t, o.AddLine(l))
	assert.True(t, o.UpdatedAt.After(stale))

	o.UpdatedAt = stale
	require.NoError(t, o.SetDelivery("addr", "+15550100"))
	assert.True(t, o.UpdatedAt.After(stale))

	o.UpdatedAt = stale
	require.NoError(t, o.TransitionTo(models.OrderConfirmed))
	assert.True(t, o.UpdatedAt.After(stale))

	o.UpdatedAt = stale
	require.Error(t, o.TransitionTo(models.OrderPending))
	assert.Equal(t, stale, o.UpdatedAt, "rejected transition leaves the order untouched")
}

func TestShopAndVendorTransitions(t *testing.T) {
	s := &models.Shop{VendorID: 1, Name: "Corner", Address: "1 Main", Phone: "+15550100"}
	require.NoError(t, s.Validate())
	assert.Equal(t, models.ShopPending, s.Status)
	assert.False(t, s.Open())
	require.NoError(t, s.TransitionTo(models.ShopApproved))
	assert.True(t, s.Open())
	require.NoError(t, s.TransitionTo(models.ShopSuspended))
	assert.True(t, errors.Is(s.TransitionTo(models.ShopRejected), models.ErrInvalidTransition))

	v := &models.Vendor{UserID: 1, BusinessName: "Corner Ltd", Phone: "+15550100"}
	require.NoError(t, v.Validate())
	require.NoError(t, v.TransitionTo(models.VendorRejected))
	assert.True(t, errors.Is(v.TransitionTo(models.VendorApproved), models.ErrInvalidTransition))
}

func TestUserPassword(t *testing.T) {
	u := &models.User{Name: "Asha", Email: "asha@example.com", Phone: "+919876543210"}
	require.NoError(t, u.Validate())
	assert.Equal(t, models.RoleCustomer, u.Role)

	assert.True(t, errors.Is(u.SetPassword("short"), models.ErrValidation))
	require.NoError(t, u.SetPassword("correct horse"))
	assert.NotEqual(t, "correct horse", u.PasswordHash)
	assert.True(t, u.CheckPassword("correct horse"))
	assert.False(t, u.CheckPassword("wrong horse"))
}
