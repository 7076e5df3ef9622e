package metrics_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/pkg/metrics"
)

func TestObserveCheckout_LabelsOutcome(t *testing.T) {
	metrics.ObserveCheckout(nil, time.Now())
	metrics.ObserveCheckout(errors.New("boom"), time.Now())
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.CheckoutDuration))
}

func TestDump_WritesTextFormat(t *testing.T) {
	metrics.OrderTransitions.WithLabelValues("PENDING", "PAID").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.OrderTransitions.WithLabelValues("PENDING", "PAID")))

	var buf bytes.Buffer
	require.NoError(t, metrics.Dump(&buf))
	assert.Contains(t, buf.String(), `bazaar_orders_transitions_total{from="PENDING",to="PAID"} 1`)
	assert.Contains(t, buf.String(), "go_goroutines")
}
