// Package metrics provides Prometheus instrumentation for the order core.
//
// Everything registers against DefaultRegistry. The CLI prints the registry
// with Dump after a command when --metrics is passed; a long-running host
// can mount promhttp.HandlerFor(DefaultRegistry, ...) instead.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
)

const namespace = "bazaar"

var (
	// OrdersPlaced counts orders that passed checkout.
	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "placed_total",
		Help:      "Total orders placed.",
	})

	// OrderRevenue sums the totals of placed orders, in currency units.
	OrderRevenue = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "revenue_total",
		Help:      "Sum of placed order totals.",
	})

	// OrderTransitions counts successful status changes.
	OrderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "transitions_total",
			Help:      "Order status transitions.",
		},
		[]string{"from", "to"},
	)

	// StockRejections counts checkouts refused for stock reasons.
	StockRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "stock_rejections_total",
			Help:      "Stock decrements refused.",
		},
		[]string{"reason"}, // "insufficient" | "unavailable"
	)

	// LowStockAlerts counts products that dropped into the low-stock band.
	LowStockAlerts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "catalog",
		Name:      "low_stock_alerts_total",
		Help:      "Products that fell to or below the low-stock threshold.",
	})

	// CheckoutDuration tracks checkout latency by outcome.
	CheckoutDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "duration_seconds",
			Help:      "Duration of checkout in seconds.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"outcome"}, // "ok" | "error"
	)

	// CacheHits / CacheMisses track catalog cache effectiveness.
	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total cache hits.",
		},
		[]string{"cache"},
	)
	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total cache misses.",
		},
		[]string{"cache"},
	)
)

// DefaultRegistry holds every collector in this package plus the Go and
// process collectors.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		OrdersPlaced,
		OrderRevenue,
		OrderTransitions,
		StockRejections,
		LowStockAlerts,
		CheckoutDuration,
		CacheHits,
		CacheMisses,
	)
}

// ObserveCheckout records a checkout duration:
//
//	defer func() { metrics.ObserveCheckout(err, time.Now()) }()
func ObserveCheckout(err error, start time.Time) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	CheckoutDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// Dump writes the registry in the Prometheus text format.
func Dump(w io.Writer) error {
	families, err := DefaultRegistry.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gather: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
