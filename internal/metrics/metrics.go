// Package metrics exposes Prometheus counters for the purchase flow.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeAuthorized   = "authorized"
	OutcomeNotFound     = "course_not_found"
	OutcomeAlreadyOwned = "already_owned"
	OutcomeGatewayError = "gateway_error"
	OutcomeError        = "error"
	OutcomeCreated      = "created"
)

// Recorder is what services and workers report to.
type Recorder interface {
	RecordBuy(outcome string)
	RecordGatewayCall(provider string, duration time.Duration, err error)
	RecordOrder(outcome string)
	RecordEntitlementGranted()
	RecordOrderRetry()
	RecordCheckoutsExpired(count int64)
}

type Collector struct {
	buys                *prometheus.CounterVec
	gatewayLatency      *prometheus.HistogramVec
	gatewayErrors       *prometheus.CounterVec
	orders              *prometheus.CounterVec
	entitlementsGranted prometheus.Counter
	orderRetries        prometheus.Counter
	checkoutsExpired    prometheus.Counter
}

// NewCollector registers the marketplace metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		buys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_buy_requests_total",
			Help: "Purchase initiations by outcome.",
		}, []string{"outcome"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketplace_payment_authorization_seconds",
			Help:    "Latency of payment authorization calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		gatewayErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_payment_authorization_errors_total",
			Help: "Failed payment authorization calls.",
		}, []string{"provider"}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_orders_total",
			Help: "Order records by outcome.",
		}, []string{"outcome"}),
		entitlementsGranted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_entitlements_granted_total",
			Help: "Ledger rows written.",
		}),
		orderRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_order_tx_retries_total",
			Help: "Order transactions retried after a transient store error.",
		}),
		checkoutsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_checkouts_expired_total",
			Help: "Authorized checkouts expired by the sweep.",
		}),
	}

	reg.MustRegister(
		c.buys,
		c.gatewayLatency,
		c.gatewayErrors,
		c.orders,
		c.entitlementsGranted,
		c.orderRetries,
		c.checkoutsExpired,
	)

	return c
}

func (c *Collector) RecordBuy(outcome string) {
	c.buys.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordGatewayCall(provider string, duration time.Duration, err error) {
	c.gatewayLatency.WithLabelValues(provider).Observe(duration.Seconds())
	if err != nil {
		c.gatewayErrors.WithLabelValues(provider).Inc()
	}
}

func (c *Collector) RecordOrder(outcome string) {
	c.orders.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordEntitlementGranted() {
	c.entitlementsGranted.Inc()
}

func (c *Collector) RecordOrderRetry() {
	c.orderRetries.Inc()
}

func (c *Collector) RecordCheckoutsExpired(count int64) {
	c.checkoutsExpired.Add(float64(count))
}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordBuy(string)                               {}
func (Nop) RecordGatewayCall(string, time.Duration, error) {}
func (Nop) RecordOrder(string)                             {}
func (Nop) RecordEntitlementGranted()                      {}
func (Nop) RecordOrderRetry()                              {}
func (Nop) RecordCheckoutsExpired(int64)                   {}
