package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

// Metrics carries the counters the reconciliation pipeline reports on.
// Each instance owns its registry so tests can build isolated copies.
type Metrics struct {
	Registry *prometheus.Registry

	WebhookEvents   *prometheus.CounterVec
	Reconciliations *prometheus.CounterVec
	SalesCreated    prometheus.Counter
	DeadLetters     prometheus.Counter
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		WebhookEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tienda",
			Name:      "webhook_events_total",
			Help:      "Webhook deliveries received, by event type and outcome.",
		}, []string{"type", "outcome"}),
		Reconciliations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tienda",
			Name:      "reconciliations_total",
			Help:      "Order reconciliations, by resulting status.",
		}, []string{"status"}),
		SalesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tienda",
			Name:      "sales_materialized_total",
			Help:      "Sale rows created from approved orders.",
		}),
		DeadLetters: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tienda",
			Name:      "reconcile_failures_total",
			Help:      "Reconciliations parked in the dead-letter table.",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tienda",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tienda",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

var Module = fx.Module("observability.metrics",
	fx.Provide(New),
)
