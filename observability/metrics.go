package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "st_shield"

var (
	OrdersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Provider orders created, by plan",
		},
		[]string{"plan"},
	)

	PaymentVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_verifications_total",
			Help:      "Payment verification outcomes",
		},
		[]string{"outcome"},
	)

	EmailDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_deliveries_total",
			Help:      "Email delivery attempts by kind and result",
		},
		[]string{"kind", "result"},
	)

	EmailQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "email_queue_depth",
			Help:      "Jobs waiting in the in-process email queue",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events by type and result",
		},
		[]string{"event_type", "result"},
	)

	ExportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_generated_total",
			Help:      "Policy exports by format",
		},
		[]string{"format"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Latency of payment provider calls",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)
