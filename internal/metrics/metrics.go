package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusIgnored = "ignored"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	WebhookEventsTotal        *prometheus.CounterVec
	CommandsTotal             *prometheus.CounterVec
	TableResetDurationSeconds *prometheus.HistogramVec
}

// New creates a new Metrics instance with all metrics registered on registry.
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		WebhookEventsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopping_webhook_events_total",
				Help: "Total number of webhook events by event type and status",
			},
			[]string{"type", "status"}, // status: success, error, ignored
		),

		CommandsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopping_commands_total",
				Help: "Total number of classified commands by intent and status",
			},
			[]string{"intent", "status"},
		),

		TableResetDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shopping_table_reset_duration_seconds",
				Help:    "Duration of delete-all runs by clear strategy",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120}, // drop wait defaults to 2m
			},
			[]string{"strategy", "status"},
		),
	}
}

// RecordWebhookEvent records a handled webhook event
func (m *Metrics) RecordWebhookEvent(eventType, status string) {
	if eventType == "" {
		eventType = "none"
	}
	m.WebhookEventsTotal.WithLabelValues(eventType, status).Inc()
}

// RecordCommand records a dispatched command
func (m *Metrics) RecordCommand(intent, status string) {
	m.CommandsTotal.WithLabelValues(intent, status).Inc()
}

// RecordTableReset records a delete-all run
func (m *Metrics) RecordTableReset(strategy, status string, d time.Duration) {
	m.TableResetDurationSeconds.WithLabelValues(strategy, status).Observe(d.Seconds())
}
