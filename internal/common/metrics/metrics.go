package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HandlerEventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handler_events_processed_total",
			Help: "Total number of pipeline events processed by handler and result",
		},
		[]string{"handler", "result"},
	)

	HandlerOperationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handler_operations_failed_total",
			Help: "Total number of failed leaf operations by handler and operation",
		},
		[]string{"handler", "operation"},
	)

	HandlerEventDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "handler_event_duration_seconds",
			Help: "Duration of event processing in seconds",
		},
		[]string{"handler"},
	)

	HandlerEventsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "handler_events_active",
			Help: "Number of events currently being processed per handler",
		},
		[]string{"handler"},
	)
)
