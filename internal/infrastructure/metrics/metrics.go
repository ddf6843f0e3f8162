package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Streak-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "streaks",
			Subsystem: "streak_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "streaks",
			Subsystem: "streak_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// Telegram updates by outcome (processed, ignored, duplicate, failed)
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "streaks",
			Subsystem: "streak_api",
			Name:      "updates_total",
			Help:      "Telegram updates received by outcome",
		},
		[]string{"result"},
	)

	// Bot commands dispatched
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "streaks",
			Subsystem: "streak_api",
			Name:      "commands_total",
			Help:      "Bot commands dispatched by kind and status",
		},
		[]string{"command", "status"},
	)

	// Outbound Telegram messages
	OutboundMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "streaks",
			Subsystem: "streak_api",
			Name:      "outbound_messages_total",
			Help:      "Outbound Telegram sendMessage calls by status",
		},
		[]string{"status"},
	)

	OutboundDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "streaks",
			Subsystem: "streak_api",
			Name:      "outbound_duration_seconds",
			Help:      "Telegram sendMessage latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpdate records the outcome of one webhook update
func RecordUpdate(result string) {
	UpdatesTotal.WithLabelValues(result).Inc()
}

// RecordCommand records a dispatched bot command
func RecordCommand(command, status string) {
	CommandsTotal.WithLabelValues(command, status).Inc()
}

// RecordOutbound records a sendMessage call
func RecordOutbound(status string, durationSec float64) {
	OutboundMessagesTotal.WithLabelValues(status).Inc()
	OutboundDuration.Observe(durationSec)
}

// Handler exposes the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
