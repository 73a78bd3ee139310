package observability

import "github.com/prometheus/client_golang/prometheus"

// Bot-level collectors. Label sets are fixed and small.
var (
	// UpdatesTotal counts inbound updates by kind (message, callback, other).
	UpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Inbound Telegram updates by kind.",
		},
		[]string{"kind"},
	)

	// UpdatesDeduplicated counts updates skipped because their id was already processed.
	UpdatesDeduplicated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_updates_deduplicated_total",
			Help: "Updates dropped as redeliveries.",
		},
	)

	// CompletionsTotal counts completion calls by outcome (ok, error, skipped).
	CompletionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_completions_total",
			Help: "Chat completion requests by outcome.",
		},
		[]string{"outcome"},
	)

	// BroadcastMessagesTotal counts broadcast deliveries by outcome (delivered, failed).
	BroadcastMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_broadcast_messages_total",
			Help: "Broadcast deliveries by outcome.",
		},
		[]string{"outcome"},
	)

	// QueueDepth gauges jobs waiting in the webhook work queue.
	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_queue_depth",
			Help: "Updates waiting in the webhook work queue.",
		},
	)
)

func init() {
	prometheus.MustRegister(UpdatesTotal, UpdatesDeduplicated, CompletionsTotal, BroadcastMessagesTotal, QueueDepth)
}
