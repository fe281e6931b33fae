package outbox

import "github.com/prometheus/client_golang/prometheus"

var (
	deliveredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sportmeet",
		Subsystem: "outbox",
		Name:      "events_delivered_total",
		Help:      "Number of outbox events successfully published to Kafka.",
	})

	failedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sportmeet",
		Subsystem: "outbox",
		Name:      "events_failed_total",
		Help:      "Number of outbox events that failed to publish and routed to DLQ.",
	})

	batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sportmeet",
		Subsystem: "outbox",
		Name:      "batch_duration_seconds",
		Help:      "Time spent fetching, delivering, and marking outbox batches.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	dlqCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sportmeet",
		Subsystem: "outbox",
		Name:      "events_dlq_total",
		Help:      "Number of outbox events routed to the dead-letter queue, labeled by topic.",
	}, []string{"topic"})

	dlqRequeuedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sportmeet",
		Subsystem: "outbox",
		Name:      "dlq_requeued_total",
		Help:      "Number of DLQ entries re-queued for delivery.",
	})

	dlqQuarantinedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sportmeet",
		Subsystem: "outbox",
		Name:      "dlq_quarantined_total",
		Help:      "Number of DLQ entries quarantined after exhausting retries.",
	})
)

func init() {
	prometheus.MustRegister(deliveredCounter, failedCounter, batchDuration, dlqCounter, dlqRequeuedCounter, dlqQuarantinedCounter)
}
