// Package observability holds service-level Prometheus collectors.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	feedComputations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sportmeet",
		Subsystem: "feed",
		Name:      "computations_total",
		Help:      "Number of feed pipeline runs, labeled by resulting state.",
	}, []string{"state"})

	feedDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sportmeet",
		Subsystem: "feed",
		Name:      "computation_duration_seconds",
		Help:      "Time spent assembling and filtering one feed request.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	activityPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sportmeet",
		Subsystem: "persistence",
		Name:      "last_activity_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity persisted to Postgres.",
	})

	rosterGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sportmeet",
		Subsystem: "roster",
		Name:      "users_total",
		Help:      "Number of user records currently held in the live roster.",
	})

	rosterWatermark = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sportmeet",
		Subsystem: "roster",
		Name:      "last_update_timestamp_seconds",
		Help:      "Unix timestamp of the most recent roster mutation applied.",
	})
)

func init() {
	prometheus.MustRegister(feedComputations, feedDuration, activityPersistGauge, rosterGauge, rosterWatermark)
}

// RecordFeedComputation counts one pipeline run and its latency.
func RecordFeedComputation(state string, elapsed time.Duration) {
	feedComputations.WithLabelValues(state).Inc()
	feedDuration.Observe(elapsed.Seconds())
}

// RecordActivityPersisted updates the persistence watermark gauge.
func RecordActivityPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityPersistGauge.Set(float64(ts.Unix()))
}

// RecordRosterSize tracks the live roster cardinality.
func RecordRosterSize(count int) {
	rosterGauge.Set(float64(count))
}

// RecordRosterUpdate updates the roster mutation watermark.
func RecordRosterUpdate(ts time.Time) {
	if ts.IsZero() {
		return
	}
	rosterWatermark.Set(float64(ts.Unix()))
}
