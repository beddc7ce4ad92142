package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gymfeed",
		Name:      "feed_build_duration_seconds",
		Help:      "Time spent assembling one feed page.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	likeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymfeed",
		Name:      "like_toggles_total",
		Help:      "Like toggles by resulting state.",
	}, []string{"state"})

	followChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymfeed",
		Name:      "follow_changes_total",
		Help:      "Follow graph mutations.",
	}, []string{"op"})

	commentChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymfeed",
		Name:      "comment_changes_total",
		Help:      "Comments added or removed.",
	}, []string{"op"})

	outboxDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gymfeed",
		Subsystem: "outbox",
		Name:      "events_delivered_total",
		Help:      "Outbox events published to the broker.",
	})

	outboxFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gymfeed",
		Subsystem: "outbox",
		Name:      "events_failed_total",
		Help:      "Outbox publish attempts that failed.",
	})

	outboxLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gymfeed",
		Subsystem: "outbox",
		Name:      "delivery_latency_seconds",
		Help:      "Delay between event creation and publish.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	directoryLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymfeed",
		Name:      "directory_db_loads_total",
		Help:      "Snapshot lookups that fell through to the database.",
	}, []string{"kind"})
)
