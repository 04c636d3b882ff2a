// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Feed metrics track RSS fetch behavior per source
var (
	// ArticlesFetchedTotal counts articles fetched from each feed
	ArticlesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_fetched_total",
			Help: "Total number of articles fetched from feeds",
		},
		[]string{"feed"},
	)

	// FeedFetchDuration measures time to fetch and parse a feed
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "Time taken to fetch and parse a feed",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"feed"},
	)

	// FeedFetchErrors counts errors during feed fetching
	FeedFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetch_errors_total",
			Help: "Total number of feed fetch errors",
		},
		[]string{"feed", "error_type"},
	)
)

// Scoring metrics track scorer backend behavior
var (
	// ArticlesScoredTotal counts scored articles by backend and status
	ArticlesScoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_scored_total",
			Help: "Total number of articles scored",
		},
		[]string{"backend", "status"},
	)

	// ScoringDuration measures time to score one article
	ScoringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scoring_duration_seconds",
			Help:    "Time taken to score an article",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"backend"},
	)

	// ScoringFallbacksTotal counts model-backed scoring calls that fell
	// back to the rule scorer
	ScoringFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_fallbacks_total",
			Help: "Total number of scoring calls that fell back to rules",
		},
		[]string{"backend", "reason"},
	)
)

// Notification metrics track push delivery and deduplication
var (
	// NotificationsTotal counts push attempts by channel, status and priority
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of push notification attempts",
		},
		[]string{"channel", "status", "priority"},
	)

	// NotificationsSuppressedTotal counts articles suppressed by deduplication
	NotificationsSuppressedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_suppressed_total",
			Help: "Total number of notifications suppressed as duplicates",
		},
	)

	// NotificationRecordsPrunedTotal counts records removed by retention pruning
	NotificationRecordsPrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_records_pruned_total",
			Help: "Total number of notification records removed by pruning",
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
