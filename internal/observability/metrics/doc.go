// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Feed fetch metrics (duration, count, errors)
//   - Scoring metrics (duration, outcomes, fallbacks)
//   - Notification metrics (delivery, suppression, pruning)
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint of the worker.
//
// Example usage:
//
//	import "newswatch/internal/observability/metrics"
//
//	func scoreArticles(backend string) {
//	    start := time.Now()
//	    // ... score one article ...
//	    metrics.RecordArticleScored(backend, true)
//	    metrics.RecordScoringDuration(backend, time.Since(start))
//	}
package metrics
