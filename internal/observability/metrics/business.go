package metrics

import "time"

// RecordArticlesFetched records the number of articles fetched from a feed.
// This metric helps track feed activity and silent feed death.
func RecordArticlesFetched(feedName string, count int) {
	ArticlesFetchedTotal.WithLabelValues(feedName).Add(float64(count))
}

// RecordFeedFetch records the duration of one feed fetch.
func RecordFeedFetch(feedName string, duration time.Duration) {
	FeedFetchDuration.WithLabelValues(feedName).Observe(duration.Seconds())
}

// RecordFeedFetchError records an error during feed fetching.
// errorType distinguishes timeouts, HTTP failures and parse failures.
func RecordFeedFetchError(feedName, errorType string) {
	FeedFetchErrors.WithLabelValues(feedName, errorType).Inc()
}

// RecordArticleScored records the result of one scoring call.
func RecordArticleScored(backend string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	ArticlesScoredTotal.WithLabelValues(backend, status).Inc()
}

// RecordScoringDuration records the time taken to score one article.
// Slow model backends show up here before they show up as timeouts.
func RecordScoringDuration(backend string, duration time.Duration) {
	ScoringDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

// RecordScoringFallback records a model-backed scoring call that fell back
// to the rule scorer. Reason is one of "timeout", "error", "parse".
func RecordScoringFallback(backend, reason string) {
	ScoringFallbacksTotal.WithLabelValues(backend, reason).Inc()
}

// RecordNotification records one push attempt.
// Status is "sent" or "failed"; priority is "critical" or "normal".
func RecordNotification(channel, status, priority string) {
	NotificationsTotal.WithLabelValues(channel, status, priority).Inc()
}

// RecordNotificationSuppressed records an article suppressed as a duplicate.
func RecordNotificationSuppressed() {
	NotificationsSuppressedTotal.Inc()
}

// RecordRecordsPruned records notification records removed by retention pruning.
func RecordRecordsPruned(count int64) {
	NotificationRecordsPrunedTotal.Add(float64(count))
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "get_record", "upsert_record").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
