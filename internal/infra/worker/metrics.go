package worker

import (
	"newswatch/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics provides Prometheus metrics for the scheduler worker.
// It embeds the standard ConfigMetrics for configuration monitoring and
// adds job execution metrics labeled by job name.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp: Unix timestamp of last configuration load
//   - worker_config_validation_errors_total: Total validation errors by field
//   - worker_config_fallbacks_total: Total fallback operations by field
//   - worker_config_fallback_active: 1 if any fallback active, 0 otherwise
//
// Job metrics:
//   - worker_job_runs_total: Job runs by job name and status
//     (success/partial/failure/skipped)
//   - worker_job_duration_seconds: Duration histogram per job
//   - worker_job_articles_sent_total: Articles delivered per job
//   - worker_job_last_success_timestamp: Unix timestamp of last success per job
type WorkerMetrics struct {
	// Embedded configuration metrics
	*config.ConfigMetrics

	// JobRunsTotal counts job runs. A firing that overlaps a live run is
	// recorded as "skipped".
	JobRunsTotal *prometheus.CounterVec

	// JobDurationSeconds measures job execution time per job.
	JobDurationSeconds *prometheus.HistogramVec

	// JobArticlesSentTotal counts delivered articles per job.
	JobArticlesSentTotal *prometheus.CounterVec

	// JobLastSuccessTimestamp records the last successful completion per job.
	JobLastSuccessTimestamp *prometheus.GaugeVec
}

// NewWorkerMetrics creates a new WorkerMetrics instance with all metrics
// initialized. Registration happens automatically via promauto.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		JobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total number of scheduled job runs by job and status (success/partial/failure/skipped)",
		}, []string{"job", "status"}),

		JobDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of scheduled job execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 120, 300, 600}, // 1s to 10m
		}, []string{"job"}),

		JobArticlesSentTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_articles_sent_total",
			Help: "Total number of articles delivered across job runs",
		}, []string{"job"}),

		JobLastSuccessTimestamp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful run per job",
		}, []string{"job"}),
	}
}

// MustRegister is a no-op method for API compatibility.
// Metrics are automatically registered via promauto when created in
// NewWorkerMetrics; this explicit call keeps the initialization intent
// visible at the call site.
func (m *WorkerMetrics) MustRegister() {
	// No-op: metrics are auto-registered via promauto
}

// RecordJobRun increments the run counter for a job.
// Status should be "success", "partial", "failure" or "skipped".
func (m *WorkerMetrics) RecordJobRun(job, status string) {
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
}

// RecordJobDuration observes the duration of one job run in seconds.
func (m *WorkerMetrics) RecordJobDuration(job string, seconds float64) {
	m.JobDurationSeconds.WithLabelValues(job).Observe(seconds)
}

// RecordArticlesSent adds the number of delivered articles for a job run.
func (m *WorkerMetrics) RecordArticlesSent(job string, count int) {
	m.JobArticlesSentTotal.WithLabelValues(job).Add(float64(count))
}

// RecordLastSuccess records the current time as the job's last successful
// completion.
func (m *WorkerMetrics) RecordLastSuccess(job string) {
	m.JobLastSuccessTimestamp.WithLabelValues(job).SetToCurrentTime()
}
