package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"

	"newswatch/internal/observability/tracing"
	"newswatch/internal/usecase/scan"
)

// JobFunc executes one scheduled run and reports the outcome.
type JobFunc func(ctx context.Context) (*scan.Report, error)

// Status values retained on the job record after each completed firing.
const (
	JobStatusSuccess = "success"
	JobStatusPartial = "partial"
	JobStatusFailure = "failure"
)

// Job is one scheduled pipeline job. A firing that arrives while the
// previous run is still live is skipped, never queued. The loop retains
// the last run time and status on the record after every completed firing.
type Job struct {
	Name     string
	Schedule string
	Timeout  time.Duration
	Enabled  bool
	Run      JobFunc

	inFlight atomic.Bool

	mu         sync.Mutex
	lastRun    time.Time
	lastStatus string
}

// JobState is a point-in-time view of one job's bookkeeping.
type JobState struct {
	Name       string    `json:"name"`
	Schedule   string    `json:"schedule"`
	Enabled    bool      `json:"enabled"`
	LastRun    time.Time `json:"last_run,omitzero"`
	LastStatus string    `json:"last_status,omitempty"`
}

func (j *Job) recordRun(status string, at time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.lastRun = at
	j.lastStatus = status
}

// State returns the job's retained bookkeeping. Safe to call while the
// job is running.
func (j *Job) State() JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobState{
		Name:       j.Name,
		Schedule:   j.Schedule,
		Enabled:    j.Enabled,
		LastRun:    j.lastRun,
		LastStatus: j.lastStatus,
	}
}

// Scheduler drives the registered jobs on a cron loop with per-job
// overlap guards.
type Scheduler struct {
	cron    *cron.Cron
	jobs    []*Job
	metrics *WorkerMetrics
	logger  *slog.Logger
}

// NewScheduler creates a Scheduler running in the given timezone.
func NewScheduler(timezone string, metrics *WorkerMetrics, logger *slog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		metrics: metrics,
		logger:  logger,
	}, nil
}

// AddJob registers a job with the cron loop. Disabled jobs are kept on
// the record for inspection but never fire.
func (s *Scheduler) AddJob(job *Job) error {
	if !job.Enabled {
		s.jobs = append(s.jobs, job)
		s.logger.Info("job disabled, not scheduled", slog.String("job", job.Name))
		return nil
	}

	if _, err := s.cron.AddFunc(job.Schedule, func() { s.execute(job) }); err != nil {
		return fmt.Errorf("register job %q with schedule %q: %w", job.Name, job.Schedule, err)
	}
	s.jobs = append(s.jobs, job)

	s.logger.Info("job registered",
		slog.String("job", job.Name),
		slog.String("schedule", job.Schedule),
		slog.Duration("timeout", job.Timeout))
	return nil
}

// JobStates reports the bookkeeping of every registered job.
func (s *Scheduler) JobStates() []JobState {
	states := make([]JobState, 0, len(s.jobs))
	for _, job := range s.jobs {
		states = append(states, job.State())
	}
	return states
}

// Start begins the cron loop. Jobs run in their own goroutines.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", slog.Int("jobs", len(s.jobs)))
}

// Stop halts the cron loop and waits for live jobs, bounded by the context.
func (s *Scheduler) Stop(ctx context.Context) {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		s.logger.Info("scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out with jobs still running")
	}
}

// execute runs one job firing with the overlap guard and wall-clock budget.
func (s *Scheduler) execute(job *Job) {
	if !job.inFlight.CompareAndSwap(false, true) {
		s.metrics.RecordJobRun(job.Name, "skipped")
		s.logger.Warn("previous run still live, skipping this firing",
			slog.String("job", job.Name))
		return
	}
	defer job.inFlight.Store(false)

	ctx := context.Background()
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	ctx, span := tracing.GetTracer().Start(ctx, "job."+job.Name)
	defer span.End()

	s.logger.Info("job run starting", slog.String("job", job.Name))
	start := time.Now()
	report, err := job.Run(ctx)
	duration := time.Since(start)
	s.metrics.RecordJobDuration(job.Name, duration.Seconds())

	if err != nil {
		s.metrics.RecordJobRun(job.Name, "failure")
		job.recordRun(JobStatusFailure, start)
		span.SetAttributes(attribute.Bool("error", true))
		s.logger.Error("job run failed",
			slog.String("job", job.Name),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return
	}

	status := scan.StatusSucceeded
	if report != nil {
		status = report.Status()
	}
	span.SetAttributes(attribute.String("job.status", string(status)))
	switch status {
	case scan.StatusFailed:
		s.metrics.RecordJobRun(job.Name, "failure")
		job.recordRun(JobStatusFailure, start)
		s.logger.Error("job run failed, no feed could be fetched",
			slog.String("job", job.Name),
			slog.String("run_id", report.RunID),
			slog.Duration("duration", duration))
		return
	case scan.StatusPartiallyFailed:
		s.metrics.RecordJobRun(job.Name, "partial")
		job.recordRun(JobStatusPartial, start)
	default:
		s.metrics.RecordJobRun(job.Name, "success")
		s.metrics.RecordLastSuccess(job.Name)
		job.recordRun(JobStatusSuccess, start)
	}

	attrs := []any{
		slog.String("job", job.Name),
		slog.String("status", string(status)),
		slog.Duration("duration", duration),
	}
	if report != nil {
		s.metrics.RecordArticlesSent(job.Name, report.Sent)
		attrs = append(attrs,
			slog.String("run_id", report.RunID),
			slog.Int("fetched", report.Fetched),
			slog.Int("sent", report.Sent),
			slog.Int("suppressed", report.Suppressed),
			slog.Int("feed_failures", len(report.FeedFailures)))
	}
	s.logger.Info("job run completed", attrs...)
}
