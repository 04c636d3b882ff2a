package worker

import (
	"fmt"
	"log/slog"
	"time"

	"newswatch/internal/pkg/config"
)

// WorkerConfig holds the configuration for the scheduler worker.
// It controls the three job cadences, the delivery thresholds, the dedup
// escalation behavior and the operational parameters of the worker process.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// Every field has a default and a validation rule; loading is fail-open so
// a typo in one variable degrades to the default instead of stopping the
// worker.
type WorkerConfig struct {
	// FullScanSchedule is the cron expression for the full pipeline runs.
	// Default: "0 6,9,12,15,18,21 * * *" (six runs a day)
	FullScanSchedule string

	// BreakingSchedule is the cron expression for the high-threshold
	// breaking-news sweeps. Default: "*/30 * * * *"
	BreakingSchedule string

	// DigestSchedule is the cron expression for the daily digest.
	// Default: "0 8 * * *"
	DigestSchedule string

	// Timezone is the IANA timezone name for cron scheduling.
	// Default: "Europe/Berlin"
	Timezone string

	// ScanTimeout is the wall-clock budget for a single pipeline run.
	// Default: 10 minutes
	ScanTimeout time.Duration

	// NotifyThreshold is the minimum score for delivery on full scans.
	// Default: 7.5
	NotifyThreshold float64

	// BreakingThreshold is the minimum score on breaking-news sweeps.
	// Default: 9.5
	BreakingThreshold float64

	// CriticalScore is the score at which a push is delivered as critical.
	// Default: 9.0
	CriticalScore float64

	// EscalationDelta is the score increase that re-arms an already
	// notified article. Default: 1.5
	EscalationDelta float64

	// RecordRetention is how long delivered fingerprints stay recorded.
	// Default: 720h (30 days)
	RecordRetention time.Duration

	// TopN caps deliveries per full scan. Default: 10
	TopN int

	// BreakingTopN caps deliveries per breaking sweep. Default: 3
	BreakingTopN int

	// DigestSize bounds the daily digest. Default: 5
	DigestSize int

	// Lookback is the article age window for full scans. Default: 6h
	Lookback time.Duration

	// BreakingLookback is the shorter window for breaking sweeps.
	// Default: 1h
	BreakingLookback time.Duration

	// HealthPort is the port for the health check HTTP server.
	// Range: 1024-65535. Default: 9091
	HealthPort int
}

// DefaultConfig returns a WorkerConfig with production defaults: six full
// scans a day, half-hourly breaking sweeps gated at 9.5, and one morning
// digest.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		FullScanSchedule:  "0 6,9,12,15,18,21 * * *",
		BreakingSchedule:  "*/30 * * * *",
		DigestSchedule:    "0 8 * * *",
		Timezone:          "Europe/Berlin",
		ScanTimeout:       10 * time.Minute,
		NotifyThreshold:   7.5,
		BreakingThreshold: 9.5,
		CriticalScore:     9.0,
		EscalationDelta:   1.5,
		RecordRetention:   30 * 24 * time.Hour,
		TopN:              10,
		BreakingTopN:      3,
		DigestSize:        5,
		Lookback:          6 * time.Hour,
		BreakingLookback:  1 * time.Hour,
		HealthPort:        9091,
	}
}

// Validate checks the configuration. All invalid fields are collected and
// returned together.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.FullScanSchedule); err != nil {
		errs = append(errs, fmt.Errorf("full scan schedule: %w", err))
	}
	if err := config.ValidateCronSchedule(c.BreakingSchedule); err != nil {
		errs = append(errs, fmt.Errorf("breaking schedule: %w", err))
	}
	if err := config.ValidateCronSchedule(c.DigestSchedule); err != nil {
		errs = append(errs, fmt.Errorf("digest schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.ScanTimeout); err != nil {
		errs = append(errs, fmt.Errorf("scan timeout: %w", err))
	}
	if err := config.ValidateFloatRange(c.NotifyThreshold, 0, 10); err != nil {
		errs = append(errs, fmt.Errorf("notify threshold: %w", err))
	}
	if err := config.ValidateFloatRange(c.BreakingThreshold, 0, 10); err != nil {
		errs = append(errs, fmt.Errorf("breaking threshold: %w", err))
	}
	if err := config.ValidateFloatRange(c.CriticalScore, 0, 10); err != nil {
		errs = append(errs, fmt.Errorf("critical score: %w", err))
	}
	if err := config.ValidateFloatRange(c.EscalationDelta, 0.1, 10); err != nil {
		errs = append(errs, fmt.Errorf("escalation delta: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.RecordRetention); err != nil {
		errs = append(errs, fmt.Errorf("record retention: %w", err))
	}
	if err := config.ValidateIntRange(c.TopN, 1, 100); err != nil {
		errs = append(errs, fmt.Errorf("top n: %w", err))
	}
	if err := config.ValidateIntRange(c.BreakingTopN, 1, 100); err != nil {
		errs = append(errs, fmt.Errorf("breaking top n: %w", err))
	}
	if err := config.ValidateIntRange(c.DigestSize, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("digest size: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.Lookback); err != nil {
		errs = append(errs, fmt.Errorf("lookback: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.BreakingLookback); err != nil {
		errs = append(errs, fmt.Errorf("breaking lookback: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables
// with validation and automatic fallback to defaults on failure.
//
// The loading is fail-open: an invalid value falls back to the default with
// a warning log and a fallback metric, and the function never returns an
// error. The returned configuration is always valid.
//
// Environment variables:
//   - FULL_SCAN_SCHEDULE, BREAKING_SCHEDULE, DIGEST_SCHEDULE: cron expressions
//   - WORKER_TIMEZONE: IANA timezone name
//   - SCAN_TIMEOUT: duration, 1m-1h
//   - NOTIFY_THRESHOLD, BREAKING_THRESHOLD, NOTIFY_CRITICAL_SCORE: 0-10
//   - NOTIFY_ESCALATION_DELTA: 0.1-10
//   - NOTIFY_RETENTION: duration, 1h-8760h
//   - SCAN_TOP_N, BREAKING_TOP_N: 1-100; DIGEST_SIZE: 1-50
//   - SCAN_LOOKBACK, BREAKING_LOOKBACK: duration, 1m-168h
//   - WORKER_HEALTH_PORT: 1024-65535
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	track := func(field string, result config.ConfigLoadResult) config.ConfigLoadResult {
		if result.FallbackApplied {
			fallbackApplied = true
			metrics.RecordValidationError(field)
			metrics.RecordFallback(field, "default")
			for _, warning := range result.Warnings {
				logger.Warn("Configuration fallback applied",
					slog.String("field", field),
					slog.String("warning", warning))
			}
		}
		return result
	}

	cfg.FullScanSchedule = track("full_scan_schedule",
		config.LoadEnvWithFallback("FULL_SCAN_SCHEDULE", cfg.FullScanSchedule, config.ValidateCronSchedule)).Value.(string)
	cfg.BreakingSchedule = track("breaking_schedule",
		config.LoadEnvWithFallback("BREAKING_SCHEDULE", cfg.BreakingSchedule, config.ValidateCronSchedule)).Value.(string)
	cfg.DigestSchedule = track("digest_schedule",
		config.LoadEnvWithFallback("DIGEST_SCHEDULE", cfg.DigestSchedule, config.ValidateCronSchedule)).Value.(string)
	cfg.Timezone = track("timezone",
		config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)).Value.(string)

	cfg.ScanTimeout = track("scan_timeout",
		config.LoadEnvDuration("SCAN_TIMEOUT", cfg.ScanTimeout, func(d time.Duration) error {
			return config.ValidateDuration(d, 1*time.Minute, 1*time.Hour)
		})).Value.(time.Duration)

	cfg.NotifyThreshold = track("notify_threshold",
		config.LoadEnvFloat("NOTIFY_THRESHOLD", cfg.NotifyThreshold, func(v float64) error {
			return config.ValidateFloatRange(v, 0, 10)
		})).Value.(float64)
	cfg.BreakingThreshold = track("breaking_threshold",
		config.LoadEnvFloat("BREAKING_THRESHOLD", cfg.BreakingThreshold, func(v float64) error {
			return config.ValidateFloatRange(v, 0, 10)
		})).Value.(float64)
	cfg.CriticalScore = track("critical_score",
		config.LoadEnvFloat("NOTIFY_CRITICAL_SCORE", cfg.CriticalScore, func(v float64) error {
			return config.ValidateFloatRange(v, 0, 10)
		})).Value.(float64)
	cfg.EscalationDelta = track("escalation_delta",
		config.LoadEnvFloat("NOTIFY_ESCALATION_DELTA", cfg.EscalationDelta, func(v float64) error {
			return config.ValidateFloatRange(v, 0.1, 10)
		})).Value.(float64)

	cfg.RecordRetention = track("record_retention",
		config.LoadEnvDuration("NOTIFY_RETENTION", cfg.RecordRetention, func(d time.Duration) error {
			return config.ValidateDuration(d, 1*time.Hour, 365*24*time.Hour)
		})).Value.(time.Duration)

	cfg.TopN = track("top_n",
		config.LoadEnvInt("SCAN_TOP_N", cfg.TopN, func(v int) error {
			return config.ValidateIntRange(v, 1, 100)
		})).Value.(int)
	cfg.BreakingTopN = track("breaking_top_n",
		config.LoadEnvInt("BREAKING_TOP_N", cfg.BreakingTopN, func(v int) error {
			return config.ValidateIntRange(v, 1, 100)
		})).Value.(int)
	cfg.DigestSize = track("digest_size",
		config.LoadEnvInt("DIGEST_SIZE", cfg.DigestSize, func(v int) error {
			return config.ValidateIntRange(v, 1, 50)
		})).Value.(int)

	cfg.Lookback = track("lookback",
		config.LoadEnvDuration("SCAN_LOOKBACK", cfg.Lookback, func(d time.Duration) error {
			return config.ValidateDuration(d, 1*time.Minute, 7*24*time.Hour)
		})).Value.(time.Duration)
	cfg.BreakingLookback = track("breaking_lookback",
		config.LoadEnvDuration("BREAKING_LOOKBACK", cfg.BreakingLookback, func(d time.Duration) error {
			return config.ValidateDuration(d, 1*time.Minute, 7*24*time.Hour)
		})).Value.(time.Duration)

	cfg.HealthPort = track("health_port",
		config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
			return config.ValidateIntRange(v, 1024, 65535)
		})).Value.(int)

	// Update metrics
	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	// Always return valid config (fail-open strategy)
	return &cfg, nil
}
