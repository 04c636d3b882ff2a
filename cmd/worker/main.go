package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appconfig "newswatch/internal/config"
	"newswatch/internal/infra/adapter/persistence/postgres"
	"newswatch/internal/infra/adapter/persistence/sqlite"
	"newswatch/internal/infra/db"
	"newswatch/internal/infra/feed"
	"newswatch/internal/infra/notifier"
	"newswatch/internal/infra/scorer"
	workerPkg "newswatch/internal/infra/worker"
	"newswatch/internal/observability/logging"
	"newswatch/internal/observability/tracing"
	"newswatch/internal/repository"
	"newswatch/internal/usecase/dedup"
	notifyUC "newswatch/internal/usecase/notify"
	scanUC "newswatch/internal/usecase/scan"
	envcfg "newswatch/pkg/config"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	// Configuration errors are the only fatal startup condition.
	appCfg, err := appconfig.Load(appconfig.Path())
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.String("path", appconfig.Path()),
		slog.Int("feeds", len(appCfg.Feeds)))

	database, dialect := db.Open()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	if err := db.MigrateUp(database, dialect); err != nil {
		logger.Error("database migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracingShutdown, err := tracing.Init("newswatch-worker")
	if err != nil {
		logger.Warn("tracing initialization failed", slog.Any("error", err))
	} else {
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := tracingShutdown(shutdownCtx); err != nil {
				logger.Error("tracing shutdown failed", slog.Any("error", err))
			}
		}()
	}

	go db.ReportPoolStats(ctx, database, 30*time.Second)

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerCfg, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("full_scan_schedule", workerCfg.FullScanSchedule),
		slog.String("breaking_schedule", workerCfg.BreakingSchedule),
		slog.String("digest_schedule", workerCfg.DigestSchedule),
		slog.String("timezone", workerCfg.Timezone),
		slog.Float64("notify_threshold", workerCfg.NotifyThreshold),
		slog.Float64("breaking_threshold", workerCfg.BreakingThreshold),
		slog.Duration("scan_timeout", workerCfg.ScanTimeout))

	sc, err := buildScorer(appCfg)
	if err != nil {
		logger.Error("invalid scorer configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("scorer initialized", slog.String("backend", sc.Name()))

	transports := buildTransports(logger)

	deduper := dedup.New(newRecordRepo(database, dialect),
		workerCfg.EscalationDelta, workerCfg.RecordRetention)
	gateway := notifyUC.NewGateway(transports, deduper, notifyUC.Config{
		CriticalScore: workerCfg.CriticalScore,
	})
	pipeline := scanUC.NewService(feed.NewFetcher(createHTTPClient()), sc, gateway)

	feeds := make([]scanUC.Feed, 0, len(appCfg.Feeds))
	for _, f := range appCfg.Feeds {
		feeds = append(feeds, scanUC.Feed{Name: f.Name, URL: f.URL})
	}

	// Start metrics HTTP server
	startMetricsServer(ctx, logger, transports)

	scheduler, err := workerPkg.NewScheduler(workerCfg.Timezone, workerMetrics, logger)
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	jobs := []*workerPkg.Job{
		{
			Name:     "full-scan",
			Schedule: workerCfg.FullScanSchedule,
			Timeout:  workerCfg.ScanTimeout,
			Enabled:  true,
			Run: func(ctx context.Context) (*scanUC.Report, error) {
				report, err := pipeline.Run(ctx, scanUC.Params{
					Feeds:     feeds,
					Lookback:  workerCfg.Lookback,
					Threshold: workerCfg.NotifyThreshold,
					TopN:      workerCfg.TopN,
				})
				if err != nil {
					return report, err
				}
				// Maintenance piggybacks on the full scan cadence.
				if _, pruneErr := deduper.Prune(ctx, workerCfg.RecordRetention); pruneErr != nil {
					logger.Warn("record pruning failed", slog.Any("error", pruneErr))
				}
				return report, nil
			},
		},
		{
			Name:     "breaking-news",
			Schedule: workerCfg.BreakingSchedule,
			Timeout:  workerCfg.ScanTimeout,
			Enabled:  true,
			Run: func(ctx context.Context) (*scanUC.Report, error) {
				return pipeline.Run(ctx, scanUC.Params{
					Feeds:     feeds,
					Lookback:  workerCfg.BreakingLookback,
					Threshold: workerCfg.BreakingThreshold,
					TopN:      workerCfg.BreakingTopN,
				})
			},
		},
		{
			Name:     "daily-digest",
			Schedule: workerCfg.DigestSchedule,
			Timeout:  workerCfg.ScanTimeout,
			Enabled:  true,
			Run: func(ctx context.Context) (*scanUC.Report, error) {
				return pipeline.RunDigest(ctx, scanUC.Params{
					Feeds:    feeds,
					Lookback: 24 * time.Hour,
					TopN:     workerCfg.DigestSize,
				})
			},
		},
	}
	for _, job := range jobs {
		if err := scheduler.AddJob(job); err != nil {
			logger.Error("failed to register job", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerCfg.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	healthServer.SetJobStates(scheduler.JobStates)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	scheduler.Start()
	healthServer.SetReady(true)
	logger.Info("worker started")

	<-ctx.Done()
	logger.Info("shutdown signal received")
	healthServer.SetReady(false)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	scheduler.Stop(stopCtx)
}

// newRecordRepo selects the repository flavor matching the open connection.
func newRecordRepo(database *sql.DB, dialect db.Dialect) repository.RecordRepository {
	if dialect == db.DialectPostgres {
		return postgres.NewRecordRepo(database)
	}
	return sqlite.NewRecordRepo(database)
}

// buildScorer assembles the scorer from SCORER_* environment variables and
// the rule tables of the configuration file.
func buildScorer(appCfg *appconfig.AppConfig) (scorer.Scorer, error) {
	backend := envcfg.GetEnvString("SCORER_BACKEND", "rules")

	var apiKey string
	switch backend {
	case "claude":
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	case "openai":
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	return scorer.New(scorer.Config{
		Backend:       backend,
		APIKey:        apiKey,
		Model:         envcfg.GetEnvString("SCORER_MODEL", ""),
		OllamaBaseURL: envcfg.GetEnvString("OLLAMA_BASE_URL", ""),
		Timeout:       envcfg.GetEnvDuration("SCORER_TIMEOUT", 30*time.Second),
		Criteria:      appCfg.Criteria,
		Rules:         appCfg.ScorerRules(),
	})
}

// buildTransports assembles the push transports from environment variables.
// With no transport configured the worker still runs; deliveries are logged
// and dropped by the no-op transport.
func buildTransports(logger *slog.Logger) []notifier.Transport {
	var transports []notifier.Transport

	pushbullet := notifier.NewPushbulletTransport(notifier.PushbulletConfig{
		Enabled:     envcfg.GetEnvBool("PUSHBULLET_ENABLED", false),
		AccessToken: os.Getenv("PUSHBULLET_ACCESS_TOKEN"),
		Timeout:     envcfg.GetEnvDuration("PUSHBULLET_TIMEOUT", 10*time.Second),
	})
	if pushbullet.IsEnabled() {
		transports = append(transports, pushbullet)
		logger.Info("pushbullet transport enabled")
	} else {
		logger.Info("pushbullet transport disabled")
	}

	pushover := notifier.NewPushoverTransport(notifier.PushoverConfig{
		Enabled: envcfg.GetEnvBool("PUSHOVER_ENABLED", false),
		Token:   os.Getenv("PUSHOVER_TOKEN"),
		UserKey: os.Getenv("PUSHOVER_USER_KEY"),
		Timeout: envcfg.GetEnvDuration("PUSHOVER_TIMEOUT", 10*time.Second),
	})
	if pushover.IsEnabled() {
		transports = append(transports, pushover)
		logger.Info("pushover transport enabled")
	} else {
		logger.Info("pushover transport disabled")
	}

	discord := notifier.NewDiscordTransport(notifier.DiscordConfig{
		Enabled:    envcfg.GetEnvBool("DISCORD_ENABLED", false),
		WebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
		Timeout:    envcfg.GetEnvDuration("DISCORD_TIMEOUT", 10*time.Second),
	})
	if discord.IsEnabled() {
		transports = append(transports, discord)
		logger.Info("discord transport enabled")
	} else {
		logger.Info("discord transport disabled")
	}

	slack := notifier.NewSlackTransport(notifier.SlackConfig{
		Enabled:    envcfg.GetEnvBool("SLACK_ENABLED", false),
		WebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
		Timeout:    envcfg.GetEnvDuration("SLACK_TIMEOUT", 10*time.Second),
	})
	if slack.IsEnabled() {
		transports = append(transports, slack)
		logger.Info("slack transport enabled")
	} else {
		logger.Info("slack transport disabled")
	}

	if len(transports) == 0 {
		logger.Warn("no push transport configured, notifications will be dropped")
		transports = append(transports, notifier.NewNoOpTransport())
	}
	return transports
}

// createHTTPClient creates an HTTP client with timeouts and connection pooling.
// TLS 1.2+ is enforced.
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}
