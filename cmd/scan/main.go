// Command scan runs the pipeline once and exits. It is the manual
// counterpart of the scheduled worker: same feeds, same scorer, same
// transports, one run.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appconfig "newswatch/internal/config"
	"newswatch/internal/infra/adapter/persistence/memory"
	"newswatch/internal/infra/adapter/persistence/postgres"
	"newswatch/internal/infra/adapter/persistence/sqlite"
	"newswatch/internal/infra/db"
	"newswatch/internal/infra/feed"
	"newswatch/internal/infra/notifier"
	"newswatch/internal/infra/scorer"
	"newswatch/internal/observability/logging"
	"newswatch/internal/repository"
	"newswatch/internal/usecase/dedup"
	notifyUC "newswatch/internal/usecase/notify"
	scanUC "newswatch/internal/usecase/scan"
	envcfg "newswatch/pkg/config"
)

func main() {
	var (
		digest    = flag.Bool("digest", false, "send one aggregate digest instead of individual pushes")
		dryRun    = flag.Bool("dry-run", false, "score and rank but send nothing")
		ephemeral = flag.Bool("ephemeral", false, "keep delivery records in memory instead of the database")
		threshold = flag.Float64("threshold", 7.5, "minimum score for delivery")
		topN      = flag.Int("top", 10, "delivery cap for this run")
		lookback  = flag.Duration("lookback", 6*time.Hour, "article age window")
		timeout   = flag.Duration("timeout", 10*time.Minute, "run budget")
	)
	flag.Parse()

	logger := logging.NewTextLogger()
	slog.SetDefault(logger)

	appCfg, err := appconfig.Load(appconfig.Path())
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	recordRepo, cleanup := openRecordRepo(logger, *ephemeral)
	defer cleanup()

	sc, err := buildScorer(appCfg)
	if err != nil {
		logger.Error("invalid scorer configuration", slog.Any("error", err))
		os.Exit(1)
	}

	var transports []notifier.Transport
	if *dryRun {
		logger.Info("dry run, deliveries are dropped")
		transports = []notifier.Transport{notifier.NewNoOpTransport()}
	} else {
		transports = buildTransports(logger)
	}

	deduper := dedup.New(recordRepo, 0, 0)
	gateway := notifyUC.NewGateway(transports, deduper, notifyUC.Config{})
	pipeline := scanUC.NewService(feed.NewFetcher(httpClient()), sc, gateway)

	feeds := make([]scanUC.Feed, 0, len(appCfg.Feeds))
	for _, f := range appCfg.Feeds {
		feeds = append(feeds, scanUC.Feed{Name: f.Name, URL: f.URL})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, *timeout)
	defer timeoutCancel()

	params := scanUC.Params{
		Feeds:     feeds,
		Lookback:  *lookback,
		Threshold: *threshold,
		TopN:      *topN,
	}

	var report *scanUC.Report
	if *digest {
		report, err = pipeline.RunDigest(ctx, params)
	} else {
		report, err = pipeline.Run(ctx, params)
	}
	if err != nil {
		logger.Error("scan run failed", slog.Any("error", err))
		os.Exit(1)
	}

	printReport(report)
	if report.Status() == scanUC.StatusFailed {
		os.Exit(1)
	}
}

// openRecordRepo picks the delivery record store. Ephemeral runs use an
// in-memory store so experiments leave no trace in the database.
func openRecordRepo(logger *slog.Logger, ephemeral bool) (repository.RecordRepository, func()) {
	if ephemeral {
		return memory.NewRecordRepo(), func() {}
	}

	database, dialect := db.Open()
	if err := db.MigrateUp(database, dialect); err != nil {
		logger.Error("database migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	cleanup := func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}
	if dialect == db.DialectPostgres {
		return postgres.NewRecordRepo(database), cleanup
	}
	return sqlite.NewRecordRepo(database), cleanup
}

// buildScorer mirrors the worker's scorer assembly.
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

// buildTransports mirrors the worker's transport assembly.
func buildTransports(logger *slog.Logger) []notifier.Transport {
	var transports []notifier.Transport

	pushbullet := notifier.NewPushbulletTransport(notifier.PushbulletConfig{
		Enabled:     envcfg.GetEnvBool("PUSHBULLET_ENABLED", false),
		AccessToken: os.Getenv("PUSHBULLET_ACCESS_TOKEN"),
		Timeout:     envcfg.GetEnvDuration("PUSHBULLET_TIMEOUT", 10*time.Second),
	})
	if pushbullet.IsEnabled() {
		transports = append(transports, pushbullet)
	}

	pushover := notifier.NewPushoverTransport(notifier.PushoverConfig{
		Enabled: envcfg.GetEnvBool("PUSHOVER_ENABLED", false),
		Token:   os.Getenv("PUSHOVER_TOKEN"),
		UserKey: os.Getenv("PUSHOVER_USER_KEY"),
	})
	if pushover.IsEnabled() {
		transports = append(transports, pushover)
	}

	discord := notifier.NewDiscordTransport(notifier.DiscordConfig{
		Enabled:    envcfg.GetEnvBool("DISCORD_ENABLED", false),
		WebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
	})
	if discord.IsEnabled() {
		transports = append(transports, discord)
	}

	slack := notifier.NewSlackTransport(notifier.SlackConfig{
		Enabled:    envcfg.GetEnvBool("SLACK_ENABLED", false),
		WebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
	})
	if slack.IsEnabled() {
		transports = append(transports, slack)
	}

	if len(transports) == 0 {
		logger.Warn("no push transport configured, deliveries are dropped")
		transports = append(transports, notifier.NewNoOpTransport())
	}
	return transports
}

func httpClient() *http.Client {
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

func printReport(report *scanUC.Report) {
	fmt.Printf("run %s: %s in %s\n", report.RunID, report.Status(), report.Duration.Round(time.Millisecond))
	fmt.Printf("  feeds=%d fetched=%d scored=%d (fallback=%d) ranked=%d\n",
		report.FeedsScanned, report.Fetched, report.Scored, report.FallbackScored, report.Ranked)
	fmt.Printf("  sent=%d suppressed=%d failed=%d\n", report.Sent, report.Suppressed, report.Failed)
	for _, failure := range report.FeedFailures {
		fmt.Printf("  feed failure: %s: %s\n", failure.Feed, failure.Error)
	}
	for _, failure := range report.ItemFailures {
		fmt.Printf("  item failure (%s): %s: %s\n", failure.Stage, failure.Title, failure.Error)
	}
}
