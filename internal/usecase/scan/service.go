// Package scan orchestrates one pipeline run: fetch the configured feeds,
// score the fresh articles, rank them and hand the winners to the notifier.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"newswatch/internal/domain/entity"
	"newswatch/internal/infra/scorer"
	"newswatch/internal/observability/logging"
	"newswatch/internal/usecase/notify"
	"newswatch/internal/usecase/rank"
)

const (
	defaultFetchParallelism = 4
	defaultScoreParallelism = 5 // model-backed scoring is rate-limited
	defaultFeedTimeout      = 30 * time.Second

	// futureSkew tolerates modest clock drift in feed timestamps before an
	// article is treated as future-dated and dropped.
	futureSkew = 5 * time.Minute
)

// Feed identifies one configured source.
type Feed struct {
	Name string
	URL  string
}

// Fetcher retrieves the current articles of one feed.
type Fetcher interface {
	Fetch(ctx context.Context, sourceName, feedURL string) ([]entity.Article, error)
}

// Notifier delivers one scored article, reporting the delivery outcome.
type Notifier interface {
	Notify(ctx context.Context, scored entity.ScoredArticle) (notify.Outcome, error)
	NotifyDigest(ctx context.Context, top []entity.ScoredArticle) error
}

// Params configures one run.
type Params struct {
	Feeds     []Feed
	Lookback  time.Duration // drop articles published before now-Lookback
	Threshold float64       // minimum score for delivery
	TopN      int           // delivery cap per run
}

// Service wires the pipeline stages together.
type Service struct {
	Fetcher  Fetcher
	Scorer   scorer.Scorer
	Notifier Notifier

	// FetchParallelism bounds concurrent feed fetches, ScoreParallelism
	// bounds concurrent scoring calls. Zero means the package default.
	FetchParallelism int
	ScoreParallelism int
	FeedTimeout      time.Duration
}

// NewService creates a scan Service with the provided stages.
func NewService(fetcher Fetcher, sc scorer.Scorer, notifier Notifier) *Service {
	return &Service{
		Fetcher:  fetcher,
		Scorer:   sc,
		Notifier: notifier,
	}
}

// Run executes one full pipeline cycle. Per-feed and per-article failures
// are collected on the report instead of aborting the run; only context
// cancellation is fatal.
func (s *Service) Run(ctx context.Context, params Params) (*Report, error) {
	report, scored, err := s.collect(ctx, params)
	if err != nil {
		return report, err
	}

	ranked := rank.Rank(scored, params.TopN, params.Threshold)
	report.Ranked = len(ranked)

	logger := logging.FromContext(ctx)
	for _, item := range ranked {
		outcome, err := s.Notifier.Notify(ctx, item)
		switch outcome {
		case notify.OutcomeSent:
			report.Sent++
		case notify.OutcomeSkipped:
			if errors.Is(err, notify.ErrNoTransports) {
				report.Undeliverable++
				report.ItemFailures = append(report.ItemFailures, ItemFailure{
					Title: item.Title,
					Stage: "notify",
					Error: err.Error(),
				})
			} else {
				report.Suppressed++
			}
		case notify.OutcomeFailed:
			report.Failed++
			report.ItemFailures = append(report.ItemFailures, ItemFailure{
				Title: item.Title,
				Stage: "notify",
				Error: err.Error(),
			})
		}
		if err != nil && ctx.Err() != nil {
			return report, ctx.Err()
		}
	}

	report.Duration = time.Since(report.StartedAt)
	logger.Info("scan run completed",
		slog.String("status", string(report.Status())),
		slog.Int("feeds", report.FeedsScanned),
		slog.Int("fetched", report.Fetched),
		slog.Int("scored", report.Scored),
		slog.Int("fallback_scored", report.FallbackScored),
		slog.Int("ranked", report.Ranked),
		slog.Int("sent", report.Sent),
		slog.Int("suppressed", report.Suppressed),
		slog.Int("undeliverable", report.Undeliverable),
		slog.Int("failed", report.Failed),
		slog.Duration("duration", report.Duration))
	return report, nil
}

// RunDigest executes the fetch and score stages, then sends one aggregate
// digest of the top articles. The digest ignores the delivery threshold and
// the dedup store.
func (s *Service) RunDigest(ctx context.Context, params Params) (*Report, error) {
	report, scored, err := s.collect(ctx, params)
	if err != nil {
		return report, err
	}

	top := rank.Rank(scored, params.TopN, entity.MinScore)
	report.Ranked = len(top)

	if err := s.Notifier.NotifyDigest(ctx, top); err != nil {
		report.Failed++
		report.ItemFailures = append(report.ItemFailures, ItemFailure{
			Title: "daily digest",
			Stage: "notify",
			Error: err.Error(),
		})
	} else if len(top) > 0 {
		report.Sent++
	}

	report.Duration = time.Since(report.StartedAt)
	return report, nil
}

// collect runs the fetch and score stages shared by Run and RunDigest.
func (s *Service) collect(ctx context.Context, params Params) (*Report, []entity.ScoredArticle, error) {
	runID := uuid.New().String()
	ctx = logging.WithRunIDContext(ctx, runID)
	logger := logging.WithRunID(ctx, slog.Default())
	ctx = logging.WithLogger(ctx, logger)

	report := &Report{
		RunID:        runID,
		StartedAt:    time.Now(),
		FeedsScanned: len(params.Feeds),
	}

	logger.Info("scan run started",
		slog.Int("feeds", len(params.Feeds)),
		slog.Duration("lookback", params.Lookback),
		slog.Float64("threshold", params.Threshold))

	articles, feedFailures := s.fetchAll(ctx, params.Feeds)
	report.FeedFailures = feedFailures

	fresh := filterLookback(articles, params.Lookback, time.Now())
	report.Fetched = len(fresh)
	if dropped := len(articles) - len(fresh); dropped > 0 {
		logger.Debug("dropped stale or future-dated articles",
			slog.Int("dropped", dropped))
	}

	scored, itemFailures, err := s.scoreAll(ctx, fresh)
	report.ItemFailures = append(report.ItemFailures, itemFailures...)
	if err != nil {
		return report, nil, err
	}
	report.Scored = len(scored)
	for _, item := range scored {
		if strings.HasPrefix(item.Rationale, scorer.FallbackRationalePrefix) {
			report.FallbackScored++
		}
	}

	return report, scored, nil
}

// fetchAll fans out over the feeds with bounded parallelism and a per-feed
// timeout. Failed feeds are reported, never fatal.
func (s *Service) fetchAll(ctx context.Context, feeds []Feed) ([]entity.Article, []FeedFailure) {
	parallelism := s.FetchParallelism
	if parallelism <= 0 {
		parallelism = defaultFetchParallelism
	}
	feedTimeout := s.FeedTimeout
	if feedTimeout <= 0 {
		feedTimeout = defaultFeedTimeout
	}

	logger := logging.FromContext(ctx)

	var mu sync.Mutex
	var articles []entity.Article
	var failures []FeedFailure

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelism)

	for _, feed := range feeds {
		feed := feed
		eg.Go(func() error {
			feedCtx, cancel := context.WithTimeout(egCtx, feedTimeout)
			defer cancel()

			items, err := s.Fetcher.Fetch(feedCtx, feed.Name, feed.URL)
			if err != nil {
				logger.Warn("feed fetch failed",
					slog.String("feed", feed.Name),
					slog.String("url", feed.URL),
					slog.Any("error", err))
				mu.Lock()
				failures = append(failures, FeedFailure{Feed: feed.Name, Error: err.Error()})
				mu.Unlock()
				return nil
			}

			mu.Lock()
			articles = append(articles, items...)
			mu.Unlock()
			return nil
		})
	}

	// Goroutines only return nil; Wait just synchronizes.
	_ = eg.Wait()

	return articles, failures
}

// scoreAll scores the articles with bounded parallelism. Scoring failures
// on individual articles are collected; context cancellation aborts.
func (s *Service) scoreAll(ctx context.Context, articles []entity.Article) ([]entity.ScoredArticle, []ItemFailure, error) {
	parallelism := s.ScoreParallelism
	if parallelism <= 0 {
		parallelism = defaultScoreParallelism
	}

	logger := logging.FromContext(ctx)

	var mu sync.Mutex
	scored := make([]entity.ScoredArticle, 0, len(articles))
	var failures []ItemFailure

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelism)

	for _, article := range articles {
		article := article
		eg.Go(func() error {
			result, err := s.Scorer.Score(egCtx, article)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				logger.Warn("scoring failed, skipping article",
					slog.String("title", article.Title),
					slog.Any("error", err))
				mu.Lock()
				failures = append(failures, ItemFailure{
					Title: article.Title,
					Stage: "score",
					Error: err.Error(),
				})
				mu.Unlock()
				return nil
			}

			mu.Lock()
			scored = append(scored, result)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, failures, fmt.Errorf("score articles: %w", err)
	}

	return scored, failures, nil
}

// filterLookback drops articles published before now-lookback and articles
// dated further than the tolerated skew into the future. A zero lookback
// keeps everything that is not future-dated.
func filterLookback(articles []entity.Article, lookback time.Duration, now time.Time) []entity.Article {
	horizon := now.Add(futureSkew)
	var cutoff time.Time
	if lookback > 0 {
		cutoff = now.Add(-lookback)
	}

	fresh := make([]entity.Article, 0, len(articles))
	for _, article := range articles {
		if article.PublishedAt.After(horizon) {
			continue
		}
		if !cutoff.IsZero() && article.PublishedAt.Before(cutoff) {
			continue
		}
		fresh = append(fresh, article)
	}
	return fresh
}
