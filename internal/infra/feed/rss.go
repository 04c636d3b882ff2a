// Package feed provides the RSS/Atom adapter for the scoring pipeline.
// It uses the gofeed library to parse feed content with reliability patterns.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"newswatch/internal/domain/entity"
	"newswatch/internal/observability/metrics"
	"newswatch/internal/resilience/circuitbreaker"
	"newswatch/internal/resilience/retry"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
)

// defaultExcerptRunes bounds article summaries after HTML stripping.
const defaultExcerptRunes = 500

// Fetcher retrieves and normalizes articles from one or more RSS/Atom feeds.
// It includes circuit breaker and retry logic for improved reliability.
type Fetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	excerptRunes   int
}

// NewFetcher creates a new Fetcher with the given HTTP client.
// It automatically configures circuit breaker and retry logic.
func NewFetcher(client *http.Client) *Fetcher {
	return &Fetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
		excerptRunes:   defaultExcerptRunes,
	}
}

// Fetch retrieves and parses a feed, returning normalized articles.
// Every failure mode (HTTP error, malformed XML, timeout) is wrapped in
// entity.ErrFeedUnavailable so the pipeline can treat it as a per-feed
// failure without aborting the batch.
func (f *Fetcher) Fetch(ctx context.Context, sourceName, feedURL string) ([]entity.Article, error) {
	var articles []entity.Article
	start := time.Now()

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, sourceName, feedURL)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("service", "feed-fetch"),
					slog.String("url", feedURL),
					slog.String("state", f.circuitBreaker.State().String()))
				return err
			}
			return err
		}

		articles = cbResult.([]entity.Article)
		return nil
	})

	if retryErr != nil {
		metrics.RecordFeedFetchError(sourceName, classifyFetchError(retryErr))
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrFeedUnavailable, feedURL, retryErr)
	}

	metrics.RecordFeedFetch(sourceName, time.Since(start))
	metrics.RecordArticlesFetched(sourceName, len(articles))
	return articles, nil
}

// doFetch performs the actual feed fetch without retry or circuit breaker.
func (f *Fetcher) doFetch(ctx context.Context, sourceName, feedURL string) ([]entity.Article, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = "NewswatchBot"
	fp.Client = f.client

	parsed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	articles := make([]entity.Article, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		// Feeds without timestamps still need a stable published time for
		// fingerprinting; fetch time is the best available approximation.
		pubAt := time.Now()
		if it.PublishedParsed != nil {
			pubAt = *it.PublishedParsed
		}

		content := it.Content
		if content == "" {
			content = it.Description
		}

		var tags []string
		if len(it.Categories) > 0 {
			tags = append(tags, it.Categories...)
		}

		articles = append(articles, entity.Article{
			Title:       it.Title,
			Summary:     StripHTML(content, f.excerptRunes),
			Source:      sourceName,
			URL:         it.Link,
			PublishedAt: pubAt.UTC(),
			Tags:        tags,
		})
	}

	return articles, nil
}

// classifyFetchError maps a fetch failure onto a metrics label.
func classifyFetchError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, gobreaker.ErrOpenState):
		return "circuit_open"
	default:
		return "fetch"
	}
}
