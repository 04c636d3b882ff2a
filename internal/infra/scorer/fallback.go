package scorer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"newswatch/internal/domain/entity"
	"newswatch/internal/observability/metrics"
)

// defaultScoreTimeout bounds one model-backed scoring call when no timeout
// is configured.
const defaultScoreTimeout = 30 * time.Second

// FallbackRationalePrefix marks rationales produced by the rule fallback
// instead of the configured model backend.
const FallbackRationalePrefix = "fallback-scored: "

// Fallback decorates a model-backed scorer with a bounded timeout and
// graceful degradation to the rule scorer. A timeout, API failure or
// unparseable reply downgrades that single article to a rule-based score;
// it never fails the batch.
type Fallback struct {
	primary  Scorer
	fallback *Rules
	timeout  time.Duration
}

// WithFallback wraps primary so every failure degrades to the rule scorer.
func WithFallback(primary Scorer, fallback *Rules, timeout time.Duration) *Fallback {
	if timeout <= 0 {
		timeout = defaultScoreTimeout
	}
	return &Fallback{primary: primary, fallback: fallback, timeout: timeout}
}

// Name implements Scorer. The decorated backend keeps its identity; the
// per-article ScorerName reveals when the fallback actually fired.
func (f *Fallback) Name() string { return f.primary.Name() }

// Score implements Scorer.
func (f *Fallback) Score(ctx context.Context, article entity.Article) (entity.ScoredArticle, error) {
	scoreCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	scored, err := f.primary.Score(scoreCtx, article)
	if err == nil {
		return scored, nil
	}

	// The run itself was cancelled: propagate instead of burning the
	// remaining budget on rule scoring nobody will consume.
	if ctx.Err() != nil {
		return entity.ScoredArticle{}, ctx.Err()
	}

	reason := "error"
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(scoreCtx.Err(), context.DeadlineExceeded) {
		reason = "timeout"
	}
	metrics.RecordScoringFallback(f.primary.Name(), reason)

	slog.Warn("model scoring failed, falling back to rules",
		slog.String("backend", f.primary.Name()),
		slog.String("reason", reason),
		slog.String("title", article.Title),
		slog.String("error", err.Error()))

	scored, ruleErr := f.fallback.Score(ctx, article)
	if ruleErr != nil {
		return entity.ScoredArticle{}, ruleErr
	}

	scored.Rationale = FallbackRationalePrefix + scored.Rationale
	scored.ScorerName = f.fallback.Name()
	return scored, nil
}
