package scorer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newswatch/internal/domain/entity"
)

// stubScorer is a scriptable Scorer for decorator tests.
type stubScorer struct {
	name  string
	score func(ctx context.Context, article entity.Article) (entity.ScoredArticle, error)
}

func (s *stubScorer) Name() string { return s.name }

func (s *stubScorer) Score(ctx context.Context, article entity.Article) (entity.ScoredArticle, error) {
	return s.score(ctx, article)
}

func TestFallback_PrimarySucceeds(t *testing.T) {
	primary := &stubScorer{
		name: "claude",
		score: func(_ context.Context, article entity.Article) (entity.ScoredArticle, error) {
			return entity.ScoredArticle{
				Article:    article,
				Score:      8.5,
				Rationale:  "major economic impact",
				ScorerName: "claude",
			}, nil
		},
	}
	fb := WithFallback(primary, NewRules(DefaultRulesConfig()), time.Second)

	scored, err := fb.Score(context.Background(), entity.Article{Title: "Fed announces emergency rate cut"})
	require.NoError(t, err)
	assert.Equal(t, 8.5, scored.Score)
	assert.Equal(t, "claude", scored.ScorerName)
	assert.False(t, strings.HasPrefix(scored.Rationale, FallbackRationalePrefix))
}

func TestFallback_PrimaryFails(t *testing.T) {
	primary := &stubScorer{
		name: "claude",
		score: func(context.Context, entity.Article) (entity.ScoredArticle, error) {
			return entity.ScoredArticle{}, errors.New("api unavailable")
		},
	}
	fb := WithFallback(primary, NewRules(DefaultRulesConfig()), time.Second)

	scored, err := fb.Score(context.Background(), entity.Article{Title: "Fed announces emergency rate cut"})
	require.NoError(t, err)
	assert.Equal(t, 9.0, scored.Score)
	assert.Equal(t, "rules", scored.ScorerName)
	assert.True(t, strings.HasPrefix(scored.Rationale, FallbackRationalePrefix),
		"rationale %q should carry the fallback prefix", scored.Rationale)
}

func TestFallback_PrimaryTimesOut(t *testing.T) {
	primary := &stubScorer{
		name: "ollama",
		score: func(ctx context.Context, _ entity.Article) (entity.ScoredArticle, error) {
			<-ctx.Done()
			return entity.ScoredArticle{}, ctx.Err()
		},
	}
	fb := WithFallback(primary, NewRules(DefaultRulesConfig()), 50*time.Millisecond)

	start := time.Now()
	scored, err := fb.Score(context.Background(), entity.Article{Title: "Parliament passes a new law"})
	require.NoError(t, err)

	assert.Equal(t, "rules", scored.ScorerName)
	assert.True(t, strings.HasPrefix(scored.Rationale, FallbackRationalePrefix))
	assert.Less(t, time.Since(start), 2*time.Second, "fallback should fire right after the timeout")
}

func TestFallback_ParentContextCanceled(t *testing.T) {
	primary := &stubScorer{
		name: "claude",
		score: func(ctx context.Context, _ entity.Article) (entity.ScoredArticle, error) {
			return entity.ScoredArticle{}, ctx.Err()
		},
	}
	fb := WithFallback(primary, NewRules(DefaultRulesConfig()), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fb.Score(ctx, entity.Article{Title: "anything"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFallback_Name(t *testing.T) {
	primary := &stubScorer{name: "openai"}
	fb := WithFallback(primary, NewRules(DefaultRulesConfig()), time.Second)

	assert.Equal(t, "openai", fb.Name())
}

func TestFallback_ZeroTimeoutUsesDefault(t *testing.T) {
	primary := &stubScorer{name: "claude"}
	fb := WithFallback(primary, NewRules(DefaultRulesConfig()), 0)

	assert.Equal(t, defaultScoreTimeout, fb.timeout)
}
