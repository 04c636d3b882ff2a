// Package scorer provides relevance scoring implementations for the pipeline.
// It includes a deterministic rule-based scorer and model-backed adapters for
// Claude (Anthropic), OpenAI and local Ollama endpoints with reliability
// patterns. Model-backed scorers are always wrapped in a fallback decorator
// so a single slow or malformed response degrades one article, not the run.
package scorer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"newswatch/internal/domain/entity"
)

// Scorer maps an article to a relevance score in [0,10] plus a rationale.
type Scorer interface {
	// Name identifies the scorer backend for logging and metrics.
	Name() string

	// Score evaluates one article. Implementations must clamp their output
	// to the valid score range; a scoring failure on one article must not
	// block scoring of others.
	Score(ctx context.Context, article entity.Article) (entity.ScoredArticle, error)
}

// Config selects and configures a scorer backend.
type Config struct {
	// Backend is one of "rules", "openai", "claude", "ollama".
	Backend string

	// APIKey authenticates remote backends (openai, claude).
	APIKey string

	// Model is the model identifier for model-backed scorers.
	Model string

	// OllamaBaseURL is the local model server address for the ollama backend.
	OllamaBaseURL string

	// Timeout bounds a single model-backed scoring call before the
	// fallback decorator takes over.
	Timeout time.Duration

	// Criteria is an operator-supplied description of what makes an
	// article relevant, inserted into the model prompt.
	Criteria string

	// Rules configures the rule-based scorer, which also serves as the
	// fallback for every model-backed backend.
	Rules RulesConfig
}

// New creates the scorer selected by cfg.Backend. Model-backed choices are
// wrapped in the fallback decorator; "rules" is returned bare.
func New(cfg Config) (Scorer, error) {
	rules := NewRules(cfg.Rules)

	switch strings.ToLower(cfg.Backend) {
	case "", "rules":
		return rules, nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: openai backend requires an API key", entity.ErrConfiguration)
		}
		return WithFallback(NewOpenAI(cfg.APIKey, cfg.Model, cfg.Criteria), rules, cfg.Timeout), nil
	case "claude":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: claude backend requires an API key", entity.ErrConfiguration)
		}
		return WithFallback(NewClaude(cfg.APIKey, cfg.Model, cfg.Criteria), rules, cfg.Timeout), nil
	case "ollama":
		return WithFallback(NewOllama(cfg.OllamaBaseURL, cfg.Model, cfg.Criteria), rules, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("%w: unknown scorer backend %q", entity.ErrConfiguration, cfg.Backend)
	}
}
