package scorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"newswatch/internal/domain/entity"
	"newswatch/internal/observability/metrics"
	"newswatch/internal/resilience/circuitbreaker"
	"newswatch/internal/resilience/retry"
)

// defaultClaudeModel is used when no model is configured.
var defaultClaudeModel = string(anthropic.ModelClaudeSonnet4_5_20250929)

// Claude implements Scorer using Anthropic's Claude API.
// It includes circuit breaker and retry logic for improved reliability.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	model          string
	criteria       string
}

// NewClaude creates a new Claude scorer with the given API key.
// It automatically configures circuit breaker and retry logic.
func NewClaude(apiKey, model, criteria string) *Claude {
	if model == "" {
		model = defaultClaudeModel
	}

	slog.Info("initialized claude scorer",
		slog.String("model", model))

	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		model:          model,
		criteria:       criteria,
	}
}

// Name implements Scorer.
func (c *Claude) Name() string { return "claude" }

// Score implements Scorer. It uses circuit breaker and retry logic around
// the API call and parses the model's Score/Rationale reply.
func (c *Claude) Score(ctx context.Context, article entity.Article) (entity.ScoredArticle, error) {
	var result entity.ScoredArticle

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doScore(ctx, article)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(entity.ScoredArticle)
		return nil
	})

	if retryErr != nil {
		return entity.ScoredArticle{}, fmt.Errorf("%w: claude score failed after retries: %v", entity.ErrScoringBackend, retryErr)
	}

	return result, nil
}

// doScore performs the actual API call without retry or circuit breaker.
func (c *Claude) doScore(ctx context.Context, article entity.Article) (entity.ScoredArticle, error) {
	requestID := uuid.New().String()
	prompt := buildScoringPrompt(c.criteria, article.Title, article.Summary)

	slog.InfoContext(ctx, "starting model scoring",
		slog.String("request_id", requestID),
		slog.String("backend", c.Name()),
		slog.String("title", article.Title))

	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 256,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})

	duration := time.Since(start)
	metrics.RecordScoringDuration(c.Name(), duration)

	if err != nil {
		metrics.RecordArticleScored(c.Name(), false)
		slog.ErrorContext(ctx, "model scoring failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return entity.ScoredArticle{}, fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		metrics.RecordArticleScored(c.Name(), false)
		return entity.ScoredArticle{}, fmt.Errorf("claude api returned empty response")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		metrics.RecordArticleScored(c.Name(), false)
		return entity.ScoredArticle{}, fmt.Errorf("claude api returned unexpected response type")
	}

	score, rationale, err := ParseModelResponse(textBlock.Text)
	if err != nil {
		metrics.RecordArticleScored(c.Name(), false)
		return entity.ScoredArticle{}, fmt.Errorf("claude response: %w", err)
	}

	slog.InfoContext(ctx, "model scoring completed",
		slog.String("request_id", requestID),
		slog.Float64("score", score),
		slog.Duration("duration", duration))

	metrics.RecordArticleScored(c.Name(), true)

	return entity.ScoredArticle{
		Article:    article,
		Score:      entity.ClampScore(score),
		Rationale:  rationale,
		ScorerName: c.Name(),
	}, nil
}
