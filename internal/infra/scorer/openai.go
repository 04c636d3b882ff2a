package scorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"newswatch/internal/domain/entity"
	"newswatch/internal/observability/metrics"
	"newswatch/internal/resilience/circuitbreaker"
	"newswatch/internal/resilience/retry"
)

// defaultOpenAIModel is used when no model is configured.
const defaultOpenAIModel = "gpt-4o-mini"

// OpenAI implements Scorer using OpenAI's chat completion API.
// It includes circuit breaker and retry logic for improved reliability.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	model          string
	criteria       string
}

// NewOpenAI creates a new OpenAI scorer with the given API key.
// It automatically configures circuit breaker and retry logic.
func NewOpenAI(apiKey, model, criteria string) *OpenAI {
	if model == "" {
		model = defaultOpenAIModel
	}

	slog.Info("initialized openai scorer",
		slog.String("model", model))

	return &OpenAI{
		client:         openai.NewClient(apiKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		model:          model,
		criteria:       criteria,
	}
}

// Name implements Scorer.
func (o *OpenAI) Name() string { return "openai" }

// Score implements Scorer. It uses circuit breaker and retry logic around
// the API call and parses the model's Score/Rationale reply.
func (o *OpenAI) Score(ctx context.Context, article entity.Article) (entity.ScoredArticle, error) {
	var result entity.ScoredArticle

	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doScore(ctx, article)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(entity.ScoredArticle)
		return nil
	})

	if retryErr != nil {
		return entity.ScoredArticle{}, fmt.Errorf("%w: openai score failed after retries: %v", entity.ErrScoringBackend, retryErr)
	}

	return result, nil
}

// doScore performs the actual API call without retry or circuit breaker.
func (o *OpenAI) doScore(ctx context.Context, article entity.Article) (entity.ScoredArticle, error) {
	prompt := buildScoringPrompt(o.criteria, article.Title, article.Summary)

	slog.InfoContext(ctx, "starting model scoring",
		slog.String("backend", o.Name()),
		slog.String("title", article.Title))

	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    "user",
			Content: prompt,
		}},
	})

	duration := time.Since(start)
	metrics.RecordScoringDuration(o.Name(), duration)

	if err != nil {
		metrics.RecordArticleScored(o.Name(), false)
		slog.ErrorContext(ctx, "model scoring failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return entity.ScoredArticle{}, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		metrics.RecordArticleScored(o.Name(), false)
		return entity.ScoredArticle{}, fmt.Errorf("openai api returned empty response")
	}

	score, rationale, err := ParseModelResponse(resp.Choices[0].Message.Content)
	if err != nil {
		metrics.RecordArticleScored(o.Name(), false)
		return entity.ScoredArticle{}, fmt.Errorf("openai response: %w", err)
	}

	slog.InfoContext(ctx, "model scoring completed",
		slog.Float64("score", score),
		slog.Duration("duration", duration))

	metrics.RecordArticleScored(o.Name(), true)

	return entity.ScoredArticle{
		Article:    article,
		Score:      entity.ClampScore(score),
		Rationale:  rationale,
		ScorerName: o.Name(),
	}, nil
}
