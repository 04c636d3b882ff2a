package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"newswatch/internal/domain/entity"
	"newswatch/internal/observability/metrics"
	"newswatch/internal/resilience/circuitbreaker"
	"newswatch/internal/resilience/retry"
)

const (
	// defaultOllamaBaseURL targets a local Ollama install.
	defaultOllamaBaseURL = "http://localhost:11434"

	// defaultOllamaModel is used when no model is configured.
	defaultOllamaModel = "llama3.2"
)

// Ollama implements Scorer against a local Ollama model server.
// No SDK is needed; the generate endpoint is a single JSON POST.
type Ollama struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	baseURL        string
	model          string
	criteria       string
}

// NewOllama creates a new Ollama scorer for the given server address.
func NewOllama(baseURL, model, criteria string) *Ollama {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	if model == "" {
		model = defaultOllamaModel
	}

	slog.Info("initialized ollama scorer",
		slog.String("base_url", baseURL),
		slog.String("model", model))

	return &Ollama{
		client:         &http.Client{},
		circuitBreaker: circuitbreaker.New(circuitbreaker.OllamaAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		baseURL:        baseURL,
		model:          model,
		criteria:       criteria,
	}
}

// Name implements Scorer.
func (o *Ollama) Name() string { return "ollama" }

// Score implements Scorer.
func (o *Ollama) Score(ctx context.Context, article entity.Article) (entity.ScoredArticle, error) {
	var result entity.ScoredArticle

	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doScore(ctx, article)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("ollama circuit breaker open, request rejected",
					slog.String("service", "ollama-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("ollama unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(entity.ScoredArticle)
		return nil
	})

	if retryErr != nil {
		return entity.ScoredArticle{}, fmt.Errorf("%w: ollama score failed after retries: %v", entity.ErrScoringBackend, retryErr)
	}

	return result, nil
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// doScore performs the actual API call without retry or circuit breaker.
func (o *Ollama) doScore(ctx context.Context, article entity.Article) (entity.ScoredArticle, error) {
	prompt := buildScoringPrompt(o.criteria, article.Title, article.Summary)

	payload, err := json.Marshal(ollamaGenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return entity.ScoredArticle{}, fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return entity.ScoredArticle{}, fmt.Errorf("build ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := o.client.Do(req)
	duration := time.Since(start)
	metrics.RecordScoringDuration(o.Name(), duration)

	if err != nil {
		metrics.RecordArticleScored(o.Name(), false)
		return entity.ScoredArticle{}, fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordArticleScored(o.Name(), false)
		return entity.ScoredArticle{}, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    "ollama generate failed",
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.RecordArticleScored(o.Name(), false)
		return entity.ScoredArticle{}, fmt.Errorf("read ollama response: %w", err)
	}

	var gen ollamaGenerateResponse
	if err := json.Unmarshal(body, &gen); err != nil {
		metrics.RecordArticleScored(o.Name(), false)
		return entity.ScoredArticle{}, fmt.Errorf("decode ollama response: %w", err)
	}

	score, rationale, err := ParseModelResponse(gen.Response)
	if err != nil {
		metrics.RecordArticleScored(o.Name(), false)
		return entity.ScoredArticle{}, fmt.Errorf("ollama response: %w", err)
	}

	metrics.RecordArticleScored(o.Name(), true)

	return entity.ScoredArticle{
		Article:    article,
		Score:      entity.ClampScore(score),
		Rationale:  rationale,
		ScorerName: o.Name(),
	}, nil
}
