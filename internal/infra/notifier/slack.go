package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Slack truncates long messages itself; keep ours readable.
const maxSlackBodyLength = 3000

// SlackConfig contains configuration for Slack webhook notifications.
type SlackConfig struct {
	// Enabled indicates whether Slack notifications are enabled
	Enabled bool

	// WebhookURL is the Slack Incoming Webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Slack API calls
	Timeout time.Duration
}

// SlackTransport sends push notifications to a Slack channel via Incoming Webhook.
type SlackTransport struct {
	config      SlackConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewSlackTransport creates a new SlackTransport with the specified configuration.
//
// The transport is initialized with:
//   - HTTP client with configured timeout
//   - Rate limiter set to 1 request/second with burst of 3
//     (Slack Incoming Webhooks allow roughly one message per second)
func NewSlackTransport(config SlackConfig) *SlackTransport {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &SlackTransport{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(1.0, 3),
	}
}

// Name implements Transport.
func (s *SlackTransport) Name() string { return "slack" }

// IsEnabled implements Transport.
func (s *SlackTransport) IsEnabled() bool {
	return s.config.Enabled && s.config.WebhookURL != ""
}

// slackPayload represents the JSON payload for the webhook endpoint.
// Plain mrkdwn text keeps the payload compatible with every webhook setup.
type slackPayload struct {
	Text string `json:"text"`
}

// buildPayload creates a Slack webhook payload from a message.
func (s *SlackTransport) buildPayload(msg Message) slackPayload {
	title := msg.Title
	if msg.Critical {
		title = "🚨 " + title
	}

	text := fmt.Sprintf("*%s*\n%s", title, truncateBody(msg.Body, maxSlackBodyLength, "..."))
	if msg.URL != "" {
		text += "\n" + msg.URL
	}
	return slackPayload{Text: text}
}

// sendRequest sends one webhook request.
//
// Error types:
//   - 429: Rate limit error (retryable, contains retry_after duration)
//   - 4xx (non-429): Client error (non-retryable)
//   - 5xx: Server error (retryable)
//   - Network error: Connection/timeout error (retryable)
func (s *SlackTransport) sendRequest(ctx context.Context, msg Message) error {
	jsonData, err := json.Marshal(s.buildPayload(msg))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			Message:    "Slack rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, body),
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Slack API client error: %s", string(body)),
		}
	}

	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Slack API server error: %s", string(body)),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// Send implements Transport.
//
// It performs the following steps:
//  1. Generate unique request_id for tracing
//  2. Apply rate limiting to prevent API abuse
//  3. Send the webhook request with retry logic
func (s *SlackTransport) Send(ctx context.Context, msg Message) error {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("starting slack notification",
		slog.String("request_id", requestID),
		slog.String("title", msg.Title),
		slog.Bool("critical", msg.Critical))

	if err := s.rateLimiter.Allow(ctx); err != nil {
		slog.Error("rate limiter error",
			slog.String("request_id", requestID),
			slog.Any("error", err))
		return fmt.Errorf("rate limiter error: %w", err)
	}

	return sendWithRetry(ctx, s.Name(), msg, s.sendRequest)
}
