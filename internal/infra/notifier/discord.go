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

// Discord embed description limit is 4096; leave headroom for the footer.
const maxDiscordBodyLength = 4000

// discordColorCritical and discordColorNormal are the embed accent colors.
const (
	discordColorCritical = 0xE74C3C
	discordColorNormal   = 0x3498DB
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	// Enabled indicates whether Discord notifications are enabled
	Enabled bool

	// WebhookURL is the Discord webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Discord API calls
	Timeout time.Duration
}

// DiscordTransport sends push notifications to a Discord channel via webhook.
type DiscordTransport struct {
	config      DiscordConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewDiscordTransport creates a new DiscordTransport with the specified configuration.
//
// The transport is initialized with:
//   - HTTP client with configured timeout
//   - Rate limiter set to 5 requests/second with burst of 10
//     (Discord webhooks allow 30 requests/minute per webhook)
func NewDiscordTransport(config DiscordConfig) *DiscordTransport {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &DiscordTransport{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(5.0, 10),
	}
}

// Name implements Transport.
func (d *DiscordTransport) Name() string { return "discord" }

// IsEnabled implements Transport.
func (d *DiscordTransport) IsEnabled() bool {
	return d.config.Enabled && d.config.WebhookURL != ""
}

// discordEmbed represents a single embed in a Discord webhook payload.
type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	Color       int    `json:"color"`
}

// discordPayload represents the JSON payload for the webhook endpoint.
type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// buildPayload creates a Discord webhook payload from a message.
func (d *DiscordTransport) buildPayload(msg Message) discordPayload {
	color := discordColorNormal
	title := msg.Title
	if msg.Critical {
		color = discordColorCritical
		title = "🚨 " + title
	}

	return discordPayload{
		Embeds: []discordEmbed{{
			Title:       title,
			Description: truncateBody(msg.Body, maxDiscordBodyLength, "..."),
			URL:         msg.URL,
			Color:       color,
		}},
	}
}

// sendRequest sends one webhook request.
//
// Error types:
//   - 429: Rate limit error (retryable, contains retry_after duration)
//   - 4xx (non-429): Client error (non-retryable)
//   - 5xx: Server error (retryable)
//   - Network error: Connection/timeout error (retryable)
func (d *DiscordTransport) sendRequest(ctx context.Context, msg Message) error {
	jsonData, err := json.Marshal(d.buildPayload(msg))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
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
			Message:    "Discord rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, body),
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Discord API client error: %s", string(body)),
		}
	}

	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Discord API server error: %s", string(body)),
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
func (d *DiscordTransport) Send(ctx context.Context, msg Message) error {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("starting discord notification",
		slog.String("request_id", requestID),
		slog.String("title", msg.Title),
		slog.Bool("critical", msg.Critical))

	if err := d.rateLimiter.Allow(ctx); err != nil {
		slog.Error("rate limiter error",
			slog.String("request_id", requestID),
			slog.Any("error", err))
		return fmt.Errorf("rate limiter error: %w", err)
	}

	return sendWithRetry(ctx, d.Name(), msg, d.sendRequest)
}
