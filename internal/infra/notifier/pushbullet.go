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

// defaultPushbulletAPIURL is the Pushbullet pushes endpoint.
const defaultPushbulletAPIURL = "https://api.pushbullet.com/v2/pushes"

// Pushbullet body limit is generous; keep pushes readable on a phone.
const maxPushbulletBodyLength = 2000

// PushbulletConfig contains configuration for Pushbullet notifications.
type PushbulletConfig struct {
	// Enabled indicates whether Pushbullet notifications are enabled
	Enabled bool

	// AccessToken is the Pushbullet API access token
	AccessToken string

	// APIURL overrides the Pushbullet endpoint, used in tests
	APIURL string

	// Timeout is the HTTP request timeout for Pushbullet API calls
	Timeout time.Duration
}

// PushbulletTransport sends push notifications via the Pushbullet API.
type PushbulletTransport struct {
	config      PushbulletConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewPushbulletTransport creates a new PushbulletTransport with the specified configuration.
//
// The transport is initialized with:
//   - HTTP client with configured timeout
//   - Rate limiter set to 2 requests/second with burst of 4
//     (well under Pushbullet's per-minute quota)
func NewPushbulletTransport(config PushbulletConfig) *PushbulletTransport {
	if config.APIURL == "" {
		config.APIURL = defaultPushbulletAPIURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &PushbulletTransport{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(2.0, 4),
	}
}

// Name implements Transport.
func (p *PushbulletTransport) Name() string { return "pushbullet" }

// IsEnabled implements Transport.
func (p *PushbulletTransport) IsEnabled() bool {
	return p.config.Enabled && p.config.AccessToken != ""
}

// pushbulletPayload represents the JSON payload for the pushes endpoint.
// Type "link" attaches a URL; "note" is plain title plus body.
type pushbulletPayload struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// buildPayload creates a Pushbullet push from a message.
func (p *PushbulletTransport) buildPayload(msg Message) pushbulletPayload {
	title := msg.Title
	if msg.Critical {
		title = "🚨 " + title
	}

	payload := pushbulletPayload{
		Type:  "note",
		Title: title,
		Body:  truncateBody(msg.Body, maxPushbulletBodyLength, "..."),
	}
	if msg.URL != "" {
		payload.Type = "link"
		payload.URL = msg.URL
	}
	return payload
}

// sendRequest sends one push request.
//
// Error types:
//   - 429: Rate limit error (retryable, contains retry_after duration)
//   - 4xx (non-429): Client error (non-retryable)
//   - 5xx: Server error (retryable)
//   - Network error: Connection/timeout error (retryable)
func (p *PushbulletTransport) sendRequest(ctx context.Context, msg Message) error {
	jsonData, err := json.Marshal(p.buildPayload(msg))
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.APIURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}

	req.Header.Set("Access-Token", p.config.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
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
			Message:    "Pushbullet rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, body),
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Pushbullet API client error: %s", string(body)),
		}
	}

	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Pushbullet API server error: %s", string(body)),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// Send implements Transport.
//
// It performs the following steps:
//  1. Generate unique request_id for tracing
//  2. Apply rate limiting to prevent API abuse
//  3. Send the push request with retry logic
func (p *PushbulletTransport) Send(ctx context.Context, msg Message) error {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("starting pushbullet notification",
		slog.String("request_id", requestID),
		slog.String("title", msg.Title),
		slog.Bool("critical", msg.Critical))

	if err := p.rateLimiter.Allow(ctx); err != nil {
		slog.Error("rate limiter error",
			slog.String("request_id", requestID),
			slog.Any("error", err))
		return fmt.Errorf("rate limiter error: %w", err)
	}

	return sendWithRetry(ctx, p.Name(), msg, p.sendRequest)
}
