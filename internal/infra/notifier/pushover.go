package notifier

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// defaultPushoverAPIURL is the Pushover messages endpoint.
const defaultPushoverAPIURL = "https://api.pushover.net/1/messages.json"

// Pushover rejects messages over 1024 characters.
const maxPushoverBodyLength = 1024

// PushoverConfig contains configuration for Pushover notifications.
type PushoverConfig struct {
	// Enabled indicates whether Pushover notifications are enabled
	Enabled bool

	// Token is the Pushover application API token
	Token string

	// UserKey is the Pushover user (or group) key
	UserKey string

	// APIURL overrides the Pushover endpoint, used in tests
	APIURL string

	// Timeout is the HTTP request timeout for Pushover API calls
	Timeout time.Duration
}

// PushoverTransport sends push notifications via the Pushover API.
type PushoverTransport struct {
	config      PushoverConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewPushoverTransport creates a new PushoverTransport with the specified configuration.
func NewPushoverTransport(config PushoverConfig) *PushoverTransport {
	if config.APIURL == "" {
		config.APIURL = defaultPushoverAPIURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &PushoverTransport{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(2.0, 4),
	}
}

// Name implements Transport.
func (p *PushoverTransport) Name() string { return "pushover" }

// IsEnabled implements Transport.
func (p *PushoverTransport) IsEnabled() bool {
	return p.config.Enabled && p.config.Token != "" && p.config.UserKey != ""
}

// buildForm creates the Pushover form payload from a message.
// Critical notifications use priority 1, which bypasses the recipient's
// quiet hours.
func (p *PushoverTransport) buildForm(msg Message) url.Values {
	form := url.Values{}
	form.Set("token", p.config.Token)
	form.Set("user", p.config.UserKey)
	form.Set("title", msg.Title)
	form.Set("message", truncateBody(msg.Body, maxPushoverBodyLength, "..."))
	if msg.URL != "" {
		form.Set("url", msg.URL)
	}
	if msg.Critical {
		form.Set("priority", "1")
	}
	return form
}

// sendRequest sends one push request.
func (p *PushoverTransport) sendRequest(ctx context.Context, msg Message) error {
	form := p.buildForm(msg)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.APIURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

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
			Message:    "Pushover rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, body),
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Pushover API client error: %s", string(body)),
		}
	}

	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Pushover API server error: %s", string(body)),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// Send implements Transport.
func (p *PushoverTransport) Send(ctx context.Context, msg Message) error {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("starting pushover notification",
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
