package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// sendWithRetry drives one transport's request function with the retry
// policy shared by all push transports.
//
// Retry strategy:
//   - Max attempts: 2
//   - Base delay: 5 seconds
//   - 429 errors: Use retry_after from the service response
//   - Server errors (5xx): Exponential backoff (5s, 10s)
//   - Client errors (4xx): No retry, fail immediately
//
// All attempts are logged with request_id for tracing.
func sendWithRetry(ctx context.Context, transportName string, msg Message, send func(context.Context, Message) error) error {
	const (
		maxAttempts = 2
		baseDelay   = 5 * time.Second
	)

	requestID, _ := ctx.Value(requestIDKey).(string)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := send(ctx, msg)

		if err == nil {
			slog.Info("push notification successful",
				slog.String("request_id", requestID),
				slog.String("transport", transportName),
				slog.String("title", msg.Title),
				slog.Int("attempt", attempt))
			return nil
		}

		lastErr = err

		if rateLimitErr, ok := is429Error(err); ok {
			slog.Warn("push rate limit hit, backing off",
				slog.String("request_id", requestID),
				slog.String("transport", transportName),
				slog.Duration("retry_after", rateLimitErr.RetryAfter),
				slog.Int("attempt", attempt))

			select {
			case <-time.After(rateLimitErr.RetryAfter):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during rate limit backoff: %w", ctx.Err())
			}
		}

		if !isRetryableError(err) {
			slog.Error("push notification failed with non-retryable error",
				slog.String("request_id", requestID),
				slog.String("transport", transportName),
				slog.String("title", msg.Title),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return err
		}

		if attempt < maxAttempts {
			delay := baseDelay * time.Duration(attempt)
			slog.Warn("push request failed, retrying",
				slog.String("request_id", requestID),
				slog.String("transport", transportName),
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))

			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
			}
		}
	}

	slog.Error("push notification failed after all retries",
		slog.String("request_id", requestID),
		slog.String("transport", transportName),
		slog.String("title", msg.Title),
		slog.Any("error", lastErr),
		slog.Int("max_attempts", maxAttempts))

	return fmt.Errorf("%s notification failed after %d attempts: %w", transportName, maxAttempts, lastErr)
}
