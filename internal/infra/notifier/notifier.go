// Package notifier provides push notification transports for scored articles.
// It defines the Transport interface which allows different push services
// (Pushbullet, Pushover, Discord, Slack) to be used interchangeably through
// dependency injection.
//
// The package includes implementations for the Pushbullet and Pushover APIs,
// webhook transports for Discord and Slack, and a no-op transport for when
// notifications are disabled.
package notifier

import "context"

// Message is one push notification, already formatted for delivery.
type Message struct {
	// Title is the notification headline.
	Title string

	// Body is the notification text.
	Body string

	// URL links to the full article; transports that support link pushes
	// attach it, others append it to the body.
	URL string

	// Critical marks emergency-tier notifications. Transports map it to
	// their high-priority mechanism where one exists.
	Critical bool
}

// Transport is an interface for sending push notifications.
// Implementations should handle rate limiting, retries, and error logging internally.
type Transport interface {
	// Name returns the transport identifier for logging and metrics.
	Name() string

	// IsEnabled reports whether the transport is configured and active.
	// Disabled transports are skipped without error.
	IsEnabled() bool

	// Send delivers one notification.
	//
	// Implementations should:
	//   - Generate a unique request ID for tracing
	//   - Apply rate limiting to prevent API abuse
	//   - Retry transient failures with backoff
	//   - Log all attempts with the request ID for debugging
	//   - Respect context cancellation
	Send(ctx context.Context, msg Message) error
}
