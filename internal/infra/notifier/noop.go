package notifier

import "context"

// NoOpTransport is a no-operation implementation of the Transport interface.
// It is used when notifications are disabled to avoid null checks in the code.
// This follows the Null Object pattern.
type NoOpTransport struct{}

// NewNoOpTransport creates a new NoOpTransport instance.
func NewNoOpTransport() *NoOpTransport {
	return &NoOpTransport{}
}

// Name implements Transport.
func (n *NoOpTransport) Name() string { return "noop" }

// IsEnabled implements Transport. The no-op transport is always enabled so
// it can stand in for a real transport in dry runs.
func (n *NoOpTransport) IsEnabled() bool { return true }

// Send does nothing and returns nil immediately.
func (n *NoOpTransport) Send(ctx context.Context, msg Message) error {
	// No-op: intentionally does nothing
	return nil
}
