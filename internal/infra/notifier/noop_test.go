package notifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoOpTransport_Name(t *testing.T) {
	transport := NewNoOpTransport()
	assert.Equal(t, "noop", transport.Name())
}

func TestNoOpTransport_IsEnabled(t *testing.T) {
	transport := NewNoOpTransport()
	assert.True(t, transport.IsEnabled(), "no-op transport should always be enabled")
}

func TestNoOpTransport_Send(t *testing.T) {
	transport := NewNoOpTransport()

	err := transport.Send(context.Background(), Message{
		Title:    "Test Article",
		Body:     "Body text\n\nSource: Test Feed\nScore: 8.0/10",
		URL:      "https://example.com/article",
		Critical: false,
	})

	assert.NoError(t, err)
}

func TestNoOpTransport_SendWithCanceledContext(t *testing.T) {
	transport := NewNoOpTransport()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := transport.Send(ctx, Message{Title: "Test"})
	assert.NoError(t, err, "no-op transport ignores context state")
}
