package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlackTransport_IsEnabled(t *testing.T) {
	tests := []struct {
		name   string
		config SlackConfig
		want   bool
	}{
		{
			name:   "enabled with webhook url",
			config: SlackConfig{Enabled: true, WebhookURL: "https://hooks.slack.com/services/T/B/x"},
			want:   true,
		},
		{
			name:   "enabled without webhook url",
			config: SlackConfig{Enabled: true},
			want:   false,
		},
		{
			name:   "disabled",
			config: SlackConfig{Enabled: false, WebhookURL: "https://hooks.slack.com/services/T/B/x"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := NewSlackTransport(tt.config)
			assert.Equal(t, tt.want, transport.IsEnabled())
		})
	}
}

func TestSlackTransport_BuildPayload(t *testing.T) {
	transport := NewSlackTransport(SlackConfig{Enabled: true, WebhookURL: "https://example.com"})

	t.Run("mrkdwn layout", func(t *testing.T) {
		payload := transport.buildPayload(Message{
			Title: "Parliament passes a new law",
			Body:  "details",
			URL:   "https://example.com/law",
		})

		assert.Equal(t, "*Parliament passes a new law*\ndetails\nhttps://example.com/law", payload.Text)
	})

	t.Run("critical marker prepended", func(t *testing.T) {
		payload := transport.buildPayload(Message{Title: "Nuclear talks collapse", Body: "b", Critical: true})

		assert.True(t, strings.HasPrefix(payload.Text, "*🚨 Nuclear talks collapse*"))
	})

	t.Run("no url suffix without url", func(t *testing.T) {
		payload := transport.buildPayload(Message{Title: "t", Body: "b"})

		assert.Equal(t, "*t*\nb", payload.Text)
	})

	t.Run("body bounded", func(t *testing.T) {
		payload := transport.buildPayload(Message{
			Title: "t",
			Body:  strings.Repeat("a", maxSlackBodyLength+500),
		})

		assert.Contains(t, payload.Text, "...")
		assert.Less(t, len(payload.Text), maxSlackBodyLength+100)
	})
}

func TestSlackTransport_Send(t *testing.T) {
	var received slackPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	transport := NewSlackTransport(SlackConfig{
		Enabled:    true,
		WebhookURL: server.URL,
	})

	err := transport.Send(context.Background(), Message{
		Title: "Fed announces emergency rate cut",
		Body:  "The central bank cut rates today.",
		URL:   "https://example.com/rate-cut",
	})
	require.NoError(t, err)

	assert.Contains(t, received.Text, "*Fed announces emergency rate cut*")
	assert.Contains(t, received.Text, "https://example.com/rate-cut")
}

func TestSlackTransport_Send_ClientErrorNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("invalid_token"))
	}))
	defer server.Close()

	transport := NewSlackTransport(SlackConfig{
		Enabled:    true,
		WebhookURL: server.URL,
	})

	err := transport.Send(context.Background(), Message{Title: "t"})
	require.Error(t, err)

	var clientErr *ClientError
	assert.ErrorAs(t, err, &clientErr)
	assert.Equal(t, 1, calls)
}

func TestSlackTransport_SendRequest_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	transport := NewSlackTransport(SlackConfig{
		Enabled:    true,
		WebhookURL: server.URL,
	})

	err := transport.sendRequest(context.Background(), Message{Title: "t"})
	require.Error(t, err)

	var serverErr *ServerError
	assert.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusServiceUnavailable, serverErr.StatusCode)
}
