package notifier

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateBody(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxLength int
		want      string
	}{
		{
			name:      "shorter than max",
			text:      "short body",
			maxLength: 100,
			want:      "short body",
		},
		{
			name:      "exactly max",
			text:      "12345",
			maxLength: 5,
			want:      "12345",
		},
		{
			name:      "truncated with suffix",
			text:      "1234567890",
			maxLength: 8,
			want:      "12345...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateBody(tt.text, tt.maxLength, "...")
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), tt.maxLength)
		})
	}
}

func TestExtractRetryAfter(t *testing.T) {
	newResponse := func(header string) *http.Response {
		recorder := httptest.NewRecorder()
		if header != "" {
			recorder.Header().Set("Retry-After", header)
		}
		recorder.WriteHeader(http.StatusTooManyRequests)
		return recorder.Result()
	}

	t.Run("json body takes precedence", func(t *testing.T) {
		got := extractRetryAfter(newResponse("30"), []byte(`{"retry_after": 2.5}`))
		assert.Equal(t, 2500*time.Millisecond, got)
	})

	t.Run("retry-after header", func(t *testing.T) {
		got := extractRetryAfter(newResponse("30"), []byte(`{}`))
		assert.Equal(t, 30*time.Second, got)
	})

	t.Run("default without hints", func(t *testing.T) {
		got := extractRetryAfter(newResponse(""), nil)
		assert.Equal(t, 5*time.Second, got)
	})

	t.Run("unparseable header falls back to default", func(t *testing.T) {
		got := extractRetryAfter(newResponse("soon"), nil)
		assert.Equal(t, 5*time.Second, got)
	})
}

func TestIs429Error(t *testing.T) {
	rateLimitErr := &RateLimitError{RetryAfter: 10 * time.Second}

	got, ok := is429Error(rateLimitErr)
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, got.RetryAfter)

	_, ok = is429Error(errors.New("something else"))
	assert.False(t, ok)

	wrapped := &RateLimitError{RetryAfter: time.Second}
	got, ok = is429Error(wrapError(wrapped))
	require.True(t, ok)
	assert.Equal(t, time.Second, got.RetryAfter)
}

func wrapError(err error) error {
	return &wrappedError{inner: err}
}

type wrappedError struct{ inner error }

func (w *wrappedError) Error() string { return "wrapped: " + w.inner.Error() }
func (w *wrappedError) Unwrap() error { return w.inner }

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{
			name:      "server error",
			err:       &ServerError{StatusCode: 503, Message: "unavailable"},
			retryable: true,
		},
		{
			name:      "client error",
			err:       &ClientError{StatusCode: 400, Message: "bad request"},
			retryable: false,
		},
		{
			name:      "rate limit handled separately",
			err:       &RateLimitError{RetryAfter: time.Second},
			retryable: false,
		},
		{
			name:      "network error",
			err:       errors.New("connection reset"),
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableError(tt.err))
		})
	}
}

func TestRateLimitError_Error(t *testing.T) {
	err := &RateLimitError{RetryAfter: 10 * time.Second}
	assert.True(t, strings.Contains(err.Error(), "rate limit exceeded"))

	withMessage := &RateLimitError{RetryAfter: 10 * time.Second, Message: "Pushover rate limit exceeded"}
	assert.True(t, strings.Contains(withMessage.Error(), "Pushover rate limit exceeded"))
}
