package provider_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invaudit/internal/provider"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		retryAfter string
		wantType   any
		transient  bool
	}{
		{"unauthorized", 401, "", &provider.AuthenticationError{}, false},
		{"forbidden", 403, "", &provider.AuthenticationError{}, false},
		{"rate_limited", 429, "30", &provider.RateLimitError{}, true},
		{"server_error", 500, "", &provider.BackendUnavailableError{}, true},
		{"bad_gateway", 502, "", &provider.BackendUnavailableError{}, true},
		{"unexpected_client_error", 404, "", &provider.MalformedResponseError{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := provider.ClassifyStatus("openai", tt.status, []byte(`{"error":"boom"}`), tt.retryAfter)
			require.Error(t, err)

			switch want := tt.wantType.(type) {
			case *provider.AuthenticationError:
				assert.True(t, errors.As(err, &want))
			case *provider.RateLimitError:
				assert.True(t, errors.As(err, &want))
				assert.Equal(t, 30*time.Second, want.RetryAfter)
			case *provider.BackendUnavailableError:
				assert.True(t, errors.As(err, &want))
			case *provider.MalformedResponseError:
				assert.True(t, errors.As(err, &want))
			}

			assert.Equal(t, tt.transient, provider.IsTransient(err))
			assert.Contains(t, err.Error(), "openai")
		})
	}
}

func TestRateLimitError_DefaultRetryAfter(t *testing.T) {
	err := provider.NewRateLimitError("gemini", fmt.Errorf("too many requests"), 0)
	assert.Equal(t, 60*time.Second, err.RetryAfter)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, provider.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, provider.ParseRetryAfterHeader("Wed, 21 Oct 2026 07:28:00 GMT"))
	assert.Equal(t, 15, provider.ParseRetryAfterHeader("15"))
}

func TestIsTransient_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("extracting document: %w", &provider.BackendUnavailableError{
		Provider: "claude",
		Err:      fmt.Errorf("connection refused"),
	})
	assert.True(t, provider.IsTransient(wrapped))

	permanent := fmt.Errorf("extracting document: %w", &provider.AuthenticationError{
		Provider: "claude",
		Err:      fmt.Errorf("invalid x-api-key"),
	})
	assert.False(t, provider.IsTransient(permanent))
}

func TestErrorUnwrap(t *testing.T) {
	inner := fmt.Errorf("root cause")
	var err error = &provider.MalformedResponseError{Provider: "groq", Err: inner}
	assert.ErrorIs(t, err, inner)
}
