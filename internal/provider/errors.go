package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// AuthenticationError indicates the backend rejected the configured
// credential. Permanent: retrying with the same credential cannot succeed.
type AuthenticationError struct {
	Provider string
	Err      error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s authentication failed: %v", e.Provider, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// BackendUnavailableError indicates a network failure, timeout, or 5xx from
// the backend. Transient: the same call may succeed later.
type BackendUnavailableError struct {
	Provider string
	Err      error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("%s backend unavailable: %v", e.Provider, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Err }

// MalformedResponseError indicates the backend answered but the payload
// could not be parsed, either the provider envelope or the model's own
// JSON output.
type MalformedResponseError struct {
	Provider string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s returned a malformed response: %v", e.Provider, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// RateLimitError indicates the backend returned HTTP 429. Transient.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// IsTransient reports whether a failed extraction is worth retrying.
// Callers own retry policy; the adapters only classify.
func IsTransient(err error) bool {
	var unavail *BackendUnavailableError
	var rl *RateLimitError
	return errors.As(err, &unavail) || errors.As(err, &rl)
}

// ClassifyStatus maps a non-200 backend status to the adapter error
// taxonomy. The body is included in the wrapped error for diagnostics.
func ClassifyStatus(providerName string, status int, body []byte, retryAfterHeader string) error {
	baseErr := fmt.Errorf("%s API error (status %d): %s", providerName, status, string(body))
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthenticationError{Provider: providerName, Err: baseErr}
	case status == http.StatusTooManyRequests:
		return NewRateLimitError(providerName, baseErr, ParseRetryAfterHeader(retryAfterHeader))
	case status >= 500:
		return &BackendUnavailableError{Provider: providerName, Err: baseErr}
	default:
		return &MalformedResponseError{Provider: providerName, Err: baseErr}
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}
