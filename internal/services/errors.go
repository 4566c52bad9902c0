package services

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/spotstats/internal/shared"
)

// AuthError is a failure of the authorization flow.
//
// Kind is one of [shared.ErrMalformedCallback], [shared.ErrExchangeRejected], [shared.ErrSessionExpired],
// [shared.ErrNotAuthenticated], [shared.ErrTransient] or [shared.ErrMissingConfig], so callers can match with [errors.Is].
type AuthError struct {
	Kind    error
	Status  int    // HTTP status from the token endpoint, when one was received
	Code    string // OAuth error code, e.g. invalid_grant
	Payload string // raw token endpoint response body
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil && errors.Is(e.Err, e.Kind) {
		return e.Err.Error()
	}

	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Code != "" {
		b.WriteString(": " + e.Code)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *AuthError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// APIError is a failed read against the Spotify Web API.
//
// Kind is one of [shared.ErrUnauthorized], [shared.ErrRateLimited], [shared.ErrTransient] or [shared.ErrUnexpected].
type APIError struct {
	Kind       error
	Status     int
	RetryAfter time.Duration // provider backoff hint, zero when absent
	Message    string        // provider error message
	Err        error
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	if e.RetryAfter > 0 {
		fmt.Fprintf(&b, " (retry after %s)", e.RetryAfter)
	}
	return b.String()
}

func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Retryable reports whether repeating the request may succeed.
func (e *APIError) Retryable() bool {
	return errors.Is(e.Kind, shared.ErrRateLimited) || errors.Is(e.Kind, shared.ErrTransient)
}

// ErrorKind returns a stable snake_case name for the error's kind, for logs and JSON responses.
func ErrorKind(err error) string {
	kinds := []struct {
		target error
		name   string
	}{
		{shared.ErrMissingConfig, "missing_config"},
		{shared.ErrMalformedCallback, "malformed_callback"},
		{shared.ErrExchangeRejected, "exchange_rejected"},
		{shared.ErrSessionExpired, "session_expired"},
		{shared.ErrNotAuthenticated, "not_authenticated"},
		{shared.ErrUnauthorized, "unauthorized"},
		{shared.ErrRateLimited, "rate_limited"},
		{shared.ErrTransient, "transient"},
		{shared.ErrUnexpected, "unexpected"},
		{shared.ErrInvalidArgument, "invalid_argument"},
	}

	for _, k := range kinds {
		if errors.Is(err, k.target) {
			return k.name
		}
	}
	return "internal"
}

// NeedsLogin reports whether the user must restart the authorization flow.
func NeedsLogin(err error) bool {
	return errors.Is(err, shared.ErrSessionExpired) ||
		errors.Is(err, shared.ErrNotAuthenticated) ||
		errors.Is(err, shared.ErrUnauthorized)
}

// parseRetryAfter reads a Retry-After header given in seconds or as an HTTP date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}

	return 0
}
