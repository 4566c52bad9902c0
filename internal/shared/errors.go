package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrMalformedCallback = fmt.Errorf("malformed callback")
	ErrExchangeRejected  = fmt.Errorf("authorization code exchange rejected")
	ErrSessionExpired    = fmt.Errorf("session expired")
	ErrNotAuthenticated  = fmt.Errorf("not authenticated")
	ErrNoToken           = fmt.Errorf("no stored token")
	ErrTimeout           = fmt.Errorf("operation timed out")

	// API and service errors
	ErrUnauthorized = fmt.Errorf("access token rejected")
	ErrRateLimited  = fmt.Errorf("rate limited")
	ErrTransient    = fmt.Errorf("transient failure")
	ErrUnexpected   = fmt.Errorf("unexpected API response")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
