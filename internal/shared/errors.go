package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrTokenExchange = fmt.Errorf("token exchange failed")
	ErrNoAccessToken = fmt.Errorf("no access token in response")

	// Upstream errors
	ErrAPIRequest     = fmt.Errorf("API request failed")
	ErrUpstreamStatus = fmt.Errorf("upstream returned error status")
	ErrInvalidPayload = fmt.Errorf("upstream returned invalid JSON")

	// History errors
	ErrHistoryDisabled = fmt.Errorf("search history is disabled")
	ErrSearchNotFound  = fmt.Errorf("search record not found")

	// Input errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
