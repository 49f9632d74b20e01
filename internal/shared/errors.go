package shared

import "fmt"

// Sign-in and session errors
var (
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not signed in")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrTimeout          = fmt.Errorf("operation timed out")
	ErrInvalidIdentity  = fmt.Errorf("invalid identity")
	ErrNoDisplay        = fmt.Errorf("no graphical display available")
)

// Storage and configuration errors
var (
	ErrNotFound           = fmt.Errorf("not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing OAuth client credentials")
)

// YouTube Data API errors
var ErrAPIRequest = fmt.Errorf("YouTube API request failed")

// Command line errors
var (
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
