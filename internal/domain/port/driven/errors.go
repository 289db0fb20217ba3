// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by driven adapters and the services built on them.
var (
	// ErrNotConfigured indicates no Dify API key has been stored or supplied.
	ErrNotConfigured = errors.New("dify api key not configured")

	// ErrModelNotFound indicates the requested AI model registration does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrUpstreamUnavailable wraps transport failures talking to Dify.
	ErrUpstreamUnavailable = errors.New("dify connection error")
)

// UpstreamError is returned when Dify answers with a non-2xx status.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("dify api error: %s", e.Body)
}
