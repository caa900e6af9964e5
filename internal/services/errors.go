package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput covers missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrExtractionFailure is returned when a document cannot be read at all.
	ErrExtractionFailure = errors.New("text extraction failed")
	// ErrProviderFailure covers network errors, non-2xx replies and dropped streams.
	ErrProviderFailure = errors.New("inference provider failure")
	// ErrMalformedFragment marks a streamed line that is not valid JSON. Skippable.
	ErrMalformedFragment = errors.New("malformed fragment")
)

// ProviderError carries the provider's HTTP status when there was one.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() []error {
	return []error{ErrProviderFailure, e.Err}
}

// ErrorKind names the failure category for server-side logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "InvalidInput"
	case errors.Is(err, ErrExtractionFailure):
		return "ExtractionFailure"
	case errors.Is(err, ErrProviderFailure):
		return "ProviderFailure"
	case errors.Is(err, ErrMalformedFragment):
		return "MalformedFragment"
	default:
		return "Internal"
	}
}

// InvalidInput builds an error that matches ErrInvalidInput.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
