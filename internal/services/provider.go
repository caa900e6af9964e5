package services

import (
	"context"

	"papergen/internal/models"
)

// FragmentStream is a pull-based view over a live provider response.
//
// Next returns io.EOF once the connection is exhausted. An error wrapping
// ErrMalformedFragment means one item could not be decoded; the stream is
// still usable and the caller may keep pulling.
type FragmentStream interface {
	Next() (models.Fragment, error)
	Close() error
}

// Provider sends a prompt to an inference endpoint and streams back tokens.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (FragmentStream, error)
	Ping(ctx context.Context) error
}
