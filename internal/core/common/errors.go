package common

import (
	"errors"
	"fmt"
)

// ErrNoInput is returned when a request carries no document to process.
var ErrNoInput = errors.New("no file provided")

// ProviderError reports a failed call to an external provider (OCR or LLM).
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ParseError reports an LLM response that could not be parsed as JSON.
// Raw holds the response exactly as the provider returned it.
type ParseError struct {
	Pass string
	Raw  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s extraction: %v", e.Pass, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
