package domain

import "errors"

var (
	// ErrEmptyDocument is returned when the supplied document text is empty
	// or whitespace-only. Adapters fail with it before contacting a backend.
	ErrEmptyDocument = errors.New("document text is empty")

	// ErrUnknownProvider is returned when no extractor is registered under
	// the configured provider name.
	ErrUnknownProvider = errors.New("unknown extraction provider")
)
