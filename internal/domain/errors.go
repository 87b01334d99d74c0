package domain

import "errors"

var (
	// ErrNotFound signals a missing media document.
	ErrNotFound = errors.New("media not found")
	// ErrInvalidMedia signals a media document that fails validation.
	ErrInvalidMedia = errors.New("invalid media")
	// ErrProviderNotConfigured signals a missing embedding provider credential.
	ErrProviderNotConfigured = errors.New("embedding provider not configured")
	// ErrProviderError signals a failed or malformed embedding/captioning call.
	ErrProviderError = errors.New("embedding provider error")
)
