// Package common defines shared helpers and sentinel errors used across
// the authkeep components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrorBadRequest = errors.New("bad request")

	// Credential errors.
	ErrInvalidPassword         = errors.New("invalid password")
	ErrInvalidCredentialFormat = errors.New("invalid credential format")

	// Auth errors (malformed bearer, appId mismatch, already-verified misuse).
	ErrInvalidToken = errors.New("invalid token")
	ErrorInvalid    = errors.New("invalid request")
	ErrorUnverified = errors.New("account not verified")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
