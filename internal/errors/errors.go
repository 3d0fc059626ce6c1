// Package errors defines domain-level errors used throughout the application.
// These errors represent business logic failures and are mapped to appropriate HTTP status codes at the API boundary.
//
// NOTE: Important for developers
// When adding a new error here, you MUST consider how it should be handled when returned from API endpoints.
//
// Unmapped errors will default to HTTP 500 Internal Server Error.
//
// Don't forget to:
// 1. Add your error to mapError (internal/daemon/api_server.go)
// 2. Add a test case to TestMapError (internal/daemon/api_server_test.go)
package errors

import (
	"errors"
)

var (
	// ErrBadRequest indicates that the client provided invalid input or made a malformed request.
	// Recommended to map to HTTP 400 Bad Request.
	ErrBadRequest = errors.New("bad request")

	// ErrMissingURL indicates that a reachability check was requested without a URL, or with a blank one.
	// Recommended to map to HTTP 400 Bad Request.
	ErrMissingURL = errors.New("missing url field")

	// ErrInvalidURL indicates that a URL could not be normalized into an absolute http(s) URL.
	// The checker treats this as 'unreachable' rather than surfacing it to API callers,
	// it is only returned from the normalization helpers.
	ErrInvalidURL = errors.New("invalid url")
)
