package api

// ErrorResponse is the body of every error returned by the API.
// It satisfies huma.StatusError so handlers can return it directly with the intended status.
type ErrorResponse struct {
	status int
	err    error

	Message string `doc:"Human readable description of the error" json:"message"`
}

// NewErrorResponse creates an ErrorResponse for the given HTTP status.
// The optional cause is kept for errors.Is/As but never rendered.
func NewErrorResponse(status int, msg string, cause ...error) *ErrorResponse {
	e := &ErrorResponse{
		status:  status,
		Message: msg,
	}
	if len(cause) > 0 {
		e.err = cause[0]
	}

	return e
}

// Error implements error.
func (e *ErrorResponse) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *ErrorResponse) Unwrap() error {
	return e.err
}

// GetStatus implements huma.StatusError.
func (e *ErrorResponse) GetStatus() int {
	return e.status
}
