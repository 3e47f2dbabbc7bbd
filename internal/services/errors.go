package services

import "errors"

var (
	// ErrMissingCredential means no API key was supplied; nothing was sent.
	ErrMissingCredential = errors.New("missing credential")
	// ErrEmptyQuery means the user text was blank; nothing was sent.
	ErrEmptyQuery = errors.New("empty query")
)

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

// RemoteError wraps any failure building the Gemini client or performing the
// call. Message is shown to the user unchanged.
type RemoteError struct {
	Message string
	Err     error
}

func (e *RemoteError) Error() string { return e.Message }

func (e *RemoteError) Unwrap() error { return e.Err }

func newRemoteError(err error) *RemoteError {
	return &RemoteError{Message: err.Error(), Err: err}
}
