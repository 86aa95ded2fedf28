package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrStreamFailed is matched by every *StreamError via errors.Is.
var ErrStreamFailed = errors.New("streaming completion failed")

var (
	ErrMissingSystemMessage   = errors.New("missing system message")
	ErrMultipleSystemMessages = errors.New("multiple system messages")
	ErrEmptyConversation      = errors.New("no non-system messages in conversation")
	ErrInvalidRole            = errors.New("invalid message role")
	ErrMissingAPIKey          = errors.New("missing API key")
)

// ErrorKind classifies a streaming failure.
type ErrorKind string

const (
	// KindConfig covers missing or rejected credentials.
	KindConfig ErrorKind = "config"
	// KindInput covers malformed requests, locally or as reported by the provider.
	KindInput ErrorKind = "input"
	// KindTransport covers network failures and truncated streams.
	KindTransport ErrorKind = "transport"
	// KindProvider covers provider-side failures such as overload or rate limits.
	KindProvider ErrorKind = "provider"
)

// StreamError is the single error type returned by providers in this package.
type StreamError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	// Type is the provider's own error type, when reported.
	Type    string
	Message string
	Err     error
}

func (e *StreamError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	return fmt.Sprintf("error streaming completion from %s: %s", e.Provider, msg)
}

func (e *StreamError) Unwrap() error { return e.Err }

// Is makes every StreamError match ErrStreamFailed.
func (e *StreamError) Is(target error) bool { return target == ErrStreamFailed }

// Retryable reports whether issuing the same request again may succeed.
func (e *StreamError) Retryable() bool {
	switch e.Kind {
	case KindTransport:
		return true
	case KindProvider:
		return e.StatusCode == 0 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
	}
	return false
}

// AsStreamError extracts a *StreamError from err.
func AsStreamError(err error) (*StreamError, bool) {
	var se *StreamError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// KindOf returns the kind of err, or "" if err is not a StreamError.
func KindOf(err error) ErrorKind {
	if se, ok := AsStreamError(err); ok {
		return se.Kind
	}
	return ""
}

func inputError(provider string, err error) *StreamError {
	return &StreamError{Provider: provider, Kind: KindInput, Err: err}
}

func transportError(provider string, err error) *StreamError {
	return &StreamError{Provider: provider, Kind: KindTransport, Err: err}
}

// kindForStatus maps an HTTP status returned by a provider to an ErrorKind.
func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindConfig
	case status == http.StatusTooManyRequests || status >= 500:
		return KindProvider
	case status >= 400:
		return KindInput
	}
	return KindProvider
}
