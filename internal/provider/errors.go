package provider

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an adapter failure so that callers branch on the
// classification instead of inspecting messages.
type Kind int

const (
	// KindTransient covers network failures, timeouts and unclassified 5xx
	// responses. Retried with the next credential.
	KindTransient Kind = iota
	// KindAuthError means the provider rejected the credential. The failing
	// attempt is not retried with the same credential.
	KindAuthError
	// KindRateLimited means the provider signalled throttling. The credential
	// is excluded for a cool-down window.
	KindRateLimited
	// KindInvalidInput means the subject identifier was unparsable. Fatal for
	// the whole import, no retries.
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindAuthError:
		return "auth_error"
	case KindRateLimited:
		return "rate_limited"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "transient_error"
	}
}

// Error is a classified adapter failure.
type Error struct {
	Kind     Kind
	Provider string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// ClassifyStatus maps an HTTP status code from a provider to an error kind.
func ClassifyStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthError
	case http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindTransient
	}
}

// KindOf extracts the classification from err. Unclassified errors count as
// transient.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindTransient
}
