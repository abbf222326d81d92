package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Gateway failure sentinels. An *APIError unwraps to exactly one of them.
var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrAuthorizationExpired = errors.New("authorization expired")
	ErrValidationFailed     = errors.New("validation failed")
	ErrTransportFailure     = errors.New("transport failure")
	ErrRequestFailed        = errors.New("request failed")
)

// Session storage sentinels.
var (
	ErrKeyNotFound       = errors.New("storage key not found")
	ErrNoStoredSession   = errors.New("no stored session")
	ErrMalformedSession  = errors.New("malformed stored session")
	ErrSessionNotPresent = errors.New("not logged in")
)

// ErrForbidden is returned by client-side gates before any request is made.
var ErrForbidden = errors.New("not permitted")

// GenericFailureMessage is shown when the server did not provide a message.
const GenericFailureMessage = "Request failed. Please try again."

// ErrorKind classifies gateway failures.
type ErrorKind string

const (
	KindAuthenticationFailed ErrorKind = "authentication_failed"
	KindAuthorizationExpired ErrorKind = "authorization_expired"
	KindValidationFailed     ErrorKind = "validation_failed"
	KindTransportFailure     ErrorKind = "transport_failure"
	KindRequestFailed        ErrorKind = "request_failed"
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindAuthenticationFailed:
		return ErrAuthenticationFailed
	case KindAuthorizationExpired:
		return ErrAuthorizationExpired
	case KindValidationFailed:
		return ErrValidationFailed
	case KindTransportFailure:
		return ErrTransportFailure
	default:
		return ErrRequestFailed
	}
}

// APIError is returned by every gateway call that did not succeed.
// Message is the server-provided "error" field, verbatim, when present.
type APIError struct {
	Kind      ErrorKind
	Status    int
	Message   string
	Details   string
	RequestID string
	Err       error
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (%d %s)", msg, e.Status, http.StatusText(e.Status))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *APIError) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindForStatus maps a non-2xx status to an error kind. Authentication
// endpoints report 401 as bad credentials; everywhere else it means the
// session is no longer valid.
func KindForStatus(status int, authEndpoint bool) ErrorKind {
	switch {
	case status == http.StatusUnauthorized && authEndpoint:
		return KindAuthenticationFailed
	case status == http.StatusUnauthorized:
		return KindAuthorizationExpired
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return KindValidationFailed
	default:
		return KindRequestFailed
	}
}

// UserMessage returns the text a page should display for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrForbidden) {
		return err.Error()
	}
	return GenericFailureMessage
}
