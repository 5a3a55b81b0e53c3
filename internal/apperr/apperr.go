package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error so the HTTP boundary can map it to a
// status code without inspecting message strings.
type Kind int

const (
	Validation Kind = iota + 1
	Forbidden
	NotFound
	Conflict
	Upstream
	Internal
)

type Error struct {
	Kind    Kind
	Message string

	// UpstreamStatus holds the status code returned by the external API for
	// Kind == Upstream. Zero otherwise.
	UpstreamStatus int

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// FromUpstream records a non-2xx response from the external API.
func FromUpstream(status int, message string) *Error {
	return &Error{Kind: Upstream, Message: message, UpstreamStatus: status}
}

// Coerce passes recognized application errors through unchanged and wraps
// anything else as Internal with the given stable message.
func Coerce(err error, message string) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Wrap(err, Internal, message)
}

// KindOf returns the Kind of err, or Internal for unrecognized errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the stable user-facing message of err. Unrecognized errors
// collapse to a generic message so internals never leak to callers.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal Server Error"
}

// HTTPStatus maps err to the response status code. Upstream errors keep the
// upstream status when it is a valid client/server code, otherwise 502.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Upstream:
		if e.UpstreamStatus >= 400 && e.UpstreamStatus < 600 {
			return e.UpstreamStatus
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
