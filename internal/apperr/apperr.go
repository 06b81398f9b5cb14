// Package apperr carries an error kind alongside the error chain so HTTP
// handlers can map failures to status codes at the boundary.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindNotAcceptable
	KindUnsupportedMediaType
	KindConflict
	KindUpstreamUnavailable
	KindTooLarge
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad request"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindNotAcceptable:
		return "not acceptable"
	case KindUnsupportedMediaType:
		return "unsupported media type"
	case KindConflict:
		return "conflict"
	case KindUpstreamUnavailable:
		return "upstream unavailable"
	case KindTooLarge:
		return "payload too large"
	default:
		return "internal"
	}
}

// Status maps a kind to the HTTP status used by every service.
// Upstream outages surface as 401 to callers; the kind keeps them apart in logs.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthenticated, KindUpstreamUnavailable:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindNotAcceptable:
		return http.StatusNotAcceptable
	case KindUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case KindConflict:
		return http.StatusConflict
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Error is the typed error used across services. Msg is safe to show to
// clients; Err holds the underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Msg
	case e.Msg == "":
		return e.Err.Error()
	default:
		return e.Msg + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func BadRequest(msg string) *Error      { return New(KindBadRequest, msg) }
func Unauthenticated(msg string) *Error { return New(KindUnauthenticated, msg) }
func Forbidden(msg string) *Error       { return New(KindForbidden, msg) }
func NotFound(msg string) *Error        { return New(KindNotFound, msg) }

func Internal(msg string, err error) *Error {
	return Wrap(KindInternal, msg, err)
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	return KindOf(err).Status()
}

// Body renders the client-facing message for err. Internal failures only
// expose their error chain when debug is set.
func Body(err error, debug bool) string {
	var e *Error
	if !errors.As(err, &e) {
		if debug {
			return err.Error()
		}
		return "internal error"
	}
	if e.Kind == KindInternal || e.Kind == KindUpstreamUnavailable {
		if debug {
			return err.Error()
		}
		return "internal error"
	}
	return e.Msg
}

// Write sends err as a plain text response.
func Write(w http.ResponseWriter, err error, debug bool) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(StatusOf(err))
	_, _ = w.Write([]byte(Body(err, debug)))
}
