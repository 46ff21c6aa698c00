package errors

import (
	"errors"
	"net/http"
)

// Kind classifies a domain error and decides its HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindValidation
	KindUnavailable
)

func (k Kind) Status() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) Code() string {
	switch k {
	case KindUnauthenticated:
		return ErrCodeUnauthorized
	case KindForbidden:
		return ErrCodeForbidden
	case KindNotFound:
		return ErrCodeNotFound
	case KindConflict:
		return ErrCodeConflict
	case KindValidation:
		return ErrCodeInvalidInput
	case KindUnavailable:
		return ErrCodeServiceUnavailable
	default:
		return ErrCodeInternalError
	}
}

// Error is a user-facing domain error. Services declare these as sentinels
// and compare them with errors.Is.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Unauthenticated(message string) *Error { return newError(KindUnauthenticated, message) }
func ForbiddenError(message string) *Error  { return newError(KindForbidden, message) }
func NotFoundError(message string) *Error   { return newError(KindNotFound, message) }
func Conflict(message string) *Error        { return newError(KindConflict, message) }
func Validation(message string) *Error      { return newError(KindValidation, message) }
func Unavailable(message string) *Error     { return newError(KindUnavailable, message) }

// KindOf returns the Kind of the first domain error in err's chain,
// or KindInternal if there is none.
func KindOf(err error) Kind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return KindInternal
}
