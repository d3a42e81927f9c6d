package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
)

// DefaultMessage is shown when a failure carries no message of its own.
const DefaultMessage = "An unknown error occurred!"

// Error is an HTTP-facing failure: a status, a machine code and the cause.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// WithMessage builds an error whose caller-facing text is message.
func WithMessage(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// StatusForCode maps a domain error code onto an HTTP status.
func StatusForCode(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusUnprocessableEntity
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeUnauthorized:
		return http.StatusUnauthorized
	case domainagg.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError classifies any error for the HTTP boundary. Errors without a
// domain code are reported as dependency failures.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	code := domainagg.CodeOf(err)
	if code == "" {
		return &Error{Status: http.StatusInternalServerError, Code: string(domainagg.CodeDependency), Message: DefaultMessage, Err: err}
	}
	msg := domainagg.MessageOf(err)
	if msg == "" || ((code == domainagg.CodeDependency || code == domainagg.CodeInternal) && isRawCause(err)) {
		msg = DefaultMessage
	}
	return &Error{Status: StatusForCode(code), Code: string(code), Message: msg, Err: err}
}

// isRawCause reports whether the message was copied from the underlying
// error by domainagg.Wrap rather than written for callers.
func isRawCause(err error) bool {
	var aggErr *domainagg.Error
	if !errors.As(err, &aggErr) || aggErr.Cause == nil {
		return false
	}
	return aggErr.Message == strings.TrimSpace(aggErr.Cause.Error())
}
