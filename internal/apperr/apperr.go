// Package apperr defines the closed set of API error variants. Each variant
// carries an HTTP status and a stable error_code string; handlers serialize
// them uniformly as {error_code, message, request_id}.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error variant on the wire.
type Code string

const (
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodePayloadTooLarge Code = "PAYLOAD_TOO_LARGE"
	CodeProjectMismatch Code = "PROJECT_ID_MISMATCH"
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeRateLimited     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal        Code = "INTERNAL_ERROR"
)

// Error is an API-visible failure. Internal detail never rides on Message;
// 500s log the cause server-side and return a generic body.
type Error struct {
	Status  int
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func Unauthorized() *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: "Missing or invalid API key"}
}

func Forbidden() *Error {
	return &Error{Status: http.StatusForbidden, Code: CodeForbidden, Message: "API key does not have access to this project"}
}

func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: msg}
}

func PayloadTooLarge(msg string) *Error {
	return &Error{Status: http.StatusRequestEntityTooLarge, Code: CodePayloadTooLarge, Message: msg}
}

func ProjectMismatch() *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeProjectMismatch, Message: "x-project-id header does not match project_id in path."}
}

func Validation() *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Code: CodeValidation, Message: "Invalid request"}
}

func RateLimited() *Error {
	return &Error{Status: http.StatusTooManyRequests, Code: CodeRateLimited, Message: "Too many requests"}
}

func Internal() *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "An unexpected error occurred."}
}

// FromStatus builds a generic HTTP_<status> error for statuses that have no
// named variant.
func FromStatus(status int, msg string) *Error {
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Status: status, Code: Code(fmt.Sprintf("HTTP_%d", status)), Message: msg}
}

// From maps any error onto the taxonomy: *Error values pass through,
// everything else becomes Internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal()
}
