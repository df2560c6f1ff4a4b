// Package apperr defines the structured errors the service surfaces to
// callers: a machine-readable code, a human message, and for conflicts the
// colliding resource.
package apperr

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeNotFound          Code = "NOT_FOUND"
	CodeForbidden         Code = "FORBIDDEN"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeScheduleConflict  Code = "SCHEDULE_CONFLICT"
	CodeRoomConflict      Code = "ROOM_CONFLICT"
	CodeSessionNotOpen    Code = "SESSION_NOT_OPEN"
	CodeSessionFull       Code = "SESSION_FULL"
	CodeAlreadyRegistered Code = "ALREADY_REGISTERED"
	CodeNotRegistered     Code = "NOT_REGISTERED"
	CodeServer            Code = "SERVER_ERROR"
)

type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithDetails attaches the colliding resource (or other payload) so the
// caller can display what the request ran into.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// As unwraps err into an *Error if one is anywhere in its chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// HTTPStatus maps an error code onto its HTTP response status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeSessionNotOpen, CodeSessionFull, CodeAlreadyRegistered:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodeNotRegistered:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeScheduleConflict, CodeRoomConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
