package apperr

import (
	"fmt"
	"net/http"
)

// Error is a business-logic failure carrying the HTTP status it maps to.
// Handlers translate these centrally; anything else becomes a generic 500.
type Error struct {
	Status  int
	Message string
	Err     error
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

func Validation(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func NotFound(resource string) *Error {
	return &Error{Status: http.StatusNotFound, Message: resource + " not found"}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

// Upstream wraps a provider failure. The wrapped error is for logs only;
// the message is what clients see.
func Upstream(message string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message, Err: err}
}
