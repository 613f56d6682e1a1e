// Package errors defines the storefront's error classes and how each one is
// presented in the JSON error envelope.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Codes carried in the error envelope.
const (
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeInvalidParameter     = "INVALID_PARAMETER"
	CodeInvalidSession       = "INVALID_SESSION"
	CodeValidation           = "VALIDATION_ERROR"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	CodeUnavailable          = "SERVICE_UNAVAILABLE"
	CodeInternal             = "INTERNAL_ERROR"
)

// Class sentinels. Every AppError matches the sentinel of its class under
// errors.Is, so callers never need to know which constructor built it.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("service unavailable")
	ErrInternal     = errors.New("internal error")
)

type class struct {
	sentinel error
	code     string
	status   int
	// message replaces the error text for plain errors; empty keeps err.Error().
	message string
}

var classes = []class{
	{ErrNotFound, CodeNotFound, http.StatusNotFound, "resource not found"},
	{ErrInvalidInput, CodeInvalidInput, http.StatusBadRequest, ""},
	{ErrUnavailable, CodeUnavailable, http.StatusServiceUnavailable, "service unavailable"},
}

const internalMessage = "an internal error occurred"

// AppError is an error that knows how it is presented over HTTP.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

// New builds an AppError with an explicit code and status.
func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches the class sentinel for the error's status.
func (e *AppError) Is(target error) bool {
	for _, c := range classes {
		if c.sentinel == target {
			return c.status == e.Status
		}
	}
	return target == ErrInternal && e.Status >= http.StatusInternalServerError
}

// NotFound reports a missing resource, e.g. NotFound("product", 42).
func NotFound(resource string, id any) *AppError {
	return New(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s %v not found", resource, id))
}

// InvalidInput reports a request the caller can fix.
func InvalidInput(message string) *AppError {
	return New(http.StatusBadRequest, CodeInvalidInput, message)
}

// Unavailable reports a dependency, such as the product feed, that has not
// produced data yet.
func Unavailable(message string) *AppError {
	return New(http.StatusServiceUnavailable, CodeUnavailable, message)
}

// Internal hides err behind a generic message.
func Internal(err error) *AppError {
	e := New(http.StatusInternalServerError, CodeInternal, internalMessage)
	e.Err = err
	return e
}

// Classify returns the status, envelope code and client-facing message for
// err. Unknown errors become a 500 whose message does not leak err.
func Classify(err error) (status int, code, message string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status, appErr.Code, appErr.Message
	}
	for _, c := range classes {
		if errors.Is(err, c.sentinel) {
			msg := c.message
			if msg == "" {
				msg = err.Error()
			}
			return c.status, c.code, msg
		}
	}
	return http.StatusInternalServerError, CodeInternal, internalMessage
}

// HTTPStatus returns the status code Classify would choose for err.
func HTTPStatus(err error) int {
	status, _, _ := Classify(err)
	return status
}
