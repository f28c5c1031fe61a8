package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is returned by Client methods when the appliance responds with a
// failure status.
type Error struct {
	// Method is the HTTP request method.
	Method string `json:"-"`
	// Path is the HTTP request path, relative to Client.URL.
	Path string `json:"-"`
	// Code is the HTTP status of the response.
	Code int32 `json:"-"`
	// Message is the text of the failure reported by the appliance.
	Message string `json:"message"`
}

func (e Error) Error() string {
	status := fmt.Sprintf("%d %v", e.Code, strings.ToLower(http.StatusText(int(e.Code))))
	if e.Message == "" {
		return fmt.Sprintf("%s %q responded %s", e.Method, e.Path, status)
	}
	return fmt.Sprintf("%s %q responded %s: %s", e.Method, e.Path, status, e.Message)
}

// Is allows errors.Is to match an Error against the sentinel errors of this
// package by status code.
func (e Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized
	case ErrForbidden:
		return e.Code == http.StatusForbidden
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrDuplicate:
		return e.Code == http.StatusConflict
	case ErrBadRequest:
		return e.Code == http.StatusBadRequest || e.Code == http.StatusUnprocessableEntity
	case ErrInternal:
		return e.Code == http.StatusInternalServerError
	}
	return false
}

// ErrorStatusCode returns the HTTP status code from an error that wraps an
// Error, or 0 for any other error.
func ErrorStatusCode(err error) int32 {
	var apiError Error
	if errors.As(err, &apiError) {
		return apiError.Code
	}
	return 0
}

// ConnectionError is returned when a request could not be sent to the
// appliance, or no response was received.
type ConnectionError struct {
	Method string
	Path   string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %q: connection failed: %v", e.Method, e.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
