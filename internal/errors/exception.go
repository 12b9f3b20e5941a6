package errors

import (
	"errors"
	"net/http"
)

type Exception struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *Exception) Error() string {
	return e.Message
}

// Is matches exceptions by code so an exception rebuilt from a wire
// response still satisfies errors.Is against the sentinel.
func (e *Exception) Is(target error) bool {
	var other *Exception
	if !errors.As(target, &other) {
		return false
	}
	return e.Code != "" && e.Code == other.Code
}

func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// Code returns the wire code of err, or "internal" for unknown errors.
func Code(err error) string {
	var appErr *Exception
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	return "internal"
}

var registry = map[string]*Exception{}

func register(e *Exception) *Exception {
	registry[e.Code] = e
	return e
}

// FromCode rebuilds an exception received over the wire. Known codes map to
// their sentinel; unknown ones keep the remote message and status.
func FromCode(code, message string, status int) error {
	if known, ok := registry[code]; ok {
		if message == "" {
			return known
		}
		return &Exception{Code: known.Code, Message: message, StatusCode: known.StatusCode}
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &Exception{Code: code, Message: message, StatusCode: status}
}
