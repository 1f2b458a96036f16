// Package ecode defines standardized business error codes for API responses.
//
// Codes follow the sign convention used across the project: 0 means success,
// negative values mirror the HTTP status family they map to.
package ecode

import "net/http"

const (
	OK               = 0
	RequestErr       = -400
	Unauthorized     = -401
	AccessDenied     = -403
	NothingFound     = -404
	MethodNotAllowed = -405
	Conflict         = -409
	ServerErr        = -500
)

var messages = map[int]string{
	OK:               "success",
	RequestErr:       "invalid request",
	Unauthorized:     "unauthorized",
	AccessDenied:     "access denied",
	NothingFound:     "not found",
	MethodNotAllowed: "method not allowed",
	Conflict:         "conflict",
	ServerErr:        "internal server error",
}

// Text returns the human-readable message for a code.
func Text(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return messages[ServerErr]
}

// ToHTTPStatus maps a business code to an HTTP status code.
func ToHTTPStatus(code int) int {
	switch code {
	case OK:
		return http.StatusOK
	case RequestErr:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case AccessDenied:
		return http.StatusForbidden
	case NothingFound:
		return http.StatusNotFound
	case MethodNotAllowed:
		return http.StatusMethodNotAllowed
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
