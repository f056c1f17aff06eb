package artdex

import (
	"errors"
	"fmt"
)

// Application error codes. These map failures to behavior: callers decide
// whether to retry, surface, or swallow based on the code alone.
const (
	ECONFLICT       = "conflict"        // action cannot be performed
	EINTERNAL       = "internal"        // internal error
	EINVALID        = "invalid"         // validation failed or malformed input
	ENOTFOUND       = "not_found"       // entity does not exist
	ENOTIMPLEMENTED = "not_implemented" // feature not implemented
	EUNAUTHORIZED   = "unauthorized"    // access denied
	ERATELIMIT      = "rate_limit"      // remote quota or rate limit hit
	ETIMEOUT        = "timeout"         // operation exceeded its wait budget
	EUNAVAILABLE    = "unavailable"     // transient network or service failure
)

// Error represents an application error. Application errors carry a
// machine-readable code and a human-readable message.
type Error struct {
	// Code is one of the application error code constants.
	Code string

	// Message is a human-readable description of the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("artdex error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsRetryable reports whether an error represents a transient condition
// that may succeed on a later attempt. Rate limits and service outages
// are transient; malformed responses and validation outcomes are not.
func IsRetryable(err error) bool {
	switch ErrorCode(err) {
	case ERATELIMIT, EUNAVAILABLE:
		return true
	default:
		return false
	}
}
