package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// TransientError wraps an error that is safe to retry (5xx, timeout,
// connection reset).
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps an error as transient with an optional HTTP status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// RateLimitError wraps a quota or rate-limit fault (HTTP 429). It is never
// retried; callers surface it to the user instead.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string {
	return e.Err.Error()
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError wraps an error as a rate-limit fault.
func NewRateLimitError(err error) *RateLimitError {
	return &RateLimitError{Err: err}
}

// IsRateLimited returns true if the error chain contains a RateLimitError,
// or if the message matches common quota phrasing from providers that
// surface plain errors.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}

	var rle *RateLimitError
	if errors.As(err, &rle) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{"429", "resource_exhausted", "rate limit", "quota exceeded"} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsTransient returns true if the error (or any error in its chain) is a
// TransientError, or if it matches common transient error patterns (network
// timeouts, connection resets, DNS failures). Rate-limit faults are not
// transient in this taxonomy.
func IsTransient(err error) bool {
	if err == nil || IsRateLimited(err) {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String-based fallback for wrapped errors from HTTP clients that carry
	// no status code.
	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
		"internal server error",
		"service unavailable",
		"overloaded",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTransientHTTPStatus returns true if the HTTP status code indicates a
// transient server-side issue that is safe to retry. 429 is deliberately
// excluded: it maps to RateLimitError.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, // Request Timeout
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		504: // Gateway Timeout
		return true
	default:
		return false
	}
}
