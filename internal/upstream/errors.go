// Package upstream classifies failures of external services so callers can
// tell a retryable outage from a parse-proof challenge page, a genuine
// zero-result answer, or bad input that never left the process.
package upstream

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// Kind partitions upstream failures.
type Kind int

const (
	// Unavailable covers non-2xx responses, network errors and timeouts.
	// Retryable, never fatal to the process.
	Unavailable Kind = iota + 1

	// Degraded means the transport succeeded (2xx) but the body was not the
	// structured data the caller expected, e.g. an HTML error page.
	Degraded

	// NotFound is a well-formed zero-result response. A negative answer,
	// not a failure.
	NotFound

	// Blocked means an anti-automation heuristic fired. Callers should
	// offer a manual-entry fallback instead of retrying.
	Blocked

	// Validation rejects malformed caller input before any external call.
	Validation
)

func (k Kind) String() string {
	switch k {
	case Unavailable:
		return "unavailable"
	case Degraded:
		return "degraded"
	case NotFound:
		return "not_found"
	case Blocked:
		return "blocked"
	case Validation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is a classified upstream failure.
type Error struct {
	Kind Kind
	Op   string // e.g. "nominatim: search"
	Err  error  // optional cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds a classified error with a formatted cause.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies an existing error. A nil cause is allowed.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the classification of err, or 0 if err carries none.
func KindOf(err error) Kind {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return 0
}

// IsNotFound reports whether err is a classified zero-result answer.
func IsNotFound(err error) bool { return KindOf(err) == NotFound }

// IsBlocked reports whether err is a classified anti-automation block.
func IsBlocked(err error) bool { return KindOf(err) == Blocked }

// IsDegraded reports whether err is a classified unparsable-body condition.
func IsDegraded(err error) bool { return KindOf(err) == Degraded }

// IsTransient reports whether err is safe to retry: either classified
// Unavailable, or matching common network-level transient patterns.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	switch KindOf(err) {
	case Unavailable:
		return true
	case Degraded, NotFound, Blocked, Validation:
		return false
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

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTransientHTTPStatus reports whether an HTTP status is worth a retry.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
