package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// maxMessageLen bounds the diagnostic carried by a DispatchError. Callers
// see a single sanitized line, never a raw backend body or stack trace.
const maxMessageLen = 260

// ErrorKind classifies a dispatch failure.
type ErrorKind string

const (
	KindConfig              ErrorKind = "configuration"
	KindRetryable           ErrorKind = "retryable"
	KindTerminal            ErrorKind = "terminal"
	KindEmptyResponse       ErrorKind = "empty_response"
	KindUnsupportedProvider ErrorKind = "unsupported_provider"
)

// DispatchError is the single typed failure surfaced to callers of the
// dispatch layer. Attempts counts backend calls actually issued.
type DispatchError struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Attempts int
}

func (e *DispatchError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("dispatch failed (%s): %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("dispatch failed (%s, provider %s): %s", e.Kind, e.Provider, e.Message)
}

// Retryable reports whether another attempt may succeed.
func (e *DispatchError) Retryable() bool { return e.Kind == KindRetryable }

func newDispatchError(kind ErrorKind, provider, message string) *DispatchError {
	return &DispatchError{
		Kind:     kind,
		Provider: provider,
		Message:  sanitizeMessage(message),
	}
}

// sanitizeMessage strips newlines, collapses whitespace, and truncates.
func sanitizeMessage(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxMessageLen {
		s = s[:maxMessageLen]
	}
	return s
}

// retryableFragments are message substrings that mark a backend failure as
// transient: timeouts, rate limits, and gateway-class upstream errors.
var retryableFragments = []string{
	"timeout",
	"timed out",
	"deadline exceeded",
	"rate limit",
	"too many requests",
	"429",
	"bad gateway",
	"service unavailable",
	"gateway timeout",
	"502",
	"503",
	"504",
	"overloaded",
	"connection reset",
	"connection refused",
	"eof",
}

// classify wraps an adapter error as a DispatchError, deciding whether it
// is worth retrying. Errors already typed pass through unchanged.
func classify(err error, provider string) *DispatchError {
	var de *DispatchError
	if errors.As(err, &de) {
		return de
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return newDispatchError(KindRetryable, provider, "request timed out: "+err.Error())
	}
	if errors.Is(err, context.Canceled) {
		return newDispatchError(KindTerminal, provider, "request canceled")
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newDispatchError(KindRetryable, provider, "network timeout: "+err.Error())
	}

	lower := strings.ToLower(err.Error())
	for _, frag := range retryableFragments {
		if strings.Contains(lower, frag) {
			return newDispatchError(KindRetryable, provider, err.Error())
		}
	}

	return newDispatchError(KindTerminal, provider, err.Error())
}

// retryableStatus reports whether an HTTP status from a backend is
// transient. 408 and 429 plus the 5xx class qualify.
func retryableStatus(status int) bool {
	return status == 408 || status == 429 || status >= 500
}
