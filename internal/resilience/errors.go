package resilience

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/rotisserie/eris"
)

// StatusError reports a non-success HTTP status from a provider.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return http.StatusText(e.Code) + " from provider"
}

// NewStatusError wraps an HTTP status code as a classifiable error.
func NewStatusError(code int, url string) error {
	return eris.Wrapf(&StatusError{Code: code, URL: url}, "http %d from %s", code, url)
}

// IsTransient reports whether an error is worth retrying: network-level
// failures, timeouts, 429, and 5xx. Context cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}
