package resilience

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/mapgrind/addresser/pkg/overpass"
)

// IsTransient reports whether an Overpass fetch error is worth retrying:
// network failures, timeouts, and throttling or server-side HTTP statuses.
// Context cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *overpass.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return true
		case statusErr.StatusCode >= 500:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}
