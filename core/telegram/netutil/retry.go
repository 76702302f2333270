package netutil

import (
	"context"
	"errors"
	"net"
)

// ShouldRetry reports whether a network error is worth retrying.
// Only transient dial and timeout failures qualify; API errors and
// cancellations do not.
func ShouldRetry(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}
