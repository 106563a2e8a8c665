package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TransportError describes a probe that did not produce a usable response.
type TransportError struct {
	// Op is the step that failed: "request" or "read".
	Op string

	// URL is the probed URL.
	URL string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a timeout.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}
