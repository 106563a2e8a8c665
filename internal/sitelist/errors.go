package sitelist

import (
	"errors"
	"fmt"
)

// ErrParse is returned when a site list document is absent or malformed.
var ErrParse = errors.New("invalid site list")

// ErrFetch is returned when the remote list could not be downloaded.
var ErrFetch = errors.New("failed to fetch site list")

func parseError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}
