package model

import "fmt"

// Status is the classification of a single probe.
// The zero value is StatusNone, which is also what a probe is left at when
// its response matches both the "exists" and the "missing" rules.
type Status int

const (
	// StatusNone means the response was ambiguous and no decision was made.
	StatusNone Status = iota

	// StatusFound means the account exists on the site.
	StatusFound

	// StatusNotFound means the account does not exist on the site.
	StatusNotFound

	// StatusError means no usable response was obtained.
	StatusError
)

// String returns the upper case name of the status.
func (s Status) String() string {
	switch s {
	case StatusNone:
		return "NONE"
	case StatusFound:
		return "FOUND"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	status, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// ParseStatus converts the string form of a status back to a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "NONE":
		return StatusNone, nil
	case "FOUND":
		return StatusFound, nil
	case "NOT_FOUND":
		return StatusNotFound, nil
	case "ERROR":
		return StatusError, nil
	default:
		return StatusNone, fmt.Errorf("unknown status %q", s)
	}
}
