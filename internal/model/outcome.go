package model

import (
	"net/http"
	"time"
)

// RawResponse is what a probe observed from the site.
// Body is already decoded to UTF-8.
type RawResponse struct {
	URL        string
	FinalURL   string
	StatusCode int
	Header     http.Header
	Body       string
	Elapsed    time.Duration
}

// Outcome is the classified result of probing one site for one username.
type Outcome struct {
	// Site is the site name.
	Site string `json:"site"`

	// URL is the probed URL with the username substituted.
	URL string `json:"url"`

	// ProfileURL is the human-facing profile page, from uri_pretty when the
	// site has one.
	ProfileURL string `json:"profile_url,omitempty"`

	// Category is copied from the site definition.
	Category string `json:"category,omitempty"`

	// Status is the classification.
	Status Status `json:"status"`

	// StatusCode is the HTTP status code, or 0 when no response arrived.
	StatusCode int `json:"status_code,omitempty"`

	// Error holds the transport failure for StatusError outcomes.
	Error string `json:"error,omitempty"`

	// Elapsed is the time spent on the probe.
	Elapsed time.Duration `json:"elapsed"`
}

// IsFound reports whether the account was found on the site.
func (o Outcome) IsFound() bool {
	return o.Status == StatusFound
}

// Link returns the page a reader should open for the account: ProfileURL
// when set, URL otherwise.
func (o Outcome) Link() string {
	if o.ProfileURL != "" {
		return o.ProfileURL
	}
	return o.URL
}
