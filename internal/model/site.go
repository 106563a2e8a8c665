package model

import "strings"

// AccountPlaceholder is the token in a URL template that is replaced by the
// username being checked.
const AccountPlaceholder = "{account}"

// Site is a single site definition from the site list.
//
// A site is considered to host the account when the response body contains
// EString and the status code equals ECode, while the body does not contain
// MString and the status code differs from MCode.
type Site struct {
	// Name identifies the site and is unique within a list.
	Name string `json:"name"`

	// URICheck is the URL template probed for the account.
	URICheck string `json:"uri_check"`

	// URIPretty is an optional human-facing URL template.
	URIPretty string `json:"uri_pretty,omitempty"`

	// ECode is the status code expected when the account exists.
	ECode int `json:"e_code"`

	// EString is the text expected in the body when the account exists.
	EString string `json:"e_string"`

	// MCode is the status code returned when the account is missing.
	MCode int `json:"m_code"`

	// MString is the text present in the body when the account is missing.
	MString string `json:"m_string"`

	// Known lists usernames that are known to exist on the site.
	Known []string `json:"known,omitempty"`

	// Category is the site category (social, coding, gaming, ...).
	Category string `json:"cat,omitempty"`
}

// ProfileURL returns the probe URL for the given username.
func (s Site) ProfileURL(username string) string {
	return strings.ReplaceAll(s.URICheck, AccountPlaceholder, username)
}

// DisplayURL returns the URL shown to users for the given username.
// It falls back to ProfileURL when the site has no pretty template.
func (s Site) DisplayURL(username string) string {
	if s.URIPretty == "" {
		return s.ProfileURL(username)
	}
	return strings.ReplaceAll(s.URIPretty, AccountPlaceholder, username)
}

// SiteList is an ordered list of site definitions.
type SiteList struct {
	// Sites holds the definitions in document order.
	Sites []Site `json:"sites"`

	// Hash is the hex encoded content hash of the canonical document.
	Hash string `json:"-"`

	// Source is the path or URL the list was read from.
	Source string `json:"-"`
}

// Len returns the number of sites in the list.
func (l *SiteList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Sites)
}
