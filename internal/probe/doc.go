// Package probe sends the single HTTP GET that checks one site for one
// username and returns what the site answered, decoded to UTF-8.
//
// A probe never retries and never panics. Any transport failure (DNS,
// connect, TLS, timeout, body read) is returned as a *TransportError and
// logged, so the caller can classify the site as ERROR and move on.
package probe
