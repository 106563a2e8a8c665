// Package transport builds the HTTP client shared by every probe of a run.
//
// The client disables TLS verification, follows up to ten redirects, keeps
// a connection pool sized for the configured concurrency and can route all
// traffic through an HTTP(S) proxy, a SOCKS5 proxy (golang.org/x/net/proxy)
// or an embedded Tor daemon started with tornago.
package transport
