package transport

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

const (
	// maxRedirects is the number of redirects followed per probe.
	maxRedirects = 10

	// defaultIdleConnsPerHost is used when the concurrency is unbounded.
	defaultIdleConnsPerHost = 100
)

// Options configures NewHTTPClient.
type Options struct {
	// Timeout bounds each request including reading the body.
	Timeout time.Duration

	// ProxyURL routes every request through a proxy. Supported schemes are
	// http, https, socks5 and socks5h. Empty means direct connections.
	ProxyURL string

	// Concurrency sizes the idle connection pool. 0 means unbounded.
	Concurrency int
}

// NewHTTPClient creates the client shared by all probes of a run.
// TLS verification is disabled because the match rules only look at the
// response, and many of the probed sites have broken certificate chains.
func NewHTTPClient(opts Options) (*http.Client, error) {
	dialer := &net.Dialer{
		Timeout:   opts.Timeout,
		KeepAlive: 30 * time.Second,
	}

	idle := opts.Concurrency
	if idle <= 0 {
		idle = defaultIdleConnsPerHost
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // Probed sites are matched on content only
		},
		MaxIdleConns:          idle * 2,
		MaxIdleConnsPerHost:   idle,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   opts.Timeout,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
	}

	if opts.ProxyURL != "" {
		if err := configureProxy(transport, dialer, opts.ProxyURL); err != nil {
			return nil, err
		}
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, maxRedirects)
			}
			return nil
		},
	}, nil
}

func configureProxy(transport *http.Transport, dialer *net.Dialer, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedProxy, err)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host in %q", ErrUnsupportedProxy, u.Redacted())
	}

	switch u.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
		return nil
	case "socks5", "socks5h":
		var auth *proxy.Auth
		if u.User != nil {
			password, _ := u.User.Password()
			auth = &proxy.Auth{User: u.User.Username(), Password: password}
		}
		d, err := proxy.SOCKS5("tcp", u.Host, auth, dialer)
		if err != nil {
			return fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		cd, ok := d.(proxy.ContextDialer)
		if !ok {
			return errors.New("SOCKS5 dialer does not support contexts")
		}
		transport.DialContext = cd.DialContext
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedProxy, u.Scheme)
	}
}

// SOCKSAddress returns the host:port of a socks5 or socks5h proxy URL, or
// false when raw is not a SOCKS proxy.
func SOCKSAddress(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if u.Scheme != "socks5" && u.Scheme != "socks5h" {
		return "", false
	}
	return u.Host, u.Host != ""
}
