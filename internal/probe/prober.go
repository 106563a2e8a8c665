package probe

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nao1215/blackbird/internal/model"
)

// DefaultMaxBodySize is the body limit used when none is configured.
const DefaultMaxBodySize = 5 * 1024 * 1024

// Prober performs site probes with a shared HTTP client.
// It is safe for concurrent use.
type Prober struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	timeout     time.Duration
	logger      *slog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(p *Prober) {
		p.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum number of body bytes read.
// Values <= 0 keep DefaultMaxBodySize.
func WithMaxBodySize(n int64) Option {
	return func(p *Prober) {
		if n > 0 {
			p.maxBodySize = n
		}
	}
}

// WithTimeout bounds each probe, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		p.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) {
		p.logger = logger
	}
}

// NewProber creates a Prober using client for all requests.
func NewProber(client *http.Client, opts ...Option) *Prober {
	p := &Prober{
		client:      client,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe sends one GET request for username to site.
// On failure it returns a *TransportError and a nil response.
func (p *Prober) Probe(ctx context.Context, site model.Site, username string) (*model.RawResponse, error) {
	url := site.ProfileURL(username)

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, p.fail(site, &TransportError{Op: "request", URL: url, Err: err})
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, p.fail(site, &TransportError{Op: "request", URL: url, Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBodySize))
	if err != nil {
		return nil, p.fail(site, &TransportError{Op: "read", URL: url, Err: err})
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	raw := &model.RawResponse{
		URL:        url,
		FinalURL:   finalURL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       decodeBody(body, resp.Header.Get("Content-Type")),
		Elapsed:    time.Since(start),
	}
	p.logger.Debug("probe completed",
		"site", site.Name,
		"url", url,
		"status_code", raw.StatusCode,
		"elapsed", raw.Elapsed,
	)
	return raw, nil
}

func (p *Prober) fail(site model.Site, err *TransportError) error {
	p.logger.Error("error in HTTP request",
		"site", site.Name,
		"method", http.MethodGet,
		"url", err.URL,
		"timeout", err.Timeout(),
		"error", err.Err,
	)
	return err
}
