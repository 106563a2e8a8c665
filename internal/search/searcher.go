package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/blackbird/internal/match"
	"github.com/nao1215/blackbird/internal/model"
)

// Prober sends the probe for one site. *probe.Prober implements it.
type Prober interface {
	Probe(ctx context.Context, site model.Site, username string) (*model.RawResponse, error)
}

// Searcher checks a username against every site of a list.
type Searcher struct {
	prober      Prober
	concurrency int
	logger      *slog.Logger
	onOutcome   func(model.Outcome)
	now         func() time.Time

	// callbackMu serializes onOutcome calls.
	callbackMu sync.Mutex
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithConcurrency bounds the probes in flight. 0 means unbounded.
func WithConcurrency(n int) Option {
	return func(s *Searcher) {
		if n >= 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		s.logger = logger
	}
}

// WithOutcomeCallback registers fn to be called once per completed probe.
// Calls are serialized, in completion order.
func WithOutcomeCallback(fn func(model.Outcome)) Option {
	return func(s *Searcher) {
		s.onOutcome = fn
	}
}

// WithClock replaces time.Now for the run date.
func WithClock(now func() time.Time) Option {
	return func(s *Searcher) {
		s.now = now
	}
}

// New creates a Searcher using prober for every site.
func New(prober Prober, opts ...Option) *Searcher {
	s := &Searcher{
		prober: prober,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run probes every site of list for username and returns all outcomes in
// list order. It always returns a complete ResultSet: sites whose probe
// failed, panicked or was cancelled are recorded as ERROR.
func (s *Searcher) Run(ctx context.Context, username string, list *model.SiteList) *model.ResultSet {
	date := s.now()
	start := time.Now()

	s.logger.Info("starting search",
		"username", username,
		"sites", list.Len(),
		"concurrency", s.concurrency,
	)

	outcomes := make([]model.Outcome, list.Len())

	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}

	for i, site := range list.Sites {
		g.Go(func() error {
			outcomes[i] = s.check(gctx, site, username)
			s.notify(outcomes[i])
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Tasks never return errors

	rs := model.NewResultSet(username, date, outcomes, time.Since(start))
	counts := rs.Counts()
	s.logger.Info("search completed",
		"username", username,
		"sites", counts.Total,
		"found", counts.Found,
		"errors", counts.Error,
		"elapsed", rs.Elapsed,
	)
	return rs
}

// check probes one site. It recovers from panics so that one broken site
// definition cannot take the run down.
func (s *Searcher) check(ctx context.Context, site model.Site, username string) (outcome model.Outcome) {
	outcome = model.Outcome{
		Site:       site.Name,
		URL:        site.ProfileURL(username),
		ProfileURL: site.DisplayURL(username),
		Category:   site.Category,
	}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("probe panicked", "site", site.Name, "panic", r)
			outcome.Status = model.StatusError
			outcome.StatusCode = 0
			outcome.Error = fmt.Sprintf("panic: %v", r)
		}
		outcome.Elapsed = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		outcome.Status = model.StatusError
		outcome.Error = err.Error()
		return outcome
	}

	resp, err := s.prober.Probe(ctx, site, username)
	if err != nil {
		outcome.Status = model.StatusError
		outcome.Error = err.Error()
		return outcome
	}

	if resp != nil {
		outcome.StatusCode = resp.StatusCode
	}
	outcome.Status = match.Classify(site, resp)
	return outcome
}

func (s *Searcher) notify(o model.Outcome) {
	if s.onOutcome == nil {
		return
	}
	s.callbackMu.Lock()
	defer s.callbackMu.Unlock()
	s.onOutcome(o)
}
