package sitelist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/nao1215/blackbird/internal/model"
)

// maxListSize bounds the remote document read into memory.
const maxListSize = 64 * 1024 * 1024

// RefreshResult describes what RefreshIfStale did to the cache file.
type RefreshResult int

const (
	// RefreshUpToDate means the local list matched the remote list.
	RefreshUpToDate RefreshResult = iota

	// RefreshUpdated means the local list was replaced by a newer remote list.
	RefreshUpdated

	// RefreshDownloaded means the list was downloaded without comparison,
	// because the cache was missing or the comparison failed.
	RefreshDownloaded
)

// String returns a human-readable description of the result.
func (r RefreshResult) String() string {
	switch r {
	case RefreshUpToDate:
		return "up to date"
	case RefreshUpdated:
		return "updated"
	case RefreshDownloaded:
		return "downloaded"
	default:
		return "unknown"
	}
}

// Store reads and writes the local site list and refreshes it from a
// remote source.
type Store struct {
	path      string
	remoteURL string
	client    *http.Client
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient sets the client used for remote fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) {
		s.client = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store for the cache file at path and the remote list
// at remoteURL.
func NewStore(path, remoteURL string, opts ...Option) *Store {
	s := &Store{
		path:      path,
		remoteURL: remoteURL,
		client:    http.DefaultClient,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the cache file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and validates the cache file.
// A missing or malformed file yields an error wrapping ErrParse.
func (s *Store) Load() (*model.SiteList, error) {
	doc, err := s.readLocal()
	if err != nil {
		return nil, err
	}
	s.logger.Debug("site list loaded", "path", s.path, "sites", len(doc.sites), "hash", doc.hash)
	return &model.SiteList{
		Sites:  doc.sites,
		Hash:   doc.hash,
		Source: s.path,
	}, nil
}

// Save writes list to the cache file in canonical form.
func (s *Store) Save(list *model.SiteList) error {
	data, err := json.Marshal(struct {
		Sites []model.Site `json:"sites"`
	}{Sites: list.Sites})
	if err != nil {
		return fmt.Errorf("failed to encode site list: %w", err)
	}
	doc, err := parseDocument(data)
	if err != nil {
		return err
	}
	if err := s.write(doc); err != nil {
		return err
	}
	list.Hash = doc.hash
	list.Source = s.path
	return nil
}

// Download fetches the remote list and replaces the cache unconditionally.
// The cache is left untouched when the remote list is invalid.
func (s *Store) Download(ctx context.Context) error {
	doc, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	return s.write(doc)
}

// RefreshIfStale replaces the cache with the remote list when their
// content hashes differ. A missing cache, or any failure while comparing,
// falls back to an unconditional download.
func (s *Store) RefreshIfStale(ctx context.Context) (RefreshResult, error) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("site list not found, downloading", "path", s.path, "url", s.remoteURL)
		return RefreshDownloaded, s.Download(ctx)
	}

	local, err := s.readLocal()
	if err != nil {
		return s.fallback(ctx, err)
	}

	remote, err := s.fetch(ctx)
	if err != nil {
		return s.fallback(ctx, err)
	}

	if local.hash == remote.hash {
		s.logger.Debug("site list is up to date", "hash", local.hash)
		return RefreshUpToDate, nil
	}

	s.logger.Info("site list changed, updating", "old_hash", local.hash, "new_hash", remote.hash)
	if err := s.write(remote); err != nil {
		return RefreshUpdated, err
	}
	return RefreshUpdated, nil
}

func (s *Store) fallback(ctx context.Context, cause error) (RefreshResult, error) {
	s.logger.Warn("could not compare site lists, downloading", "error", cause)
	return RefreshDownloaded, s.Download(ctx)
}

func (s *Store) readLocal() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, parseError("cannot read %s: %v", s.path, err)
	}
	return parseDocument(data)
}

func (s *Store) fetch(ctx context.Context) (*document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.remoteURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", ErrFetch, resp.StatusCode, s.remoteURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxListSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return parseDocument(data)
}

// write replaces the cache file atomically.
func (s *Store) write(doc *document) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create site list directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".wmn-data-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName) //nolint:errcheck // Already renamed on success
	}()

	if _, err := tmp.Write(doc.canonical); err != nil {
		_ = tmp.Close() //nolint:errcheck // Write error takes precedence
		return fmt.Errorf("failed to write site list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write site list: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace site list: %w", err)
	}
	s.logger.Debug("site list written", "path", s.path, "sites", len(doc.sites), "hash", doc.hash)
	return nil
}
