package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nao1215/tornago"
)

// DefaultTorStartupTimeout bounds the Tor bootstrap when no timeout is set.
const DefaultTorStartupTimeout = 3 * time.Minute

// EmbeddedTor runs a private Tor daemon whose SOCKS port carries the probes,
// so probed sites see a Tor exit instead of the caller's address.
// Bootstrapping usually takes one to three minutes.
type EmbeddedTor struct {
	mu             sync.Mutex
	process        *tornago.TorProcess
	startupTimeout time.Duration
}

// EmbeddedTorOption configures an EmbeddedTor.
type EmbeddedTorOption func(*EmbeddedTor)

// WithStartupTimeout overrides DefaultTorStartupTimeout. Non-positive values
// are ignored.
func WithStartupTimeout(timeout time.Duration) EmbeddedTorOption {
	return func(e *EmbeddedTor) {
		if timeout > 0 {
			e.startupTimeout = timeout
		}
	}
}

// NewEmbeddedTor returns a stopped daemon handle.
func NewEmbeddedTor(opts ...EmbeddedTorOption) *EmbeddedTor {
	e := &EmbeddedTor{startupTimeout: DefaultTorStartupTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the daemon on random local ports and blocks until it has
// bootstrapped. When ctx ends first, Start returns ctx.Err() and the daemon
// is stopped as soon as its launch returns.
func (e *EmbeddedTor) Start(ctx context.Context) error {
	cfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(e.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("invalid Tor launch config: %w", err)
	}

	type launch struct {
		process *tornago.TorProcess
		err     error
	}
	done := make(chan launch, 1)
	go func() {
		p, err := tornago.StartTorDaemon(cfg)
		done <- launch{process: p, err: err}
	}()

	select {
	case l := <-done:
		if l.err != nil {
			return fmt.Errorf("failed to start embedded Tor daemon: %w", l.err)
		}
		e.mu.Lock()
		e.process = l.process
		e.mu.Unlock()
		return nil
	case <-ctx.Done():
		go func() {
			if l := <-done; l.err == nil {
				_ = l.process.Stop() //nolint:errcheck // abandoned launch
			}
		}()
		return ctx.Err()
	}
}

// Stop shuts the daemon down. Stopping a handle that is not running is a
// no-op.
func (e *EmbeddedTor) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.process == nil {
		return nil
	}
	err := e.process.Stop()
	e.process = nil
	return err
}

// IsRunning reports whether Start succeeded and Stop was not called since.
func (e *EmbeddedTor) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.process != nil
}

// SocksAddr returns host:port of the daemon's SOCKS listener, or "".
func (e *EmbeddedTor) SocksAddr() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.process == nil {
		return ""
	}
	return e.process.SocksAddr()
}

// ProxyURL returns a socks5h URL for NewHTTPClient, so host names are
// resolved by Tor.
func (e *EmbeddedTor) ProxyURL() (string, error) {
	addr := e.SocksAddr()
	if addr == "" {
		return "", ErrTorNotRunning
	}
	return "socks5h://" + addr, nil
}
