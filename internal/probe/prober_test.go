package probe

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/blackbird/internal/log"
	"github.com/nao1215/blackbird/internal/model"
	"github.com/nao1215/blackbird/internal/transport"
)

func siteFor(uri string) model.Site {
	return model.Site{
		Name:     "Test",
		URICheck: uri,
		ECode:    200,
		EString:  "profile",
		MCode:    404,
		MString:  "missing",
	}
}

// TestProbe tests successful probes.
func TestProbe(t *testing.T) {
	t.Parallel()

	t.Run("substitutes the username and captures the response", func(t *testing.T) {
		t.Parallel()

		var gotPath, gotUA string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotUA = r.UserAgent()
			w.Header().Set("X-Test", "yes")
			_, _ = w.Write([]byte("public profile of alice")) //nolint:errcheck // Test server
		}))
		defer srv.Close()

		p := NewProber(srv.Client(), WithUserAgent("blackbird-test"))
		resp, err := p.Probe(t.Context(), siteFor(srv.URL+"/users/{account}"), "alice")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if gotPath != "/users/alice" {
			t.Errorf("expected path /users/alice, got %q", gotPath)
		}
		if gotUA != "blackbird-test" {
			t.Errorf("expected user agent to be sent, got %q", gotUA)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
		if resp.Body != "public profile of alice" {
			t.Errorf("unexpected body %q", resp.Body)
		}
		if resp.URL != srv.URL+"/users/alice" {
			t.Errorf("unexpected URL %q", resp.URL)
		}
		if resp.Header.Get("X-Test") != "yes" {
			t.Error("expected headers to be captured")
		}
	})

	t.Run("non-2xx status is a response, not an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "missing", http.StatusNotFound)
		}))
		defer srv.Close()

		resp, err := NewProber(srv.Client()).Probe(t.Context(), siteFor(srv.URL+"/{account}"), "bob")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("redirects are followed", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new/"+strings.TrimPrefix(r.URL.Path, "/old/"), http.StatusMovedPermanently)
		})
		mux.HandleFunc("/new/", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("profile")) //nolint:errcheck // Test server
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		resp, err := NewProber(srv.Client()).Probe(t.Context(), siteFor(srv.URL+"/old/{account}"), "carol")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.FinalURL != srv.URL+"/new/carol" {
			t.Errorf("unexpected final URL %q", resp.FinalURL)
		}
		if resp.URL != srv.URL+"/old/carol" {
			t.Errorf("expected probed URL to be kept, got %q", resp.URL)
		}
	})

	t.Run("body is truncated at the size limit", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write(bytes.Repeat([]byte("a"), 4096)) //nolint:errcheck // Test server
		}))
		defer srv.Close()

		resp, err := NewProber(srv.Client(), WithMaxBodySize(100)).Probe(t.Context(), siteFor(srv.URL+"/{account}"), "dave")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(resp.Body) != 100 {
			t.Errorf("expected 100 bytes, got %d", len(resp.Body))
		}
	})
}

// TestProbeFailures tests that transport failures become TransportErrors.
func TestProbeFailures(t *testing.T) {
	t.Parallel()

	t.Run("timeout returns a timeout TransportError", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}))
		defer srv.Close()

		var logs bytes.Buffer
		p := NewProber(srv.Client(), WithTimeout(100*time.Millisecond), WithLogger(log.NewSecureLogger(&logs, false)))
		resp, err := p.Probe(t.Context(), siteFor(srv.URL+"/{account}"), "slow")

		if resp != nil {
			t.Error("expected nil response")
		}
		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("expected *TransportError, got %T: %v", err, err)
		}
		if !te.Timeout() {
			t.Errorf("expected timeout, got %v", te.Err)
		}
		if !strings.Contains(logs.String(), "error in HTTP request") {
			t.Errorf("expected failure to be logged, got: %s", logs.String())
		}
	})

	t.Run("connection refused returns a TransportError", func(t *testing.T) {
		t.Parallel()

		listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
		if err != nil {
			t.Fatalf("failed to reserve port: %v", err)
		}
		addr := listener.Addr().String()
		_ = listener.Close()

		_, err = NewProber(http.DefaultClient).Probe(t.Context(), siteFor("http://"+addr+"/{account}"), "x")
		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("expected *TransportError, got %v", err)
		}
		if te.Op != "request" {
			t.Errorf("expected op request, got %q", te.Op)
		}
		if te.Timeout() {
			t.Error("expected a non-timeout failure")
		}
	})

	t.Run("redirect loop returns a TransportError", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, r.URL.Path+"/again", http.StatusFound)
		}))
		defer srv.Close()

		client, err := transport.NewHTTPClient(transport.Options{Timeout: 5 * time.Second})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		site := siteFor(srv.URL + "/{account}")
		site.ECode = http.StatusFound
		site.EString = "Found"

		resp, err := NewProber(client).Probe(t.Context(), site, "loop")
		if resp != nil {
			t.Errorf("expected nil response, got status %d", resp.StatusCode)
		}
		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("expected *TransportError, got %v", err)
		}
		if !errors.Is(err, transport.ErrTooManyRedirects) {
			t.Errorf("expected ErrTooManyRedirects, got %v", err)
		}
	})

	t.Run("malformed URL returns a TransportError", func(t *testing.T) {
		t.Parallel()

		_, err := NewProber(http.DefaultClient).Probe(t.Context(), siteFor("://bad/{account}"), "x")
		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("expected *TransportError, got %v", err)
		}
	})

	t.Run("cancelled context returns a TransportError", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("profile")) //nolint:errcheck // Test server
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := NewProber(srv.Client()).Probe(ctx, siteFor(srv.URL+"/{account}"), "x")
		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("expected *TransportError, got %v", err)
		}
	})
}

// TestTransportErrorMessage tests the error string and unwrapping.
func TestTransportErrorMessage(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection reset")
	err := &TransportError{Op: "read", URL: "https://example.com/alice", Err: inner}

	if err.Error() != "read https://example.com/alice: connection reset" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to find the wrapped error")
	}
}
