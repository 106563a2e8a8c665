package search

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/blackbird/internal/model"
	"github.com/nao1215/blackbird/internal/probe"
	"github.com/nao1215/blackbird/internal/transport"
)

// newProfileServer answers 200 "repositories" for /alice and 404 "Not Found"
// otherwise; /slow/ paths never answer in time.
func newProfileServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/slow/"):
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		case r.URL.Path == "/alice":
			_, _ = w.Write([]byte("<html>alice has 42 repositories</html>")) //nolint:errcheck // Test server
		default:
			http.Error(w, "Not Found", http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func githubLike(base string) model.Site {
	return model.Site{
		Name:     "GitHub",
		URICheck: base + "/{account}",
		ECode:    200,
		EString:  "repositories",
		MCode:    404,
		MString:  "Not Found",
		Category: "coding",
	}
}

// TestScenarios runs the searcher against real HTTP probes.
func TestScenarios(t *testing.T) {
	t.Parallel()

	srv := newProfileServer(t)

	t.Run("existing account is FOUND", func(t *testing.T) {
		t.Parallel()
		list := &model.SiteList{Sites: []model.Site{githubLike(srv.URL)}}
		rs := New(probe.NewProber(srv.Client())).Run(t.Context(), "alice", list)

		found := rs.Found()
		if len(found) != 1 {
			t.Fatalf("expected 1 found outcome, got %+v", rs.Outcomes)
		}
		if found[0].Site != "GitHub" || found[0].URL != srv.URL+"/alice" {
			t.Errorf("unexpected outcome: %+v", found[0])
		}
	})

	t.Run("missing account is NOT_FOUND", func(t *testing.T) {
		t.Parallel()
		list := &model.SiteList{Sites: []model.Site{githubLike(srv.URL)}}
		rs := New(probe.NewProber(srv.Client())).Run(t.Context(), "nobody", list)

		if rs.Outcomes[0].Status != model.StatusNotFound {
			t.Errorf("expected NOT_FOUND, got %v", rs.Outcomes[0].Status)
		}
		if len(rs.Found()) != 0 {
			t.Error("expected no found accounts")
		}
	})

	t.Run("redirect loop is ERROR", func(t *testing.T) {
		t.Parallel()
		loop := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, r.URL.Path+"/again", http.StatusFound)
		}))
		t.Cleanup(loop.Close)

		client, err := transport.NewHTTPClient(transport.Options{Timeout: 5 * time.Second})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		site := githubLike(loop.URL)
		site.ECode = http.StatusFound
		site.EString = "Found"

		rs := New(probe.NewProber(client)).Run(t.Context(), "alice", &model.SiteList{Sites: []model.Site{site}})
		if got := rs.Outcomes[0]; got.Status != model.StatusError || got.Error == "" {
			t.Errorf("expected ERROR with a message, got %+v", got)
		}
	})

	t.Run("timeout is ERROR and other sites still complete", func(t *testing.T) {
		t.Parallel()
		slow := githubLike(srv.URL + "/slow")
		slow.Name = "Slow"
		list := &model.SiteList{Sites: []model.Site{slow, githubLike(srv.URL)}}

		p := probe.NewProber(srv.Client(), probe.WithTimeout(200*time.Millisecond))
		rs := New(p).Run(t.Context(), "alice", list)

		if rs.Outcomes[0].Status != model.StatusError {
			t.Errorf("expected ERROR for slow site, got %v", rs.Outcomes[0].Status)
		}
		if rs.Outcomes[1].Status != model.StatusFound {
			t.Errorf("expected FOUND for fast site, got %v", rs.Outcomes[1].Status)
		}
	})
}
