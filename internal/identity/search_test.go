package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSearcher(t *testing.T, handler http.HandlerFunc) *Searcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewSearcher(testClient(), testClassifier(), server.URL, false)
}

func TestCompanySite_OrganicResult(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "Acme Corp official website", r.FormValue("q"))
		_, _ = w.Write([]byte(`
			<html><body>
				<a class="result__a" href="https://acme.example/">Acme Corp</a>
				<a class="result__a" href="https://second.example/">Second</a>
			</body></html>`))
	})

	got := s.CompanySite(context.Background(), "Acme Corp")
	assert.Equal(t, "https://acme.example/", got)
}

func TestCompanySite_UnwrapsRedirectWrapper(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`
			<html><body>
				<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Facme.example%2F&rut=abc">Acme</a>
			</body></html>`))
	})

	got := s.CompanySite(context.Background(), "Acme Corp")
	assert.Equal(t, "https://acme.example/", got)
}

func TestCompanySite_FallsBackToFirstExternalLink(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`
			<html><body>
				<a href="/settings">Settings</a>
				<a href="https://duckduckgo.com/about">About</a>
				<a href="https://acme.example/">Acme</a>
			</body></html>`))
	})

	got := s.CompanySite(context.Background(), "Acme Corp")
	assert.Equal(t, "https://acme.example/", got)
}

func TestCompanySite_NothingUsable(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>No results.</p></body></html>`))
	})

	assert.Empty(t, s.CompanySite(context.Background(), "Acme Corp"))
}

func TestCompanySite_EmptyName(t *testing.T) {
	s := NewSearcher(testClient(), testClassifier(), "", false)
	assert.Empty(t, s.CompanySite(context.Background(), ""))
}

func TestCompanySite_SearchFailure(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	assert.Empty(t, s.CompanySite(context.Background(), "Acme Corp"))
}
