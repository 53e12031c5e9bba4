package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

const litePage = `<html><body><table>
<tr><td><a rel="nofollow" href="https://example.com/a" class="result-link">First Result</a></td></tr>
<tr><td class="result-snippet">Snippet for the first result.</td></tr>
<tr><td><a rel="nofollow" href="https://example.com/b" class="result-link">Second Result</a></td></tr>
<tr><td class="result-snippet">Snippet for the second result.</td></tr>
<tr><td><a rel="nofollow" href="https://example.com/c" class="result-link">Third Result</a></td></tr>
<tr><td class="result-snippet">Snippet for the third result.</td></tr>
</table></body></html>`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	return client, server
}

func TestSearchParsesResults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("q"); got != "weather today" {
			t.Errorf("expected query in form, got %q", got)
		}
		w.Write([]byte(litePage))
	})

	results := client.Search(context.Background(), "weather today", 5)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Title != "First Result" {
		t.Fatalf("unexpected title %q", results[0].Title)
	}
	if results[0].URL != "https://example.com/a" {
		t.Fatalf("unexpected url %q", results[0].URL)
	}
	if results[0].Snippet != "Snippet for the first result." {
		t.Fatalf("unexpected snippet %q", results[0].Snippet)
	}
}

func TestSearchHonorsMaxResults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(litePage))
	})

	results := client.Search(context.Background(), "q", 2)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestSearchTruncatesLongSnippets(t *testing.T) {
	long := strings.Repeat("x", 500)
	page := `<html><body><table>
<tr><td><a href="https://example.com" class="result-link">T</a></td></tr>
<tr><td class="result-snippet">` + long + `</td></tr>
</table></body></html>`

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	})

	results := client.Search(context.Background(), "q", 1)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if len(results[0].Snippet) != snippetMaxChars+3 {
		t.Fatalf("expected truncated snippet, got %d chars", len(results[0].Snippet))
	}
	if !strings.HasSuffix(results[0].Snippet, "...") {
		t.Fatal("expected ellipsis suffix")
	}
}

func TestEmptyBaseURLKeepsDefault(t *testing.T) {
	// Callers pass the configured base through unconditionally; when the
	// config leaves it unset the default endpoint must survive.
	client := NewClient(zerolog.Nop(), WithBaseURL(""))
	if client.baseURL != defaultBaseURL {
		t.Fatalf("expected default base url, got %q", client.baseURL)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(litePage))
	}))
	t.Cleanup(server.Close)

	client = NewClient(zerolog.Nop(), WithBaseURL(""), WithBaseURL(server.URL))
	if results := client.Search(context.Background(), "q", 5); len(results) != 3 {
		t.Fatalf("expected 3 results after explicit base, got %d", len(results))
	}
}

func TestSearchReturnsEmptyOnServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if results := client.Search(context.Background(), "q", 5); len(results) != 0 {
		t.Fatalf("expected empty results on server error, got %d", len(results))
	}
}

func TestSearchReturnsEmptyOnUnreachableHost(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	if results := client.Search(context.Background(), "q", 5); len(results) != 0 {
		t.Fatalf("expected empty results when host is down, got %d", len(results))
	}
}
