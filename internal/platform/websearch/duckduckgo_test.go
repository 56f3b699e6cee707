package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/yungbote/trit-recommender/internal/platform/logger"
)

const samplePage = `<html><body>
<div class="result result--ad"><a class="result__a" href="https://ads.example">Ad</a><a class="result__snippet">buy now</a></div>
<div class="result">
  <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fjeju&amp;rut=x">Jeju   Island</a></h2>
  <a class="result__snippet">Volcanic island with   beaches.</a>
</div>
<div class="result">
  <h2><a class="result__a" href="https://example.org/hallasan">Hallasan</a></h2>
  <a class="result__snippet">Highest mountain in Korea.</a>
</div>
<div class="result">
  <h2><a class="result__a" href="https://example.net/three">Third</a></h2>
  <a class="result__snippet">Third body.</a>
</div>
</body></html>`

func TestParseResults(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := ParseResults(doc, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(got), got)
	}
	if got[0].Title != "Jeju Island" || got[0].Body != "Volcanic island with beaches." {
		t.Fatalf("unexpected first result %+v", got[0])
	}
	if got[0].Href != "https://example.com/jeju" {
		t.Fatalf("redirect not unwrapped: %q", got[0].Href)
	}
	if got[1].Href != "https://example.org/hallasan" {
		t.Fatalf("unexpected href %q", got[1].Href)
	}
}

func TestSearchAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("q"); q != "Jeju NATURE travel" {
			t.Errorf("unexpected query %q", q)
		}
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	s, err := NewDuckDuckGo(logger.Nop(), Config{BaseURL: srv.URL + "/", RequestsPerSec: 100})
	if err != nil {
		t.Fatalf("NewDuckDuckGo: %v", err)
	}
	got, err := s.Search(context.Background(), "Jeju NATURE travel", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
}

func TestSearchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s, _ := NewDuckDuckGo(logger.Nop(), Config{BaseURL: srv.URL + "/", RequestsPerSec: 100})
	if _, err := s.Search(context.Background(), "x", 5); err == nil {
		t.Fatalf("expected error for 403")
	}
}
