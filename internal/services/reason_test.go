package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/trit-recommender/internal/domain/recommend"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
	"github.com/yungbote/trit-recommender/internal/platform/websearch"
)

const goodJustification = `Here it is: {"title":"Spice up tonight","lines":["You chase bold flavors.","This alley is all heat.","Feel the **spicy** buzz."]}`

func testUser() recommend.UserContext {
	return recommend.UserContext{UserID: 1, Name: "mina", Country: "KR", Needs: recommend.NeedContents, Category: "FOOD", Latitude: 37.5, Longitude: 127.0}
}

func newTestReasons(gen *fakeGenerator, search websearch.Searcher, timeout time.Duration) ReasonService {
	return NewReasonService(logger.Nop(), gen, search, ReasonConfig{Timeout: timeout, BreakerName: "test"})
}

func TestPickContentOffersTopTen(t *testing.T) {
	var prompt string
	gen := &fakeGenerator{fn: func(ctx context.Context, system, user string) (string, error) {
		prompt = user
		return `{"contentsId": 3, "reason": "you like markets"}`, nil
	}}
	items := make([]recommend.ContentItem, 12)
	for i := range items {
		items[i] = recommend.ContentItem{ID: int64(i + 1), Title: "t", Description: "d"}
	}
	s := newTestReasons(gen, nil, time.Second)

	pick, ok := s.PickContent(context.Background(), testUser(), items)
	if !ok || pick.ContentsID != 3 || pick.Reason != "you like markets" {
		t.Fatalf("unexpected pick %+v ok=%v", pick, ok)
	}
	if !strings.Contains(prompt, "- ID: 10,") || strings.Contains(prompt, "- ID: 11,") {
		t.Fatalf("expected only the first ten items offered:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Age: unknown, Gender: unknown") {
		t.Fatalf("missing attributes must render as unknown:\n%s", prompt)
	}
}

func TestPickContentRejectsIDOutsideOffer(t *testing.T) {
	gen := &fakeGenerator{fn: func(ctx context.Context, system, user string) (string, error) {
		return `{"contentsId": 99, "reason": "made up"}`, nil
	}}
	s := newTestReasons(gen, nil, time.Second)
	pick, ok := s.PickContent(context.Background(), testUser(), []recommend.ContentItem{{ID: 1}})
	if ok {
		t.Fatalf("pick outside offered set must be rejected")
	}
	if pick.Reason != "made up" {
		t.Fatalf("raw reason should survive for fallback, got %q", pick.Reason)
	}
}

func TestJustifyContentUsesSearchFacts(t *testing.T) {
	var prompt string
	gen := &fakeGenerator{fn: func(ctx context.Context, system, user string) (string, error) {
		prompt = user
		return goodJustification, nil
	}}
	search := &fakeSearcher{results: []websearch.Result{
		{Title: "a", Body: "Spicy rice cakes everywhere, spicy sauce."},
		{Title: "b", Body: "Crowded alley with spicy snacks."},
	}}
	s := newTestReasons(gen, search, time.Second)

	j, ok := s.JustifyContent(context.Background(), testUser(), recommend.ContentItem{ID: 1, Title: "Tteokbokki Alley", Category: "FOOD"})
	if !ok || j.Title != "Spice up tonight" || len(j.Lines) != 3 {
		t.Fatalf("unexpected justification %+v ok=%v", j, ok)
	}
	if len(search.queries) != 1 || search.queries[0] != "Tteokbokki Alley FOOD travel" {
		t.Fatalf("unexpected queries %v", search.queries)
	}
	if !strings.Contains(prompt, "- Spicy rice cakes everywhere, spicy sauce.") || !strings.Contains(prompt, "**spicy**") {
		t.Fatalf("prompt missing facts or keywords:\n%s", prompt)
	}
}

func TestJustifyContentSearchFailureStillJustifies(t *testing.T) {
	gen := &fakeGenerator{fn: func(ctx context.Context, system, user string) (string, error) {
		return goodJustification, nil
	}}
	s := newTestReasons(gen, &fakeSearcher{err: errors.New("blocked")}, time.Second)
	if _, ok := s.JustifyContent(context.Background(), testUser(), recommend.ContentItem{ID: 1, Title: "x"}); !ok {
		t.Fatalf("search failure must not block justification")
	}
}

func TestJustifyCreatorMalformedReply(t *testing.T) {
	gen := &fakeGenerator{fn: func(ctx context.Context, system, user string) (string, error) {
		return `{"title": "only two", "lines": ["a", "b"]}`, nil
	}}
	s := newTestReasons(gen, nil, time.Second)
	if _, ok := s.JustifyCreator(context.Background(), testUser(), recommend.CreatorItem{ID: 10, Name: "jun"}); ok {
		t.Fatalf("two-line reply must be rejected")
	}
}

func TestGenerateTimeoutIsAbsorbed(t *testing.T) {
	gen := &fakeGenerator{fn: func(ctx context.Context, system, user string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	s := newTestReasons(gen, nil, 10*time.Millisecond)
	start := time.Now()
	if _, ok := s.JustifyCreator(context.Background(), testUser(), recommend.CreatorItem{ID: 10}); ok {
		t.Fatalf("timeout must be treated as failure")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("per-call timeout not applied")
	}
}

func TestProviderErrorIsAbsorbed(t *testing.T) {
	gen := &fakeGenerator{fn: func(ctx context.Context, system, user string) (string, error) {
		return "", errors.New("openai status=500")
	}}
	s := newTestReasons(gen, nil, time.Second)
	if _, ok := s.PickContent(context.Background(), testUser(), []recommend.ContentItem{{ID: 1}}); ok {
		t.Fatalf("provider error must be absorbed")
	}
}
