package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRecommendationOutcomes(t *testing.T) {
	m := New()
	m.ObserveRecommendation("contents", "success")
	m.ObserveRecommendation("contents", "no_candidate")
	m.ObserveRecommendation("location", "error")
	m.ObserveRecommendation("creator", "quota_exhausted")

	if got := testutil.ToFloat64(m.recommendationFailures); got != 2 {
		t.Fatalf("expected 2 failures, got %v", got)
	}
	if got := testutil.ToFloat64(m.quotaRejections.WithLabelValues("creator")); got != 1 {
		t.Fatalf("expected 1 quota rejection, got %v", got)
	}
	if got := testutil.ToFloat64(m.recommendations.WithLabelValues("contents", "success")); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", 200, time.Millisecond)
	m.ObserveRecommendation("contents", "error")
	m.ObserveLLM("justify", "ok", time.Second)
	m.IncUpstream("pinecone", "ok")
	m.SetBreakerState("llm", 2)
	m.IncProfileRefresh("skipped")
	if m.Handler() == nil {
		t.Fatalf("expected default handler for nil metrics")
	}
}

func TestObserveAPILabels(t *testing.T) {
	m := New()
	m.ObserveAPI("", "", 404, 10*time.Millisecond)
	if got := testutil.ToFloat64(m.apiRequests.WithLabelValues("UNKNOWN", "unknown", "404")); got != 1 {
		t.Fatalf("expected defaulted labels to be counted, got %v", got)
	}
}
