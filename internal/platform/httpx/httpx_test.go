package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestIsRetryableHTTPStatus(t *testing.T) {
	cases := map[int]bool{200: false, 400: false, 404: false, 408: true, 429: true, 500: true, 503: true, 600: false}
	for code, want := range cases {
		if got := IsRetryableHTTPStatus(code); got != want {
			t.Fatalf("status %d: want %v got %v", code, want, got)
		}
	}
}

func TestIsRetryableError(t *testing.T) {
	if IsRetryableError(nil) {
		t.Fatalf("nil should not be retryable")
	}
	if IsRetryableError(context.Canceled) {
		t.Fatalf("cancellation should not be retryable")
	}
	if !IsRetryableError(fmt.Errorf("wrap: %w", context.DeadlineExceeded)) {
		t.Fatalf("deadline should be retryable")
	}
	if !IsRetryableError(&StatusError{Service: "x", StatusCode: 502}) {
		t.Fatalf("502 should be retryable")
	}
	if IsRetryableError(&StatusError{Service: "x", StatusCode: 401}) {
		t.Fatalf("401 should not be retryable")
	}
	if IsRetryableError(errors.New("decode failed")) {
		t.Fatalf("plain error should not be retryable")
	}
}

func TestRetryAfterDuration(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", "30")
	if got := RetryAfterDuration(resp, time.Second, 10*time.Second); got != 10*time.Second {
		t.Fatalf("expected cap at 10s, got %v", got)
	}
	resp.Header.Set("Retry-After", "2")
	if got := RetryAfterDuration(resp, time.Second, 10*time.Second); got != 2*time.Second {
		t.Fatalf("expected 2s, got %v", got)
	}
	if got := RetryAfterDuration(nil, time.Second, 0); got != time.Second {
		t.Fatalf("expected fallback, got %v", got)
	}
}

func TestJitterSleepBounds(t *testing.T) {
	base := time.Second
	for i := 0; i < 50; i++ {
		d := JitterSleep(base)
		if d < 800*time.Millisecond || d > 1200*time.Millisecond {
			t.Fatalf("jitter out of bounds: %v", d)
		}
	}
	if JitterSleep(0) != 0 {
		t.Fatalf("expected zero for zero base")
	}
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}
