package envutil

import (
	"testing"
	"time"
)

func TestInt(t *testing.T) {
	t.Setenv("ENVUTIL_INT", " 7 ")
	if got := Int("ENVUTIL_INT", 1); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	t.Setenv("ENVUTIL_INT", "nope")
	if got := Int("ENVUTIL_INT", 1); got != 1 {
		t.Fatalf("expected default, got %d", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("ENVUTIL_BOOL", "off")
	if Bool("ENVUTIL_BOOL", true) {
		t.Fatalf("expected false")
	}
	t.Setenv("ENVUTIL_BOOL", "maybe")
	if !Bool("ENVUTIL_BOOL", true) {
		t.Fatalf("expected default true")
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("ENVUTIL_DUR", "1500ms")
	if got := Duration("ENVUTIL_DUR", time.Second); got != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s, got %v", got)
	}
	t.Setenv("ENVUTIL_DUR", "30")
	if got := Duration("ENVUTIL_DUR", time.Second); got != 30*time.Second {
		t.Fatalf("expected 30s, got %v", got)
	}
	t.Setenv("ENVUTIL_DUR", "")
	if got := Duration("ENVUTIL_DUR", time.Second); got != time.Second {
		t.Fatalf("expected default, got %v", got)
	}
}
