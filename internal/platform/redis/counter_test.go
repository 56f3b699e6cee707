package redis

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/yungbote/trit-recommender/internal/platform/logger"
)

// testCounter runs against TEST_REDIS_ADDR when set, otherwise an
// in-process miniredis.
func testCounter(t *testing.T) (Counter, *counter) {
	t.Helper()
	addr := strings.TrimSpace(os.Getenv("TEST_REDIS_ADDR"))
	if addr == "" {
		addr = miniredis.RunT(t).Addr()
	}
	c, err := NewCounter(logger.Nop(), Config{Addr: addr})
	if err != nil {
		t.Fatalf("NewCounter: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, c.(*counter)
}

func TestIncrWithTTLSetsExpiryOnce(t *testing.T) {
	c, raw := testCounter(t)
	ctx := context.Background()
	key := "test:usage:" + uuid.NewString()
	t.Cleanup(func() { raw.rdb.Del(ctx, key) })

	v, err := c.IncrWithTTL(ctx, key, 24*time.Hour)
	if err != nil || v != 1 {
		t.Fatalf("first incr: v=%d err=%v", v, err)
	}
	ttl1 := raw.rdb.TTL(ctx, key).Val()
	if ttl1 <= 0 || ttl1 > 24*time.Hour {
		t.Fatalf("expected ttl to be set, got %v", ttl1)
	}

	// Shorten the TTL; a second increment must not reset it.
	raw.rdb.Expire(ctx, key, time.Hour)
	v, err = c.IncrWithTTL(ctx, key, 24*time.Hour)
	if err != nil || v != 2 {
		t.Fatalf("second incr: v=%d err=%v", v, err)
	}
	if ttl2 := raw.rdb.TTL(ctx, key).Val(); ttl2 > time.Hour {
		t.Fatalf("ttl was reset on second increment: %v", ttl2)
	}
}

func TestIncrWithTTLAfterExpiryStartsOver(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewCounter(logger.Nop(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewCounter: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.IncrWithTTL(ctx, "usage:k", time.Hour); err != nil {
			t.Fatalf("incr: %v", err)
		}
	}
	mr.FastForward(time.Hour + time.Second)
	if mr.Exists("usage:k") {
		t.Fatalf("key should have expired")
	}
	v, err := c.IncrWithTTL(ctx, "usage:k", time.Hour)
	if err != nil || v != 1 {
		t.Fatalf("incr after expiry: v=%d err=%v", v, err)
	}
	if ttl := mr.TTL("usage:k"); ttl != time.Hour {
		t.Fatalf("expiry must be set again, got %v", ttl)
	}
}

func TestDecrKeepsExpiryAndFloorsAtZero(t *testing.T) {
	c, raw := testCounter(t)
	ctx := context.Background()
	key := "test:usage:" + uuid.NewString()
	t.Cleanup(func() { raw.rdb.Del(ctx, key) })

	if v, err := c.Decr(ctx, key); err != nil || v != 0 {
		t.Fatalf("decr absent: v=%d err=%v", v, err)
	}
	if n := raw.rdb.Exists(ctx, key).Val(); n != 0 {
		t.Fatalf("decr must not create the key")
	}

	for i := 0; i < 2; i++ {
		if _, err := c.IncrWithTTL(ctx, key, 24*time.Hour); err != nil {
			t.Fatalf("incr: %v", err)
		}
	}
	v, err := c.Decr(ctx, key)
	if err != nil || v != 1 {
		t.Fatalf("decr: v=%d err=%v", v, err)
	}
	if ttl := raw.rdb.TTL(ctx, key).Val(); ttl <= 0 {
		t.Fatalf("decr dropped the expiry: %v", ttl)
	}
	_, _ = c.Decr(ctx, key)
	if v, err := c.Decr(ctx, key); err != nil || v != 0 {
		t.Fatalf("decr at zero: v=%d err=%v", v, err)
	}
}

func TestGetAbsentKeyIsZero(t *testing.T) {
	c, _ := testCounter(t)
	v, err := c.Get(context.Background(), "test:absent:"+uuid.NewString())
	if err != nil || v != 0 {
		t.Fatalf("expected 0, got v=%d err=%v", v, err)
	}
}
