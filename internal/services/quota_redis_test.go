package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/yungbote/trit-recommender/internal/domain/recommend"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
	"github.com/yungbote/trit-recommender/internal/platform/redis"
)

func redisQuota(t *testing.T, max int) (*quotaService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	counter, err := redis.NewCounter(logger.Nop(), redis.Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewCounter: %v", err)
	}
	t.Cleanup(func() { _ = counter.Close() })
	return newTestQuota(counter, max), mr
}

func TestQuotaOnRedisSetsTTLOnlyOnFirstUnit(t *testing.T) {
	ctx := context.Background()
	q, mr := redisQuota(t, 5)
	key := UsageKey(1, q.now(), recommend.NeedLocation)

	if _, err := q.Commit(ctx, 1, recommend.NeedLocation); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if ttl := mr.TTL(key); ttl != DefaultQuotaTTL {
		t.Fatalf("first unit must set a 24h expiry, got %v", ttl)
	}

	mr.FastForward(time.Hour)
	for i := 0; i < 2; i++ {
		if _, err := q.Commit(ctx, 1, recommend.NeedLocation); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}
	if ttl := mr.TTL(key); ttl != DefaultQuotaTTL-time.Hour {
		t.Fatalf("later units must not refresh the expiry, got %v", ttl)
	}
	if left, err := q.Remaining(ctx, 1, recommend.NeedLocation); err != nil || left != 2 {
		t.Fatalf("remaining=%d err=%v, want 2", left, err)
	}
}

func TestQuotaOnRedisRollsBackPastCap(t *testing.T) {
	ctx := context.Background()
	q, mr := redisQuota(t, 1)
	key := UsageKey(2, q.now(), recommend.NeedCreator)

	if _, err := q.Commit(ctx, 2, recommend.NeedCreator); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := q.Commit(ctx, 2, recommend.NeedCreator); !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("expected ErrQuotaExhausted, got %v", err)
	}
	if v, _ := mr.Get(key); v != "1" {
		t.Fatalf("counter=%q want 1", v)
	}
	if ttl := mr.TTL(key); ttl != DefaultQuotaTTL {
		t.Fatalf("rollback must keep the expiry, got %v", ttl)
	}

	if left, err := q.Release(ctx, 2, recommend.NeedCreator); err != nil || left != 1 {
		t.Fatalf("release: left=%d err=%v", left, err)
	}
}
