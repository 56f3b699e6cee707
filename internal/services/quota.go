package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yungbote/trit-recommender/internal/domain/recommend"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
)

const (
	DefaultMaxPerDay = 20
	DefaultQuotaTTL  = 24 * time.Hour
)

// ErrQuotaExhausted is returned by Commit when the day's units are gone.
var ErrQuotaExhausted = errors.New("daily quota exhausted")

// CounterStore is the slice of the counter store the quota needs.
type CounterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
	Decr(ctx context.Context, key string) (int64, error)
}

type QuotaService interface {
	Remaining(ctx context.Context, userID int64, need recommend.NeedType) (int, error)
	// Admit is read-only: it reports whether a request may proceed and the
	// current remaining count.
	Admit(ctx context.Context, userID int64, need recommend.NeedType) (bool, int, error)
	// Commit atomically claims one unit and returns what is left. An
	// increment past the cap is undone and reported as ErrQuotaExhausted,
	// so concurrent requests that all passed Admit cannot overshoot.
	Commit(ctx context.Context, userID int64, need recommend.NeedType) (int, error)
	// Release hands back a unit claimed by Commit.
	Release(ctx context.Context, userID int64, need recommend.NeedType) (int, error)
	RemainingAll(ctx context.Context, userID int64) (map[recommend.NeedType]int, error)
}

type QuotaConfig struct {
	MaxPerDay int
	TTL       time.Duration
	// Location decides the calendar day in the key. Defaults to UTC.
	Location *time.Location
}

type quotaService struct {
	log     *logger.Logger
	counter CounterStore
	max     int
	ttl     time.Duration
	loc     *time.Location
	now     func() time.Time
}

func NewQuotaService(log *logger.Logger, counter CounterStore, cfg QuotaConfig) QuotaService {
	if cfg.MaxPerDay <= 0 {
		cfg.MaxPerDay = DefaultMaxPerDay
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultQuotaTTL
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &quotaService{
		log:     log.With("service", "QuotaService"),
		counter: counter,
		max:     cfg.MaxPerDay,
		ttl:     cfg.TTL,
		loc:     cfg.Location,
		now:     time.Now,
	}
}

// UsageKey is the counter key for a user's need on the given day.
func UsageKey(userID int64, day time.Time, need recommend.NeedType) string {
	return fmt.Sprintf("usage:%d:%s:%s", userID, day.Format("2006-01-02"), need)
}

func (q *quotaService) key(userID int64, need recommend.NeedType) string {
	return UsageKey(userID, q.now().In(q.loc), need)
}

func (q *quotaService) remaining(count int64) int {
	left := q.max - int(count)
	if left < 0 {
		return 0
	}
	return left
}

func (q *quotaService) Remaining(ctx context.Context, userID int64, need recommend.NeedType) (int, error) {
	count, err := q.counter.Get(ctx, q.key(userID, need))
	if err != nil {
		return 0, upstream("redis", fmt.Errorf("read usage: %w", err))
	}
	return q.remaining(count), nil
}

func (q *quotaService) Admit(ctx context.Context, userID int64, need recommend.NeedType) (bool, int, error) {
	left, err := q.Remaining(ctx, userID, need)
	if err != nil {
		return false, 0, err
	}
	return left > 0, left, nil
}

func (q *quotaService) Commit(ctx context.Context, userID int64, need recommend.NeedType) (int, error) {
	key := q.key(userID, need)
	count, err := q.counter.IncrWithTTL(ctx, key, q.ttl)
	if err != nil {
		return 0, upstream("redis", fmt.Errorf("increment usage: %w", err))
	}
	if count > int64(q.max) {
		if _, err := q.counter.Decr(ctx, key); err != nil {
			// Left over-counted; the key still expires with the day.
			q.log.Error("quota rollback failed", "user_id", userID, "needs", need, "error", err)
		}
		q.log.Info("quota lost race at commit", "user_id", userID, "needs", need, "count", count)
		return 0, ErrQuotaExhausted
	}
	q.log.Debug("quota committed", "user_id", userID, "needs", need, "count", count)
	return q.remaining(count), nil
}

func (q *quotaService) Release(ctx context.Context, userID int64, need recommend.NeedType) (int, error) {
	count, err := q.counter.Decr(ctx, q.key(userID, need))
	if err != nil {
		return 0, upstream("redis", fmt.Errorf("release usage: %w", err))
	}
	q.log.Debug("quota released", "user_id", userID, "needs", need, "count", count)
	return q.remaining(count), nil
}

func (q *quotaService) RemainingAll(ctx context.Context, userID int64) (map[recommend.NeedType]int, error) {
	out := make(map[recommend.NeedType]int, len(recommend.AllNeeds))
	for _, need := range recommend.AllNeeds {
		left, err := q.Remaining(ctx, userID, need)
		if err != nil {
			return nil, err
		}
		out[need] = left
	}
	return out, nil
}
