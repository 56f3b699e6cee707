package history

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/trit-recommender/internal/domain/recommend"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
)

type HistoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rec *recommend.History) error
	// ListByUser returns the user's records newest first. limit <= 0 means no limit.
	ListByUser(ctx context.Context, tx *gorm.DB, userID int64, limit int) ([]*recommend.History, error)
}

type historyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	repoLog := baseLog.With("repo", "HistoryRepo")
	return &historyRepo{db: db, log: repoLog}
}

func (r *historyRepo) Create(ctx context.Context, tx *gorm.DB, rec *recommend.History) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(rec).Error
}

func (r *historyRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID int64, limit int) ([]*recommend.History, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*recommend.History
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
