package services

import (
	"context"

	"github.com/yungbote/trit-recommender/internal/data/repos/history"
	"github.com/yungbote/trit-recommender/internal/domain/recommend"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
)

const DefaultHistoryLimit = 100

// UsageService serves the read-only history and remaining-usage views.
type UsageService interface {
	History(ctx context.Context, userID int64, limit int) ([]*recommend.History, error)
	Remaining(ctx context.Context, userID int64) (map[recommend.NeedType]int, error)
}

type usageService struct {
	log     *logger.Logger
	history history.HistoryRepo
	quota   QuotaService
}

func NewUsageService(log *logger.Logger, historyRepo history.HistoryRepo, quota QuotaService) UsageService {
	return &usageService{
		log:     log.With("service", "UsageService"),
		history: historyRepo,
		quota:   quota,
	}
}

func (s *usageService) History(ctx context.Context, userID int64, limit int) ([]*recommend.History, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := s.history.ListByUser(ctx, nil, userID, limit)
	if err != nil {
		return nil, relational("list history", err)
	}
	if rows == nil {
		rows = []*recommend.History{}
	}
	return rows, nil
}

func (s *usageService) Remaining(ctx context.Context, userID int64) (map[recommend.NeedType]int, error) {
	return s.quota.RemainingAll(ctx, userID)
}
