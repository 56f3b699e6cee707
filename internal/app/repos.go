package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/trit-recommender/internal/data/repos/behavior"
	"github.com/yungbote/trit-recommender/internal/data/repos/catalog"
	"github.com/yungbote/trit-recommender/internal/data/repos/history"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
)

type Repos struct {
	Catalog  catalog.CatalogRepo
	History  history.HistoryRepo
	Behavior behavior.BehaviorRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Catalog:  catalog.NewCatalogRepo(db, log),
		History:  history.NewHistoryRepo(db, log),
		Behavior: behavior.NewBehaviorRepo(db, log),
	}
}
