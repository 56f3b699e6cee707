package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/trit-recommender/internal/domain/recommend"
)

// AutoMigrate creates the tables this service owns. Catalog and activity
// tables belong to the main backend and are never migrated here.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&recommend.History{}); err != nil {
		return fmt.Errorf("automigrate recommendation_history: %w", err)
	}
	return nil
}
