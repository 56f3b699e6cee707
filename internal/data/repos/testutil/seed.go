package testutil

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	types "github.com/yungbote/trit-recommender/internal/domain/catalog"
)

// Fixture timestamps for user 1's activity. PlaylistAt is the newest.
var (
	WatchedAt  = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	LikedAt    = time.Date(2026, 1, 11, 9, 0, 0, 0, time.UTC)
	PlaylistAt = time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
)

// SeedCatalog inserts a small catalog:
//   - users 1 (KR), 2 (KR, creator 10), 3 (JP, creator 11)
//   - contents 100,101 (FOOD, creator 10), 102 (NATURE, creator 11), 103 (all text NULL)
//   - location 500 owned by 101 (Seoul), 501 owned by 102 (Jeju)
//   - user 1 watched 100 and 103, liked 101, playlisted 102
func SeedCatalog(tb testing.TB, tx *gorm.DB) {
	tb.Helper()
	c10, c11 := int64(10), int64(11)
	rows := []any{
		&[]types.User{
			{ID: 1, Nickname: Ptr("mina"), Country: Ptr("KR")},
			{ID: 2, Nickname: Ptr("jun"), Country: Ptr("kr ")},
			{ID: 3, Nickname: Ptr("sora"), Country: Ptr("JP")},
		},
		&[]types.Creator{
			{ID: 10, UserID: 2, Category: pq.StringArray{"FOOD", "TRAVEL"}, Youtube: Ptr("youtube.com/@jun"), Introduction: Ptr("Street food every day")},
			{ID: 11, UserID: 3, Category: pq.StringArray{"food"}, Youtube: Ptr("youtube.com/@sora"), Introduction: Ptr("Onsen and ramen")},
		},
		&[]types.Content{
			{ID: 100, Category: Ptr("FOOD"), Title: Ptr("Tteokbokki Alley"), Description: Ptr("Spicy rice cakes"), Thumbnail: Ptr("t100.jpg"), CreatorID: &c10},
			{ID: 101, Category: Ptr("food"), Title: Ptr("Gwangjang Market"), Description: Ptr("Old market"), Thumbnail: Ptr("t101.jpg"), CreatorID: &c10},
			{ID: 102, Category: Ptr("NATURE"), Title: Ptr("Hallasan"), Description: Ptr("Volcano hike"), CreatorID: &c11},
			{ID: 103},
		},
		&[]types.Location{
			{ID: 500, PlaceName: Ptr("Gwangjang Market"), Address: Ptr("Jongno-gu, Seoul"), Latitude: 37.5700, Longitude: 126.9996, GoogleMapID: Ptr("gm-500")},
			{ID: 501, PlaceName: Ptr("Hallasan Trail"), Address: Ptr("Jeju"), Latitude: 33.3617, Longitude: 126.5292, GoogleMapID: Ptr("gm-501")},
		},
		&[]types.ContentLocation{{ContentsID: 101, LocationID: 500}, {ContentsID: 102, LocationID: 501}},
		&[]types.Hashtag{{ID: 1, Name: "spicy"}, {ID: 2, Name: "market"}},
		&[]types.HashtagContent{{HashtagsID: 1, ContentsID: 100}, {HashtagsID: 2, ContentsID: 101}, {HashtagsID: 1, ContentsID: 101}},
		&[]types.WatchedHistory{{UsersID: 1, ContentsID: 100, WatchedAt: WatchedAt}, {UsersID: 1, ContentsID: 103, WatchedAt: WatchedAt.Add(-time.Hour)}},
		&[]types.LikedHistory{{UsersID: 1, ContentsID: 101, LikedAt: LikedAt}},
		&[]types.Playlist{{ID: 900, UserID: 1, UpdatedAt: PlaylistAt}},
		&[]types.PlaylistContent{{PlaylistID: 900, ContentsListID: 102}},
	}
	for _, r := range rows {
		if err := tx.Create(r).Error; err != nil {
			tb.Fatalf("seed %T: %v", r, err)
		}
	}
}
