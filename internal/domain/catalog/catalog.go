package catalog

import (
	"time"

	"github.com/lib/pq"
)

// Catalog tables are owned by the main Trit backend; this service only reads them.

type Content struct {
	ID          int64   `gorm:"column:id;primaryKey"`
	Category    *string `gorm:"column:category"`
	Thumbnail   *string `gorm:"column:thumbnail"`
	Title       *string `gorm:"column:title"`
	Description *string `gorm:"column:description"`
	CreatorID   *int64  `gorm:"column:creator_id"`
}

func (Content) TableName() string { return "contents" }

type Location struct {
	ID          int64   `gorm:"column:id;primaryKey"`
	PlaceName   *string `gorm:"column:place_name"`
	Address     *string `gorm:"column:address"`
	Latitude    float64 `gorm:"column:latitude"`
	Longitude   float64 `gorm:"column:longitude"`
	GoogleMapID *string `gorm:"column:google_map_id"`
}

func (Location) TableName() string { return "location" }

type ContentLocation struct {
	ContentsID int64 `gorm:"column:contents_id"`
	LocationID int64 `gorm:"column:location_id"`
}

func (ContentLocation) TableName() string { return "contents_location" }

type Creator struct {
	ID           int64          `gorm:"column:id;primaryKey"`
	UserID       int64          `gorm:"column:user_id"`
	Category     pq.StringArray `gorm:"column:category;type:text[]"`
	Youtube      *string        `gorm:"column:youtube"`
	Introduction *string        `gorm:"column:introduction"`
}

func (Creator) TableName() string { return "creator" }

type User struct {
	ID       int64   `gorm:"column:id;primaryKey"`
	Nickname *string `gorm:"column:nickname"`
	Country  *string `gorm:"column:country"`
}

func (User) TableName() string { return "users" }

type WatchedHistory struct {
	UsersID    int64     `gorm:"column:users_id"`
	ContentsID int64     `gorm:"column:contents_id"`
	WatchedAt  time.Time `gorm:"column:watched_at"`
}

func (WatchedHistory) TableName() string { return "watched_history" }

type LikedHistory struct {
	UsersID    int64     `gorm:"column:users_id"`
	ContentsID int64     `gorm:"column:contents_id"`
	LikedAt    time.Time `gorm:"column:liked_at"`
}

func (LikedHistory) TableName() string { return "liked_history" }

type Playlist struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	UserID    int64     `gorm:"column:user_id"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Playlist) TableName() string { return "playlist" }

type PlaylistContent struct {
	PlaylistID     int64 `gorm:"column:playlist_id"`
	ContentsListID int64 `gorm:"column:contents_list_id"`
}

func (PlaylistContent) TableName() string { return "playlist_contents_list" }

type Hashtag struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name"`
}

func (Hashtag) TableName() string { return "hashtags" }

type HashtagContent struct {
	HashtagsID int64 `gorm:"column:hashtags_id"`
	ContentsID int64 `gorm:"column:contents_id"`
}

func (HashtagContent) TableName() string { return "hashtags_contents_mapping" }

// Str dereferences a nullable text column.
func Str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
