package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	types "github.com/yungbote/trit-recommender/internal/domain/catalog"
	"github.com/yungbote/trit-recommender/internal/domain/recommend"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
)

type CatalogRepo interface {
	ListContents(ctx context.Context, tx *gorm.DB) ([]recommend.ContentItem, error)
	ListLocations(ctx context.Context, tx *gorm.DB) ([]recommend.LocationItem, error)
	ListCreators(ctx context.Context, tx *gorm.DB) ([]recommend.CreatorItem, error)
	// UserCountry returns "" when the user is unknown or has no country.
	UserCountry(ctx context.Context, tx *gorm.DB, userID int64) (string, error)
	ListUserIDs(ctx context.Context, tx *gorm.DB) ([]int64, error)
}

type catalogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCatalogRepo(db *gorm.DB, baseLog *logger.Logger) CatalogRepo {
	repoLog := baseLog.With("repo", "CatalogRepo")
	return &catalogRepo{db: db, log: repoLog}
}

func (r *catalogRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *catalogRepo) ListContents(ctx context.Context, tx *gorm.DB) ([]recommend.ContentItem, error) {
	var rows []types.Content
	if err := r.conn(tx).WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]recommend.ContentItem, 0, len(rows))
	for _, c := range rows {
		item := recommend.ContentItem{
			ID:          c.ID,
			Category:    types.Str(c.Category),
			Title:       types.Str(c.Title),
			Description: types.Str(c.Description),
			Thumbnail:   types.Str(c.Thumbnail),
		}
		if c.CreatorID != nil {
			item.CreatorID = *c.CreatorID
		}
		out = append(out, item)
	}
	return out, nil
}

type locationRow struct {
	ID          int64
	PlaceName   *string
	Address     *string
	Latitude    float64
	Longitude   float64
	GoogleMapID *string
	ContentsID  int64
	Category    *string
}

// ListLocations returns one row per (location, owning content) pair; the
// category is the owning content's.
func (r *catalogRepo) ListLocations(ctx context.Context, tx *gorm.DB) ([]recommend.LocationItem, error) {
	var rows []locationRow
	err := r.conn(tx).WithContext(ctx).
		Table("location l").
		Select("l.id, l.place_name, l.address, l.latitude, l.longitude, l.google_map_id, c.id AS contents_id, c.category").
		Joins("JOIN contents_location cl ON l.id = cl.location_id").
		Joins("JOIN contents c ON cl.contents_id = c.id").
		Order("l.id, c.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]recommend.LocationItem, 0, len(rows))
	for _, l := range rows {
		out = append(out, recommend.LocationItem{
			ID:          l.ID,
			PlaceName:   types.Str(l.PlaceName),
			Address:     types.Str(l.Address),
			Latitude:    l.Latitude,
			Longitude:   l.Longitude,
			GoogleMapID: types.Str(l.GoogleMapID),
			ContentsID:  l.ContentsID,
			Category:    types.Str(l.Category),
		})
	}
	return out, nil
}

// Category must carry its column type or gorm parses it as a relation and
// scans nothing into it.
type creatorRow struct {
	ID           int64
	Nickname     *string
	Category     pq.StringArray `gorm:"column:category;type:text[]"`
	Country      *string
	Youtube      *string
	Introduction *string
}

func (r *catalogRepo) ListCreators(ctx context.Context, tx *gorm.DB) ([]recommend.CreatorItem, error) {
	var rows []creatorRow
	err := r.conn(tx).WithContext(ctx).
		Table("creator cr").
		Select("cr.id, u.nickname, cr.category, u.country, cr.youtube, cr.introduction").
		Joins("JOIN users u ON cr.user_id = u.id").
		Order("cr.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]recommend.CreatorItem, 0, len(rows))
	for _, c := range rows {
		out = append(out, recommend.CreatorItem{
			ID:           c.ID,
			Name:         types.Str(c.Nickname),
			Categories:   []string(c.Category),
			Country:      types.Str(c.Country),
			Youtube:      types.Str(c.Youtube),
			Introduction: types.Str(c.Introduction),
		})
	}
	return out, nil
}

func (r *catalogRepo) UserCountry(ctx context.Context, tx *gorm.DB, userID int64) (string, error) {
	var u types.User
	err := r.conn(tx).WithContext(ctx).Where("id = ?", userID).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(types.Str(u.Country)), nil
}

func (r *catalogRepo) ListUserIDs(ctx context.Context, tx *gorm.DB) ([]int64, error) {
	var ids []int64
	if err := r.conn(tx).WithContext(ctx).Model(&types.User{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
