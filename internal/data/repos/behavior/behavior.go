package behavior

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/trit-recommender/internal/domain/catalog"
	"github.com/yungbote/trit-recommender/internal/domain/recommend"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
)

// BehaviorRepo reads a user's watch, like and playlist activity.
type BehaviorRepo interface {
	// LastActivity returns the newest activity timestamp, or nil if none.
	LastActivity(ctx context.Context, tx *gorm.DB, userID int64) (*time.Time, error)
	// Items returns the distinct content items the user interacted with,
	// ordered by content id.
	Items(ctx context.Context, tx *gorm.DB, userID int64) ([]recommend.BehaviorItem, error)
}

type behaviorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBehaviorRepo(db *gorm.DB, baseLog *logger.Logger) BehaviorRepo {
	repoLog := baseLog.With("repo", "BehaviorRepo")
	return &behaviorRepo{db: db, log: repoLog}
}

func (r *behaviorRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

func (r *behaviorRepo) LastActivity(ctx context.Context, tx *gorm.DB, userID int64) (*time.Time, error) {
	var latest *time.Time
	consider := func(ts []time.Time) {
		if len(ts) == 0 {
			return
		}
		if latest == nil || ts[0].After(*latest) {
			t := ts[0].UTC()
			latest = &t
		}
	}

	var watched []time.Time
	if err := r.conn(ctx, tx).Model(&types.WatchedHistory{}).
		Where("users_id = ? AND watched_at IS NOT NULL", userID).
		Order("watched_at DESC").Limit(1).
		Pluck("watched_at", &watched).Error; err != nil {
		return nil, err
	}
	consider(watched)

	var liked []time.Time
	if err := r.conn(ctx, tx).Model(&types.LikedHistory{}).
		Where("users_id = ? AND liked_at IS NOT NULL", userID).
		Order("liked_at DESC").Limit(1).
		Pluck("liked_at", &liked).Error; err != nil {
		return nil, err
	}
	consider(liked)

	var playlist []time.Time
	if err := r.conn(ctx, tx).Table("playlist_contents_list pcl").
		Joins("JOIN playlist p ON pcl.playlist_id = p.id").
		Where("p.user_id = ? AND p.updated_at IS NOT NULL", userID).
		Order("p.updated_at DESC").Limit(1).
		Pluck("p.updated_at", &playlist).Error; err != nil {
		return nil, err
	}
	consider(playlist)

	return latest, nil
}

func (r *behaviorRepo) interactedContentIDs(ctx context.Context, tx *gorm.DB, userID int64) ([]int64, error) {
	seen := map[int64]struct{}{}
	add := func(ids []int64) {
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}

	var watched []int64
	if err := r.conn(ctx, tx).Model(&types.WatchedHistory{}).
		Where("users_id = ?", userID).Pluck("contents_id", &watched).Error; err != nil {
		return nil, err
	}
	add(watched)

	var liked []int64
	if err := r.conn(ctx, tx).Model(&types.LikedHistory{}).
		Where("users_id = ?", userID).Pluck("contents_id", &liked).Error; err != nil {
		return nil, err
	}
	add(liked)

	var listed []int64
	if err := r.conn(ctx, tx).Table("playlist_contents_list pcl").
		Joins("JOIN playlist p ON pcl.playlist_id = p.id").
		Where("p.user_id = ?", userID).
		Pluck("pcl.contents_list_id", &listed).Error; err != nil {
		return nil, err
	}
	add(listed)

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type creatorNameRow struct {
	ID       int64
	Nickname *string
}

type tagRow struct {
	ContentsID int64
	Name       string
}

func (r *behaviorRepo) Items(ctx context.Context, tx *gorm.DB, userID int64) ([]recommend.BehaviorItem, error) {
	ids, err := r.interactedContentIDs(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []recommend.BehaviorItem{}, nil
	}

	var contents []types.Content
	if err := r.conn(ctx, tx).Where("id IN ?", ids).Order("id").Find(&contents).Error; err != nil {
		return nil, err
	}

	creatorIDs := make([]int64, 0, len(contents))
	for _, c := range contents {
		if c.CreatorID != nil {
			creatorIDs = append(creatorIDs, *c.CreatorID)
		}
	}
	names := map[int64]string{}
	if len(creatorIDs) > 0 {
		var rows []creatorNameRow
		if err := r.conn(ctx, tx).Table("creator cr").
			Select("cr.id, u.nickname").
			Joins("JOIN users u ON cr.user_id = u.id").
			Where("cr.id IN ?", creatorIDs).
			Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			names[row.ID] = types.Str(row.Nickname)
		}
	}

	var tags []tagRow
	if err := r.conn(ctx, tx).Table("hashtags_contents_mapping hcm").
		Select("hcm.contents_id, h.name").
		Joins("JOIN hashtags h ON hcm.hashtags_id = h.id").
		Where("hcm.contents_id IN ?", ids).
		Order("hcm.contents_id, h.name").
		Scan(&tags).Error; err != nil {
		return nil, err
	}
	tagsByContent := map[int64][]string{}
	for _, t := range tags {
		tagsByContent[t.ContentsID] = append(tagsByContent[t.ContentsID], t.Name)
	}

	out := make([]recommend.BehaviorItem, 0, len(contents))
	for _, c := range contents {
		item := recommend.BehaviorItem{
			ContentID:   c.ID,
			CreatorID:   c.CreatorID,
			Title:       types.Str(c.Title),
			Description: types.Str(c.Description),
			Category:    types.Str(c.Category),
			Tags:        tagsByContent[c.ID],
		}
		if c.CreatorID != nil {
			item.CreatorName = names[*c.CreatorID]
		}
		out = append(out, item)
	}
	return out, nil
}
