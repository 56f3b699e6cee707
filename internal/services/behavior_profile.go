package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yungbote/trit-recommender/internal/data/repos/behavior"
	"github.com/yungbote/trit-recommender/internal/domain/recommend"
	"github.com/yungbote/trit-recommender/internal/observability"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
	"github.com/yungbote/trit-recommender/internal/platform/pinecone"
)

// Embedder turns text into vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

var errEmptyEmbedding = errors.New("embedding provider returned no vector")

type BehaviorProfileService interface {
	// EnsureFresh recomputes the user's profile vector when activity is newer
	// than the stored profile. It reports whether a new vector was written.
	EnsureFresh(ctx context.Context, userID int64) (bool, error)
}

type behaviorProfileService struct {
	log      *logger.Logger
	behavior behavior.BehaviorRepo
	embedder Embedder
	vectors  pinecone.VectorStore
	now      func() time.Time
}

func NewBehaviorProfileService(log *logger.Logger, behaviorRepo behavior.BehaviorRepo, embedder Embedder, vectors pinecone.VectorStore) BehaviorProfileService {
	return &behaviorProfileService{
		log:      log.With("service", "BehaviorProfileService"),
		behavior: behaviorRepo,
		embedder: embedder,
		vectors:  vectors,
		now:      time.Now,
	}
}

func (s *behaviorProfileService) EnsureFresh(ctx context.Context, userID int64) (bool, error) {
	m := observability.Current()

	last, err := s.behavior.LastActivity(ctx, nil, userID)
	if err != nil {
		m.IncProfileRefresh("error")
		return false, relational("load last activity", err)
	}
	if last == nil {
		m.IncProfileRefresh("no_activity")
		return false, nil
	}

	id := recommend.ProfileVectorID(userID)
	stored, ok, err := s.vectors.Fetch(ctx, id)
	if err != nil {
		m.IncProfileRefresh("error")
		return false, upstream("pinecone", fmt.Errorf("fetch profile: %w", err))
	}
	if ok {
		md := recommend.MetadataFromMap(stored.Metadata)
		// Equal timestamps count as current.
		if md.LastUpdatedAt != nil && !md.LastUpdatedAt.Before(*last) {
			m.IncProfileRefresh("fresh")
			return false, nil
		}
	}

	items, err := s.behavior.Items(ctx, nil, userID)
	if err != nil {
		m.IncProfileRefresh("error")
		return false, relational("load behavior items", err)
	}
	text := recommend.RenderBehaviorText(items)
	if strings.TrimSpace(text) == "" {
		m.IncProfileRefresh("empty")
		s.log.Debug("behavior text empty, profile not refreshed", "user_id", userID)
		return false, nil
	}

	vec, err := embedOne(ctx, s.embedder, text)
	if err != nil {
		m.IncProfileRefresh("error")
		return false, err
	}

	contentIDs, creatorIDs := recommend.PreferredIDs(items)
	now := s.now().UTC()
	md := recommend.BehaviorMetadata{
		Source:              recommend.BehaviorSource,
		Length:              utf8.RuneCountInString(text),
		PreferredContentIDs: contentIDs,
		PreferredCreatorIDs: creatorIDs,
		LastUpdatedAt:       &now,
	}
	if err := s.vectors.Upsert(ctx, []pinecone.Vector{{ID: id, Values: vec, Metadata: md.ToMap()}}); err != nil {
		m.IncProfileRefresh("error")
		return false, upstream("pinecone", fmt.Errorf("upsert profile: %w", err))
	}

	m.IncProfileRefresh("refreshed")
	s.log.Info("behavior profile refreshed", "user_id", userID, "items", len(items), "length", md.Length)
	return true, nil
}

func embedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed behavior text: %w", err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, errEmptyEmbedding
	}
	return vecs[0], nil
}
