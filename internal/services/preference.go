package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/trit-recommender/internal/data/repos/behavior"
	"github.com/yungbote/trit-recommender/internal/domain/recommend"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
	"github.com/yungbote/trit-recommender/internal/platform/pinecone"
)

const DefaultNeighbours = 5

type PreferenceService interface {
	// BiasFor returns the preferred ids of the user's nearest neighbours, in
	// neighbour rank order. Users with no behavior text get an empty bias.
	BiasFor(ctx context.Context, userID int64) (recommend.Bias, error)
}

type PreferenceConfig struct {
	Neighbours int
	// ExcludeSelf drops the user's own profile from the neighbours. Off by
	// default: the own profile usually ranks first and leads the bias.
	ExcludeSelf bool
}

type preferenceService struct {
	log      *logger.Logger
	behavior behavior.BehaviorRepo
	embedder Embedder
	vectors  pinecone.VectorStore
	cfg      PreferenceConfig
}

func NewPreferenceService(log *logger.Logger, behaviorRepo behavior.BehaviorRepo, embedder Embedder, vectors pinecone.VectorStore, cfg PreferenceConfig) PreferenceService {
	if cfg.Neighbours <= 0 {
		cfg.Neighbours = DefaultNeighbours
	}
	return &preferenceService{
		log:      log.With("service", "PreferenceService"),
		behavior: behaviorRepo,
		embedder: embedder,
		vectors:  vectors,
		cfg:      cfg,
	}
}

func (s *preferenceService) BiasFor(ctx context.Context, userID int64) (recommend.Bias, error) {
	items, err := s.behavior.Items(ctx, nil, userID)
	if err != nil {
		return recommend.Bias{}, relational("load behavior items", err)
	}
	text := recommend.RenderBehaviorText(items)
	if strings.TrimSpace(text) == "" {
		return recommend.Bias{}, nil
	}

	vec, err := embedOne(ctx, s.embedder, text)
	if err != nil {
		return recommend.Bias{}, err
	}

	topK := s.cfg.Neighbours
	if s.cfg.ExcludeSelf {
		topK++
	}
	matches, err := s.vectors.QueryMatches(ctx, vec, topK, true)
	if err != nil {
		return recommend.Bias{}, upstream("pinecone", fmt.Errorf("query neighbours: %w", err))
	}

	self := recommend.ProfileVectorID(userID)
	var bias recommend.Bias
	used := 0
	for _, m := range matches {
		if s.cfg.ExcludeSelf && m.ID == self {
			continue
		}
		if used == s.cfg.Neighbours {
			break
		}
		used++
		md := recommend.MetadataFromMap(m.Metadata)
		bias.ContentIDs = append(bias.ContentIDs, md.PreferredContentIDs...)
		bias.CreatorIDs = append(bias.CreatorIDs, md.PreferredCreatorIDs...)
	}
	s.log.Debug("preference bias computed", "user_id", userID, "neighbours", used,
		"content_ids", len(bias.ContentIDs), "creator_ids", len(bias.CreatorIDs))
	return bias, nil
}
