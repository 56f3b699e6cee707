package pinecone

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/trit-recommender/internal/platform/logger"
)

type VectorStore interface {
	Upsert(ctx context.Context, vectors []Vector) error
	// QueryMatches returns matches with their similarity scores (higher is better).
	QueryMatches(ctx context.Context, q []float32, topK int, includeMetadata bool) ([]QueryMatch, error)
	// Fetch returns the stored vector for id; ok is false when nothing is stored.
	Fetch(ctx context.Context, id string) (Vector, bool, error)
}

type StoreConfig struct {
	IndexName string
	IndexHost string
	Namespace string
}

type vectorStore struct {
	log       *logger.Logger
	pc        Client
	indexHost string
	namespace string
}

func NewVectorStore(ctx context.Context, log *logger.Logger, pc Client, cfg StoreConfig) (VectorStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if pc == nil {
		return nil, fmt.Errorf("pinecone client required")
	}

	host := strings.TrimSpace(cfg.IndexHost)
	// If host missing, bootstrap via describe_index (fine for local/dev; avoid in prod).
	if host == "" {
		indexName := strings.TrimSpace(cfg.IndexName)
		if indexName == "" {
			return nil, fmt.Errorf("missing PINECONE_INDEX_NAME or PINECONE_INDEX_HOST")
		}
		desc, err := pc.DescribeIndex(ctx, indexName)
		if err != nil {
			return nil, fmt.Errorf("pinecone describe_index failed: %w", err)
		}
		host = strings.TrimSpace(desc.Host)
		log.Warn("PINECONE_INDEX_HOST not set; resolved via describe_index (avoid this in production)",
			"index_name", indexName,
			"index_host", host,
		)
	}

	return &vectorStore{
		log:       log.With("service", "PineconeVectorStore"),
		pc:        pc,
		indexHost: host,
		namespace: strings.TrimSpace(cfg.Namespace),
	}, nil
}

func (s *vectorStore) Upsert(ctx context.Context, vectors []Vector) error {
	_, err := s.pc.UpsertVectors(ctx, s.indexHost, UpsertRequest{
		Namespace: s.namespace,
		Vectors:   vectors,
	})
	return err
}

func (s *vectorStore) QueryMatches(ctx context.Context, q []float32, topK int, includeMetadata bool) ([]QueryMatch, error) {
	resp, err := s.pc.Query(ctx, s.indexHost, QueryRequest{
		Namespace:       s.namespace,
		Vector:          q,
		TopK:            topK,
		IncludeMetadata: includeMetadata,
	})
	if err != nil {
		return nil, err
	}
	out := make([]QueryMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if strings.TrimSpace(m.ID) == "" {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *vectorStore) Fetch(ctx context.Context, id string) (Vector, bool, error) {
	resp, err := s.pc.Fetch(ctx, s.indexHost, s.namespace, []string{id})
	if err != nil {
		return Vector{}, false, err
	}
	v, ok := resp.Vectors[id]
	return v, ok, nil
}
