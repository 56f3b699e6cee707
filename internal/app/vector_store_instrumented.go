package app

import (
	"context"
	"time"

	"github.com/yungbote/trit-recommender/internal/observability"
	"github.com/yungbote/trit-recommender/internal/platform/pinecone"
)

type instrumentedVectorStore struct {
	inner   pinecone.VectorStore
	metrics *observability.Metrics
}

func instrumentVectorStore(inner pinecone.VectorStore, metrics *observability.Metrics) pinecone.VectorStore {
	if inner == nil {
		return nil
	}
	return &instrumentedVectorStore{inner: inner, metrics: metrics}
}

func (s *instrumentedVectorStore) Upsert(ctx context.Context, vectors []pinecone.Vector) error {
	start := time.Now()
	err := s.inner.Upsert(ctx, vectors)
	s.observe("upsert", err, time.Since(start))
	return err
}

func (s *instrumentedVectorStore) QueryMatches(ctx context.Context, q []float32, topK int, includeMetadata bool) ([]pinecone.QueryMatch, error) {
	start := time.Now()
	out, err := s.inner.QueryMatches(ctx, q, topK, includeMetadata)
	s.observe("query", err, time.Since(start))
	return out, err
}

func (s *instrumentedVectorStore) Fetch(ctx context.Context, id string) (pinecone.Vector, bool, error) {
	start := time.Now()
	v, ok, err := s.inner.Fetch(ctx, id)
	s.observe("fetch", err, time.Since(start))
	return v, ok, err
}

func (s *instrumentedVectorStore) observe(operation string, err error, dur time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.ObserveVectorStore(operation, status, dur)
}
