package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/trit-recommender/internal/domain/recommend"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
	"github.com/yungbote/trit-recommender/internal/platform/pinecone"
)

func neighbour(id string, contents, creators []string) pinecone.QueryMatch {
	return pinecone.QueryMatch{ID: id, Metadata: recommend.BehaviorMetadata{
		PreferredContentIDs: contents,
		PreferredCreatorIDs: creators,
	}.ToMap()}
}

func TestBiasForConcatenatesNeighboursInRankOrder(t *testing.T) {
	vs := newFakeVectorStore()
	vs.matches = []pinecone.QueryMatch{
		neighbour("user-1", []string{"999"}, nil),
		neighbour("user-2", []string{"c2", "c1"}, []string{"10"}),
		neighbour("user-3", []string{"c1"}, []string{"11", "10"}),
	}
	repo := &fakeBehaviorRepo{items: sampleBehavior()}
	s := NewPreferenceService(logger.Nop(), repo, &fakeEmbedder{}, vs, PreferenceConfig{})

	bias, err := s.BiasFor(context.Background(), 1)
	if err != nil {
		t.Fatalf("bias: %v", err)
	}
	if vs.topK != DefaultNeighbours {
		t.Fatalf("topK=%d want %d", vs.topK, DefaultNeighbours)
	}
	// The user's own profile is a neighbour like any other.
	if strings.Join(bias.ContentIDs, ",") != "999,c2,c1,c1" {
		t.Fatalf("content ids %v", bias.ContentIDs)
	}
	if strings.Join(bias.CreatorIDs, ",") != "10,11,10" {
		t.Fatalf("creator ids %v", bias.CreatorIDs)
	}
}

func TestBiasForExcludeSelf(t *testing.T) {
	vs := newFakeVectorStore()
	vs.matches = []pinecone.QueryMatch{
		neighbour("user-1", []string{"999"}, nil),
		neighbour("user-2", []string{"a"}, nil),
		neighbour("user-3", []string{"b"}, nil),
		neighbour("user-4", []string{"c"}, nil),
	}
	cfg := PreferenceConfig{Neighbours: 2, ExcludeSelf: true}
	s := NewPreferenceService(logger.Nop(), &fakeBehaviorRepo{items: sampleBehavior()}, &fakeEmbedder{}, vs, cfg)

	bias, err := s.BiasFor(context.Background(), 1)
	if err != nil {
		t.Fatalf("bias: %v", err)
	}
	if vs.topK != 3 {
		t.Fatalf("topK=%d want 3", vs.topK)
	}
	if strings.Join(bias.ContentIDs, ",") != "a,b" {
		t.Fatalf("content ids %v", bias.ContentIDs)
	}
}

func TestBiasForCapsNeighbours(t *testing.T) {
	vs := newFakeVectorStore()
	vs.matches = []pinecone.QueryMatch{
		neighbour("user-1", []string{"own"}, nil),
		neighbour("user-3", []string{"b"}, nil),
		neighbour("user-4", []string{"c"}, nil),
	}
	s := NewPreferenceService(logger.Nop(), &fakeBehaviorRepo{items: sampleBehavior()}, &fakeEmbedder{}, vs, PreferenceConfig{Neighbours: 2})
	bias, err := s.BiasFor(context.Background(), 1)
	if err != nil {
		t.Fatalf("bias: %v", err)
	}
	if vs.topK != 2 {
		t.Fatalf("topK=%d want 2", vs.topK)
	}
	if strings.Join(bias.ContentIDs, ",") != "own,b" {
		t.Fatalf("content ids %v", bias.ContentIDs)
	}
}

func TestBiasForEmptyTextSkipsEmbedding(t *testing.T) {
	emb := &fakeEmbedder{}
	s := NewPreferenceService(logger.Nop(), &fakeBehaviorRepo{}, emb, newFakeVectorStore(), PreferenceConfig{Neighbours: 5})
	bias, err := s.BiasFor(context.Background(), 1)
	if err != nil || !bias.Empty() {
		t.Fatalf("expected empty bias, got %+v err=%v", bias, err)
	}
	if len(emb.inputs) != 0 {
		t.Fatalf("no embedding expected")
	}
}

func TestBiasForQueryFailureIsUpstream(t *testing.T) {
	vs := newFakeVectorStore()
	vs.queryErr = errors.New("timeout")
	s := NewPreferenceService(logger.Nop(), &fakeBehaviorRepo{items: sampleBehavior()}, &fakeEmbedder{}, vs, PreferenceConfig{Neighbours: 5})
	if _, err := s.BiasFor(context.Background(), 1); !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
