package services

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/trit-recommender/internal/domain/recommend"
	"github.com/yungbote/trit-recommender/internal/platform/pinecone"
	"github.com/yungbote/trit-recommender/internal/platform/websearch"
)

type fakeCounter struct {
	mu      sync.Mutex
	vals    map[string]int64
	ttls    map[string]time.Duration
	ttlSets int
	incrs   int
	err     error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{vals: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCounter) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.incrs++
	f.vals[key]++
	if f.vals[key] == 1 {
		f.ttls[key] = ttl
		f.ttlSets++
	}
	return f.vals[key], nil
}

func (f *fakeCounter) Get(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return f.vals[key], nil
}

func (f *fakeCounter) Decr(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if f.vals[key] <= 0 {
		return 0, nil
	}
	f.vals[key]--
	return f.vals[key], nil
}

type fakeBehaviorRepo struct {
	last     *time.Time
	items    []recommend.BehaviorItem
	err      error
	itemHits int
}

func (f *fakeBehaviorRepo) LastActivity(ctx context.Context, tx *gorm.DB, userID int64) (*time.Time, error) {
	return f.last, f.err
}

func (f *fakeBehaviorRepo) Items(ctx context.Context, tx *gorm.DB, userID int64) ([]recommend.BehaviorItem, error) {
	f.itemHits++
	return f.items, f.err
}

type fakeEmbedder struct {
	mu     sync.Mutex
	inputs []string
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, inputs...)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

type fakeVectorStore struct {
	mu       sync.Mutex
	stored   map[string]pinecone.Vector
	matches  []pinecone.QueryMatch
	upserts  []pinecone.Vector
	topK     int
	fetchErr error
	queryErr error
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{stored: map[string]pinecone.Vector{}}
}

func (f *fakeVectorStore) Upsert(ctx context.Context, vectors []pinecone.Vector) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range vectors {
		f.stored[v.ID] = v
		f.upserts = append(f.upserts, v)
	}
	return nil
}

func (f *fakeVectorStore) QueryMatches(ctx context.Context, q []float32, topK int, includeMetadata bool) ([]pinecone.QueryMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topK = topK
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if len(f.matches) > topK {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

func (f *fakeVectorStore) Fetch(ctx context.Context, id string) (pinecone.Vector, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return pinecone.Vector{}, false, f.fetchErr
	}
	v, ok := f.stored[id]
	return v, ok, nil
}

type fakeCatalog struct {
	contents  []recommend.ContentItem
	locations []recommend.LocationItem
	creators  []recommend.CreatorItem
	country   string
	err       error
	panicMsg  string
}

func (f *fakeCatalog) ListContents(ctx context.Context, tx *gorm.DB) ([]recommend.ContentItem, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.contents, f.err
}

func (f *fakeCatalog) ListLocations(ctx context.Context, tx *gorm.DB) ([]recommend.LocationItem, error) {
	return f.locations, f.err
}

func (f *fakeCatalog) ListCreators(ctx context.Context, tx *gorm.DB) ([]recommend.CreatorItem, error) {
	return f.creators, f.err
}

func (f *fakeCatalog) UserCountry(ctx context.Context, tx *gorm.DB, userID int64) (string, error) {
	return f.country, f.err
}

func (f *fakeCatalog) ListUserIDs(ctx context.Context, tx *gorm.DB) ([]int64, error) {
	return nil, f.err
}

type fakeHistory struct {
	mu      sync.Mutex
	records []*recommend.History
	err     error
}

func (f *fakeHistory) Create(ctx context.Context, tx *gorm.DB, rec *recommend.History) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	rec.ID = int64(len(f.records) + 1)
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeHistory) ListByUser(ctx context.Context, tx *gorm.DB, userID int64, limit int) ([]*recommend.History, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*recommend.History
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].UserID == userID {
			out = append(out, f.records[i])
		}
	}
	return out, nil
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls []string
	fn    func(ctx context.Context, system, user string) (string, error)
}

func (f *fakeGenerator) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, system)
	f.mu.Unlock()
	return f.fn(ctx, system, user)
}

type fakeSearcher struct {
	mu      sync.Mutex
	results []websearch.Result
	err     error
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string, maxResults int) ([]websearch.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > maxResults {
		return f.results[:maxResults], nil
	}
	return f.results, nil
}

type fakePreference struct {
	bias recommend.Bias
	err  error
}

func (f *fakePreference) BiasFor(ctx context.Context, userID int64) (recommend.Bias, error) {
	return f.bias, f.err
}

type fakeProfiles struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeProfiles) EnsureFresh(ctx context.Context, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return false, f.err
}
