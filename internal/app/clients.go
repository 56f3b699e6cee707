package app

import (
	"context"
	"fmt"

	"github.com/yungbote/trit-recommender/internal/data/db"
	"github.com/yungbote/trit-recommender/internal/observability"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
	"github.com/yungbote/trit-recommender/internal/platform/openai"
	"github.com/yungbote/trit-recommender/internal/platform/pinecone"
	"github.com/yungbote/trit-recommender/internal/platform/redis"
	"github.com/yungbote/trit-recommender/internal/platform/websearch"
)

type Clients struct {
	Postgres *db.PostgresService
	Counter  redis.Counter
	Vectors  pinecone.VectorStore
	OpenAI   openai.Client
	Search   websearch.Searcher
}

func wireClients(ctx context.Context, log *logger.Logger, cfg *Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	pg, err := db.NewPostgresService(log, cfg.dbConfig())
	if err != nil {
		return Clients{}, fmt.Errorf("init postgres: %w", err)
	}

	counter, err := redis.NewCounter(log, cfg.redisConfig())
	if err != nil {
		_ = pg.Close()
		return Clients{}, fmt.Errorf("init redis counter: %w", err)
	}

	pcCfg, storeCfg := cfg.pineconeConfig()
	pc, err := pinecone.New(log, pcCfg)
	if err != nil {
		_ = counter.Close()
		_ = pg.Close()
		return Clients{}, fmt.Errorf("init pinecone client: %w", err)
	}
	vectors, err := pinecone.NewVectorStore(ctx, log, pc, storeCfg)
	if err != nil {
		_ = counter.Close()
		_ = pg.Close()
		return Clients{}, fmt.Errorf("init pinecone vector store: %w", err)
	}

	oa, err := openai.NewClient(log, cfg.openAIConfig())
	if err != nil {
		_ = counter.Close()
		_ = pg.Close()
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	search, err := websearch.NewDuckDuckGo(log, cfg.searchConfig())
	if err != nil {
		_ = counter.Close()
		_ = pg.Close()
		return Clients{}, fmt.Errorf("init web search: %w", err)
	}

	return Clients{
		Postgres: pg,
		Counter:  counter,
		Vectors:  instrumentVectorStore(vectors, metrics),
		OpenAI:   oa,
		Search:   search,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Counter != nil {
		_ = c.Counter.Close()
	}
	if c.Postgres != nil {
		_ = c.Postgres.Close()
	}
}
