package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/yungbote/trit-recommender/internal/data/db"
	"github.com/yungbote/trit-recommender/internal/observability"
	"github.com/yungbote/trit-recommender/internal/platform/openai"
	"github.com/yungbote/trit-recommender/internal/platform/pinecone"
	"github.com/yungbote/trit-recommender/internal/platform/redis"
	"github.com/yungbote/trit-recommender/internal/platform/websearch"
	"github.com/yungbote/trit-recommender/internal/services"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

var defaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/trit-recommender/config.yaml",
}

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Auth      AuthConfig      `koanf:"auth"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Pinecone  PineconeConfig  `koanf:"pinecone"`
	OpenAI    OpenAIConfig    `koanf:"openai"`
	Search    SearchConfig    `koanf:"search"`
	Quota     QuotaConfig     `koanf:"quota"`
	Recommend RecommendConfig `koanf:"recommend"`
	Otel      OtelConfig      `koanf:"otel"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ServiceName     string        `koanf:"service_name" validate:"required"`
	Environment     string        `koanf:"environment"`
	Version         string        `koanf:"version"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

type LogConfig struct {
	Mode string `koanf:"mode" validate:"oneof=development production prod test"`
}

type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret" validate:"required"`
}

type DatabaseConfig struct {
	DSN             string        `koanf:"dsn"`
	Host            string        `koanf:"host" validate:"required_without=DSN"`
	Port            int           `koanf:"port" validate:"gte=0,lte=65535"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name" validate:"required_without=DSN"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr" validate:"required"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
}

type PineconeConfig struct {
	APIKey     string        `koanf:"api_key" validate:"required"`
	APIVersion string        `koanf:"api_version"`
	BaseURL    string        `koanf:"base_url"`
	IndexName  string        `koanf:"index_name" validate:"required_without=IndexHost"`
	IndexHost  string        `koanf:"index_host"`
	Namespace  string        `koanf:"namespace"`
	Timeout    time.Duration `koanf:"timeout"`
}

type OpenAIConfig struct {
	APIKey      string        `koanf:"api_key" validate:"required"`
	BaseURL     string        `koanf:"base_url"`
	Model       string        `koanf:"model" validate:"required"`
	EmbedModel  string        `koanf:"embed_model" validate:"required"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxAttempts int           `koanf:"max_attempts" validate:"gte=1"`
}

type SearchConfig struct {
	BaseURL        string        `koanf:"base_url"`
	UserAgent      string        `koanf:"user_agent"`
	Timeout        time.Duration `koanf:"timeout"`
	RequestsPerSec float64       `koanf:"requests_per_sec" validate:"gte=0"`
	Burst          int           `koanf:"burst" validate:"gte=0"`
}

type QuotaConfig struct {
	MaxPerDay int           `koanf:"max_per_day" validate:"gte=1"`
	TTL       time.Duration `koanf:"ttl" validate:"gt=0"`
	Timezone  string        `koanf:"timezone" validate:"required,timezone"`
}

type RecommendConfig struct {
	Neighbours     int           `koanf:"neighbours" validate:"gte=1"`
	ExcludeSelf    bool          `koanf:"exclude_self"`
	RefreshProfile bool          `koanf:"refresh_profile"`
	LLMTimeout     time.Duration `koanf:"llm_timeout" validate:"gt=0"`
	SearchResults  int           `koanf:"search_results" validate:"gte=0"`
	PickOffer      int           `koanf:"pick_offer" validate:"gte=1"`
}

type OtelConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	Insecure    bool    `koanf:"insecure"`
	Headers     string  `koanf:"headers"`
	SampleRatio float64 `koanf:"sample_ratio" validate:"gte=0,lte=1"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ServiceName:     "trit-recommender",
			Environment:     "development",
			ShutdownTimeout: 15 * time.Second,
		},
		Log: LogConfig{Mode: "development"},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Name:            "trit",
			User:            "postgres",
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			AutoMigrate:     true,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Pinecone: PineconeConfig{
			IndexName: "user-behavior-index",
			Timeout:   30 * time.Second,
		},
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o-mini",
			EmbedModel:  "text-embedding-3-small",
			Timeout:     60 * time.Second,
			MaxAttempts: 3,
		},
		Search: SearchConfig{
			Timeout:        10 * time.Second,
			RequestsPerSec: 1,
			Burst:          2,
		},
		Quota: QuotaConfig{
			MaxPerDay: services.DefaultMaxPerDay,
			TTL:       services.DefaultQuotaTTL,
			Timezone:  "UTC",
		},
		Recommend: RecommendConfig{
			Neighbours:     services.DefaultNeighbours,
			RefreshProfile: true,
			LLMTimeout:     20 * time.Second,
			SearchResults:  5,
			PickOffer:      10,
		},
		Otel: OtelConfig{SampleRatio: 1},
	}
}

// envMappings lists every environment variable the service reads. Unlisted
// variables are ignored.
var envMappings = map[string]string{
	"http_addr":         "server.addr",
	"service_name":      "server.service_name",
	"environment":       "server.environment",
	"service_version":   "server.version",
	"cors_origins":      "server.cors_origins",
	"shutdown_timeout":  "server.shutdown_timeout",
	"log_mode":          "log.mode",
	"jwt_secret":        "auth.jwt_secret",
	"database_url":      "database.dsn",
	"db_host":           "database.host",
	"db_port":           "database.port",
	"db_user":           "database.user",
	"db_password":       "database.password",
	"db_name":           "database.name",
	"db_sslmode":        "database.ssl_mode",
	"db_max_open_conns": "database.max_open_conns",
	"db_max_idle_conns": "database.max_idle_conns",
	"db_auto_migrate":   "database.auto_migrate",

	"redis_addr":     "redis.addr",
	"redis_password": "redis.password",
	"redis_db":       "redis.db",

	"pinecone_api_key":     "pinecone.api_key",
	"pinecone_api_version": "pinecone.api_version",
	"pinecone_base_url":    "pinecone.base_url",
	"pinecone_index":       "pinecone.index_name",
	"pinecone_index_name":  "pinecone.index_name",
	"pinecone_index_host":  "pinecone.index_host",
	"pinecone_namespace":   "pinecone.namespace",

	"openai_api_key":      "openai.api_key",
	"openai_base_url":     "openai.base_url",
	"openai_model":        "openai.model",
	"openai_embed_model":  "openai.embed_model",
	"openai_timeout":      "openai.timeout",
	"openai_max_attempts": "openai.max_attempts",

	"websearch_base_url":   "search.base_url",
	"websearch_user_agent": "search.user_agent",
	"websearch_rps":        "search.requests_per_sec",
	"websearch_burst":      "search.burst",

	"quota_max_per_day": "quota.max_per_day",
	"quota_ttl":         "quota.ttl",
	"quota_timezone":    "quota.timezone",

	"recommend_neighbours":      "recommend.neighbours",
	"recommend_exclude_self":    "recommend.exclude_self",
	"recommend_refresh_profile": "recommend.refresh_profile",
	"recommend_llm_timeout":     "recommend.llm_timeout",
	"recommend_search_results":  "recommend.search_results",

	"otel_enabled":                "otel.enabled",
	"otel_exporter_otlp_endpoint": "otel.endpoint",
	"otel_exporter_otlp_insecure": "otel.insecure",
	"otel_exporter_otlp_headers":  "otel.headers",
	"otel_sample_ratio":           "otel.sample_ratio",
}

func envTransform(key string) string {
	return envMappings[strings.ToLower(key)]
}

// LoadConfig layers struct defaults, an optional YAML file and the
// environment, in that order, then validates the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := splitList(k, "server.cors_origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnvVar)); p != "" {
		return p
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// splitList turns a comma separated env value into a list; YAML lists pass
// through untouched.
func splitList(k *koanf.Koanf, path string) error {
	raw, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if err := k.Set(path, out); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	return validate.Struct(c)
}

func (c *Config) location() *time.Location {
	loc, err := time.LoadLocation(c.Quota.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) dbConfig() db.Config {
	d := c.Database
	return db.Config{
		DSN:             d.DSN,
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		Name:            d.Name,
		SSLMode:         d.SSLMode,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
	}
}

func (c *Config) redisConfig() redis.Config {
	return redis.Config{Addr: c.Redis.Addr, Password: c.Redis.Password, DB: c.Redis.DB}
}

func (c *Config) pineconeConfig() (pinecone.Config, pinecone.StoreConfig) {
	p := c.Pinecone
	client := pinecone.Config{
		APIKey:     p.APIKey,
		APIVersion: p.APIVersion,
		BaseURL:    p.BaseURL,
		Timeout:    p.Timeout,
	}
	store := pinecone.StoreConfig{
		IndexName: p.IndexName,
		IndexHost: p.IndexHost,
		Namespace: p.Namespace,
	}
	return client, store
}

func (c *Config) openAIConfig() openai.Config {
	o := c.OpenAI
	return openai.Config{
		APIKey:      o.APIKey,
		BaseURL:     o.BaseURL,
		Model:       o.Model,
		EmbedModel:  o.EmbedModel,
		Timeout:     o.Timeout,
		MaxAttempts: o.MaxAttempts,
	}
}

func (c *Config) searchConfig() websearch.Config {
	s := c.Search
	return websearch.Config{
		BaseURL:        s.BaseURL,
		UserAgent:      s.UserAgent,
		Timeout:        s.Timeout,
		RequestsPerSec: s.RequestsPerSec,
		Burst:          s.Burst,
	}
}

func (c *Config) otelConfig() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.Otel.Enabled,
		ServiceName: c.Server.ServiceName,
		Environment: c.Server.Environment,
		Version:     c.Server.Version,
		Endpoint:    c.Otel.Endpoint,
		Insecure:    c.Otel.Insecure,
		Headers:     observability.ParseHeaders(c.Otel.Headers),
		SampleRatio: c.Otel.SampleRatio,
	}
}
