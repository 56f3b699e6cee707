package app

import (
	httpserver "github.com/yungbote/trit-recommender/internal/http"
	httpH "github.com/yungbote/trit-recommender/internal/http/handlers"
	httpMW "github.com/yungbote/trit-recommender/internal/http/middleware"
	"github.com/yungbote/trit-recommender/internal/observability"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health         *httpH.HealthHandler
	Recommendation *httpH.RecommendationHandler
	Usage          *httpH.UsageHandler
}

func wireHandlers(log *logger.Logger, services Services, clients Clients) Handlers {
	log.Info("Wiring handlers...")
	deps := map[string]httpH.Pinger{}
	if clients.Postgres != nil {
		deps["postgres"] = clients.Postgres
	}
	if clients.Counter != nil {
		deps["redis"] = clients.Counter
	}
	return Handlers{
		Health:         httpH.NewHealthHandler(deps),
		Recommendation: httpH.NewRecommendationHandler(log, services.Recommendation),
		Usage:          httpH.NewUsageHandler(log, services.Usage),
	}
}

func wireMiddleware(log *logger.Logger, cfg *Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.Auth.JWTSecret),
	}
}

func routerConfig(log *logger.Logger, cfg *Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) httpserver.RouterConfig {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Server.ServiceName
	}
	return httpserver.RouterConfig{
		Log:                   log,
		Metrics:               metrics,
		ServiceName:           serviceName,
		CORSOrigins:           cfg.Server.CORSOrigins,
		AuthMiddleware:        middleware.Auth,
		RecommendationHandler: handlers.Recommendation,
		UsageHandler:          handlers.Usage,
		HealthHandler:         handlers.Health,
	}
}
