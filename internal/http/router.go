package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/trit-recommender/internal/http/handlers"
	httpMW "github.com/yungbote/trit-recommender/internal/http/middleware"
	"github.com/yungbote/trit-recommender/internal/observability"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	RecommendationHandler *httpH.RecommendationHandler
	UsageHandler          *httpH.UsageHandler
	HealthHandler         *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	users := r.Group("/api/v1/users")
	{
		if cfg.AuthMiddleware != nil {
			users.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.RecommendationHandler != nil {
			users.GET("/recommend", cfg.RecommendationHandler.Recommend)
		}
		if cfg.UsageHandler != nil {
			users.GET("/recommend/history", cfg.UsageHandler.History)
			users.GET("/usage", cfg.UsageHandler.Remaining)
		}
	}

	return r
}
