package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/trit-recommender/internal/platform/ctxutil"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
)

// RequestLogger writes one access line per request once the handler chain
// is done. Handlers enrich it through ctxutil.Annotate (needs, outcome
// code, remaining quota). Health checks and metric scrapes log at debug.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		ctx := c.Request.Context()

		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"route", route,
			"status", status,
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if rd := ctxutil.GetRequestData(ctx); rd != nil && rd.UserID != 0 {
			fields = append(fields, "user_id", rd.UserID)
		}
		fields = append(fields, ctxutil.GetRequestTrace(ctx).Fields()...)
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("request failed", fields...)
		case status >= 400:
			log.Warn("request rejected", fields...)
		case route == "/healthcheck" || route == "/metrics":
			log.Debug("request served", fields...)
		default:
			log.Info("request served", fields...)
		}
	}
}
