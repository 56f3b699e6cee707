package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/trit-recommender/internal/http/middleware"
	"github.com/yungbote/trit-recommender/internal/http/response"
	"github.com/yungbote/trit-recommender/internal/platform/ctxutil"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
	"github.com/yungbote/trit-recommender/internal/services"
)

type UsageHandler struct {
	log     *logger.Logger
	service services.UsageService
}

func NewUsageHandler(log *logger.Logger, service services.UsageService) *UsageHandler {
	return &UsageHandler{log: log.With("handler", "UsageHandler"), service: service}
}

type historyQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// GET /api/v1/users/recommend/history
func (h *UsageHandler) History(c *gin.Context) {
	rd, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.JSON(c, http.StatusBadRequest, "BAD_REQUEST", "invalid query: "+err.Error(), []any{})
		return
	}
	rows, err := h.service.History(c.Request.Context(), rd.UserID, q.Limit)
	if err != nil {
		h.log.Error("history lookup failed", "user_id", rd.UserID, "error", err)
		response.JSON(c, http.StatusInternalServerError, response.CodeError,
			"Failed to fetch recommendation history: "+err.Error(), []any{})
		return
	}
	ctxutil.Annotate(c.Request.Context(), "history_rows", len(rows))
	response.OK(c, "Fetched recommendation history successfully.", rows)
}

// GET /api/v1/users/usage
func (h *UsageHandler) Remaining(c *gin.Context) {
	rd, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	remaining, err := h.service.Remaining(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("usage lookup failed", "user_id", rd.UserID, "error", err)
		response.JSON(c, http.StatusInternalServerError, response.CodeError,
			"Failed to fetch usage info: "+err.Error(), gin.H{})
		return
	}
	out := make(map[string]int, len(remaining))
	for need, n := range remaining {
		out[string(need)] = n
	}
	response.OK(c, "Remaining usage fetched successfully.", gin.H{
		"userId":    rd.UserID,
		"remaining": out,
	})
}
