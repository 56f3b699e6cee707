package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/trit-recommender/internal/domain/recommend"
	"github.com/yungbote/trit-recommender/internal/http/middleware"
	"github.com/yungbote/trit-recommender/internal/http/response"
	"github.com/yungbote/trit-recommender/internal/platform/apierr"
	"github.com/yungbote/trit-recommender/internal/platform/ctxutil"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
	"github.com/yungbote/trit-recommender/internal/services"
)

type RecommendationHandler struct {
	log     *logger.Logger
	service services.RecommendationService
}

func NewRecommendationHandler(log *logger.Logger, service services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{log: log.With("handler", "RecommendationHandler"), service: service}
}

type recommendQuery struct {
	Needs     string   `form:"needs" binding:"required"`
	Category  string   `form:"category" binding:"required"`
	Latitude  *float64 `form:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `form:"longitude" binding:"required,gte=-180,lte=180"`
}

type contentsDTO struct {
	ContentsID  int64    `json:"contentsId"`
	Title       string   `json:"title"`
	Thumbnail   string   `json:"thumbnail"`
	LocationID  *int64   `json:"locationId"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	GoogleMapID *string  `json:"googleMapId"`
	DistanceKm  *float64 `json:"distanceKm"`
}

type locationDTO struct {
	LocationID  int64   `json:"locationId"`
	PlaceName   string  `json:"placeName"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	GoogleMapID string  `json:"googleMapId"`
	DistanceKm  float64 `json:"distanceKm"`
}

type creatorDTO struct {
	CreatorID    int64  `json:"creatorId"`
	Name         string `json:"name"`
	Introduction string `json:"introduction"`
	Youtube      string `json:"youtube"`
}

type recommendationDTO struct {
	ContentsID *contentsDTO     `json:"contentsId"`
	LocationID *locationDTO     `json:"locationId"`
	CreatorID  *creatorDTO      `json:"creatorId"`
	Reason     recommend.Reason `json:"reason"`
}

type messageDTO struct {
	Recommendation recommendationDTO `json:"recommendation"`
}

type successDTO struct {
	UserID    int64          `json:"userId"`
	Message   messageDTO     `json:"message"`
	Remaining map[string]int `json:"remaining"`
}

type failureDTO struct {
	UserID    int64      `json:"userId"`
	Remaining int        `json:"remaining"`
	Message   messageDTO `json:"message"`
}

func toRecommendationDTO(r recommend.Result) recommendationDTO {
	out := recommendationDTO{Reason: r.Reason}
	if c := r.Contents; c != nil {
		dto := &contentsDTO{ContentsID: c.ContentsID, Title: c.Title, Thumbnail: c.Thumbnail}
		if l := c.Location; l != nil {
			dto.LocationID = &l.LocationID
			dto.Latitude = &l.Latitude
			dto.Longitude = &l.Longitude
			dto.GoogleMapID = &l.GoogleMapID
			dto.DistanceKm = &l.DistanceKm
		}
		out.ContentsID = dto
	}
	if l := r.Location; l != nil {
		out.LocationID = &locationDTO{
			LocationID:  l.LocationID,
			PlaceName:   l.PlaceName,
			Address:     l.Address,
			Latitude:    l.Latitude,
			Longitude:   l.Longitude,
			GoogleMapID: l.GoogleMapID,
			DistanceKm:  l.DistanceKm,
		}
	}
	if cr := r.Creator; cr != nil {
		out.CreatorID = &creatorDTO{
			CreatorID:    cr.CreatorID,
			Name:         cr.Name,
			Introduction: cr.Introduction,
			Youtube:      cr.Youtube,
		}
	}
	return out
}

// GET /api/v1/users/recommend
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	rd, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	var q recommendQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apierr.BadRequest("invalid query: "+err.Error(), err))
		return
	}

	resp := h.service.Recommend(c.Request.Context(), services.RecommendRequest{
		UserID:    rd.UserID,
		Name:      rd.Name,
		Needs:     q.Needs,
		Category:  q.Category,
		Latitude:  *q.Latitude,
		Longitude: *q.Longitude,
	})

	code := string(resp.Code)
	ctxutil.Annotate(c.Request.Context(),
		"needs", q.Needs,
		"category", q.Category,
		"outcome", code,
		"remaining", resp.Remaining,
		"candidate", resp.Result.Succeeded(),
	)
	msg := messageDTO{Recommendation: toRecommendationDTO(resp.Result)}
	if resp.Code == services.CodeSuccess {
		response.JSON(c, response.StatusFor(code), code, resp.Message, successDTO{
			UserID:    rd.UserID,
			Message:   msg,
			Remaining: map[string]int{q.Needs: resp.Remaining},
		})
		return
	}
	response.JSON(c, response.StatusFor(code), code, resp.Message, failureDTO{
		UserID:    rd.UserID,
		Remaining: resp.Remaining,
		Message:   msg,
	})
}
