package services

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/trit-recommender/internal/data/repos/catalog"
	"github.com/yungbote/trit-recommender/internal/data/repos/history"
	"github.com/yungbote/trit-recommender/internal/domain/recommend"
	"github.com/yungbote/trit-recommender/internal/observability"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
	"github.com/yungbote/trit-recommender/internal/recommend/ranking"
	"github.com/yungbote/trit-recommender/internal/recommend/reason"
)

type Code string

const (
	CodeSuccess         Code = "SUCCESS"
	CodeError           Code = "ERROR"
	CodeTooManyRequests Code = "TOO_MANY_REQUESTS"
)

const (
	msgSuccess        = "Success!"
	msgNoContents     = "Sorry, there are no contents available for this category."
	msgCreatorFound   = "We found a creator who matches your interests and region."
	msgNoCreator      = "Sorry, we couldn't find a suitable creator based on your preferences."
	msgUnknownNeeds   = "Unknown needs type."
	msgQuotaExhausted = "The daily free trial opportunity for %s has been used up."
	msgServerError    = "An error occurred while processing the recommendation.: %s"
	msgLocationFound  = "We found a %s spot just %.2f km away from you. It suits your interest and is conveniently located based on your current position."
	msgNoLocation     = "Sorry, we couldn't find any suitable %s places within %d km of your location."
)

type RecommendRequest struct {
	UserID    int64
	Name      string
	Needs     string
	Category  string
	Latitude  float64
	Longitude float64
}

// RecommendResponse is always populated; failures are reported through
// Code and Err rather than a separate error return.
type RecommendResponse struct {
	Code      Code
	Message   string
	Result    recommend.Result
	Remaining int
	Err       error
}

type RecommendationService interface {
	Recommend(ctx context.Context, req RecommendRequest) RecommendResponse
}

type RecommendationConfig struct {
	// RefreshProfile runs EnsureFresh before computing the preference bias.
	RefreshProfile bool
}

type recommendationService struct {
	log        *logger.Logger
	quota      QuotaService
	catalog    catalog.CatalogRepo
	history    history.HistoryRepo
	preference PreferenceService
	profiles   BehaviorProfileService
	reasons    ReasonService
	cfg        RecommendationConfig
	tracer     trace.Tracer
	now        func() time.Time
}

func NewRecommendationService(
	log *logger.Logger,
	quota QuotaService,
	catalogRepo catalog.CatalogRepo,
	historyRepo history.HistoryRepo,
	preference PreferenceService,
	profiles BehaviorProfileService,
	reasons ReasonService,
	cfg RecommendationConfig,
) RecommendationService {
	return &recommendationService{
		log:        log.With("service", "RecommendationService"),
		quota:      quota,
		catalog:    catalogRepo,
		history:    historyRepo,
		preference: preference,
		profiles:   profiles,
		reasons:    reasons,
		cfg:        cfg,
		tracer:     otel.Tracer("github.com/yungbote/trit-recommender/internal/services"),
		now:        time.Now,
	}
}

func needsLabel(n recommend.NeedType) string {
	if n.Known() {
		return string(n)
	}
	return "unknown"
}

func (s *recommendationService) Recommend(ctx context.Context, req RecommendRequest) (resp RecommendResponse) {
	needs := recommend.ParseNeed(req.Needs)
	ctx, span := s.tracer.Start(ctx, "recommendation.recommend", trace.WithAttributes(
		attribute.String("needs", needsLabel(needs)),
		attribute.String("category", req.Category),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("recommendation panicked", "user_id", req.UserID, "panic", r, "stack", string(debug.Stack()))
			resp = s.fail(ctx, req, needs, fmt.Errorf("panic: %v", r))
		}
		span.SetAttributes(attribute.String("outcome", string(resp.Code)))
	}()

	allowed, _, err := s.quota.Admit(ctx, req.UserID, needs)
	if err != nil {
		return s.fail(ctx, req, needs, err)
	}
	if !allowed {
		return s.exhausted(req, needs)
	}
	span.AddEvent("admitted")

	user := recommend.UserContext{
		UserID:    req.UserID,
		Name:      req.Name,
		Needs:     needs,
		Category:  req.Category,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	pools, bias, err := s.load(ctx, &user)
	if err != nil {
		return s.fail(ctx, req, needs, err)
	}
	span.AddEvent("candidates_loaded", trace.WithAttributes(
		attribute.Int("contents", len(pools.Contents)),
		attribute.Int("locations", len(pools.Locations)),
		attribute.Int("creators", len(pools.Creators)),
	))

	res := s.choose(ctx, user, pools, bias)
	span.AddEvent("justified", trace.WithAttributes(attribute.Bool("candidate", res.Succeeded())))

	if !res.Succeeded() {
		observability.Current().ObserveRecommendation(needsLabel(needs), "no_candidate")
		left, err := s.quota.Remaining(ctx, req.UserID, needs)
		if err != nil {
			return s.fail(ctx, req, needs, err)
		}
		return RecommendResponse{Code: CodeSuccess, Message: msgSuccess, Result: res, Remaining: left}
	}

	left, err := s.persist(ctx, res)
	if errors.Is(err, ErrQuotaExhausted) {
		span.AddEvent("quota_lost_at_commit")
		return s.exhausted(req, needs)
	}
	if err != nil {
		return s.fail(ctx, req, needs, err)
	}
	span.AddEvent("persisted")
	observability.Current().ObserveRecommendation(needsLabel(needs), "success")
	s.log.Info("recommendation served", "user_id", req.UserID, "needs", needs, "remaining", left)
	return RecommendResponse{Code: CodeSuccess, Message: msgSuccess, Result: res, Remaining: left}
}

// persist claims a quota unit, then appends the history record. A failed
// append releases the unit again.
func (s *recommendationService) persist(ctx context.Context, res recommend.Result) (int, error) {
	rec, err := recommend.NewHistory(res, s.now())
	if err != nil {
		return 0, fmt.Errorf("encode history: %w", err)
	}
	left, err := s.quota.Commit(ctx, res.UserID, res.Needs)
	if err != nil {
		return 0, err
	}
	if err := s.history.Create(ctx, nil, rec); err != nil {
		if _, rerr := s.quota.Release(ctx, res.UserID, res.Needs); rerr != nil {
			s.log.Error("quota release failed", "user_id", res.UserID, "needs", res.Needs, "error", rerr)
		}
		return 0, relational("append history", err)
	}
	return left, nil
}

// exhausted builds the TOO_MANY_REQUESTS response.
func (s *recommendationService) exhausted(req RecommendRequest, needs recommend.NeedType) RecommendResponse {
	observability.Current().ObserveRecommendation(needsLabel(needs), "quota_exhausted")
	msg := fmt.Sprintf(msgQuotaExhausted, req.Needs)
	return RecommendResponse{
		Code:    CodeTooManyRequests,
		Message: msg,
		Result: recommend.Result{
			UserID:   req.UserID,
			Needs:    needs,
			Category: req.Category,
			Reason:   recommend.TextReason(msg),
		},
		Remaining: 0,
	}
}

// load fetches what the requested need uses. Independent reads run
// concurrently.
func (s *recommendationService) load(ctx context.Context, user *recommend.UserContext) (recommend.Pools, recommend.Bias, error) {
	var (
		pools   recommend.Pools
		bias    recommend.Bias
		country string
	)
	needs := user.Needs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(s.guard(func() error {
		c, err := s.catalog.UserCountry(gctx, nil, user.UserID)
		if err != nil {
			return relational("load user country", err)
		}
		country = c
		return nil
	}))
	if needs == recommend.NeedContents {
		g.Go(s.guard(func() error {
			items, err := s.catalog.ListContents(gctx, nil)
			if err != nil {
				return relational("load contents", err)
			}
			pools.Contents = items
			return nil
		}))
	}
	if needs == recommend.NeedContents || needs == recommend.NeedLocation {
		g.Go(s.guard(func() error {
			items, err := s.catalog.ListLocations(gctx, nil)
			if err != nil {
				return relational("load locations", err)
			}
			pools.Locations = items
			return nil
		}))
	}
	if needs == recommend.NeedCreator {
		g.Go(s.guard(func() error {
			items, err := s.catalog.ListCreators(gctx, nil)
			if err != nil {
				return relational("load creators", err)
			}
			pools.Creators = items
			return nil
		}))
	}
	if needs == recommend.NeedContents || needs == recommend.NeedCreator {
		g.Go(s.guard(func() error {
			b, err := s.biasFor(gctx, user.UserID)
			if err != nil {
				return err
			}
			bias = b
			return nil
		}))
	}

	if err := g.Wait(); err != nil {
		return recommend.Pools{}, recommend.Bias{}, err
	}
	user.Country = country
	return pools, bias, nil
}

// guard turns a panic inside a loader goroutine into an error.
func (s *recommendationService) guard(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("loader panicked", "panic", r, "stack", string(debug.Stack()))
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn()
	}
}

// biasFor refreshes the profile best-effort, then computes the bias. Only
// store outages fail the request; anything else degrades to no bias.
func (s *recommendationService) biasFor(ctx context.Context, userID int64) (recommend.Bias, error) {
	if s.cfg.RefreshProfile && s.profiles != nil {
		if _, err := s.profiles.EnsureFresh(ctx, userID); err != nil {
			s.log.Warn("profile refresh failed", "user_id", userID, "error", err)
		}
	}
	if s.preference == nil {
		return recommend.Bias{}, nil
	}
	bias, err := s.preference.BiasFor(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) {
			return recommend.Bias{}, err
		}
		s.log.Warn("preference bias unavailable", "user_id", userID, "error", err)
		return recommend.Bias{}, nil
	}
	return bias, nil
}

func (s *recommendationService) choose(ctx context.Context, user recommend.UserContext, pools recommend.Pools, bias recommend.Bias) recommend.Result {
	res := recommend.Result{UserID: user.UserID, Needs: user.Needs, Category: user.Category}
	switch user.Needs {
	case recommend.NeedContents:
		s.chooseContents(ctx, user, pools, bias, &res)
	case recommend.NeedLocation:
		chooseLocation(user, pools, &res)
	case recommend.NeedCreator:
		s.chooseCreator(ctx, user, pools, bias, &res)
	default:
		res.Reason = recommend.TextReason(msgUnknownNeeds)
	}
	return res
}

func (s *recommendationService) chooseContents(ctx context.Context, user recommend.UserContext, pools recommend.Pools, bias recommend.Bias, res *recommend.Result) {
	matched := ranking.FilterContents(pools.Contents, user.Category)
	if len(matched) == 0 {
		res.Reason = recommend.TextReason(msgNoContents)
		return
	}
	ranked := ranking.SortByBias(matched, bias.ContentIDs, recommend.ContentItem.Key)

	chosen := ranked[0]
	pick, ok := s.reasons.PickContent(ctx, user, ranked)
	if ok {
		for _, it := range ranked {
			if it.ID == pick.ContentsID {
				chosen = it
				break
			}
		}
	}

	cp := &recommend.ContentPick{ContentsID: chosen.ID, Title: chosen.Title, Thumbnail: chosen.Thumbnail}
	owned := ranking.LocationsForContent(pools.Locations, chosen.ID)
	if loc, d, found := ranking.NearestLocation(owned, user.Latitude, user.Longitude, 0); found {
		cp.Location = locationPick(loc, d)
	}
	res.Contents = cp

	if j, ok := s.reasons.JustifyContent(ctx, user, chosen); ok {
		res.Reason = recommend.JustifiedReason(j)
		return
	}
	res.Reason = recommend.JustifiedReason(reason.Fallback(pick.Reason))
}

func chooseLocation(user recommend.UserContext, pools recommend.Pools, res *recommend.Result) {
	category := strings.ToLower(strings.TrimSpace(user.Category))
	matched := ranking.FilterLocations(pools.Locations, user.Category)
	loc, d, ok := ranking.NearestLocation(matched, user.Latitude, user.Longitude, ranking.MaxLocationDistanceKm)
	if !ok {
		res.Reason = recommend.TextReason(fmt.Sprintf(msgNoLocation, category, int(ranking.MaxLocationDistanceKm)))
		return
	}
	res.Location = locationPick(loc, d)
	res.Reason = recommend.TextReason(fmt.Sprintf(msgLocationFound, category, d))
}

func (s *recommendationService) chooseCreator(ctx context.Context, user recommend.UserContext, pools recommend.Pools, bias recommend.Bias, res *recommend.Result) {
	matched := ranking.MatchCreators(pools.Creators, user.Category, user.Country)
	if len(matched) == 0 {
		res.Reason = recommend.TextReason(msgNoCreator)
		return
	}
	chosen := ranking.SortByBias(matched, bias.CreatorIDs, recommend.CreatorItem.Key)[0]
	res.Creator = &recommend.CreatorPick{
		CreatorID:    chosen.ID,
		Name:         chosen.Name,
		Introduction: chosen.Introduction,
		Youtube:      chosen.Youtube,
	}
	if j, ok := s.reasons.JustifyCreator(ctx, user, chosen); ok {
		res.Reason = recommend.JustifiedReason(j)
		return
	}
	res.Reason = recommend.TextReason(msgCreatorFound)
}

func locationPick(loc recommend.LocationItem, distanceKm float64) *recommend.LocationPick {
	return &recommend.LocationPick{
		LocationID:  loc.ID,
		PlaceName:   loc.PlaceName,
		Address:     loc.Address,
		Latitude:    loc.Latitude,
		Longitude:   loc.Longitude,
		GoogleMapID: loc.GoogleMapID,
		DistanceKm:  distanceKm,
	}
}

// fail builds the ERROR response. Remaining is read without consuming
// quota and reported as 0 when the counter store is down too.
func (s *recommendationService) fail(ctx context.Context, req RecommendRequest, needs recommend.NeedType, err error) RecommendResponse {
	observability.Current().ObserveRecommendation(needsLabel(needs), "error")
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.log.Error("recommendation failed", "user_id", req.UserID, "needs", needs, "error", err)

	left := 0
	if n, rerr := s.quota.Remaining(ctx, req.UserID, needs); rerr == nil {
		left = n
	}
	return RecommendResponse{
		Code:    CodeError,
		Message: fmt.Sprintf(msgServerError, err.Error()),
		Result: recommend.Result{
			UserID:   req.UserID,
			Needs:    needs,
			Category: req.Category,
			Reason:   recommend.TextReason("Server error: " + err.Error()),
		},
		Remaining: left,
		Err:       err,
	}
}
