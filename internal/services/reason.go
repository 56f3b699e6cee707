package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/yungbote/trit-recommender/internal/domain/recommend"
	"github.com/yungbote/trit-recommender/internal/observability"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
	"github.com/yungbote/trit-recommender/internal/platform/websearch"
	"github.com/yungbote/trit-recommender/internal/recommend/reason"
)

const (
	DefaultReasonTimeout = 20 * time.Second
	DefaultPickOffer     = 10
)

// TextGenerator is the generative-text provider.
type TextGenerator interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

// ReasonService asks the generative model to pick and justify candidates.
// Every failure is absorbed: callers get ok=false and fall back.
type ReasonService interface {
	PickContent(ctx context.Context, user recommend.UserContext, items []recommend.ContentItem) (reason.Pick, bool)
	JustifyContent(ctx context.Context, user recommend.UserContext, item recommend.ContentItem) (recommend.Justification, bool)
	JustifyCreator(ctx context.Context, user recommend.UserContext, creator recommend.CreatorItem) (recommend.Justification, bool)
}

type ReasonConfig struct {
	// Timeout bounds each generative call.
	Timeout       time.Duration
	SearchResults int
	PickOffer     int
	BreakerName   string
}

type reasonService struct {
	log     *logger.Logger
	llm     TextGenerator
	search  websearch.Searcher
	breaker *gobreaker.CircuitBreaker[string]
	cfg     ReasonConfig
}

func NewReasonService(log *logger.Logger, llm TextGenerator, search websearch.Searcher, cfg ReasonConfig) ReasonService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultReasonTimeout
	}
	if cfg.SearchResults <= 0 {
		cfg.SearchResults = reason.MaxFacts
	}
	if cfg.PickOffer <= 0 {
		cfg.PickOffer = DefaultPickOffer
	}
	if strings.TrimSpace(cfg.BreakerName) == "" {
		cfg.BreakerName = "llm"
	}
	serviceLog := log.With("service", "ReasonService")

	observability.Current().SetBreakerState(cfg.BreakerName, 0)
	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        cfg.BreakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			serviceLog.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			observability.Current().SetBreakerState(name, breakerStateValue(to))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &reasonService{
		log:     serviceLog,
		llm:     llm,
		search:  search,
		breaker: breaker,
		cfg:     cfg,
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// generate runs one bounded generative call through the breaker.
func (s *reasonService) generate(ctx context.Context, p reason.Prompt) (string, bool) {
	start := time.Now()
	out, err := s.breaker.Execute(func() (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
		return s.llm.GenerateText(callCtx, p.System, p.User)
	})
	status := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		status = "rejected"
	case errors.Is(err, context.DeadlineExceeded):
		status = "timeout"
	case err != nil:
		status = "error"
	}
	observability.Current().ObserveLLM(p.Name, status, time.Since(start))
	if err != nil {
		s.log.Warn("generative call failed", "prompt", p.Name, "status", status, "error", err)
		return "", false
	}
	return out, true
}

func userFacts(u recommend.UserContext) reason.UserFacts {
	age := "unknown"
	if u.Age != nil {
		age = strconv.Itoa(*u.Age)
	}
	gender := "unknown"
	if u.Gender != nil && strings.TrimSpace(*u.Gender) != "" {
		gender = strings.TrimSpace(*u.Gender)
	}
	return reason.UserFacts{
		Name:      u.Name,
		Age:       age,
		Gender:    gender,
		Country:   u.Country,
		Category:  u.Category,
		Needs:     string(u.Needs),
		Latitude:  u.Latitude,
		Longitude: u.Longitude,
	}
}

func (s *reasonService) PickContent(ctx context.Context, user recommend.UserContext, items []recommend.ContentItem) (reason.Pick, bool) {
	if len(items) == 0 {
		return reason.Pick{}, false
	}
	offered := items
	if len(offered) > s.cfg.PickOffer {
		offered = offered[:s.cfg.PickOffer]
	}
	in := reason.Input{User: userFacts(user), Items: make([]reason.PickItem, 0, len(offered))}
	allowed := make(map[int64]struct{}, len(offered))
	for _, it := range offered {
		in.Items = append(in.Items, reason.PickItem{ID: it.ID, Title: it.Title, Description: it.Description})
		allowed[it.ID] = struct{}{}
	}

	p, err := reason.Build(reason.PromptContentsPick, in)
	if err != nil {
		s.log.Error("build pick prompt", "error", err)
		return reason.Pick{}, false
	}
	text, ok := s.generate(ctx, p)
	if !ok {
		return reason.Pick{}, false
	}
	pick, ok := reason.ParsePick(text)
	if !ok {
		s.log.Warn("unparseable pick reply", "prompt", p.Name)
		return reason.Pick{}, false
	}
	if _, offeredID := allowed[pick.ContentsID]; !offeredID {
		s.log.Warn("pick outside offered set", "contents_id", pick.ContentsID)
		// Keep the model's text; the caller still falls back on the id.
		return reason.Pick{Reason: pick.Reason}, false
	}
	return pick, true
}

func (s *reasonService) JustifyContent(ctx context.Context, user recommend.UserContext, item recommend.ContentItem) (recommend.Justification, bool) {
	var results []websearch.Result
	if s.search != nil {
		query := reason.SearchQuery(item.Title, user.Category)
		found, err := s.search.Search(ctx, query, s.cfg.SearchResults)
		if err != nil {
			s.log.Warn("web search failed", "query", query, "error", err)
		} else {
			results = found
		}
	}

	p, err := reason.Build(reason.PromptPlaceReason, reason.Input{
		User: userFacts(user),
		Place: reason.PlaceFacts{
			Name:     item.Title,
			Category: item.Category,
			Facts:    reason.SummarizeFacts(results),
			Keywords: reason.FormatKeywords(reason.TopKeywords(results)),
		},
	})
	if err != nil {
		s.log.Error("build place prompt", "error", err)
		return recommend.Justification{}, false
	}
	return s.justify(ctx, p)
}

func (s *reasonService) JustifyCreator(ctx context.Context, user recommend.UserContext, creator recommend.CreatorItem) (recommend.Justification, bool) {
	p, err := reason.Build(reason.PromptCreatorReason, reason.Input{
		User: userFacts(user),
		Creator: reason.CreatorFacts{
			Name:         creator.Name,
			Country:      creator.Country,
			Category:     strings.Join(creator.Categories, ", "),
			Introduction: creator.Introduction,
		},
	})
	if err != nil {
		s.log.Error("build creator prompt", "error", err)
		return recommend.Justification{}, false
	}
	return s.justify(ctx, p)
}

func (s *reasonService) justify(ctx context.Context, p reason.Prompt) (recommend.Justification, bool) {
	text, ok := s.generate(ctx, p)
	if !ok {
		return recommend.Justification{}, false
	}
	j, ok := reason.ParseJustification(text)
	if !ok {
		s.log.Warn("unparseable justification reply", "prompt", p.Name)
		return recommend.Justification{}, false
	}
	return j, true
}
