package app

import (
	"github.com/yungbote/trit-recommender/internal/platform/logger"
	"github.com/yungbote/trit-recommender/internal/services"
)

type Services struct {
	Quota          services.QuotaService
	Profiles       services.BehaviorProfileService
	Preference     services.PreferenceService
	Reasons        services.ReasonService
	Recommendation services.RecommendationService
	Usage          services.UsageService
}

func wireServices(log *logger.Logger, cfg *Config, clients Clients, repos Repos) Services {
	log.Info("Wiring services...")

	quota := services.NewQuotaService(log, clients.Counter, services.QuotaConfig{
		MaxPerDay: cfg.Quota.MaxPerDay,
		TTL:       cfg.Quota.TTL,
		Location:  cfg.location(),
	})
	profiles := services.NewBehaviorProfileService(log, repos.Behavior, clients.OpenAI, clients.Vectors)
	preference := services.NewPreferenceService(log, repos.Behavior, clients.OpenAI, clients.Vectors, services.PreferenceConfig{
		Neighbours:  cfg.Recommend.Neighbours,
		ExcludeSelf: cfg.Recommend.ExcludeSelf,
	})
	reasons := services.NewReasonService(log, clients.OpenAI, clients.Search, services.ReasonConfig{
		Timeout:       cfg.Recommend.LLMTimeout,
		SearchResults: cfg.Recommend.SearchResults,
		PickOffer:     cfg.Recommend.PickOffer,
	})
	recommendation := services.NewRecommendationService(
		log,
		quota,
		repos.Catalog,
		repos.History,
		preference,
		profiles,
		reasons,
		services.RecommendationConfig{RefreshProfile: cfg.Recommend.RefreshProfile},
	)

	return Services{
		Quota:          quota,
		Profiles:       profiles,
		Preference:     preference,
		Reasons:        reasons,
		Recommendation: recommendation,
		Usage:          services.NewUsageService(log, repos.History, quota),
	}
}
