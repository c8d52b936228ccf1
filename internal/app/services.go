package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/pulseboard-backend/internal/observability"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
	"github.com/yungbote/pulseboard-backend/internal/services"
)

type Services struct {
	Auth            services.AuthService
	User            services.UserService
	SocialAccount   services.SocialAccountService
	Post            services.PostService
	Analytics       services.AnalyticsService
	Engage          services.EngageService
	Insight         services.InsightService
	Monetization    services.MonetizationService
	Dashboard       services.DashboardService
	EngagementModel services.EngagementModelService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	emit := &services.BusEmitter{Bus: clients.SSEBus, Log: log}

	var (
		store services.ModelStore
		lock  services.TrainingLock
	)
	if clients.Redis != nil {
		store = services.NewRedisModelStore(clients.Redis, "", cfg.ModelTTL)
		lock = services.NewRedisTrainingLock(clients.Redis, cfg.TrainingLockTTL)
	} else {
		store = services.NewMemoryModelStore()
		lock = services.NewMemoryTrainingLock()
	}

	var trainingMetrics services.TrainingMetrics
	if metrics != nil {
		trainingMetrics = metrics
	}
	models := services.NewEngagementModelService(
		db, log,
		repos.Post, repos.AnalyticsData, repos.Insight,
		store, lock, emit, trainingMetrics,
		services.EngagementModelConfig{MinSamples: cfg.MinSamples},
	)

	return Services{
		Auth:            services.NewAuthService(db, log, repos.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		User:            services.NewUserService(db, log, repos.User, emit),
		SocialAccount:   services.NewSocialAccountService(db, log, repos.SocialAccount, repos.Post, repos.AnalyticsData, emit),
		Post:            services.NewPostService(db, log, repos.Post, repos.SocialAccount, repos.AnalyticsData, models, emit),
		Analytics:       services.NewAnalyticsService(db, log, repos.Post, repos.AnalyticsData),
		Engage:          services.NewEngageService(db, log, repos.User, repos.Post, repos.SocialAccount, repos.EngageActivity),
		Insight:         services.NewInsightService(log, repos.Insight),
		Monetization:    services.NewMonetizationService(db, log, repos.Post, repos.Monetization),
		Dashboard:       services.NewDashboardService(log, repos.User, repos.Post, repos.SocialAccount, repos.AnalyticsData, repos.Insight, repos.EngageActivity, repos.Monetization),
		EngagementModel: models,
	}
}
