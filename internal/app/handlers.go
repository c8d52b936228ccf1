package app

import (
	httpH "github.com/yungbote/pulseboard-backend/internal/http/handlers"
	"github.com/yungbote/pulseboard-backend/internal/observability"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
	"github.com/yungbote/pulseboard-backend/internal/realtime"
)

type Handlers struct {
	Health          *httpH.HealthHandler
	Auth            *httpH.AuthHandler
	User            *httpH.UserHandler
	Realtime        *httpH.RealtimeHandler
	SocialAccount   *httpH.SocialAccountHandler
	Post            *httpH.PostHandler
	Dashboard       *httpH.DashboardHandler
	Engage          *httpH.EngageHandler
	Insight         *httpH.InsightHandler
	EngagementModel *httpH.EngagementModelHandler
}

func wireHandlers(log *logger.Logger, services Services, sseHub *realtime.SSEHub, db httpH.Pinger, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	var stream httpH.StreamMetrics
	if metrics != nil {
		stream = metrics
	}
	return Handlers{
		Health:          httpH.NewHealthHandler(db),
		Auth:            httpH.NewAuthHandler(services.Auth),
		User:            httpH.NewUserHandler(services.User),
		Realtime:        httpH.NewRealtimeHandler(log, sseHub, stream),
		SocialAccount:   httpH.NewSocialAccountHandler(services.SocialAccount),
		Post:            httpH.NewPostHandler(services.Post, services.Analytics),
		Dashboard:       httpH.NewDashboardHandler(services.Dashboard, services.Monetization),
		Engage:          httpH.NewEngageHandler(services.Engage),
		Insight:         httpH.NewInsightHandler(services.Insight),
		EngagementModel: httpH.NewEngagementModelHandler(services.EngagementModel),
	}
}
