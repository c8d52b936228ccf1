package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pulseboard-backend/internal/http"
	"github.com/yungbote/pulseboard-backend/internal/observability"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
)

const serviceName = "pulseboard-api"

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:         log,
		Metrics:     metrics,
		ServiceName: serviceName,
		CORSOrigins: cfg.CORSOrigins,

		HealthHandler:          handlers.Health,
		AuthHandler:            handlers.Auth,
		AuthMiddleware:         middleware.Auth,
		UserHandler:            handlers.User,
		RealtimeHandler:        handlers.Realtime,
		SocialAccountHandler:   handlers.SocialAccount,
		PostHandler:            handlers.Post,
		DashboardHandler:       handlers.Dashboard,
		EngageHandler:          handlers.Engage,
		InsightHandler:         handlers.Insight,
		EngagementModelHandler: handlers.EngagementModel,
	})
}
