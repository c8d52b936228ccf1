package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/pulseboard-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pulseboard-backend/internal/http/middleware"
	"github.com/yungbote/pulseboard-backend/internal/observability"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthHandler     *httpH.AuthHandler
	AuthMiddleware  *httpMW.AuthMiddleware
	UserHandler     *httpH.UserHandler
	RealtimeHandler *httpH.RealtimeHandler

	SocialAccountHandler   *httpH.SocialAccountHandler
	PostHandler            *httpH.PostHandler
	DashboardHandler       *httpH.DashboardHandler
	EngageHandler          *httpH.EngageHandler
	InsightHandler         *httpH.InsightHandler
	EngagementModelHandler *httpH.EngagementModelHandler

	HealthHandler *httpH.HealthHandler
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

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		} else {
			protected.Use(func(c *gin.Context) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": gin.H{"message": "authentication is not configured", "code": "unauthorized"},
				})
			})
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me", cfg.UserHandler.UpdateProfile)
			protected.GET("/me/preferences", cfg.UserHandler.GetPreferences)
			protected.PUT("/me/preferences", cfg.UserHandler.ReplacePreferences)
			protected.PATCH("/me/preferences", cfg.UserHandler.PatchPreferences)
		}

		// Social accounts
		if cfg.SocialAccountHandler != nil {
			protected.GET("/social-accounts", cfg.SocialAccountHandler.List)
			protected.POST("/social-accounts", cfg.SocialAccountHandler.Link)
			protected.POST("/social-accounts/:id/sync", cfg.SocialAccountHandler.Sync)
			protected.DELETE("/social-accounts/:id", cfg.SocialAccountHandler.Disconnect)
		}

		// Posts + analytics
		if cfg.PostHandler != nil {
			protected.GET("/posts", cfg.PostHandler.List)
			protected.POST("/posts", cfg.PostHandler.Create)
			protected.GET("/posts/scheduled", cfg.PostHandler.ListScheduled)
			protected.GET("/posts/:id", cfg.PostHandler.Get)
			protected.GET("/posts/:id/analytics", cfg.PostHandler.Analytics)
			protected.POST("/analytics", cfg.PostHandler.RecordAnalytics)
		}

		// Dashboard + monetization
		if cfg.DashboardHandler != nil {
			protected.GET("/dashboard/stats", cfg.DashboardHandler.Stats)
			protected.GET("/dashboard/monetization", cfg.DashboardHandler.Monetization)
			protected.GET("/dashboard/platform-roi", cfg.DashboardHandler.PlatformROI)
			protected.POST("/monetization", cfg.DashboardHandler.RecordMonetization)
		}

		// Auto-engage
		if cfg.EngageHandler != nil {
			protected.GET("/engage-activities", cfg.EngageHandler.List)
			protected.POST("/engage-activities", cfg.EngageHandler.Log)
		}

		// Insights
		if cfg.InsightHandler != nil {
			protected.GET("/insights", cfg.InsightHandler.List)
			protected.POST("/insights/:id/read", cfg.InsightHandler.MarkRead)
			protected.POST("/insights/:id/apply", cfg.InsightHandler.MarkApplied)
		}

		// Engagement model
		if cfg.EngagementModelHandler != nil {
			protected.POST("/ai/train-engagement-model", cfg.EngagementModelHandler.Train)
			protected.GET("/ai/engagement-model", cfg.EngagementModelHandler.Latest)
		}
	}

	return r
}
