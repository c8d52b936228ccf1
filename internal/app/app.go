package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/pulseboard-backend/internal/data/db"
	httpx "github.com/yungbote/pulseboard-backend/internal/http"
	"github.com/yungbote/pulseboard-backend/internal/http/response"
	"github.com/yungbote/pulseboard-backend/internal/observability"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
	"github.com/yungbote/pulseboard-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	SSEHub   *realtime.SSEHub
	Metrics  *observability.Metrics

	dbService    *db.Service
	server       *httpx.Server
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	dbs, err := db.Open(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	theDB := dbs.DB()
	if err := db.AutoMigrateAll(theDB); err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	if dbs.Driver() == "postgres" {
		if err := db.EnsurePostgresIndexes(theDB); err != nil {
			log.Warn("ensure postgres indexes failed", "error", err)
		}
	}

	var metrics *observability.Metrics
	if observability.Enabled() {
		metrics = observability.Init(log)
		response.SetValidationObserver(metrics.IncValidationFailure)
	}
	sqlDB, err := theDB.DB()
	if err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if metrics != nil {
		if err := metrics.RegisterDB(sqlDB, dbs.Driver()); err != nil {
			log.Warn("register db metrics failed", "error", err)
		}
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfigFromEnv(serviceName, cfg.Environment, cfg.Version))

	ssehub := realtime.NewSSEHub(log)
	if metrics != nil {
		ssehub.OnDrop = func(msg realtime.SSEMessage) { metrics.IncSSEDropped(string(msg.Event)) }
	}

	clientset, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clientset, metrics)
	handlerset := wireHandlers(log, serviceset, ssehub, sqlDB, metrics)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, handlerset, middleware, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clientset,
		SSEHub:       ssehub,
		Metrics:      metrics,
		dbService:    dbs,
		server:       &httpx.Server{Engine: router},
		otelShutdown: otelShutdown,
	}, nil
}

// Start attaches the local hub to the SSE bus so events published by any
// instance reach the clients connected here.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	if err := a.Clients.SSEBus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
		cancel()
		a.cancel = nil
		return fmt.Errorf("start SSE forwarder: %w", err)
	}
	return nil
}

// Run blocks serving HTTP until ctx is cancelled, then drains in-flight
// requests within ShutdownTimeout.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return errors.New("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("Server listening", "addr", addr)
		errCh <- a.server.Run(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}

func (a *App) shutdownTimeout() time.Duration {
	if a.Cfg.ShutdownTimeout > 0 {
		return a.Cfg.ShutdownTimeout
	}
	return 10 * time.Second
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
