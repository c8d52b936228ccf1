package app

import (
	"strings"
	"time"

	"github.com/yungbote/pulseboard-backend/internal/clients/redis"
	"github.com/yungbote/pulseboard-backend/internal/data/db"
	"github.com/yungbote/pulseboard-backend/internal/platform/envutil"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Environment string
	Version     string
	Port        string

	JWTSecretKey   string
	AccessTokenTTL time.Duration
	CORSOrigins    []string

	DB    db.Config
	Redis redis.Config

	// ModelTTL bounds how long a trained model lives in redis; zero keeps it
	// until the next run replaces it.
	ModelTTL        time.Duration
	TrainingLockTTL time.Duration
	MinSamples      int

	ShutdownTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
		Port:        envutil.String("PORT", "8080"),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL: envutil.Duration("ACCESS_TOKEN_TTL", 24*time.Hour),
		CORSOrigins:    splitList(envutil.String("CORS_ORIGINS", "")),

		DB: db.Config{
			Driver:          envutil.String("DB_DRIVER", "postgres"),
			DSN:             envutil.String("DATABASE_URL", ""),
			Host:            envutil.String("POSTGRES_HOST", "localhost"),
			Port:            envutil.String("POSTGRES_PORT", "5432"),
			User:            envutil.String("POSTGRES_USER", "postgres"),
			Password:        envutil.String("POSTGRES_PASSWORD", ""),
			Name:            envutil.String("POSTGRES_NAME", "pulseboard"),
			SSLMode:         envutil.String("POSTGRES_SSLMODE", "disable"),
			SlowThreshold:   envutil.Duration("DB_SLOW_THRESHOLD", time.Second),
			MaxOpenConns:    envutil.Int("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    envutil.Int("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envutil.Duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: redis.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
		},

		ModelTTL:        envutil.Duration("ENGAGEMENT_MODEL_TTL", 0),
		TrainingLockTTL: envutil.Duration("TRAINING_LOCK_TTL", 2*time.Minute),
		MinSamples:      envutil.Int("ENGAGEMENT_MIN_SAMPLES", 0),

		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
	if cfg.JWTSecretKey == defaultJWTSecret && log != nil {
		log.Warn("JWT_SECRET_KEY is not set; using the insecure default")
	}
	return cfg
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
