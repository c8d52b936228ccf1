package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pulseboard-backend/internal/data/repos"
	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/domain/analytics"
	emodel "github.com/yungbote/pulseboard-backend/internal/domain/engagement"
	"github.com/yungbote/pulseboard-backend/internal/engagement"
	"github.com/yungbote/pulseboard-backend/internal/platform/apierr"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
	"github.com/yungbote/pulseboard-backend/internal/realtime"
)

// ErrNoModel is returned by Latest when the user has never trained.
var ErrNoModel = errors.New("no engagement model trained")

// TrainingMetrics is the slice of observability.Metrics training reports to.
type TrainingMetrics interface {
	ObserveTraining(outcome string, samples int, dur time.Duration)
	AddPostsScored(n int)
}

type EngagementModelService interface {
	// Train returns engagement.ErrInsufficientData when there is too little
	// history; the stored model is left untouched in that case.
	Train(ctx context.Context, lookback emodel.LookbackPeriod) (*emodel.Model, error)
	// Latest returns ErrNoModel when nothing has been trained yet.
	Latest(ctx context.Context) (*emodel.Model, error)
	// ScorePost attaches predictions from the latest model, if any. It
	// reports whether the post was scored.
	ScorePost(ctx context.Context, p *types.Post) (bool, error)
}

type EngagementModelConfig struct {
	MinSamples int
}

type engagementModelService struct {
	db            *gorm.DB
	log           *logger.Logger
	postRepo      repos.PostRepo
	analyticsRepo repos.AnalyticsDataRepo
	insightRepo   repos.InsightRepo
	store         ModelStore
	lock          TrainingLock
	emit          SSEEmitter
	metrics       TrainingMetrics
	cfg           EngagementModelConfig
	now           func() time.Time
}

func NewEngagementModelService(
	db *gorm.DB,
	log *logger.Logger,
	postRepo repos.PostRepo,
	analyticsRepo repos.AnalyticsDataRepo,
	insightRepo repos.InsightRepo,
	store ModelStore,
	lock TrainingLock,
	emit SSEEmitter,
	metrics TrainingMetrics,
	cfg EngagementModelConfig,
) EngagementModelService {
	if store == nil {
		store = NewMemoryModelStore()
	}
	if lock == nil {
		lock = NewMemoryTrainingLock()
	}
	return &engagementModelService{
		db:            db,
		log:           log.With("service", "EngagementModelService"),
		postRepo:      postRepo,
		analyticsRepo: analyticsRepo,
		insightRepo:   insightRepo,
		store:         store,
		lock:          lock,
		emit:          emit,
		metrics:       metrics,
		cfg:           cfg,
		now:           time.Now,
	}
}

func (s *engagementModelService) observe(outcome string, samples int, started time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveTraining(outcome, samples, time.Since(started))
}

func (s *engagementModelService) Train(ctx context.Context, lookback emodel.LookbackPeriod) (*emodel.Model, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !lookback.Valid() {
		return nil, apierr.BadRequest("invalid_lookback", fmt.Errorf("unsupported lookback period %d", lookback))
	}
	started := time.Now()

	release, ok, err := s.lock.TryLock(ctx, userID)
	if err != nil {
		s.observe("error", 0, started)
		return nil, err
	}
	if !ok {
		s.observe("conflict", 0, started)
		return nil, apierr.Conflict("training_in_progress", errors.New("a training run is already in progress"))
	}
	defer release()

	now := s.now().UTC()
	loc := userLocation(ctx)
	samples, err := s.loadSamples(dbctx.New(ctx), userID, now.Add(-lookback.Duration()))
	if err != nil {
		s.observe("error", 0, started)
		return nil, err
	}

	m, err := engagement.Train(samples, engagement.Options{
		Lookback:   lookback,
		Now:        now,
		MinSamples: s.cfg.MinSamples,
		Location:   loc,
	})
	if errors.Is(err, engagement.ErrInsufficientData) {
		s.log.Info("Engagement model training found too little data", "user_id", userID, "lookback", int(lookback), "posts", len(samples))
		s.observe("empty", 0, started)
		notify(ctx, s.emit, userID, realtime.SSEEventEngagementModelEmpty, map[string]any{"lookbackPeriod": lookback})
		return nil, err
	}
	if err != nil {
		s.observe("error", 0, started)
		notify(ctx, s.emit, userID, realtime.SSEEventEngagementModelFailed, map[string]any{"lookbackPeriod": lookback})
		return nil, fmt.Errorf("train engagement model: %w", err)
	}

	if err := s.store.Put(ctx, userID, m); err != nil {
		s.observe("error", 0, started)
		return nil, fmt.Errorf("store engagement model: %w", err)
	}

	scored, insights, err := s.apply(ctx, userID, m, now, loc)
	if err != nil {
		// The model is stored; failing to write derived data must not hide it.
		s.log.Warn("Failed to apply engagement model", "user_id", userID, "model_id", m.ModelID, "error", err)
	}
	if s.metrics != nil {
		s.metrics.AddPostsScored(scored)
	}
	s.observe("success", m.SampleSize, started)
	s.log.Info("Engagement model trained",
		"user_id", userID,
		"model_id", m.ModelID,
		"samples", m.SampleSize,
		"scored_posts", scored,
		"insights", insights,
	)
	notify(ctx, s.emit, userID, realtime.SSEEventEngagementModelTrained, map[string]any{
		"modelId":     m.ModelID,
		"sampleSize":  m.SampleSize,
		"confidence":  m.Confidence,
		"scoredPosts": scored,
		"insights":    insights,
	})
	return m.Clone(), nil
}

func (s *engagementModelService) loadSamples(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]engagement.Sample, error) {
	posts, err := s.postRepo.ListPublishedSince(dbc, userID, since)
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	if len(posts) == 0 {
		return nil, nil
	}
	rows, err := s.analyticsRepo.ListByPosts(dbc, postIDs(posts))
	if err != nil {
		return nil, fmt.Errorf("list analytics: %w", err)
	}
	byPost := make(map[uuid.UUID][]*analytics.AnalyticsData, len(posts))
	for _, r := range rows {
		byPost[r.PostID] = append(byPost[r.PostID], r)
	}
	out := make([]engagement.Sample, 0, len(posts))
	for _, p := range posts {
		out = append(out, engagement.Sample{Post: p, Metrics: byPost[p.ID]})
	}
	return out, nil
}

// apply writes predictions onto upcoming scheduled posts and records the
// model's insights in one transaction.
func (s *engagementModelService) apply(ctx context.Context, userID uuid.UUID, m *emodel.Model, now time.Time, loc *time.Location) (int, int, error) {
	scored, recorded := 0, 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		upcoming, err := s.postRepo.ListScheduled(inner, userID, now, 0)
		if err != nil {
			return fmt.Errorf("list scheduled posts: %w", err)
		}
		for _, p := range upcoming {
			if !enrichPost(s.log, m, p, now, loc) {
				continue
			}
			if err := s.postRepo.UpdateAIScores(inner, p); err != nil {
				return fmt.Errorf("update post scores: %w", err)
			}
			scored++
		}

		insights := engagement.Recommend(m)
		for _, in := range insights {
			in.UserID = userID
		}
		created, err := s.insightRepo.Create(inner, insights)
		if err != nil {
			return fmt.Errorf("record insights: %w", err)
		}
		recorded = len(created)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	if recorded > 0 {
		notify(ctx, s.emit, userID, realtime.SSEEventInsightCreated, map[string]any{"modelId": m.ModelID, "count": recorded})
	}
	return scored, recorded, nil
}

func (s *engagementModelService) Latest(ctx context.Context) (*emodel.Model, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNoModel
	}
	return m, nil
}

func (s *engagementModelService) ScorePost(ctx context.Context, p *types.Post) (bool, error) {
	if p == nil {
		return false, nil
	}
	m, err := s.store.Get(ctx, p.UserID)
	if err != nil || m == nil {
		return false, err
	}
	return enrichPost(s.log, m, p, s.now().UTC(), userLocation(ctx)), nil
}
