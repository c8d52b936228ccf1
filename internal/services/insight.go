package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/pulseboard-backend/internal/data/repos"
	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
)

const (
	defaultInsightLimit = 50
	maxInsightLimit     = 200
)

type InsightService interface {
	List(ctx context.Context, unreadOnly bool, limit int) ([]*types.Insight, error)
	MarkRead(ctx context.Context, insightID uuid.UUID) (*types.Insight, error)
	MarkApplied(ctx context.Context, insightID uuid.UUID) (*types.Insight, error)
}

type insightService struct {
	log         *logger.Logger
	insightRepo repos.InsightRepo
	now         func() time.Time
}

func NewInsightService(log *logger.Logger, insightRepo repos.InsightRepo) InsightService {
	return &insightService{
		log:         log.With("service", "InsightService"),
		insightRepo: insightRepo,
		now:         time.Now,
	}
}

func (s *insightService) List(ctx context.Context, unreadOnly bool, limit int) ([]*types.Insight, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.insightRepo.List(dbctx.New(ctx), userID, repos.InsightFilter{
		UnreadOnly: unreadOnly,
		Limit:      clampLimit(limit, defaultInsightLimit, maxInsightLimit),
	})
}

func (s *insightService) MarkRead(ctx context.Context, insightID uuid.UUID) (*types.Insight, error) {
	return s.acknowledge(ctx, insightID, false)
}

func (s *insightService) MarkApplied(ctx context.Context, insightID uuid.UUID) (*types.Insight, error) {
	return s.acknowledge(ctx, insightID, true)
}

func (s *insightService) acknowledge(ctx context.Context, insightID uuid.UUID, applied bool) (*types.Insight, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	mark := s.insightRepo.MarkRead
	if applied {
		mark = s.insightRepo.MarkApplied
	}
	ok, err := mark(dbc, userID, insightID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("insight_not_found", "insight")
	}
	in, err := s.insightRepo.GetByID(dbc, userID, insightID)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, notFound("insight_not_found", "insight")
	}
	return in, nil
}
