package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/pulseboard-backend/internal/data/repos"
	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/domain/content"
	"github.com/yungbote/pulseboard-backend/internal/platform/apierr"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
	"github.com/yungbote/pulseboard-backend/internal/validation"
)

type AnalyticsService interface {
	// Record stores one day of metrics. A second row for the same post and
	// date is a conflict; rows are never updated.
	Record(ctx context.Context, raw []byte) (*types.AnalyticsData, error)
}

type analyticsService struct {
	db            *gorm.DB
	log           *logger.Logger
	postRepo      repos.PostRepo
	analyticsRepo repos.AnalyticsDataRepo
}

func NewAnalyticsService(db *gorm.DB, log *logger.Logger, postRepo repos.PostRepo, analyticsRepo repos.AnalyticsDataRepo) AnalyticsService {
	return &analyticsService{
		db:            db,
		log:           log.With("service", "AnalyticsService"),
		postRepo:      postRepo,
		analyticsRepo: analyticsRepo,
	}
}

var errUnpublished = errors.New("analytics can only be recorded for published posts")

func (s *analyticsService) Record(ctx context.Context, raw []byte) (*types.AnalyticsData, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	in, err := validation.DecodeAnalyticsInsert(raw)
	if err != nil {
		return nil, err
	}
	row := in.ToAnalytics()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		p, err := s.postRepo.GetByID(inner, userID, row.PostID)
		if err != nil {
			return err
		}
		if p == nil {
			return notFound("post_not_found", "post")
		}
		if p.Status != content.PostStatusPublished {
			return apierr.BadRequest("post_not_published", errUnpublished)
		}
		_, err = s.analyticsRepo.Create(inner, []*types.AnalyticsData{row})
		return conflictOnDuplicate("analytics_exists", err)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}
