package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/pulseboard-backend/internal/data/repos"
	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
	"github.com/yungbote/pulseboard-backend/internal/validation"
)

type MonetizationService interface {
	Record(ctx context.Context, raw []byte) (*types.MonetizationRecord, error)
}

type monetizationService struct {
	db               *gorm.DB
	log              *logger.Logger
	postRepo         repos.PostRepo
	monetizationRepo repos.MonetizationRepo
}

func NewMonetizationService(db *gorm.DB, log *logger.Logger, postRepo repos.PostRepo, monetizationRepo repos.MonetizationRepo) MonetizationService {
	return &monetizationService{
		db:               db,
		log:              log.With("service", "MonetizationService"),
		postRepo:         postRepo,
		monetizationRepo: monetizationRepo,
	}
}

func (s *monetizationService) Record(ctx context.Context, raw []byte) (*types.MonetizationRecord, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	in, err := validation.DecodeMonetizationInsert(raw)
	if err != nil {
		return nil, err
	}
	rec := in.ToRecord(userID)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if rec.PostID != nil {
			p, err := s.postRepo.GetByID(inner, userID, *rec.PostID)
			if err != nil {
				return err
			}
			if p == nil {
				return notFound("post_not_found", "post")
			}
			if rec.Platform == "" {
				rec.Platform = string(p.Platform)
			}
		}
		_, err := s.monetizationRepo.Create(inner, []*types.MonetizationRecord{rec})
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}
