package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
)

type MonetizationRepo interface {
	Create(dbc dbctx.Context, rows []*types.MonetizationRecord) ([]*types.MonetizationRecord, error)
	ListByUserSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.MonetizationRecord, error)
}

type monetizationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMonetizationRepo(db *gorm.DB, baseLog *logger.Logger) MonetizationRepo {
	return &monetizationRepo{db: db, log: baseLog.With("repo", "MonetizationRepo")}
}

func (r *monetizationRepo) Create(dbc dbctx.Context, rows []*types.MonetizationRecord) ([]*types.MonetizationRecord, error) {
	if len(rows) == 0 {
		return []*types.MonetizationRecord{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByUserSince returns records earned at or after since, zero since
// meaning all of them.
func (r *monetizationRepo) ListByUserSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.MonetizationRecord, error) {
	var out []*types.MonetizationRecord
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Where("user_id = ?", userID)
	if !since.IsZero() {
		q = q.Where("earned_at >= ?", since.UTC())
	}
	if err := q.Order("earned_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
