package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
)

type EngageActivityRepo interface {
	Create(dbc dbctx.Context, rows []*types.EngageActivity) ([]*types.EngageActivity, error)
	ListRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.EngageActivity, error)
	CountSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (int64, error)
}

type engageActivityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEngageActivityRepo(db *gorm.DB, baseLog *logger.Logger) EngageActivityRepo {
	return &engageActivityRepo{db: db, log: baseLog.With("repo", "EngageActivityRepo")}
}

func (r *engageActivityRepo) Create(dbc dbctx.Context, rows []*types.EngageActivity) ([]*types.EngageActivity, error) {
	if len(rows) == 0 {
		return []*types.EngageActivity{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *engageActivityRepo) ListRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.EngageActivity, error) {
	var out []*types.EngageActivity
	if userID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 {
		limit = 50
	}
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("performed_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CountSince counts performed actions, which is what the daily cap limits.
func (r *engageActivityRepo) CountSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).
		Model(&types.EngageActivity{}).
		Where("user_id = ? AND status = ? AND performed_at >= ?", userID, "performed", since.UTC()).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
