package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
)

type InsightFilter struct {
	UnreadOnly bool
	Limit      int
}

type InsightRepo interface {
	Create(dbc dbctx.Context, rows []*types.Insight) ([]*types.Insight, error)
	GetByID(dbc dbctx.Context, userID, insightID uuid.UUID) (*types.Insight, error)
	List(dbc dbctx.Context, userID uuid.UUID, filter InsightFilter) ([]*types.Insight, error)
	CountUnread(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	MarkRead(dbc dbctx.Context, userID, insightID uuid.UUID, at time.Time) (bool, error)
	MarkApplied(dbc dbctx.Context, userID, insightID uuid.UUID, at time.Time) (bool, error)
}

type insightRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInsightRepo(db *gorm.DB, baseLog *logger.Logger) InsightRepo {
	return &insightRepo{db: db, log: baseLog.With("repo", "InsightRepo")}
}

func (r *insightRepo) Create(dbc dbctx.Context, rows []*types.Insight) ([]*types.Insight, error) {
	if len(rows) == 0 {
		return []*types.Insight{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *insightRepo) GetByID(dbc dbctx.Context, userID, insightID uuid.UUID) (*types.Insight, error) {
	if userID == uuid.Nil || insightID == uuid.Nil {
		return nil, nil
	}
	var row types.Insight
	if err := dbc.DB(r.db).
		Where("id = ? AND user_id = ?", insightID, userID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *insightRepo) List(dbc dbctx.Context, userID uuid.UUID, filter InsightFilter) ([]*types.Insight, error) {
	var out []*types.Insight
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Where("user_id = ?", userID)
	if filter.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *insightRepo) CountUnread(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).
		Model(&types.Insight{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// MarkRead is idempotent: an already-read insight keeps its first read time.
func (r *insightRepo) MarkRead(dbc dbctx.Context, userID, insightID uuid.UUID, at time.Time) (bool, error) {
	exists, err := r.GetByID(dbc, userID, insightID)
	if err != nil || exists == nil {
		return false, err
	}
	if exists.IsRead {
		return true, nil
	}
	err = dbc.DB(r.db).
		Model(&types.Insight{}).
		Where("id = ? AND user_id = ?", insightID, userID).
		Updates(map[string]any{"is_read": true, "read_at": at.UTC()}).Error
	return err == nil, err
}

// MarkApplied also marks the insight read.
func (r *insightRepo) MarkApplied(dbc dbctx.Context, userID, insightID uuid.UUID, at time.Time) (bool, error) {
	exists, err := r.GetByID(dbc, userID, insightID)
	if err != nil || exists == nil {
		return false, err
	}
	if exists.IsApplied {
		return true, nil
	}
	updates := map[string]any{"is_applied": true, "applied_at": at.UTC(), "is_read": true}
	if !exists.IsRead {
		updates["read_at"] = at.UTC()
	}
	err = dbc.DB(r.db).
		Model(&types.Insight{}).
		Where("id = ? AND user_id = ?", insightID, userID).
		Updates(updates).Error
	return err == nil, err
}
