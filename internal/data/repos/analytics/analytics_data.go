package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
)

// AnalyticsDataRepo has no update path; a (post, date) row is written once.
type AnalyticsDataRepo interface {
	Create(dbc dbctx.Context, rows []*types.AnalyticsData) ([]*types.AnalyticsData, error)
	ListByPost(dbc dbctx.Context, postID uuid.UUID) ([]*types.AnalyticsData, error)
	ListByPosts(dbc dbctx.Context, postIDs []uuid.UUID) ([]*types.AnalyticsData, error)
	ListByUserSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.AnalyticsData, error)
}

type analyticsDataRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnalyticsDataRepo(db *gorm.DB, baseLog *logger.Logger) AnalyticsDataRepo {
	return &analyticsDataRepo{db: db, log: baseLog.With("repo", "AnalyticsDataRepo")}
}

func (r *analyticsDataRepo) Create(dbc dbctx.Context, rows []*types.AnalyticsData) ([]*types.AnalyticsData, error) {
	if len(rows) == 0 {
		return []*types.AnalyticsData{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *analyticsDataRepo) ListByPost(dbc dbctx.Context, postID uuid.UUID) ([]*types.AnalyticsData, error) {
	var out []*types.AnalyticsData
	if postID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("post_id = ?", postID).
		Order("date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *analyticsDataRepo) ListByPosts(dbc dbctx.Context, postIDs []uuid.UUID) ([]*types.AnalyticsData, error) {
	var out []*types.AnalyticsData
	if len(postIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("post_id IN ?", postIDs).
		Order("post_id ASC, date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUserSince joins through post ownership; analytics rows carry no
// user id of their own.
func (r *analyticsDataRepo) ListByUserSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.AnalyticsData, error) {
	var out []*types.AnalyticsData
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Joins("JOIN post ON post.id = analytics_data.post_id AND post.deleted_at IS NULL").
		Where("post.user_id = ? AND analytics_data.date >= ?", userID, since.UTC()).
		Order("analytics_data.date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
