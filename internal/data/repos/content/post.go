package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/domain/content"
	"github.com/yungbote/pulseboard-backend/internal/domain/social"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
)

// calendarExpr is the instant a post occupies on the calendar.
const calendarExpr = "COALESCE(scheduled_at, published_at)"

// PostFilter narrows List. Start and End are inclusive and compared
// against the calendar instant; posts with no date are excluded whenever
// either bound is set.
type PostFilter struct {
	Start    *time.Time
	End      *time.Time
	Platform social.Platform
	Status   content.PostStatus
	Limit    int

	// SocialAccountID restricts to posts published through one account.
	SocialAccountID *uuid.UUID
}

type PostRepo interface {
	Create(dbc dbctx.Context, posts []*types.Post) ([]*types.Post, error)
	GetByID(dbc dbctx.Context, userID, postID uuid.UUID) (*types.Post, error)
	GetByIDs(dbc dbctx.Context, userID uuid.UUID, postIDs []uuid.UUID) ([]*types.Post, error)
	List(dbc dbctx.Context, userID uuid.UUID, filter PostFilter) ([]*types.Post, error)
	ListScheduled(dbc dbctx.Context, userID uuid.UUID, from time.Time, limit int) ([]*types.Post, error)
	ListPublishedSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.Post, error)
	CountByStatus(dbc dbctx.Context, userID uuid.UUID) (map[content.PostStatus]int64, error)
	UpdateAIScores(dbc dbctx.Context, post *types.Post) error
}

type postRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostRepo(db *gorm.DB, baseLog *logger.Logger) PostRepo {
	return &postRepo{db: db, log: baseLog.With("repo", "PostRepo")}
}

func (r *postRepo) Create(dbc dbctx.Context, posts []*types.Post) ([]*types.Post, error) {
	if len(posts) == 0 {
		return []*types.Post{}, nil
	}
	if err := dbc.DB(r.db).Create(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepo) GetByID(dbc dbctx.Context, userID, postID uuid.UUID) (*types.Post, error) {
	if userID == uuid.Nil || postID == uuid.Nil {
		return nil, nil
	}
	var row types.Post
	if err := dbc.DB(r.db).
		Where("id = ? AND user_id = ?", postID, userID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *postRepo) GetByIDs(dbc dbctx.Context, userID uuid.UUID, postIDs []uuid.UUID) ([]*types.Post, error) {
	var out []*types.Post
	if userID == uuid.Nil || len(postIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ? AND id IN ?", userID, postIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postRepo) List(dbc dbctx.Context, userID uuid.UUID, filter PostFilter) ([]*types.Post, error) {
	var out []*types.Post
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Where("user_id = ?", userID)
	if filter.Start != nil {
		q = q.Where(calendarExpr+" >= ?", filter.Start.UTC())
	}
	if filter.End != nil {
		q = q.Where(calendarExpr+" <= ?", filter.End.UTC())
	}
	if filter.Platform != "" {
		q = q.Where("platform = ?", filter.Platform)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SocialAccountID != nil {
		q = q.Where("social_account_id = ?", *filter.SocialAccountID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Order(calendarExpr + " ASC").Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postRepo) ListScheduled(dbc dbctx.Context, userID uuid.UUID, from time.Time, limit int) ([]*types.Post, error) {
	var out []*types.Post
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).
		Where("user_id = ? AND status = ?", userID, content.PostStatusScheduled)
	if !from.IsZero() {
		q = q.Where("scheduled_at >= ?", from.UTC())
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("scheduled_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postRepo) ListPublishedSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.Post, error) {
	var out []*types.Post
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ? AND status = ? AND published_at >= ?", userID, content.PostStatusPublished, since.UTC()).
		Order("published_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postRepo) CountByStatus(dbc dbctx.Context, userID uuid.UUID) (map[content.PostStatus]int64, error) {
	type row struct {
		Status content.PostStatus
		N      int64
	}
	var rows []row
	if err := dbc.DB(r.db).
		Model(&types.Post{}).
		Select("status, COUNT(*) AS n").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[content.PostStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}

// UpdateAIScores persists only the system-written fields of post.
func (r *postRepo) UpdateAIScores(dbc dbctx.Context, post *types.Post) error {
	if post == nil || post.ID == uuid.Nil {
		return nil
	}
	res := dbc.DB(r.db).
		Model(&types.Post{}).
		Where("id = ? AND user_id = ?", post.ID, post.UserID).
		Updates(map[string]any{
			"engagement_score": post.EngagementScore,
			"shadowban_risk":   post.ShadowbanRisk,
			"audience_match":   post.AudienceMatch,
			"ai_analyzed_at":   post.AIAnalyzedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
