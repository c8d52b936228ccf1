package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pulseboard-backend/internal/data/repos"
	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/domain/content"
	emodel "github.com/yungbote/pulseboard-backend/internal/domain/engagement"
	"github.com/yungbote/pulseboard-backend/internal/domain/social"
	"github.com/yungbote/pulseboard-backend/internal/engagement"
	"github.com/yungbote/pulseboard-backend/internal/platform/apierr"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
	"github.com/yungbote/pulseboard-backend/internal/realtime"
	"github.com/yungbote/pulseboard-backend/internal/validation"
)

const (
	defaultScheduledLimit = 20
	maxListLimit          = 500
)

// PostQuery is the parsed query of GET /api/posts.
type PostQuery struct {
	Start    *time.Time
	End      *time.Time
	Platform social.Platform
	Status   content.PostStatus
	Limit    int
}

type PostService interface {
	Create(ctx context.Context, raw []byte) (*types.Post, error)
	Get(ctx context.Context, postID uuid.UUID) (*types.Post, error)
	List(ctx context.Context, q PostQuery) ([]*types.Post, error)
	ListScheduled(ctx context.Context, limit int) ([]*types.Post, error)
	Analytics(ctx context.Context, postID uuid.UUID) ([]*types.AnalyticsData, error)
}

type postService struct {
	db            *gorm.DB
	log           *logger.Logger
	postRepo      repos.PostRepo
	accountRepo   repos.SocialAccountRepo
	analyticsRepo repos.AnalyticsDataRepo
	models        EngagementModelService
	emit          SSEEmitter
	now           func() time.Time
}

func NewPostService(
	db *gorm.DB,
	log *logger.Logger,
	postRepo repos.PostRepo,
	accountRepo repos.SocialAccountRepo,
	analyticsRepo repos.AnalyticsDataRepo,
	models EngagementModelService,
	emit SSEEmitter,
) PostService {
	return &postService{
		db:            db,
		log:           log.With("service", "PostService"),
		postRepo:      postRepo,
		accountRepo:   accountRepo,
		analyticsRepo: analyticsRepo,
		models:        models,
		emit:          emit,
		now:           time.Now,
	}
}

var errAccountPlatform = errors.New("social account belongs to a different platform")

func (s *postService) Create(ctx context.Context, raw []byte) (*types.Post, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	in, err := validation.DecodePostInsert(raw)
	if err != nil {
		return nil, err
	}
	post := in.ToPost(userID)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if post.SocialAccountID != nil {
			acct, err := s.accountRepo.GetByID(inner, userID, *post.SocialAccountID)
			if err != nil {
				return err
			}
			if acct == nil || acct.Status != social.AccountStatusActive {
				return notFound("account_not_found", "social account")
			}
			if acct.Platform != post.Platform {
				return apierr.BadRequest("account_platform_mismatch", errAccountPlatform)
			}
		}
		_, err := s.postRepo.Create(inner, []*types.Post{post})
		return err
	})
	if err != nil {
		return nil, err
	}

	if post.Status == content.PostStatusScheduled && s.models != nil {
		scored, err := s.models.ScorePost(ctx, post)
		if err != nil {
			s.log.Warn("Scoring new post failed", "post_id", post.ID, "error", err)
		} else if scored {
			if err := s.postRepo.UpdateAIScores(dbctx.New(ctx), post); err != nil {
				s.log.Warn("Persisting post scores failed", "post_id", post.ID, "error", err)
			}
		}
	}
	notify(ctx, s.emit, userID, realtime.SSEEventPostCreated, post)
	return post, nil
}

func (s *postService) Get(ctx context.Context, postID uuid.UUID) (*types.Post, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.postRepo.GetByID(dbctx.New(ctx), userID, postID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, notFound("post_not_found", "post")
	}
	return p, nil
}

func (s *postService) List(ctx context.Context, q PostQuery) ([]*types.Post, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if q.Start != nil && q.End != nil && q.End.Before(*q.Start) {
		return nil, apierr.BadRequest("invalid_range", errors.New("endDate is before startDate"))
	}
	return s.postRepo.List(dbctx.New(ctx), userID, repos.PostFilter{
		Start:    q.Start,
		End:      q.End,
		Platform: q.Platform,
		Status:   q.Status,
		Limit:    clampLimit(q.Limit, maxListLimit, maxListLimit),
	})
}

func (s *postService) ListScheduled(ctx context.Context, limit int) ([]*types.Post, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.postRepo.ListScheduled(dbctx.New(ctx), userID, s.now().UTC(), clampLimit(limit, defaultScheduledLimit, maxListLimit))
}

func (s *postService) Analytics(ctx context.Context, postID uuid.UUID) ([]*types.AnalyticsData, error) {
	p, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.analyticsRepo.ListByPost(dbctx.New(ctx), p.ID)
}

// enrichPost attaches m's predictions to p when the result still passes
// extended validation; p is untouched otherwise.
func enrichPost(log *logger.Logger, m *emodel.Model, p *types.Post, now time.Time, loc *time.Location) bool {
	pred := engagement.Score(m, p, loc)
	candidate := *p
	validation.Enrich(&candidate, validation.SystemScores{
		EngagementScore: pred.EngagementScore,
		ShadowbanRisk:   pred.ShadowbanRisk,
		AudienceMatch:   pred.AudienceMatch,
		AnalyzedAt:      now,
	})
	if err := validation.ValidatePostExtended(&candidate); err != nil {
		log.Warn("Enriched post failed extended validation", "post_id", p.ID, "error", err)
		return false
	}
	*p = candidate
	return true
}

func postIDs(posts []*types.Post) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}
