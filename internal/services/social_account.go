package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pulseboard-backend/internal/data/repos"
	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/domain/content"
	"github.com/yungbote/pulseboard-backend/internal/domain/social"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
	"github.com/yungbote/pulseboard-backend/internal/realtime"
	"github.com/yungbote/pulseboard-backend/internal/validation"
)

type SocialAccountService interface {
	List(ctx context.Context, includeInactive bool) ([]*types.SocialAccount, error)
	Link(ctx context.Context, raw []byte) (*types.SocialAccount, error)
	Sync(ctx context.Context, accountID uuid.UUID) (*types.SocialAccount, error)
	Disconnect(ctx context.Context, accountID uuid.UUID) error
}

type socialAccountService struct {
	db            *gorm.DB
	log           *logger.Logger
	accountRepo   repos.SocialAccountRepo
	postRepo      repos.PostRepo
	analyticsRepo repos.AnalyticsDataRepo
	emit          SSEEmitter
	now           func() time.Time
}

func NewSocialAccountService(
	db *gorm.DB,
	log *logger.Logger,
	accountRepo repos.SocialAccountRepo,
	postRepo repos.PostRepo,
	analyticsRepo repos.AnalyticsDataRepo,
	emit SSEEmitter,
) SocialAccountService {
	return &socialAccountService{
		db:            db,
		log:           log.With("service", "SocialAccountService"),
		accountRepo:   accountRepo,
		postRepo:      postRepo,
		analyticsRepo: analyticsRepo,
		emit:          emit,
		now:           time.Now,
	}
}

func (s *socialAccountService) List(ctx context.Context, includeInactive bool) ([]*types.SocialAccount, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.accountRepo.ListByUser(dbctx.New(ctx), userID, includeInactive)
}

func (s *socialAccountService) Link(ctx context.Context, raw []byte) (*types.SocialAccount, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	in, err := validation.DecodeSocialAccountLink(raw)
	if err != nil {
		return nil, err
	}
	acct := in.ToAccount(userID)
	if _, err := s.accountRepo.Create(dbctx.New(ctx), []*types.SocialAccount{acct}); err != nil {
		return nil, conflictOnDuplicate("account_already_linked", err)
	}
	s.log.Info("Social account linked", "user_id", userID, "platform", acct.Platform)
	return acct, nil
}

// Sync refreshes an account's derived state from the data stored for it:
// followers gained since the last sync and a health score driven by token
// validity and the share of failed posts.
func (s *socialAccountService) Sync(ctx context.Context, accountID uuid.UUID) (*types.SocialAccount, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	var out *types.SocialAccount
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		acct, err := s.accountRepo.GetByID(inner, userID, accountID)
		if err != nil {
			return err
		}
		if acct == nil {
			return notFound("account_not_found", "social account")
		}
		if acct.Status != social.AccountStatusActive {
			return notFound("account_not_found", "active social account")
		}

		posts, err := s.postRepo.List(inner, userID, repos.PostFilter{SocialAccountID: &acct.ID})
		if err != nil {
			return fmt.Errorf("list account posts: %w", err)
		}
		failed := 0
		ids := make([]uuid.UUID, 0, len(posts))
		for _, p := range posts {
			ids = append(ids, p.ID)
			if p.Status == content.PostStatusFailed {
				failed++
			}
		}
		rows, err := s.analyticsRepo.ListByPosts(inner, ids)
		if err != nil {
			return fmt.Errorf("list account analytics: %w", err)
		}
		var gained int64
		for _, r := range rows {
			if acct.LastSyncedAt == nil || r.CreatedAt.After(*acct.LastSyncedAt) {
				gained += r.FollowersGained
			}
		}

		health, lastErr := accountHealth(acct, len(posts), failed, now)
		state := repos.SyncState{
			FollowerCount: max(acct.FollowerCount+gained, 0),
			HealthScore:   health,
			Verified:      acct.Verified,
			LastError:     lastErr,
			SyncedAt:      now,
		}
		if err := s.accountRepo.UpdateSyncState(inner, acct.ID, state); err != nil {
			return err
		}
		acct.FollowerCount = state.FollowerCount
		acct.HealthScore = state.HealthScore
		acct.LastError = state.LastError
		acct.LastSyncedAt = &now
		out = acct
		return nil
	})
	if err != nil {
		return nil, err
	}
	notify(ctx, s.emit, userID, realtime.SSEEventSocialAccountSynced, out)
	return out, nil
}

func accountHealth(acct *types.SocialAccount, total, failed int, now time.Time) (int, string) {
	health := 100
	lastErr := ""
	if acct.TokenExpired(now) {
		health -= 60
		lastErr = "access token expired"
	}
	if total > 0 {
		health -= 40 * failed / total
	}
	return max(health, 0), lastErr
}

func (s *socialAccountService) Disconnect(ctx context.Context, accountID uuid.UUID) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	ok, err := s.accountRepo.SetStatus(dbctx.New(ctx), userID, accountID, social.AccountStatusDisconnected)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("account_not_found", "social account")
	}
	return nil
}
