package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/pulseboard-backend/internal/data/repos"
	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/domain/content"
	"github.com/yungbote/pulseboard-backend/internal/platform/apierr"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
	"github.com/yungbote/pulseboard-backend/internal/validation"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

type EngageService interface {
	List(ctx context.Context, limit int) ([]*types.EngageActivity, error)
	// Log records an action under the user's autoEngage preferences: the
	// feature must be enabled, the action allowed, and performed actions are
	// capped per local day. Weekend actions are recorded as skipped when
	// pauseOnWeekends is set.
	Log(ctx context.Context, raw []byte) (*types.EngageActivity, error)
}

type engageService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	postRepo     repos.PostRepo
	accountRepo  repos.SocialAccountRepo
	activityRepo repos.EngageActivityRepo
	now          func() time.Time
}

func NewEngageService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	postRepo repos.PostRepo,
	accountRepo repos.SocialAccountRepo,
	activityRepo repos.EngageActivityRepo,
) EngageService {
	return &engageService{
		db:           db,
		log:          log.With("service", "EngageService"),
		userRepo:     userRepo,
		postRepo:     postRepo,
		accountRepo:  accountRepo,
		activityRepo: activityRepo,
		now:          time.Now,
	}
}

var (
	errAutoEngageDisabled = errors.New("auto-engage is disabled in preferences")
	errDailyLimit         = errors.New("daily interaction limit reached")
)

func (s *engageService) List(ctx context.Context, limit int) ([]*types.EngageActivity, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.activityRepo.ListRecent(dbctx.New(ctx), userID, clampLimit(limit, defaultActivityLimit, maxActivityLimit))
}

func (s *engageService) Log(ctx context.Context, raw []byte) (*types.EngageActivity, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	in, err := validation.DecodeEngageActivityInsert(raw)
	if err != nil {
		return nil, err
	}
	act := in.ToActivity(userID)
	now := s.now().UTC()
	if act.PerformedAt.IsZero() {
		act.PerformedAt = now
	}
	if act.Status == "" {
		act.Status = content.EngageStatusPerformed
	}
	loc := userLocation(ctx)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		prefs, err := PreferencesFor(inner, s.userRepo, userID)
		if err != nil {
			return err
		}
		ae := prefs.AutoEngage
		if !ae.Enabled {
			return apierr.Conflict("auto_engage_disabled", errAutoEngageDisabled)
		}
		if !slices.Contains(ae.Actions, string(act.ActionType)) {
			return apierr.BadRequest("action_not_enabled", fmt.Errorf("action %q is not enabled in preferences", act.ActionType))
		}
		if act.PostID != nil {
			p, err := s.postRepo.GetByID(inner, userID, *act.PostID)
			if err != nil {
				return err
			}
			if p == nil {
				return notFound("post_not_found", "post")
			}
		}
		if act.SocialAccountID != nil {
			a, err := s.accountRepo.GetByID(inner, userID, *act.SocialAccountID)
			if err != nil {
				return err
			}
			if a == nil {
				return notFound("account_not_found", "social account")
			}
		}

		if act.Status == content.EngageStatusPerformed {
			local := act.PerformedAt.In(loc)
			if ae.PauseOnWeekends && isWeekend(local) {
				act.Status = content.EngageStatusSkipped
			} else {
				dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
				done, err := s.activityRepo.CountSince(inner, userID, dayStart)
				if err != nil {
					return err
				}
				if done >= int64(ae.MaxDailyInteractions) {
					return apierr.Conflict("daily_limit_reached", errDailyLimit)
				}
			}
		}
		_, err = s.activityRepo.Create(inner, []*types.EngageActivity{act})
		return err
	})
	if err != nil {
		return nil, err
	}
	return act, nil
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}
