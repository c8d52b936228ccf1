package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/pulseboard-backend/internal/data/repos"
	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/domain/user"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
	"github.com/yungbote/pulseboard-backend/internal/realtime"
	"github.com/yungbote/pulseboard-backend/internal/validation"
)

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	UpdateProfile(ctx context.Context, raw []byte) (*types.User, error)

	// GetPreferences always returns a fully populated document.
	GetPreferences(ctx context.Context) (user.Preferences, error)
	// ReplacePreferences resolves raw onto the defaults (PUT).
	ReplacePreferences(ctx context.Context, raw []byte) (user.Preferences, error)
	// PatchPreferences resolves raw onto the stored document (PATCH).
	PatchPreferences(ctx context.Context, raw []byte) (user.Preferences, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	emit     SSEEmitter
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, emit SSEEmitter) UserService {
	return &userService{
		db:       db,
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
		emit:     emit,
	}
}

func (us *userService) load(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	u, err := us.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	if u == nil {
		return nil, notFound("user_not_found", "user")
	}
	return u, nil
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return us.load(dbctx.New(ctx), userID)
}

func (us *userService) UpdateProfile(ctx context.Context, raw []byte) (*types.User, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	in, err := validation.DecodeProfileUpdate(raw)
	if err != nil {
		return nil, err
	}
	var out *types.User
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		u, err := us.load(inner, userID)
		if err != nil {
			return err
		}
		if in.FirstName != nil {
			u.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			u.LastName = *in.LastName
		}
		if in.Timezone != nil {
			u.Timezone = *in.Timezone
		}
		if err := us.userRepo.UpdateProfile(inner, userID, u.FirstName, u.LastName, u.Timezone); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// storedPreferences resolves the persisted document. A stored document that
// no longer validates (e.g. after a rule tightened) falls back to defaults
// rather than failing every read.
func (us *userService) storedPreferences(u *types.User) user.Preferences {
	if len(u.PreferencesJSON) == 0 {
		return user.DefaultPreferences()
	}
	prefs, err := validation.ResolvePreferences(u.PreferencesJSON)
	if err != nil {
		us.log.Warn("Stored preferences no longer valid; using defaults", "user_id", u.ID, "error", err)
		return user.DefaultPreferences()
	}
	return prefs
}

func (us *userService) GetPreferences(ctx context.Context) (user.Preferences, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return user.Preferences{}, err
	}
	u, err := us.load(dbctx.New(ctx), userID)
	if err != nil {
		return user.Preferences{}, err
	}
	return us.storedPreferences(u), nil
}

func (us *userService) ReplacePreferences(ctx context.Context, raw []byte) (user.Preferences, error) {
	return us.savePreferences(ctx, raw, false)
}

func (us *userService) PatchPreferences(ctx context.Context, raw []byte) (user.Preferences, error) {
	return us.savePreferences(ctx, raw, true)
}

func (us *userService) savePreferences(ctx context.Context, raw []byte, merge bool) (user.Preferences, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return user.Preferences{}, err
	}
	var saved user.Preferences
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		u, err := us.load(inner, userID)
		if err != nil {
			return err
		}
		base := user.DefaultPreferences()
		if merge {
			base = us.storedPreferences(u)
		}
		prefs, err := validation.ResolvePreferencesOnto(base, raw)
		if err != nil {
			return err
		}
		doc, err := json.Marshal(prefs)
		if err != nil {
			return fmt.Errorf("encode preferences: %w", err)
		}
		if err := us.userRepo.UpdatePreferences(inner, userID, datatypes.JSON(doc)); err != nil {
			return err
		}
		saved = prefs
		return nil
	})
	if err != nil {
		return user.Preferences{}, err
	}
	notify(ctx, us.emit, userID, realtime.SSEEventPreferencesUpdated, saved)
	return saved, nil
}

// PreferencesFor reads a user's resolved preferences outside a request
// context; used by services that act on behalf of a user.
func PreferencesFor(dbc dbctx.Context, userRepo repos.UserRepo, userID uuid.UUID) (user.Preferences, error) {
	u, err := userRepo.GetByID(dbc, userID)
	if err != nil {
		return user.Preferences{}, err
	}
	if u == nil || len(u.PreferencesJSON) == 0 {
		return user.DefaultPreferences(), nil
	}
	prefs, err := validation.ResolvePreferences(u.PreferencesJSON)
	if err != nil {
		return user.DefaultPreferences(), nil
	}
	return prefs, nil
}
