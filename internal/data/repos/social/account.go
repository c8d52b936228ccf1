package social

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/domain/social"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
)

// SyncState is the outcome of one platform sync.
type SyncState struct {
	FollowerCount int64
	HealthScore   int
	Verified      bool
	LastError     string
	SyncedAt      time.Time
}

type SocialAccountRepo interface {
	Create(dbc dbctx.Context, accounts []*types.SocialAccount) ([]*types.SocialAccount, error)
	GetByID(dbc dbctx.Context, userID, accountID uuid.UUID) (*types.SocialAccount, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, includeInactive bool) ([]*types.SocialAccount, error)
	UpdateSyncState(dbc dbctx.Context, accountID uuid.UUID, state SyncState) error
	SetStatus(dbc dbctx.Context, userID, accountID uuid.UUID, status social.AccountStatus) (bool, error)
}

type socialAccountRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSocialAccountRepo(db *gorm.DB, baseLog *logger.Logger) SocialAccountRepo {
	return &socialAccountRepo{db: db, log: baseLog.With("repo", "SocialAccountRepo")}
}

func (r *socialAccountRepo) Create(dbc dbctx.Context, accounts []*types.SocialAccount) ([]*types.SocialAccount, error) {
	if len(accounts) == 0 {
		return []*types.SocialAccount{}, nil
	}
	if err := dbc.DB(r.db).Create(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetByID scopes the lookup to userID so one user can never read another's
// account. Returns nil, nil when absent.
func (r *socialAccountRepo) GetByID(dbc dbctx.Context, userID, accountID uuid.UUID) (*types.SocialAccount, error) {
	if userID == uuid.Nil || accountID == uuid.Nil {
		return nil, nil
	}
	var row types.SocialAccount
	if err := dbc.DB(r.db).
		Where("id = ? AND user_id = ?", accountID, userID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *socialAccountRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, includeInactive bool) ([]*types.SocialAccount, error) {
	var out []*types.SocialAccount
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Where("user_id = ?", userID)
	if !includeInactive {
		q = q.Where("status = ?", social.AccountStatusActive)
	}
	if err := q.Order("platform ASC, created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *socialAccountRepo) UpdateSyncState(dbc dbctx.Context, accountID uuid.UUID, state SyncState) error {
	health := state.HealthScore
	if health < 0 {
		health = 0
	}
	if health > 100 {
		health = 100
	}
	syncedAt := state.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = time.Now()
	}
	syncedAt = syncedAt.UTC()
	res := dbc.DB(r.db).
		Model(&types.SocialAccount{}).
		Where("id = ?", accountID).
		Updates(map[string]any{
			"follower_count": state.FollowerCount,
			"health_score":   health,
			"verified":       state.Verified,
			"last_error":     state.LastError,
			"last_synced_at": syncedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetStatus flips the soft status. Disconnecting also drops stored
// credentials. Reports false when the account does not belong to userID.
func (r *socialAccountRepo) SetStatus(dbc dbctx.Context, userID, accountID uuid.UUID, status social.AccountStatus) (bool, error) {
	updates := map[string]any{"status": status}
	if status != social.AccountStatusActive {
		updates["access_token"] = ""
		updates["refresh_token"] = ""
		updates["token_expires_at"] = nil
	}
	res := dbc.DB(r.db).
		Model(&types.SocialAccount{}).
		Where("id = ? AND user_id = ?", accountID, userID).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
