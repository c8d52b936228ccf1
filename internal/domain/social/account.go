package social

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountStatus string

const (
	AccountStatusActive       AccountStatus = "active"
	AccountStatusDisconnected AccountStatus = "disconnected"
	AccountStatusRevoked      AccountStatus = "revoked"
)

// SocialAccount is a linked platform identity. Rows are never hard-deleted;
// unlinking flips Status.
type SocialAccount struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_social_account_identity,priority:1" json:"userId"`

	Platform          Platform `gorm:"column:platform;not null;uniqueIndex:idx_social_account_identity,priority:2" json:"platform"`
	ExternalAccountID string   `gorm:"column:external_account_id;not null;uniqueIndex:idx_social_account_identity,priority:3" json:"externalAccountId"`
	Handle            string   `gorm:"column:handle;not null" json:"handle"`
	DisplayName       string   `gorm:"column:display_name" json:"displayName"`

	AccessToken    string     `gorm:"column:access_token" json:"-"`
	RefreshToken   string     `gorm:"column:refresh_token" json:"-"`
	TokenExpiresAt *time.Time `gorm:"column:token_expires_at" json:"tokenExpiresAt,omitempty"`

	Status        AccountStatus `gorm:"column:status;not null;default:'active';index" json:"status"`
	Verified      bool          `gorm:"column:verified;not null;default:false" json:"verified"`
	HealthScore   int           `gorm:"column:health_score;not null;default:100" json:"healthScore"`
	FollowerCount int64         `gorm:"column:follower_count;not null;default:0" json:"followerCount"`
	LastSyncedAt  *time.Time    `gorm:"column:last_synced_at" json:"lastSyncedAt,omitempty"`
	LastError     string        `gorm:"column:last_error" json:"lastError,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (SocialAccount) TableName() string { return "social_account" }

func (a *SocialAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = AccountStatusActive
	}
	return nil
}

// TokenExpired reports whether the stored access token is past its expiry.
func (a *SocialAccount) TokenExpired(now time.Time) bool {
	return a.TokenExpiresAt != nil && !a.TokenExpiresAt.After(now)
}
