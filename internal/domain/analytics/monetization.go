package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RevenueSource string

const (
	SourceSponsorship  RevenueSource = "sponsorship"
	SourceAffiliate    RevenueSource = "affiliate"
	SourceAds          RevenueSource = "ads"
	SourceSubscription RevenueSource = "subscription"
)

type RevenueStatus string

const (
	RevenuePending   RevenueStatus = "pending"
	RevenuePaid      RevenueStatus = "paid"
	RevenueCancelled RevenueStatus = "cancelled"
)

// MonetizationRecord is a revenue ledger entry. Amounts are minor units.
type MonetizationRecord struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	PostID *uuid.UUID `gorm:"type:uuid;index" json:"postId,omitempty"`

	Source       RevenueSource `gorm:"column:source;not null" json:"source"`
	Platform     string        `gorm:"column:platform;index" json:"platform,omitempty"`
	CampaignName string        `gorm:"column:campaign_name" json:"campaignName,omitempty"`
	Brand        string        `gorm:"column:brand" json:"brand,omitempty"`
	AmountCents  int64         `gorm:"column:amount_cents;not null" json:"amountCents"`
	Currency     string        `gorm:"column:currency;not null;default:'USD'" json:"currency"`
	Status       RevenueStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	EarnedAt     time.Time     `gorm:"column:earned_at;not null;index" json:"earnedAt"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}

func (MonetizationRecord) TableName() string { return "monetization_record" }

func (m *MonetizationRecord) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.EarnedAt.IsZero() {
		m.EarnedAt = time.Now().UTC()
	}
	if m.Status == "" {
		m.Status = RevenuePending
	}
	return nil
}
