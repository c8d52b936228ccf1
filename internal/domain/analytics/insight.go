package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InsightType string

const (
	InsightContent      InsightType = "content"
	InsightTiming       InsightType = "timing"
	InsightAudience     InsightType = "audience"
	InsightGrowth       InsightType = "growth"
	InsightMonetization InsightType = "monetization"
	InsightRisk         InsightType = "risk"
)

type InsightPriority string

const (
	PriorityLow    InsightPriority = "low"
	PriorityMedium InsightPriority = "medium"
	PriorityHigh   InsightPriority = "high"
)

// Insight is a generated recommendation. IsRead and IsApplied only change
// through the user acknowledgment endpoints.
type Insight struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	PostID *uuid.UUID `gorm:"type:uuid;index" json:"postId,omitempty"`

	Type        InsightType     `gorm:"column:type;not null" json:"type"`
	Title       string          `gorm:"column:title;not null" json:"title"`
	Description string          `gorm:"column:description;type:text" json:"description"`
	Priority    InsightPriority `gorm:"column:priority;not null;default:'medium'" json:"priority"`
	Platform    string          `gorm:"column:platform" json:"platform,omitempty"`
	ModelID     string          `gorm:"column:model_id;index" json:"modelId,omitempty"`

	IsRead    bool       `gorm:"column:is_read;not null;default:false;index" json:"isRead"`
	IsApplied bool       `gorm:"column:is_applied;not null;default:false" json:"isApplied"`
	ReadAt    *time.Time `gorm:"column:read_at" json:"readAt,omitempty"`
	AppliedAt *time.Time `gorm:"column:applied_at" json:"appliedAt,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (Insight) TableName() string { return "insight" }

func (i *Insight) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Priority == "" {
		i.Priority = PriorityMedium
	}
	return nil
}
