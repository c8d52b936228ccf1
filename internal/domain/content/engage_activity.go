package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EngageActionType string

const (
	EngageLike    EngageActionType = "like"
	EngageComment EngageActionType = "comment"
	EngageFollow  EngageActionType = "follow"
	EngageReply   EngageActionType = "reply"
	EngageShare   EngageActionType = "share"
)

type EngageStatus string

const (
	EngageStatusPerformed EngageStatus = "performed"
	EngageStatusSkipped   EngageStatus = "skipped"
	EngageStatusFailed    EngageStatus = "failed"
)

// EngageActivity is one logged auto-engagement action.
type EngageActivity struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	PostID          *uuid.UUID `gorm:"type:uuid;index" json:"postId,omitempty"`
	SocialAccountID *uuid.UUID `gorm:"type:uuid;index" json:"socialAccountId,omitempty"`

	ActionType   EngageActionType `gorm:"column:action_type;not null" json:"actionType"`
	TargetHandle string           `gorm:"column:target_handle" json:"targetHandle,omitempty"`
	Content      string           `gorm:"column:content;type:text" json:"content,omitempty"`
	Status       EngageStatus     `gorm:"column:status;not null;default:'performed'" json:"status"`
	PerformedAt  time.Time        `gorm:"column:performed_at;not null;index" json:"performedAt"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}

func (EngageActivity) TableName() string { return "engage_activity" }

func (a *EngageActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.PerformedAt.IsZero() {
		a.PerformedAt = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = EngageStatusPerformed
	}
	return nil
}
