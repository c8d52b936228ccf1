package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/pulseboard-backend/internal/domain/social"
)

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPublished PostStatus = "published"
	PostStatusFailed    PostStatus = "failed"
)

type ContentType string

const (
	ContentTypeText     ContentType = "text"
	ContentTypeImage    ContentType = "image"
	ContentTypeVideo    ContentType = "video"
	ContentTypeCarousel ContentType = "carousel"
	ContentTypeStory    ContentType = "story"
	ContentTypeReel     ContentType = "reel"
)

// Post is a piece of content owned by a user. EngagementScore, ShadowbanRisk,
// AudienceMatch and AIAnalyzedAt are written by the engagement model only.
type Post struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	SocialAccountID *uuid.UUID `gorm:"type:uuid;index" json:"socialAccountId,omitempty"`

	Platform    social.Platform             `gorm:"column:platform;not null;index" json:"platform"`
	Content     string                      `gorm:"column:content;type:text;not null" json:"content"`
	ContentType ContentType                 `gorm:"column:content_type;not null;default:'text'" json:"contentType"`
	Hashtags    datatypes.JSONSlice[string] `gorm:"column:hashtags" json:"hashtags"`
	MediaURLs   datatypes.JSONSlice[string] `gorm:"column:media_urls" json:"mediaUrls"`

	Status        PostStatus `gorm:"column:status;not null;index" json:"status"`
	ScheduledAt   *time.Time `gorm:"column:scheduled_at;index" json:"scheduledAt,omitempty"`
	PublishedAt   *time.Time `gorm:"column:published_at;index" json:"publishedAt,omitempty"`
	FailureReason string     `gorm:"column:failure_reason" json:"failureReason,omitempty"`

	EngagementScore *float64   `gorm:"column:engagement_score" json:"engagementScore,omitempty"`
	ShadowbanRisk   *float64   `gorm:"column:shadowban_risk" json:"shadowbanRisk,omitempty"`
	AudienceMatch   *float64   `gorm:"column:audience_match" json:"audienceMatch,omitempty"`
	AIAnalyzedAt    *time.Time `gorm:"column:ai_analyzed_at" json:"aiAnalyzedAt,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Post) TableName() string { return "post" }

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CalendarTime is the instant a post occupies on the calendar: the scheduled
// time, falling back to the publish time. ok is false for undated drafts.
func (p *Post) CalendarTime() (t time.Time, ok bool) {
	if p == nil {
		return time.Time{}, false
	}
	if p.ScheduledAt != nil {
		return *p.ScheduledAt, true
	}
	if p.PublishedAt != nil {
		return *p.PublishedAt, true
	}
	return time.Time{}, false
}
