package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnalyticsData is one day of metrics for a post. Rows are append-only:
// (post, date) is unique and nothing updates a row after insert.
type AnalyticsData struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_analytics_post_date,priority:1" json:"postId"`
	Date   time.Time `gorm:"column:date;not null;uniqueIndex:idx_analytics_post_date,priority:2;index" json:"date"`

	Impressions     int64 `gorm:"column:impressions;not null;default:0" json:"impressions"`
	Reach           int64 `gorm:"column:reach;not null;default:0" json:"reach"`
	Likes           int64 `gorm:"column:likes;not null;default:0" json:"likes"`
	Comments        int64 `gorm:"column:comments;not null;default:0" json:"comments"`
	Shares          int64 `gorm:"column:shares;not null;default:0" json:"shares"`
	Saves           int64 `gorm:"column:saves;not null;default:0" json:"saves"`
	Clicks          int64 `gorm:"column:clicks;not null;default:0" json:"clicks"`
	FollowersGained int64 `gorm:"column:followers_gained;not null;default:0" json:"followersGained"`

	EngagementRate float64 `gorm:"column:engagement_rate;not null;default:0" json:"engagementRate"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}

func (AnalyticsData) TableName() string { return "analytics_data" }

func (a *AnalyticsData) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Date = DateOf(a.Date)
	if a.EngagementRate == 0 {
		a.EngagementRate = a.ComputedEngagementRate()
	}
	return nil
}

// Interactions is the sum of the active engagement signals.
func (a *AnalyticsData) Interactions() int64 {
	return a.Likes + a.Comments + a.Shares + a.Saves
}

// ComputedEngagementRate is interactions over impressions, 0 when nothing was shown.
func (a *AnalyticsData) ComputedEngagementRate() float64 {
	if a.Impressions <= 0 {
		return 0
	}
	return float64(a.Interactions()) / float64(a.Impressions)
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
