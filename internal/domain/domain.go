package domain

import (
	"github.com/yungbote/pulseboard-backend/internal/domain/analytics"
	"github.com/yungbote/pulseboard-backend/internal/domain/content"
	"github.com/yungbote/pulseboard-backend/internal/domain/engagement"
	"github.com/yungbote/pulseboard-backend/internal/domain/social"
	"github.com/yungbote/pulseboard-backend/internal/domain/user"
)

type User = user.User
type Preferences = user.Preferences

type SocialAccount = social.SocialAccount
type Platform = social.Platform

type Post = content.Post
type PostStatus = content.PostStatus
type ContentType = content.ContentType
type EngageActivity = content.EngageActivity

type AnalyticsData = analytics.AnalyticsData
type Insight = analytics.Insight
type MonetizationRecord = analytics.MonetizationRecord

type EngagementModel = engagement.Model
type LookbackPeriod = engagement.LookbackPeriod

// Tables lists every persisted entity in migration order.
func Tables() []any {
	return []any{
		&user.User{},
		&social.SocialAccount{},
		&content.Post{},
		&content.EngageActivity{},
		&analytics.AnalyticsData{},
		&analytics.Insight{},
		&analytics.MonetizationRecord{},
	}
}
