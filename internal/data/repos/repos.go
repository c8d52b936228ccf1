package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/pulseboard-backend/internal/data/repos/analytics"
	"github.com/yungbote/pulseboard-backend/internal/data/repos/content"
	"github.com/yungbote/pulseboard-backend/internal/data/repos/social"
	"github.com/yungbote/pulseboard-backend/internal/data/repos/user"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type SocialAccountRepo = social.SocialAccountRepo
type SyncState = social.SyncState

type PostRepo = content.PostRepo
type PostFilter = content.PostFilter
type EngageActivityRepo = content.EngageActivityRepo

type AnalyticsDataRepo = analytics.AnalyticsDataRepo
type InsightRepo = analytics.InsightRepo
type InsightFilter = analytics.InsightFilter
type MonetizationRepo = analytics.MonetizationRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }

func NewSocialAccountRepo(db *gorm.DB, log *logger.Logger) SocialAccountRepo {
	return social.NewSocialAccountRepo(db, log)
}

func NewPostRepo(db *gorm.DB, log *logger.Logger) PostRepo { return content.NewPostRepo(db, log) }

func NewEngageActivityRepo(db *gorm.DB, log *logger.Logger) EngageActivityRepo {
	return content.NewEngageActivityRepo(db, log)
}

func NewAnalyticsDataRepo(db *gorm.DB, log *logger.Logger) AnalyticsDataRepo {
	return analytics.NewAnalyticsDataRepo(db, log)
}

func NewInsightRepo(db *gorm.DB, log *logger.Logger) InsightRepo { return analytics.NewInsightRepo(db, log) }

func NewMonetizationRepo(db *gorm.DB, log *logger.Logger) MonetizationRepo {
	return analytics.NewMonetizationRepo(db, log)
}
