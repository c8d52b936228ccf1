package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/pulseboard-backend/internal/data/repos"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
)

type Repos struct {
	User           repos.UserRepo
	SocialAccount  repos.SocialAccountRepo
	Post           repos.PostRepo
	EngageActivity repos.EngageActivityRepo
	AnalyticsData  repos.AnalyticsDataRepo
	Insight        repos.InsightRepo
	Monetization   repos.MonetizationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:           repos.NewUserRepo(db, log),
		SocialAccount:  repos.NewSocialAccountRepo(db, log),
		Post:           repos.NewPostRepo(db, log),
		EngageActivity: repos.NewEngageActivityRepo(db, log),
		AnalyticsData:  repos.NewAnalyticsDataRepo(db, log),
		Insight:        repos.NewInsightRepo(db, log),
		Monetization:   repos.NewMonetizationRepo(db, log),
	}
}
