package dashapi

import (
	"time"

	"github.com/yungbote/pulseboard-backend/internal/domain"
)

type Session struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        *domain.User `json:"user"`
}

// PostQuery filters GET /api/posts. Zero values are omitted.
type PostQuery struct {
	Start    time.Time
	End      time.Time
	Platform string
	Status   string
	Limit    int
}

type DashboardStats struct {
	RangeDays int       `json:"rangeDays"`
	Since     time.Time `json:"since"`

	TotalPosts        int64            `json:"totalPosts"`
	PostsByStatus     map[string]int64 `json:"postsByStatus"`
	UpcomingScheduled int              `json:"upcomingScheduled"`

	Impressions     int64   `json:"impressions"`
	Reach           int64   `json:"reach"`
	Interactions    int64   `json:"interactions"`
	Clicks          int64   `json:"clicks"`
	FollowersGained int64   `json:"followersGained"`
	EngagementRate  float64 `json:"engagementRate"`

	ConnectedAccounts int   `json:"connectedAccounts"`
	TotalFollowers    int64 `json:"totalFollowers"`
	AvgHealthScore    int   `json:"avgHealthScore"`

	UnreadInsights     int64 `json:"unreadInsights"`
	EngageActionsToday int64 `json:"engageActionsToday"`
}

type MonetizationSummary struct {
	RangeDays int       `json:"rangeDays"`
	Since     time.Time `json:"since"`

	Currency         string           `json:"currency"`
	TotalCents       int64            `json:"totalCents"`
	PaidCents        int64            `json:"paidCents"`
	PendingCents     int64            `json:"pendingCents"`
	BySource         map[string]int64 `json:"bySource"`
	ByPlatform       map[string]int64 `json:"byPlatform"`
	TotalsByCurrency map[string]int64 `json:"totalsByCurrency"`
	Records          int              `json:"records"`
}

type PlatformROI struct {
	Platform        string  `json:"platform"`
	Posts           int     `json:"posts"`
	Impressions     int64   `json:"impressions"`
	Interactions    int64   `json:"interactions"`
	EngagementRate  float64 `json:"engagementRate"`
	RevenueCents    int64   `json:"revenueCents"`
	RevenuePerMille float64 `json:"revenuePerMille"`
	Currency        string  `json:"currency"`
}

// TrainKind's zero value is TrainFailure so an unset result never reads as
// a trained model.
type TrainKind int

const (
	TrainFailure TrainKind = iota
	TrainEmpty
	TrainSuccess
)

func (k TrainKind) String() string {
	switch k {
	case TrainSuccess:
		return "success"
	case TrainEmpty:
		return "empty"
	default:
		return "failure"
	}
}

// TrainResult is the outcome of one training request. Model is set only for
// TrainSuccess and Err only for TrainFailure.
type TrainResult struct {
	Kind  TrainKind
	Model *domain.EngagementModel
	Err   error
}
