package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/pulseboard-backend/internal/data/repos"
	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/domain/analytics"
	"github.com/yungbote/pulseboard-backend/internal/domain/content"
	"github.com/yungbote/pulseboard-backend/internal/domain/user"
	"github.com/yungbote/pulseboard-backend/internal/platform/apierr"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
)

type DashboardStats struct {
	RangeDays int       `json:"rangeDays"`
	Since     time.Time `json:"since"`

	TotalPosts        int64                        `json:"totalPosts"`
	PostsByStatus     map[content.PostStatus]int64 `json:"postsByStatus"`
	UpcomingScheduled int                          `json:"upcomingScheduled"`

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
	// Currency is the preferred currency; the breakdowns below only count
	// records in it. Other currencies appear in TotalsByCurrency.
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
	Platform       string  `json:"platform"`
	Posts          int     `json:"posts"`
	Impressions    int64   `json:"impressions"`
	Interactions   int64   `json:"interactions"`
	EngagementRate float64 `json:"engagementRate"`
	RevenueCents   int64   `json:"revenueCents"`
	// RevenuePerMille is revenue per thousand impressions, in cents.
	RevenuePerMille float64 `json:"revenuePerMille"`
	Currency        string  `json:"currency"`
}

type DashboardService interface {
	// A zero rangeDays uses the dashboard.defaultDateRange preference.
	Stats(ctx context.Context, rangeDays int) (*DashboardStats, error)
	Monetization(ctx context.Context, rangeDays int) (*MonetizationSummary, error)
	PlatformROI(ctx context.Context, rangeDays int) ([]PlatformROI, error)
}

type dashboardService struct {
	log              *logger.Logger
	userRepo         repos.UserRepo
	postRepo         repos.PostRepo
	accountRepo      repos.SocialAccountRepo
	analyticsRepo    repos.AnalyticsDataRepo
	insightRepo      repos.InsightRepo
	activityRepo     repos.EngageActivityRepo
	monetizationRepo repos.MonetizationRepo
	now              func() time.Time
}

func NewDashboardService(
	log *logger.Logger,
	userRepo repos.UserRepo,
	postRepo repos.PostRepo,
	accountRepo repos.SocialAccountRepo,
	analyticsRepo repos.AnalyticsDataRepo,
	insightRepo repos.InsightRepo,
	activityRepo repos.EngageActivityRepo,
	monetizationRepo repos.MonetizationRepo,
) DashboardService {
	return &dashboardService{
		log:              log.With("service", "DashboardService"),
		userRepo:         userRepo,
		postRepo:         postRepo,
		accountRepo:      accountRepo,
		analyticsRepo:    analyticsRepo,
		insightRepo:      insightRepo,
		activityRepo:     activityRepo,
		monetizationRepo: monetizationRepo,
		now:              time.Now,
	}
}

var validRanges = map[int]bool{7: true, 30: true, 90: true}

// window resolves the range and the caller's preferences.
func (s *dashboardService) window(ctx context.Context, rangeDays int) (uuid.UUID, user.Preferences, int, time.Time, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return uuid.Nil, user.Preferences{}, 0, time.Time{}, err
	}
	prefs, err := PreferencesFor(dbctx.New(ctx), s.userRepo, userID)
	if err != nil {
		return uuid.Nil, user.Preferences{}, 0, time.Time{}, err
	}
	if rangeDays == 0 {
		rangeDays = prefs.Dashboard.DefaultDateRange
	}
	if !validRanges[rangeDays] {
		return uuid.Nil, user.Preferences{}, 0, time.Time{}, apierr.BadRequest("invalid_range", fmt.Errorf("range must be 7, 30 or 90 days, got %d", rangeDays))
	}
	since := s.now().UTC().AddDate(0, 0, -rangeDays)
	return userID, prefs, rangeDays, since, nil
}

func (s *dashboardService) Stats(ctx context.Context, rangeDays int) (*DashboardStats, error) {
	userID, _, days, since, err := s.window(ctx, rangeDays)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	out := &DashboardStats{RangeDays: days, Since: since}

	var (
		byStatus map[content.PostStatus]int64
		upcoming []*types.Post
		rows     []*types.AnalyticsData
		accounts []*types.SocialAccount
		unread   int64
		today    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.New(gctx)
	g.Go(func() (err error) {
		byStatus, err = s.postRepo.CountByStatus(dbc, userID)
		return err
	})
	g.Go(func() (err error) {
		upcoming, err = s.postRepo.ListScheduled(dbc, userID, now, 0)
		return err
	})
	g.Go(func() (err error) {
		rows, err = s.analyticsRepo.ListByUserSince(dbc, userID, since)
		return err
	})
	g.Go(func() (err error) {
		accounts, err = s.accountRepo.ListByUser(dbc, userID, false)
		return err
	})
	g.Go(func() (err error) {
		unread, err = s.insightRepo.CountUnread(dbc, userID)
		return err
	})
	g.Go(func() (err error) {
		local := now.In(userLocation(ctx))
		dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
		today, err = s.activityRepo.CountSince(dbc, userID, dayStart)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard stats: %w", err)
	}

	out.PostsByStatus = byStatus
	for _, n := range byStatus {
		out.TotalPosts += n
	}
	out.UpcomingScheduled = len(upcoming)
	for _, r := range rows {
		out.Impressions += r.Impressions
		out.Reach += r.Reach
		out.Interactions += r.Interactions()
		out.Clicks += r.Clicks
		out.FollowersGained += r.FollowersGained
	}
	out.EngagementRate = rate(out.Interactions, out.Impressions)
	out.ConnectedAccounts = len(accounts)
	health := 0
	for _, a := range accounts {
		out.TotalFollowers += a.FollowerCount
		health += a.HealthScore
	}
	if len(accounts) > 0 {
		out.AvgHealthScore = health / len(accounts)
	}
	out.UnreadInsights = unread
	out.EngageActionsToday = today
	return out, nil
}

func (s *dashboardService) Monetization(ctx context.Context, rangeDays int) (*MonetizationSummary, error) {
	userID, prefs, days, since, err := s.window(ctx, rangeDays)
	if err != nil {
		return nil, err
	}
	recs, err := s.monetizationRepo.ListByUserSince(dbctx.New(ctx), userID, since)
	if err != nil {
		return nil, err
	}
	cur := prefs.Monetization.Currency
	out := &MonetizationSummary{
		RangeDays:        days,
		Since:            since,
		Currency:         cur,
		BySource:         map[string]int64{},
		ByPlatform:       map[string]int64{},
		TotalsByCurrency: map[string]int64{},
	}
	for _, r := range recs {
		if r.Status == analytics.RevenueCancelled {
			continue
		}
		out.Records++
		out.TotalsByCurrency[r.Currency] += r.AmountCents
		if r.Currency != cur {
			continue
		}
		out.TotalCents += r.AmountCents
		switch r.Status {
		case analytics.RevenuePaid:
			out.PaidCents += r.AmountCents
		case analytics.RevenuePending:
			out.PendingCents += r.AmountCents
		}
		out.BySource[string(r.Source)] += r.AmountCents
		if r.Platform != "" {
			out.ByPlatform[r.Platform] += r.AmountCents
		}
	}
	return out, nil
}

func (s *dashboardService) PlatformROI(ctx context.Context, rangeDays int) ([]PlatformROI, error) {
	userID, prefs, _, since, err := s.window(ctx, rangeDays)
	if err != nil {
		return nil, err
	}
	var (
		posts []*types.Post
		rows  []*types.AnalyticsData
		recs  []*types.MonetizationRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.New(gctx)
	g.Go(func() (err error) {
		posts, err = s.postRepo.ListPublishedSince(dbc, userID, since)
		return err
	})
	g.Go(func() (err error) {
		rows, err = s.analyticsRepo.ListByUserSince(dbc, userID, since)
		return err
	})
	g.Go(func() (err error) {
		recs, err = s.monetizationRepo.ListByUserSince(dbc, userID, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load platform roi: %w", err)
	}

	// Analytics rows may belong to posts published before the window.
	platformOf := make(map[uuid.UUID]string, len(posts))
	for _, p := range posts {
		platformOf[p.ID] = string(p.Platform)
	}
	var missing []uuid.UUID
	for _, r := range rows {
		if _, ok := platformOf[r.PostID]; !ok {
			missing = append(missing, r.PostID)
			platformOf[r.PostID] = ""
		}
	}
	if len(missing) > 0 {
		older, err := s.postRepo.GetByIDs(dbctx.New(ctx), userID, missing)
		if err != nil {
			return nil, err
		}
		for _, p := range older {
			platformOf[p.ID] = string(p.Platform)
		}
	}

	cur := prefs.Monetization.Currency
	byPlatform := map[string]*PlatformROI{}
	get := func(platform string) *PlatformROI {
		r, ok := byPlatform[platform]
		if !ok {
			r = &PlatformROI{Platform: platform, Currency: cur}
			byPlatform[platform] = r
		}
		return r
	}
	for _, p := range posts {
		get(string(p.Platform)).Posts++
	}
	for _, row := range rows {
		platform := platformOf[row.PostID]
		if platform == "" {
			continue
		}
		r := get(platform)
		r.Impressions += row.Impressions
		r.Interactions += row.Interactions()
	}
	for _, rec := range recs {
		if rec.Platform == "" || rec.Currency != cur || rec.Status == analytics.RevenueCancelled {
			continue
		}
		get(rec.Platform).RevenueCents += rec.AmountCents
	}

	out := make([]PlatformROI, 0, len(byPlatform))
	for _, r := range byPlatform {
		r.EngagementRate = rate(r.Interactions, r.Impressions)
		if r.Impressions > 0 {
			r.RevenuePerMille = float64(r.RevenueCents) * 1000 / float64(r.Impressions)
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RevenueCents != out[j].RevenueCents {
			return out[i].RevenueCents > out[j].RevenueCents
		}
		return out[i].Platform < out[j].Platform
	})
	return out, nil
}

func rate(interactions, impressions int64) float64 {
	if impressions <= 0 {
		return 0
	}
	return float64(interactions) / float64(impressions)
}
