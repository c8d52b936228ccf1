package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/pulseboard-backend/internal/data/db"
	"github.com/yungbote/pulseboard-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/domain/analytics"
	"github.com/yungbote/pulseboard-backend/internal/domain/social"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
)

func TestAnalyticsDataRepo(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewAnalyticsDataRepo(gdb, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "metrics@example.com")
	published := time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC)
	post := testutil.SeedPost(t, ctx, tx, owner.ID, social.PlatformInstagram, &published)

	day := func(d int) time.Time { return time.Date(2026, 2, d, 18, 30, 0, 0, time.UTC) }
	created, err := repo.Create(dbc, []*types.AnalyticsData{
		{PostID: post.ID, Date: day(1), Impressions: 1000, Likes: 80, Comments: 10, Shares: 5, Saves: 5},
		{PostID: post.ID, Date: day(2), Impressions: 500, Likes: 20},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created[0].EngagementRate != 0.1 {
		t.Fatalf("Create: expected computed rate 0.1, got %v", created[0].EngagementRate)
	}
	if !created[0].Date.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Create: date not truncated: %v", created[0].Date)
	}

	_, err = repo.Create(dbc, []*types.AnalyticsData{{PostID: post.ID, Date: day(2), Impressions: 1}})
	if !db.IsDuplicateKey(err) {
		t.Fatalf("Create(same day): expected duplicate key, got %v", err)
	}
}

func TestAnalyticsDataRepoQueries(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewAnalyticsDataRepo(gdb, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "queries@example.com")
	other := testutil.SeedUser(t, ctx, tx, "queries-other@example.com")
	at := time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC)
	mine := testutil.SeedPost(t, ctx, tx, owner.ID, social.PlatformInstagram, &at)
	theirs := testutil.SeedPost(t, ctx, tx, other.ID, social.PlatformInstagram, &at)

	if _, err := repo.Create(dbc, []*types.AnalyticsData{
		{PostID: mine.ID, Date: at, Impressions: 10},
		{PostID: mine.ID, Date: at.AddDate(0, 0, 5), Impressions: 20},
		{PostID: theirs.ID, Date: at, Impressions: 30},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	byPost, err := repo.ListByPost(dbc, mine.ID)
	if err != nil || len(byPost) != 2 {
		t.Fatalf("ListByPost: len=%d err=%v", len(byPost), err)
	}
	byPosts, err := repo.ListByPosts(dbc, []uuid.UUID{mine.ID, theirs.ID})
	if err != nil || len(byPosts) != 3 {
		t.Fatalf("ListByPosts: len=%d err=%v", len(byPosts), err)
	}
	since, err := repo.ListByUserSince(dbc, owner.ID, at.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListByUserSince: %v", err)
	}
	if len(since) != 1 || since[0].Impressions != 20 {
		t.Fatalf("ListByUserSince: unexpected %+v", since)
	}
}

func TestInsightRepo(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewInsightRepo(gdb, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "insights@example.com")
	other := testutil.SeedUser(t, ctx, tx, "insights-other@example.com")

	rows, err := repo.Create(dbc, []*types.Insight{
		{UserID: owner.ID, Type: analytics.InsightTiming, Title: "Post on Tuesdays", Priority: analytics.PriorityHigh},
		{UserID: owner.ID, Type: analytics.InsightContent, Title: "Reels outperform", Priority: analytics.PriorityMedium},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	unread, err := repo.CountUnread(dbc, owner.ID)
	if err != nil || unread != 2 {
		t.Fatalf("CountUnread: n=%d err=%v", unread, err)
	}

	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	if ok, err := repo.MarkRead(dbc, other.ID, rows[0].ID, now); err != nil || ok {
		t.Fatalf("MarkRead(other user): ok=%v err=%v", ok, err)
	}
	if ok, err := repo.MarkRead(dbc, owner.ID, rows[0].ID, now); err != nil || !ok {
		t.Fatalf("MarkRead: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.MarkRead(dbc, owner.ID, rows[0].ID, now.Add(time.Hour)); err != nil || !ok {
		t.Fatalf("MarkRead(again): ok=%v err=%v", ok, err)
	}
	got, err := repo.GetByID(dbc, owner.ID, rows[0].ID)
	if err != nil || got == nil || !got.IsRead || got.ReadAt == nil || !got.ReadAt.Equal(now) {
		t.Fatalf("MarkRead should keep first read time: %+v err=%v", got, err)
	}

	if ok, err := repo.MarkApplied(dbc, owner.ID, rows[1].ID, now); err != nil || !ok {
		t.Fatalf("MarkApplied: ok=%v err=%v", ok, err)
	}
	unreadOnly, err := repo.List(dbc, owner.ID, InsightFilter{UnreadOnly: true})
	if err != nil {
		t.Fatalf("List(unread): %v", err)
	}
	if len(unreadOnly) != 0 {
		t.Fatalf("List(unread): expected none, got %+v", unreadOnly)
	}
	all, err := repo.List(dbc, owner.ID, InsightFilter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("List: len=%d err=%v", len(all), err)
	}
}

func TestMonetizationRepo(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewMonetizationRepo(gdb, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "revenue@example.com")
	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if _, err := repo.Create(dbc, []*types.MonetizationRecord{
		{UserID: owner.ID, Source: analytics.SourceSponsorship, AmountCents: 50000, Currency: "USD", EarnedAt: jan},
		{UserID: owner.ID, Source: analytics.SourceAffiliate, AmountCents: 1234, Currency: "USD", EarnedAt: mar},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	recent, err := repo.ListByUserSince(dbc, owner.ID, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListByUserSince: %v", err)
	}
	if len(recent) != 1 || recent[0].Source != analytics.SourceAffiliate || recent[0].Status != analytics.RevenuePending {
		t.Fatalf("ListByUserSince: unexpected %+v", recent)
	}
	all, err := repo.ListByUserSince(dbc, owner.ID, time.Time{})
	if err != nil || len(all) != 2 {
		t.Fatalf("ListByUserSince(all): len=%d err=%v", len(all), err)
	}
}
