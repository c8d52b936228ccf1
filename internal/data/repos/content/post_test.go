package content

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/pulseboard-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/domain/content"
	"github.com/yungbote/pulseboard-backend/internal/domain/social"
	"github.com/yungbote/pulseboard-backend/internal/platform/dbctx"
)

func TestPostRepoListFilter(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewPostRepo(gdb, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "posts@example.com")
	stranger := testutil.SeedUser(t, ctx, tx, "stranger@example.com")

	mar1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mar15 := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	mar31 := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	apr2 := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

	scheduled := &types.Post{
		UserID:      owner.ID,
		Platform:    social.PlatformInstagram,
		Content:     "scheduled",
		ContentType: content.ContentTypeImage,
		Status:      content.PostStatusScheduled,
		ScheduledAt: testutil.PtrTime(mar15),
	}
	if _, err := repo.Create(dbc, []*types.Post{scheduled}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	published := testutil.SeedPost(t, ctx, tx, owner.ID, social.PlatformTwitter, &mar31)
	testutil.SeedPost(t, ctx, tx, owner.ID, social.PlatformTwitter, &apr2)
	testutil.SeedPost(t, ctx, tx, owner.ID, social.PlatformTwitter, nil)
	testutil.SeedPost(t, ctx, tx, stranger.ID, social.PlatformInstagram, &mar15)

	march, err := repo.List(dbc, owner.ID, PostFilter{Start: &mar1, End: &mar31})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(march) != 2 || march[0].ID != scheduled.ID || march[1].ID != published.ID {
		t.Fatalf("List(march): unexpected result: %+v", march)
	}

	onlyIG, err := repo.List(dbc, owner.ID, PostFilter{Start: &mar1, End: &mar31, Platform: social.PlatformInstagram})
	if err != nil {
		t.Fatalf("List(platform): %v", err)
	}
	if len(onlyIG) != 1 || onlyIG[0].ID != scheduled.ID {
		t.Fatalf("List(platform): unexpected result: %+v", onlyIG)
	}

	everything, err := repo.List(dbc, owner.ID, PostFilter{})
	if err != nil {
		t.Fatalf("List(all): %v", err)
	}
	if len(everything) != 4 {
		t.Fatalf("List(all): expected 4 posts, got %d", len(everything))
	}

	counts, err := repo.CountByStatus(dbc, owner.ID)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[content.PostStatusPublished] != 2 || counts[content.PostStatusScheduled] != 1 || counts[content.PostStatusDraft] != 1 {
		t.Fatalf("CountByStatus: unexpected %v", counts)
	}

	if got, err := repo.GetByID(dbc, stranger.ID, scheduled.ID); err != nil || got != nil {
		t.Fatalf("GetByID(stranger): got=%+v err=%v", got, err)
	}
}

func TestPostRepoScheduledAndScores(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewPostRepo(gdb, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "scores@example.com")
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	var posts []*types.Post
	for i := 3; i >= 1; i-- {
		at := now.Add(time.Duration(i) * time.Hour)
		posts = append(posts, &types.Post{
			UserID:      owner.ID,
			Platform:    social.PlatformTikTok,
			Content:     "clip",
			ContentType: content.ContentTypeVideo,
			Status:      content.PostStatusScheduled,
			ScheduledAt: &at,
		})
	}
	if _, err := repo.Create(dbc, posts); err != nil {
		t.Fatalf("Create: %v", err)
	}

	upcoming, err := repo.ListScheduled(dbc, owner.ID, now, 2)
	if err != nil {
		t.Fatalf("ListScheduled: %v", err)
	}
	if len(upcoming) != 2 || !upcoming[0].ScheduledAt.Before(*upcoming[1].ScheduledAt) {
		t.Fatalf("ListScheduled: expected two posts in ascending order: %+v", upcoming)
	}

	score, risk, match := 81.0, 4.0, 67.5
	target := upcoming[0]
	target.EngagementScore, target.ShadowbanRisk, target.AudienceMatch = &score, &risk, &match
	target.AIAnalyzedAt = &now
	target.Content = "must not be written"
	if err := repo.UpdateAIScores(dbc, target); err != nil {
		t.Fatalf("UpdateAIScores: %v", err)
	}
	got, err := repo.GetByID(dbc, owner.ID, target.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}
	if got.EngagementScore == nil || *got.EngagementScore != score || got.Content != "clip" {
		t.Fatalf("UpdateAIScores: unexpected row %+v", got)
	}

	if err := repo.UpdateAIScores(dbc, &types.Post{ID: uuid.New(), UserID: owner.ID}); err == nil {
		t.Fatal("UpdateAIScores(missing): expected error")
	}
}

func TestEngageActivityRepo(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewEngageActivityRepo(gdb, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "engage@example.com")
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	rows := []*types.EngageActivity{
		{UserID: owner.ID, ActionType: content.EngageLike, TargetHandle: "a", PerformedAt: base},
		{UserID: owner.ID, ActionType: content.EngageFollow, TargetHandle: "b", PerformedAt: base.Add(time.Hour)},
		{UserID: owner.ID, ActionType: content.EngageComment, TargetHandle: "c", Content: "nice", Status: content.EngageStatusSkipped, PerformedAt: base.Add(2 * time.Hour)},
	}
	if _, err := repo.Create(dbc, rows); err != nil {
		t.Fatalf("Create: %v", err)
	}

	recent, err := repo.ListRecent(dbc, owner.ID, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 2 || recent[0].TargetHandle != "c" || recent[1].TargetHandle != "b" {
		t.Fatalf("ListRecent: expected newest first: %+v", recent)
	}

	n, err := repo.CountSince(dbc, owner.ID, base)
	if err != nil {
		t.Fatalf("CountSince: %v", err)
	}
	if n != 2 {
		t.Fatalf("CountSince: expected 2 performed actions, got %d", n)
	}
}
