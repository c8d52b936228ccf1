package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/pulseboard-backend/internal/data/repos"
	"github.com/yungbote/pulseboard-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/domain/analytics"
	"github.com/yungbote/pulseboard-backend/internal/domain/content"
	"github.com/yungbote/pulseboard-backend/internal/domain/social"
	"github.com/yungbote/pulseboard-backend/internal/platform/ctxutil"
	"github.com/yungbote/pulseboard-backend/internal/realtime"
)

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	e.msgs = append(e.msgs, msg)
	e.mu.Unlock()
}

func (e *recordingEmitter) events() []realtime.SSEEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]realtime.SSEEvent, 0, len(e.msgs))
	for _, m := range e.msgs {
		out = append(out, m.Event)
	}
	return out
}

func (e *recordingEmitter) has(ev realtime.SSEEvent) bool {
	for _, got := range e.events() {
		if got == ev {
			return true
		}
	}
	return false
}

type fixture struct {
	db   *gorm.DB
	emit *recordingEmitter

	users        repos.UserRepo
	accounts     repos.SocialAccountRepo
	posts        repos.PostRepo
	activities   repos.EngageActivityRepo
	analytics    repos.AnalyticsDataRepo
	insights     repos.InsightRepo
	monetization repos.MonetizationRepo
	models       ModelStore
	lock         TrainingLock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &fixture{
		db:           db,
		emit:         &recordingEmitter{},
		users:        repos.NewUserRepo(db, log),
		accounts:     repos.NewSocialAccountRepo(db, log),
		posts:        repos.NewPostRepo(db, log),
		activities:   repos.NewEngageActivityRepo(db, log),
		analytics:    repos.NewAnalyticsDataRepo(db, log),
		insights:     repos.NewInsightRepo(db, log),
		monetization: repos.NewMonetizationRepo(db, log),
		models:       NewMemoryModelStore(),
		lock:         NewMemoryTrainingLock(),
	}
}

func (f *fixture) userService(t *testing.T) UserService {
	return NewUserService(f.db, testutil.Logger(t), f.users, f.emit)
}

func (f *fixture) modelService(t *testing.T) EngagementModelService {
	return NewEngagementModelService(f.db, testutil.Logger(t), f.posts, f.analytics, f.insights, f.models, f.lock, f.emit, nil, EngagementModelConfig{})
}

func (f *fixture) postService(t *testing.T, models EngagementModelService) PostService {
	return NewPostService(f.db, testutil.Logger(t), f.posts, f.accounts, f.analytics, models, f.emit)
}

// login seeds a user and returns a context authenticated as them.
func (f *fixture) login(t *testing.T) (context.Context, *types.User) {
	t.Helper()
	u := testutil.SeedUser(t, context.Background(), f.db, uuid.NewString()+"@example.com")
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: u.ID, Timezone: "UTC"})
	return ctx, u
}

// ctxFor returns a context authenticated as u.
func ctxFor(f *fixture, u *types.User) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: u.ID, Timezone: "UTC"})
}

func (f *fixture) setPreferences(t *testing.T, userID uuid.UUID, doc string) {
	t.Helper()
	if err := f.db.Model(&types.User{}).Where("id = ?", userID).Update("preferences", datatypes.JSON(doc)).Error; err != nil {
		t.Fatalf("set preferences: %v", err)
	}
}

// seedPublished creates a published post with one analytics row.
func (f *fixture) seedPublished(t *testing.T, userID uuid.UUID, platform social.Platform, ct content.ContentType, tags []string, at time.Time, impressions, likes int64) *types.Post {
	t.Helper()
	at = at.UTC()
	p := &types.Post{
		UserID:      userID,
		Platform:    platform,
		Content:     "caption for " + string(ct),
		ContentType: ct,
		Hashtags:    datatypes.JSONSlice[string](tags),
		Status:      content.PostStatusPublished,
		PublishedAt: &at,
	}
	if err := f.db.Create(p).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	row := &analytics.AnalyticsData{PostID: p.ID, Date: at, Impressions: impressions, Reach: impressions / 2, Likes: likes, FollowersGained: 2}
	if err := f.db.Create(row).Error; err != nil {
		t.Fatalf("seed analytics: %v", err)
	}
	return p
}

// seedHistory gives userID enough varied history to train on.
func (f *fixture) seedHistory(t *testing.T, userID uuid.UUID) {
	t.Helper()
	base := time.Now().UTC().Truncate(time.Hour).AddDate(0, 0, -10)
	f.seedPublished(t, userID, social.PlatformInstagram, content.ContentTypeImage, []string{"travel"}, base.Add(1*time.Hour), 1000, 200)
	f.seedPublished(t, userID, social.PlatformInstagram, content.ContentTypeImage, []string{"travel", "sun"}, base.Add(26*time.Hour), 1000, 180)
	f.seedPublished(t, userID, social.PlatformTikTok, content.ContentTypeVideo, []string{"dance"}, base.Add(51*time.Hour), 1000, 100)
	f.seedPublished(t, userID, social.PlatformTikTok, content.ContentTypeVideo, []string{"dance"}, base.Add(76*time.Hour), 1000, 120)
	f.seedPublished(t, userID, social.PlatformTwitter, content.ContentTypeText, nil, base.Add(101*time.Hour), 1000, 20)
	f.seedPublished(t, userID, social.PlatformTwitter, content.ContentTypeText, nil, base.Add(126*time.Hour), 1000, 30)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}
