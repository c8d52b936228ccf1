package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/pulseboard-backend/internal/data/repos"
	"github.com/yungbote/pulseboard-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/domain/content"
	"github.com/yungbote/pulseboard-backend/internal/domain/social"
	httpH "github.com/yungbote/pulseboard-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pulseboard-backend/internal/http/middleware"
	"github.com/yungbote/pulseboard-backend/internal/observability"
	"github.com/yungbote/pulseboard-backend/internal/realtime"
	"github.com/yungbote/pulseboard-backend/internal/services"
)

type testAPI struct {
	engine *gin.Engine
	db     *gorm.DB
	hub    *realtime.SSEHub
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	metrics := observability.New()
	hub := realtime.NewSSEHub(log)
	emit := &services.HubEmitter{Hub: hub}

	users := repos.NewUserRepo(db, log)
	accounts := repos.NewSocialAccountRepo(db, log)
	posts := repos.NewPostRepo(db, log)
	activities := repos.NewEngageActivityRepo(db, log)
	analytics := repos.NewAnalyticsDataRepo(db, log)
	insights := repos.NewInsightRepo(db, log)
	monetization := repos.NewMonetizationRepo(db, log)

	auth := services.NewAuthService(db, log, users, "test-secret", time.Hour)
	models := services.NewEngagementModelService(db, log, posts, analytics, insights, nil, nil, emit, metrics, services.EngagementModelConfig{})

	engine := NewRouter(RouterConfig{
		Log:                    log,
		Metrics:                metrics,
		AuthHandler:            httpH.NewAuthHandler(auth),
		AuthMiddleware:         httpMW.NewAuthMiddleware(log, auth),
		UserHandler:            httpH.NewUserHandler(services.NewUserService(db, log, users, emit)),
		RealtimeHandler:        httpH.NewRealtimeHandler(log, hub, metrics),
		SocialAccountHandler:   httpH.NewSocialAccountHandler(services.NewSocialAccountService(db, log, accounts, posts, analytics, emit)),
		PostHandler:            httpH.NewPostHandler(services.NewPostService(db, log, posts, accounts, analytics, models, emit), services.NewAnalyticsService(db, log, posts, analytics)),
		DashboardHandler:       httpH.NewDashboardHandler(services.NewDashboardService(log, users, posts, accounts, analytics, insights, activities, monetization), services.NewMonetizationService(db, log, posts, monetization)),
		EngageHandler:          httpH.NewEngageHandler(services.NewEngageService(db, log, users, posts, accounts, activities)),
		InsightHandler:         httpH.NewInsightHandler(services.NewInsightService(log, insights)),
		EngagementModelHandler: httpH.NewEngagementModelHandler(models),
		HealthHandler:          httpH.NewHealthHandler(nil),
	})
	return &testAPI{engine: engine, db: db, hub: hub}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			if err := json.NewEncoder(&buf).Encode(b); err != nil {
				t.Fatalf("encode body: %v", err)
			}
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

// register creates an account and returns its token and user id.
func (a *testAPI) register(t *testing.T) (string, uuid.UUID) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/register", "", map[string]any{
		"email":     uuid.NewString() + "@example.com",
		"password":  "correct horse battery",
		"firstName": "Ada",
		"lastName":  "Lovelace",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	s := decodeBody[services.Session](t, rec)
	return s.AccessToken, s.User.ID
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)
	if rec := api.do(t, http.MethodGet, "/healthcheck", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthcheck: %d", rec.Code)
	}
	api.do(t, http.MethodGet, "/api/me", "", nil)
	rec := api.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Fatalf("metrics: %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)
	for _, path := range []string{"/api/me", "/api/posts", "/api/ai/engagement-model", "/api/dashboard/stats"} {
		if rec := api.do(t, http.MethodGet, path, "", nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s without token: %d", path, rec.Code)
		}
		if rec := api.do(t, http.MethodGet, path, "not-a-jwt", nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s with bad token: %d", path, rec.Code)
		}
	}
}

func TestTraceHeadersAreEchoed(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	api.engine.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-Id") != "req-123" || rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("trace headers: %v", rec.Header())
	}
}

func TestRegisterLoginAndMe(t *testing.T) {
	api := newTestAPI(t)
	email := uuid.NewString() + "@example.com"
	rec := api.do(t, http.MethodPost, "/api/register", "", map[string]any{
		"email": email, "password": "short", "firstName": "A", "lastName": "B",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("weak password accepted: %d", rec.Code)
	}
	env := decodeBody[struct {
		Error struct {
			Code   string `json:"code"`
			Fields []struct {
				Path string `json:"path"`
			} `json:"fields"`
		} `json:"error"`
	}](t, rec)
	if env.Error.Code != "validation_failed" || len(env.Error.Fields) != 1 || env.Error.Fields[0].Path != "password" {
		t.Fatalf("unexpected error envelope: %+v", env)
	}

	rec = api.do(t, http.MethodPost, "/api/register", "", map[string]any{
		"email": email, "password": "long enough pw", "firstName": "A", "lastName": "B",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	rec = api.do(t, http.MethodPost, "/api/login", "", map[string]any{"email": strings.ToUpper(email), "password": "long enough pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	session := decodeBody[services.Session](t, rec)

	rec = api.do(t, http.MethodGet, "/api/me", session.AccessToken, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), email) {
		t.Fatalf("me: %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatal("password hash leaked")
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register(t)

	rec := api.do(t, http.MethodPatch, "/api/me/preferences", token, `{"dashboard":{"defaultDateRange":7}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", rec.Code, rec.Body.String())
	}
	rec = api.do(t, http.MethodPatch, "/api/me/preferences", token, `{"dashboard":{"defaultDateRange":45}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid range accepted: %d", rec.Code)
	}
	rec = api.do(t, http.MethodGet, "/api/dashboard/stats", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: %d %s", rec.Code, rec.Body.String())
	}
	stats := decodeBody[struct {
		Stats services.DashboardStats `json:"stats"`
	}](t, rec)
	if stats.Stats.RangeDays != 7 {
		t.Fatalf("stats should use the saved default range, got %d", stats.Stats.RangeDays)
	}
}

func TestPostsAndTraining(t *testing.T) {
	api := newTestAPI(t)
	token, userID := api.register(t)

	rec := api.do(t, http.MethodPost, "/api/ai/train-engagement-model", token, `{"lookbackPeriod":45}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad lookback: %d", rec.Code)
	}
	rec = api.do(t, http.MethodPost, "/api/ai/train-engagement-model", token, `{"lookbackPeriod":30}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("train without history: %d %s", rec.Code, rec.Body.String())
	}
	if rec := api.do(t, http.MethodGet, "/api/ai/engagement-model", token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("model before training: %d", rec.Code)
	}

	base := time.Now().UTC().AddDate(0, 0, -7)
	for i, platform := range []string{"instagram", "instagram", "tiktok", "tiktok"} {
		at := base.Add(time.Duration(i*25) * time.Hour)
		p := &types.Post{
			UserID:      userID,
			Platform:    social.Platform(platform),
			Content:     strings.Repeat("caption ", i+1),
			ContentType: content.ContentTypeImage,
			Hashtags:    datatypes.JSONSlice[string](make([]string, i)),
			Status:      content.PostStatusPublished,
			PublishedAt: &at,
		}
		for j := range p.Hashtags {
			p.Hashtags[j] = fmt.Sprintf("tag%d", j)
		}
		if err := api.db.Create(p).Error; err != nil {
			t.Fatalf("seed post: %v", err)
		}
		rec := api.do(t, http.MethodPost, "/api/analytics", token, map[string]any{
			"postId": p.ID, "date": at.Format(time.DateOnly), "impressions": 1000, "likes": 50 * (i + 1),
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("record analytics: %d %s", rec.Code, rec.Body.String())
		}
	}

	rec = api.do(t, http.MethodPost, "/api/ai/train-engagement-model", token, `{"lookbackPeriod":30}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("train: %d %s", rec.Code, rec.Body.String())
	}
	trained := decodeBody[struct {
		Model struct {
			ModelID    string `json:"modelId"`
			SampleSize int    `json:"sampleSize"`
		} `json:"model"`
	}](t, rec)
	if trained.Model.ModelID == "" || trained.Model.SampleSize != 4 {
		t.Fatalf("unexpected model: %+v", trained.Model)
	}

	at := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	rec = api.do(t, http.MethodPost, "/api/posts", token, `{"platform":"tiktok","content":"tomorrow","status":"scheduled","scheduledAt":"`+at+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post: %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"engagementScore"`) {
		t.Fatalf("scheduled post not scored: %s", rec.Body.String())
	}

	start := time.Now().UTC().AddDate(0, 0, -8).Format(time.DateOnly)
	end := time.Now().UTC().AddDate(0, 0, 2).Format(time.DateOnly)
	rec = api.do(t, http.MethodGet, "/api/posts?startDate="+start+"&endDate="+end+"&platform=tiktok", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}
	listed := decodeBody[struct {
		Posts []json.RawMessage `json:"posts"`
	}](t, rec)
	if len(listed.Posts) != 3 {
		t.Fatalf("expected 3 tiktok posts, got %d", len(listed.Posts))
	}

	rec = api.do(t, http.MethodGet, "/api/posts?startDate=yesterday", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date accepted: %d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/api/posts/not-a-uuid", token, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: %d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/api/posts/"+uuid.NewString(), token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing post: %d", rec.Code)
	}
}

func TestSSEStreamDeliversUserEvents(t *testing.T) {
	api := newTestAPI(t)
	token, userID := api.register(t)
	srv := httptest.NewServer(api.engine)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/sse/stream?token="+token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stream status: %d", resp.StatusCode)
	}

	channel := realtime.UserChannel(userID)
	for api.hub.Subscribers(channel) == 0 {
		select {
		case <-ctx.Done():
			t.Fatal("client never subscribed")
		case <-time.After(10 * time.Millisecond):
		}
	}
	api.hub.Broadcast(realtime.SSEMessage{Channel: channel, Event: realtime.SSEEventInsightCreated, Data: map[string]any{"count": 2}})

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		if sc.Text() == "event: "+string(realtime.SSEEventInsightCreated) {
			return
		}
	}
	t.Fatalf("event not received: %v", sc.Err())
}
