package dashapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pulseboard-backend/internal/domain/engagement"
	"github.com/yungbote/pulseboard-backend/internal/validation"
)

var fastRetry = RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithToken("tok"), WithRetry(fastRetry))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": map[string]string{"message": "busy", "code": "unavailable"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"stats": map[string]any{"rangeDays": 30, "totalPosts": 4}})
	})

	stats, err := c.DashboardStats(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 30, stats.RangeDays)
	assert.Equal(t, int64(4), stats.TotalPosts)
}

func TestGetReturnsLastFailureAfterRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": map[string]string{"message": "upstream", "code": "bad_gateway"}})
	})

	_, err := c.Insights(context.Background(), true)
	require.Error(t, err)
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusBadGateway, re.Status)
	assert.Equal(t, "bad_gateway", re.Code)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPostIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": map[string]string{"message": "internal server error", "code": "internal"}})
	})

	_, err := c.RecordMonetization(context.Background(), validation.MonetizationInsert{})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestValidationErrorCarriesFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]any{
			"message": "invalid registration",
			"code":    "validation_failed",
			"fields":  []map[string]string{{"path": "email", "rule": "email", "message": "must be a valid email"}},
		}})
	})

	_, err := c.Register(context.Background(), validation.Registration{})
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.True(t, re.IsValidation())
	require.Len(t, re.Fields, 1)
	assert.Equal(t, "email", re.Fields[0].Path)
	assert.True(t, IsCode(err, "validation_failed"))
}

func TestLoginStoresToken(t *testing.T) {
	expires := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"email":"a@b.co","password":"pw"}`, string(raw))
		writeJSON(w, http.StatusOK, map[string]any{
			"accessToken": "fresh",
			"tokenType":   "Bearer",
			"expiresAt":   expires.Format(time.RFC3339),
			"user":        map[string]any{"id": uuid.New(), "email": "a@b.co"},
		})
	})

	sess, err := c.Login(context.Background(), validation.Credentials{Email: "a@b.co", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", c.Token())
	assert.True(t, sess.ExpiresAt.Equal(expires))
	assert.Equal(t, "a@b.co", sess.User.Email)
}

func TestPostsQueryEncoding(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, start.Format(time.RFC3339), q.Get("startDate"))
		assert.Equal(t, end.Format(time.RFC3339), q.Get("endDate"))
		assert.Equal(t, "tiktok", q.Get("platform"))
		assert.Empty(t, q.Get("status"))
		writeJSON(w, http.StatusOK, map[string]any{"posts": []map[string]any{
			{"id": uuid.New(), "platform": "tiktok", "content": "hi", "status": "scheduled", "scheduledAt": "2026-03-05T10:00:00Z"},
		}})
	})

	posts, err := c.Posts(context.Background(), PostQuery{Start: start, End: end, Platform: "tiktok"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.NotNil(t, posts[0].ScheduledAt)
	assert.Equal(t, 5, posts[0].ScheduledAt.Day())
}

func TestPostsAllPlatformIsOmitted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("platform"))
		writeJSON(w, http.StatusOK, map[string]any{"posts": []any{}})
	})
	_, err := c.Posts(context.Background(), PostQuery{Platform: "all"})
	require.NoError(t, err)
}

func TestCreatePostValidatesLocally(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusCreated)
	})

	_, err := c.CreatePost(context.Background(), validation.PostInsert{Platform: "myspace"})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, calls.Load())
}

// trainedModelJSON is a complete model response body with the given
// platforms.
func trainedModelJSON(platforms ...string) map[string]any {
	return map[string]any{"model": map[string]any{
		"modelId":        "m1",
		"trainedAt":      "2024-05-01T12:00:00Z",
		"lookbackPeriod": 90,
		"sampleSize":     12,
		"platforms":      platforms,
		"contentPatterns": map[string]any{
			"highEngagement": []map[string]any{{"kind": "contentType", "value": "reel", "postCount": 7}},
			"lowEngagement":  []map[string]any{{"kind": "contentType", "value": "text", "postCount": 5}},
		},
		"timingPatterns": map[string]any{
			"bestWindows":  []map[string]any{{"dayOfWeek": "tuesday", "startHour": 18, "endHour": 19, "postCount": 4}},
			"worstWindows": []map[string]any{{"dayOfWeek": "sunday", "startHour": 6, "endHour": 7, "postCount": 2}},
			"timezone":     "UTC",
		},
		"audiencePatterns":   map[string]any{"affinities": []map[string]any{{"platform": "instagram", "engagementShare": 1}}},
		"performanceFactors": []map[string]any{{"factor": "hashtagCount", "impact": 0.4}},
	}}
}

func TestTrainEngagementModelOutcomes(t *testing.T) {
	incomplete := map[string]any{"model": map[string]any{"modelId": "m1", "sampleSize": 12, "lookbackPeriod": 90}}
	cases := []struct {
		name   string
		status int
		body   any
		want   TrainKind
	}{
		{"success", http.StatusOK, trainedModelJSON("instagram"), TrainSuccess},
		{"empty", http.StatusNoContent, nil, TrainEmpty},
		{"null model", http.StatusOK, map[string]any{"model": nil}, TrainEmpty},
		{"incomplete model", http.StatusOK, incomplete, TrainFailure},
		{"conflict", http.StatusConflict, map[string]any{"error": map[string]string{"message": "busy", "code": "training_in_progress"}}, TrainFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				raw, _ := io.ReadAll(r.Body)
				assert.JSONEq(t, `{"lookbackPeriod":90}`, string(raw))
				if tc.body == nil {
					w.WriteHeader(tc.status)
					return
				}
				writeJSON(w, tc.status, tc.body)
			})
			res := c.TrainEngagementModel(context.Background(), engagement.Lookback90)
			assert.Equal(t, tc.want, res.Kind)
			switch tc.want {
			case TrainSuccess:
				require.NotNil(t, res.Model)
				assert.Equal(t, "m1", res.Model.ModelID)
				assert.Equal(t, 12, res.Model.SampleSize)
				assert.NoError(t, res.Model.Validate())
			case TrainEmpty:
				assert.Nil(t, res.Model)
				assert.NoError(t, res.Err)
			case TrainFailure:
				assert.Nil(t, res.Model)
				if tc.status == http.StatusConflict {
					assert.True(t, IsCode(res.Err, "training_in_progress"))
				} else {
					assert.ErrorIs(t, res.Err, engagement.ErrIncomplete)
				}
			}
		})
	}
}

func TestTrainEngagementModelPlatformsUniqueInResponseOrder(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{"distinct", []string{"instagram", "twitter", "tiktok"}, []string{"instagram", "twitter", "tiktok"}},
		{"repeated", []string{"instagram", "twitter", "instagram", "tiktok", "twitter"}, []string{"instagram", "twitter", "tiktok"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, trainedModelJSON(tc.in...))
			})
			res := c.TrainEngagementModel(context.Background(), engagement.Lookback90)
			require.Equal(t, TrainSuccess, res.Kind, "err: %v", res.Err)
			assert.Equal(t, tc.want, res.Model.Platforms)
		})
	}
}

func TestZeroTrainResultIsNotSuccess(t *testing.T) {
	var res TrainResult
	assert.NotEqual(t, TrainSuccess, res.Kind)
	assert.Equal(t, "failure", res.Kind.String())
}

func TestTrainRejectsUnknownLookback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})
	res := c.TrainEngagementModel(context.Background(), engagement.LookbackPeriod(45))
	assert.Equal(t, TrainFailure, res.Kind)
	assert.Error(t, res.Err)
}

func TestEngagementModelNoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	_, err := c.EngagementModel(context.Background())
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestEngagementModelNullIsNoModel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"model": nil})
	})
	_, err := c.EngagementModel(context.Background())
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestPostsQueryKeepsSubsecondEnd(t *testing.T) {
	end := time.Date(2024, 2, 29, 23, 59, 59, 999999999, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got, err := time.Parse(time.RFC3339Nano, r.URL.Query().Get("endDate"))
		assert.NoError(t, err)
		assert.True(t, got.Equal(end), "endDate=%s", r.URL.Query().Get("endDate"))
		writeJSON(w, http.StatusOK, map[string]any{"posts": []any{}})
	})
	_, err := c.Posts(context.Background(), PostQuery{End: end})
	require.NoError(t, err)
}

func TestNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]string{"message": "post not found", "code": "post_not_found"}})
	})
	_, err := c.Post(context.Background(), uuid.New())
	assert.True(t, IsNotFound(err))
}

func TestNonJSONErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway says no", http.StatusForbidden)
	})
	_, err := c.Me(context.Background())
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusForbidden, re.Status)
	assert.Equal(t, "gateway says no", re.Message)
}

func TestCancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"me": map[string]any{}})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Me(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
