package dashapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/google/uuid"

	"github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/validation"
)

// Client talks to the pulseboard REST API. GET requests are retried with
// backoff; writes are sent exactly once.
type Client struct {
	baseURL  string
	token    string
	client   *http.Client
	executor failsafe.Executor[*rawResponse]
}

type Option func(*Client)

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: 30 * time.Second},
		executor: newRetryExecutor(DefaultRetryConfig()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

func WithRetry(cfg RetryConfig) Option {
	return func(c *Client) { c.executor = newRetryExecutor(cfg) }
}

// SetToken replaces the bearer token used for subsequent calls.
func (c *Client) SetToken(token string) { c.token = strings.TrimSpace(token) }

func (c *Client) Token() string { return c.token }

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) (*rawResponse, error) {
	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = b
	}
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	attempt := func() (*rawResponse, error) {
		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, rdr)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return &rawResponse{status: resp.StatusCode, body: data}, nil
	}

	var (
		raw *rawResponse
		err error
	)
	if method == http.MethodGet && c.executor != nil {
		raw, err = c.executor.WithContext(ctx).Get(attempt)
	} else {
		raw, err = attempt()
	}
	if raw != nil {
		// Retries exhausted on a status code still carry the last response.
		return raw, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return nil, fmt.Errorf("%s %s: %w", method, path, err)
}

// call performs the request and decodes the named envelope field into out.
// A 204 leaves out untouched and reports found=false.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, payload any, field string, out any) (bool, error) {
	raw, err := c.do(ctx, method, path, query, payload)
	if err != nil {
		return false, err
	}
	if raw.status == http.StatusNoContent {
		return false, nil
	}
	if raw.status < 200 || raw.status > 299 {
		return false, decodeRequestError(raw.status, raw.body)
	}
	if out == nil {
		return true, nil
	}
	if field == "" {
		if err := json.Unmarshal(raw.body, out); err != nil {
			return false, fmt.Errorf("decode %s: %w", path, err)
		}
		return true, nil
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw.body, &env); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	part, ok := env[field]
	if !ok {
		return false, fmt.Errorf("decode %s: missing %q", path, field)
	}
	if err := json.Unmarshal(part, out); err != nil {
		return false, fmt.Errorf("decode %s.%s: %w", path, field, err)
	}
	return true, nil
}

// ---- auth ----

func (c *Client) Register(ctx context.Context, in validation.Registration) (*Session, error) {
	var out Session
	if _, err := c.call(ctx, http.MethodPost, "/api/register", nil, in, "", &out); err != nil {
		return nil, err
	}
	c.SetToken(out.AccessToken)
	return &out, nil
}

func (c *Client) Login(ctx context.Context, in validation.Credentials) (*Session, error) {
	var out Session
	if _, err := c.call(ctx, http.MethodPost, "/api/login", nil, in, "", &out); err != nil {
		return nil, err
	}
	c.SetToken(out.AccessToken)
	return &out, nil
}

// ---- user ----

func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if _, err := c.call(ctx, http.MethodGet, "/api/me", nil, nil, "me", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Preferences(ctx context.Context) (*domain.Preferences, error) {
	var out domain.Preferences
	if _, err := c.call(ctx, http.MethodGet, "/api/me/preferences", nil, nil, "preferences", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReplacePreferences sends a full document; omitted fields reset to defaults.
func (c *Client) ReplacePreferences(ctx context.Context, prefs any) (*domain.Preferences, error) {
	var out domain.Preferences
	if _, err := c.call(ctx, http.MethodPut, "/api/me/preferences", nil, prefs, "preferences", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PatchPreferences merges a partial document onto the stored preferences.
func (c *Client) PatchPreferences(ctx context.Context, patch any) (*domain.Preferences, error) {
	var out domain.Preferences
	if _, err := c.call(ctx, http.MethodPatch, "/api/me/preferences", nil, patch, "preferences", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---- social accounts ----

func (c *Client) SocialAccounts(ctx context.Context, includeInactive bool) ([]domain.SocialAccount, error) {
	q := url.Values{}
	if includeInactive {
		q.Set("includeInactive", "true")
	}
	var out []domain.SocialAccount
	if _, err := c.call(ctx, http.MethodGet, "/api/social-accounts", q, nil, "accounts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) LinkAccount(ctx context.Context, in validation.SocialAccountLink) (*domain.SocialAccount, error) {
	var out domain.SocialAccount
	if _, err := c.call(ctx, http.MethodPost, "/api/social-accounts", nil, in, "account", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SyncAccount(ctx context.Context, id uuid.UUID) (*domain.SocialAccount, error) {
	var out domain.SocialAccount
	if _, err := c.call(ctx, http.MethodPost, "/api/social-accounts/"+id.String()+"/sync", nil, nil, "account", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DisconnectAccount(ctx context.Context, id uuid.UUID) error {
	_, err := c.call(ctx, http.MethodDelete, "/api/social-accounts/"+id.String(), nil, nil, "", nil)
	return err
}

// ---- posts ----

func (q PostQuery) values() url.Values {
	v := url.Values{}
	if !q.Start.IsZero() {
		v.Set("startDate", q.Start.Format(time.RFC3339Nano))
	}
	if !q.End.IsZero() {
		v.Set("endDate", q.End.Format(time.RFC3339Nano))
	}
	if q.Platform != "" && q.Platform != "all" {
		v.Set("platform", q.Platform)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func (c *Client) Posts(ctx context.Context, q PostQuery) ([]domain.Post, error) {
	var out []domain.Post
	if _, err := c.call(ctx, http.MethodGet, "/api/posts", q.values(), nil, "posts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ScheduledPosts(ctx context.Context, limit int) ([]domain.Post, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []domain.Post
	if _, err := c.call(ctx, http.MethodGet, "/api/posts/scheduled", q, nil, "posts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePost validates the insert locally before sending it; a rejected
// document never reaches the network.
func (c *Client) CreatePost(ctx context.Context, in validation.PostInsert) (*domain.Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var out domain.Post
	if _, err := c.call(ctx, http.MethodPost, "/api/posts", nil, in, "post", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Post(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	var out domain.Post
	if _, err := c.call(ctx, http.MethodGet, "/api/posts/"+id.String(), nil, nil, "post", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PostAnalytics(ctx context.Context, id uuid.UUID) ([]domain.AnalyticsData, error) {
	var out []domain.AnalyticsData
	if _, err := c.call(ctx, http.MethodGet, "/api/posts/"+id.String()+"/analytics", nil, nil, "analytics", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RecordAnalytics(ctx context.Context, in validation.AnalyticsInsert) (*domain.AnalyticsData, error) {
	var out domain.AnalyticsData
	if _, err := c.call(ctx, http.MethodPost, "/api/analytics", nil, in, "analytics", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---- dashboard ----

func rangeQuery(days int) url.Values {
	q := url.Values{}
	if days > 0 {
		q.Set("range", strconv.Itoa(days))
	}
	return q
}

// DashboardStats uses the user's default range when days is zero.
func (c *Client) DashboardStats(ctx context.Context, days int) (*DashboardStats, error) {
	var out DashboardStats
	if _, err := c.call(ctx, http.MethodGet, "/api/dashboard/stats", rangeQuery(days), nil, "stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Monetization(ctx context.Context, days int) (*MonetizationSummary, error) {
	var out MonetizationSummary
	if _, err := c.call(ctx, http.MethodGet, "/api/dashboard/monetization", rangeQuery(days), nil, "monetization", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PlatformROI(ctx context.Context, days int) ([]PlatformROI, error) {
	var out []PlatformROI
	if _, err := c.call(ctx, http.MethodGet, "/api/dashboard/platform-roi", rangeQuery(days), nil, "platforms", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RecordMonetization(ctx context.Context, in validation.MonetizationInsert) (*domain.MonetizationRecord, error) {
	var out domain.MonetizationRecord
	if _, err := c.call(ctx, http.MethodPost, "/api/monetization", nil, in, "record", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---- engage ----

func (c *Client) EngageActivities(ctx context.Context, limit int) ([]domain.EngageActivity, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []domain.EngageActivity
	if _, err := c.call(ctx, http.MethodGet, "/api/engage-activities", q, nil, "activities", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Engage(ctx context.Context, in validation.EngageActivityInsert) (*domain.EngageActivity, error) {
	var out domain.EngageActivity
	if _, err := c.call(ctx, http.MethodPost, "/api/engage-activities", nil, in, "activity", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---- insights ----

func (c *Client) Insights(ctx context.Context, unreadOnly bool) ([]domain.Insight, error) {
	q := url.Values{}
	if unreadOnly {
		q.Set("unread", "true")
	}
	var out []domain.Insight
	if _, err := c.call(ctx, http.MethodGet, "/api/insights", q, nil, "insights", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MarkInsightRead(ctx context.Context, id uuid.UUID) (*domain.Insight, error) {
	var out domain.Insight
	if _, err := c.call(ctx, http.MethodPost, "/api/insights/"+id.String()+"/read", nil, nil, "insight", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApplyInsight(ctx context.Context, id uuid.UUID) (*domain.Insight, error) {
	var out domain.Insight
	if _, err := c.call(ctx, http.MethodPost, "/api/insights/"+id.String()+"/apply", nil, nil, "insight", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---- engagement model ----

// TrainEngagementModel never returns a Go error; the outcome, including
// transport failures, is carried by the result's Kind. A null model is
// reported as TrainEmpty and a model with any empty section as TrainFailure
// wrapping engagement.ErrIncomplete.
func (c *Client) TrainEngagementModel(ctx context.Context, lookback domain.LookbackPeriod) TrainResult {
	if !lookback.Valid() {
		return TrainResult{Kind: TrainFailure, Err: fmt.Errorf("lookback period %d is not one of 30, 90, 180, 365", lookback)}
	}
	var m *domain.EngagementModel
	found, err := c.call(ctx, http.MethodPost, "/api/ai/train-engagement-model", nil,
		validation.TrainRequest{LookbackPeriod: int(lookback)}, "model", &m)
	switch {
	case err != nil:
		return TrainResult{Kind: TrainFailure, Err: err}
	case !found || m == nil:
		return TrainResult{Kind: TrainEmpty}
	}
	if err := checkModel(m); err != nil {
		return TrainResult{Kind: TrainFailure, Err: err}
	}
	return TrainResult{Kind: TrainSuccess, Model: m}
}

// EngagementModel returns ErrNoModel when the server has none.
func (c *Client) EngagementModel(ctx context.Context) (*domain.EngagementModel, error) {
	var m *domain.EngagementModel
	found, err := c.call(ctx, http.MethodGet, "/api/ai/engagement-model", nil, nil, "model", &m)
	if err != nil {
		return nil, err
	}
	if !found || m == nil {
		return nil, ErrNoModel
	}
	if err := checkModel(m); err != nil {
		return nil, err
	}
	return m, nil
}

func checkModel(m *domain.EngagementModel) error {
	m.Normalize()
	if err := m.Validate(); err != nil {
		return fmt.Errorf("engagement model response: %w", err)
	}
	return nil
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}
