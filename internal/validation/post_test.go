package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/pulseboard-backend/internal/domain/content"
)

func TestDecodePostInsertStripsSystemFields(t *testing.T) {
	t.Parallel()
	raw := `{
		"id": "7f1c4f3e-0000-4000-8000-000000000001",
		"userId": "7f1c4f3e-0000-4000-8000-000000000002",
		"platform": "Instagram",
		"content": "  sunset over the bay  ",
		"hashtags": ["#Sunset", "sunset", "bay"],
		"mediaUrls": ["https://cdn.example.com/a.jpg"],
		"engagementScore": 99,
		"shadowbanRisk": 0,
		"aiAnalyzedAt": "2026-01-01T00:00:00Z",
		"status": "draft"
	}`
	in, err := DecodePostInsert([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	owner := uuid.New()
	p := in.ToPost(owner)
	if p.ID != uuid.Nil {
		t.Fatalf("client id must not be adopted: %s", p.ID)
	}
	if p.UserID != owner {
		t.Fatalf("owner not set: %s", p.UserID)
	}
	if p.EngagementScore != nil || p.ShadowbanRisk != nil || p.AIAnalyzedAt != nil {
		t.Fatal("AI fields must be stripped from inserts")
	}
	if p.Content != "sunset over the bay" {
		t.Fatalf("content not trimmed: %q", p.Content)
	}
	if p.Platform != "instagram" || p.ContentType != content.ContentTypeImage {
		t.Fatalf("unexpected platform/contentType: %s/%s", p.Platform, p.ContentType)
	}
	if got := []string(p.Hashtags); len(got) != 2 || got[0] != "sunset" || got[1] != "bay" {
		t.Fatalf("hashtags not normalized: %v", got)
	}
}

func TestDecodePostInsertDefaults(t *testing.T) {
	t.Parallel()
	in, err := DecodePostInsert([]byte(`{"platform":"twitter","content":"hello"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := in.ToPost(uuid.New())
	if p.Status != content.PostStatusDraft || p.ContentType != content.ContentTypeText {
		t.Fatalf("unexpected defaults: %s/%s", p.Status, p.ContentType)
	}
}

func TestDecodePostInsertRules(t *testing.T) {
	t.Parallel()
	tags := make([]string, 31)
	for i := range tags {
		tags[i] = `"t` + strings.Repeat("x", i+1) + `"`
	}
	cases := []struct {
		name string
		raw  string
		path string
	}{
		{"missing platform", `{"content":"hi"}`, "platform"},
		{"unknown platform", `{"platform":"myspace","content":"hi"}`, "platform"},
		{"empty content", `{"platform":"instagram","content":"   "}`, "content"},
		{"twitter limit", `{"platform":"twitter","content":"` + strings.Repeat("a", 281) + `"}`, "content"},
		{"instagram limit", `{"platform":"instagram","content":"` + strings.Repeat("é", 2201) + `"}`, "content"},
		{"generic limit", `{"platform":"facebook","content":"` + strings.Repeat("a", 5001) + `"}`, "content"},
		{"too many hashtags", `{"platform":"facebook","content":"x","hashtags":[` + strings.Join(tags, ",") + `]}`, "hashtags"},
		{"bad media url", `{"platform":"facebook","content":"x","mediaUrls":["not a url"]}`, "mediaUrls[0]"},
		{"scheduled needs time", `{"platform":"facebook","content":"x","status":"scheduled"}`, "scheduledAt"},
		{"cannot insert published", `{"platform":"facebook","content":"x","status":"published"}`, "status"},
		{"bad content type", `{"platform":"facebook","content":"x","contentType":"podcast"}`, "contentType"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodePostInsert([]byte(tc.raw))
			verr, ok := AsError(err)
			if !ok {
				t.Fatalf("expected *Error, got %v", err)
			}
			if !verr.Has(tc.path) {
				t.Fatalf("expected %s in %v", tc.path, verr.Paths())
			}
		})
	}
}

func TestDecodePostInsertAcceptsPlatformLimits(t *testing.T) {
	t.Parallel()
	raw := `{"platform":"twitter","content":"` + strings.Repeat("é", 280) + `"}`
	if _, err := DecodePostInsert([]byte(raw)); err != nil {
		t.Fatalf("280 runes should fit on twitter: %v", err)
	}
}

func TestValidatePostExtended(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	base := func() *content.Post {
		return &content.Post{
			ID:          uuid.New(),
			UserID:      uuid.New(),
			Platform:    "tiktok",
			Content:     "dance",
			ContentType: content.ContentTypeReel,
			Status:      content.PostStatusPublished,
			PublishedAt: &now,
		}
	}
	if err := ValidatePostExtended(base()); err != nil {
		t.Fatalf("valid post rejected: %v", err)
	}

	over := 101.0
	p := base()
	p.EngagementScore = &over
	p.AIAnalyzedAt = &now
	if verr, ok := AsError(ValidatePostExtended(p)); !ok || !verr.Has("engagementScore") {
		t.Fatalf("expected engagementScore error, got %v", verr)
	}

	p = base()
	p.PublishedAt = nil
	if verr, ok := AsError(ValidatePostExtended(p)); !ok || !verr.Has("publishedAt") {
		t.Fatalf("expected publishedAt error, got %v", verr)
	}

	score := 50.0
	p = base()
	p.AudienceMatch = &score
	if verr, ok := AsError(ValidatePostExtended(p)); !ok || !verr.Has("aiAnalyzedAt") {
		t.Fatalf("expected aiAnalyzedAt error, got %v", verr)
	}

	p = base()
	p.ID = uuid.Nil
	p.Status = "archived"
	verr, ok := AsError(ValidatePostExtended(p))
	if !ok || !verr.Has("id") || !verr.Has("status") {
		t.Fatalf("expected id and status errors, got %v", verr)
	}
}

func TestInsertAcceptedAndEnrichedIsExtendedAccepted(t *testing.T) {
	t.Parallel()
	bodies := []string{
		`{"platform":"instagram","content":"morning run","hashtags":["run"],"mediaUrls":["https://x.example/1.mp4"],"contentType":"reel"}`,
		`{"platform":"twitter","content":"thread 1/3","status":"scheduled","scheduledAt":"2026-03-15T09:00:00Z"}`,
		`{"platform":"youtube","content":"long form"}`,
	}
	scores := []SystemScores{
		{EngagementScore: 72.5, ShadowbanRisk: 3, AudienceMatch: 88},
		{EngagementScore: 140, ShadowbanRisk: -5, AudienceMatch: 100},
	}
	for _, raw := range bodies {
		in, err := DecodePostInsert([]byte(raw))
		if err != nil {
			t.Fatalf("insert rejected %s: %v", raw, err)
		}
		for _, s := range scores {
			p := in.ToPost(uuid.New())
			p.ID = uuid.New()
			Enrich(p, s)
			if err := ValidatePostExtended(p); err != nil {
				t.Fatalf("enriched post rejected (%s, %+v): %v", raw, s, err)
			}
		}
	}
}

func TestEnrichClampsScores(t *testing.T) {
	t.Parallel()
	p := &content.Post{}
	Enrich(p, SystemScores{EngagementScore: 120, ShadowbanRisk: -1, AudienceMatch: 42})
	if *p.EngagementScore != 100 || *p.ShadowbanRisk != 0 || *p.AudienceMatch != 42 {
		t.Fatalf("unexpected scores: %v %v %v", *p.EngagementScore, *p.ShadowbanRisk, *p.AudienceMatch)
	}
	if p.AIAnalyzedAt == nil {
		t.Fatal("analyzedAt should default to now")
	}
}
