package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yungbote/pulseboard-backend/internal/domain/content"
	"github.com/yungbote/pulseboard-backend/internal/domain/social"
)

const (
	MaxPostContentRunes = 5000
	MaxPostHashtags     = 30
	MaxPostMedia        = 10
)

// PostInsert is the user-authored subset of a post. Identity, timestamps
// and every AI-derived field are not part of it, so a client that sends
// them has them dropped during decode.
type PostInsert struct {
	Platform        string     `json:"platform" validate:"required,platform"`
	SocialAccountID *uuid.UUID `json:"socialAccountId"`
	Content         string     `json:"content" validate:"required,max=5000"`
	ContentType     string     `json:"contentType" validate:"omitempty,oneof=text image video carousel story reel"`
	Hashtags        []string   `json:"hashtags" validate:"omitempty,max=30,dive,required,max=100"`
	MediaURLs       []string   `json:"mediaUrls" validate:"omitempty,max=10,dive,required,url"`
	Status          string     `json:"status" validate:"omitempty,oneof=draft scheduled"`
	ScheduledAt     *time.Time `json:"scheduledAt"`
}

// DecodePostInsert parses and validates a create-post body.
func DecodePostInsert(raw []byte) (*PostInsert, error) {
	verr := &Error{Entity: "post"}
	var in PostInsert
	if !decode(raw, &in, verr) {
		return nil, verr
	}
	in.normalize()
	in.validateInto(verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return &in, nil
}

// Validate checks an already-decoded insert.
func (in *PostInsert) Validate() error {
	verr := &Error{Entity: "post"}
	in.normalize()
	in.validateInto(verr)
	return verr.orNil()
}

func (in *PostInsert) normalize() {
	in.Platform = strings.ToLower(strings.TrimSpace(in.Platform))
	in.Content = strings.TrimSpace(in.Content)
	in.ContentType = strings.ToLower(strings.TrimSpace(in.ContentType))
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	if in.Hashtags != nil {
		in.Hashtags = normalizeHashtags(in.Hashtags)
	}
	if in.MediaURLs != nil {
		in.MediaURLs = trimAll(in.MediaURLs)
	}
}

func (in *PostInsert) validateInto(verr *Error) {
	check(in, verr)
	if p, ok := social.ParsePlatform(in.Platform); ok {
		checkCaption(verr, p, in.Content)
	}
	if in.Status == string(content.PostStatusScheduled) && (in.ScheduledAt == nil || in.ScheduledAt.IsZero()) {
		verr.add("scheduledAt", "required_if", "status scheduled", "is required when status is scheduled")
	}
}

// ToPost builds the entity to persist for userID. The insert must have
// passed validation.
func (in *PostInsert) ToPost(userID uuid.UUID) *content.Post {
	p := &content.Post{
		UserID:          userID,
		SocialAccountID: in.SocialAccountID,
		Platform:        social.Platform(in.Platform),
		Content:         in.Content,
		ContentType:     content.ContentType(in.ContentType),
		Hashtags:        append([]string{}, in.Hashtags...),
		MediaURLs:       append([]string{}, in.MediaURLs...),
		Status:          content.PostStatus(in.Status),
	}
	if p.Status == "" {
		p.Status = content.PostStatusDraft
	}
	if p.ContentType == "" {
		p.ContentType = content.ContentTypeText
		if len(in.MediaURLs) > 0 {
			p.ContentType = content.ContentTypeImage
		}
	}
	if in.ScheduledAt != nil && !in.ScheduledAt.IsZero() {
		t := in.ScheduledAt.UTC()
		p.ScheduledAt = &t
	}
	return p
}

// postExtended mirrors content.Post for struct-tag validation of the full
// entity, system fields included.
type postExtended struct {
	ID              uuid.UUID  `json:"id" validate:"required"`
	UserID          uuid.UUID  `json:"userId" validate:"required"`
	Platform        string     `json:"platform" validate:"required,platform"`
	Content         string     `json:"content" validate:"required,max=5000"`
	ContentType     string     `json:"contentType" validate:"required,oneof=text image video carousel story reel"`
	Hashtags        []string   `json:"hashtags" validate:"max=30,dive,required,max=100"`
	MediaURLs       []string   `json:"mediaUrls" validate:"max=10,dive,required,url"`
	Status          string     `json:"status" validate:"required,oneof=draft scheduled published failed"`
	EngagementScore *float64   `json:"engagementScore" validate:"omitempty,gte=0,lte=100"`
	ShadowbanRisk   *float64   `json:"shadowbanRisk" validate:"omitempty,gte=0,lte=100"`
	AudienceMatch   *float64   `json:"audienceMatch" validate:"omitempty,gte=0,lte=100"`
	AIAnalyzedAt    *time.Time `json:"aiAnalyzedAt"`
}

// ValidatePostExtended checks a complete post, including the fields only
// the system writes. It is applied before any system update is persisted.
func ValidatePostExtended(p *content.Post) error {
	verr := &Error{Entity: "post"}
	if p == nil {
		verr.add("", "required", "", "post is required")
		return verr
	}
	view := postExtended{
		ID:              p.ID,
		UserID:          p.UserID,
		Platform:        string(p.Platform),
		Content:         p.Content,
		ContentType:     string(p.ContentType),
		Hashtags:        []string(p.Hashtags),
		MediaURLs:       []string(p.MediaURLs),
		Status:          string(p.Status),
		EngagementScore: p.EngagementScore,
		ShadowbanRisk:   p.ShadowbanRisk,
		AudienceMatch:   p.AudienceMatch,
		AIAnalyzedAt:    p.AIAnalyzedAt,
	}
	check(&view, verr)
	checkCaption(verr, p.Platform, p.Content)

	switch p.Status {
	case content.PostStatusScheduled:
		if p.ScheduledAt == nil || p.ScheduledAt.IsZero() {
			verr.add("scheduledAt", "required_if", "status scheduled", "is required when status is scheduled")
		}
	case content.PostStatusPublished:
		if p.PublishedAt == nil || p.PublishedAt.IsZero() {
			verr.add("publishedAt", "required_if", "status published", "is required when status is published")
		}
	}
	hasScore := p.EngagementScore != nil || p.ShadowbanRisk != nil || p.AudienceMatch != nil
	if hasScore && (p.AIAnalyzedAt == nil || p.AIAnalyzedAt.IsZero()) {
		verr.add("aiAnalyzedAt", "required_with", "engagementScore", "is required when AI scores are set")
	}
	return verr.orNil()
}

// SystemScores are the AI-derived fields attached to a post after analysis.
type SystemScores struct {
	EngagementScore float64
	ShadowbanRisk   float64
	AudienceMatch   float64
	AnalyzedAt      time.Time
}

// Enrich attaches scores to p in place. Scores are clamped to [0,100] so an
// insert-accepted post stays extended-accepted after enrichment.
func Enrich(p *content.Post, s SystemScores) {
	if p == nil {
		return
	}
	es, sr, am := clampScore(s.EngagementScore), clampScore(s.ShadowbanRisk), clampScore(s.AudienceMatch)
	at := s.AnalyzedAt.UTC()
	if s.AnalyzedAt.IsZero() {
		at = time.Now().UTC()
	}
	p.EngagementScore = &es
	p.ShadowbanRisk = &sr
	p.AudienceMatch = &am
	p.AIAnalyzedAt = &at
}

func clampScore(v float64) float64 {
	switch {
	case v != v:
		return 0
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

func checkCaption(verr *Error, p social.Platform, text string) {
	limit := p.MaxCaptionRunes()
	if limit == 0 || limit >= MaxPostContentRunes {
		return
	}
	if utf8.RuneCountInString(text) > limit {
		verr.add("content", "max", fmt.Sprint(limit), fmt.Sprintf("must be at most %d characters on %s", limit, p))
	}
}
