package validation

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/pulseboard-backend/internal/domain/analytics"
	"github.com/yungbote/pulseboard-backend/internal/domain/content"
	"github.com/yungbote/pulseboard-backend/internal/domain/engagement"
	"github.com/yungbote/pulseboard-backend/internal/domain/social"
)

// AnalyticsInsert is one day of metrics reported for a post. Date accepts
// YYYY-MM-DD or RFC 3339 and is stored as its UTC calendar date.
type AnalyticsInsert struct {
	PostID          uuid.UUID `json:"postId" validate:"required"`
	Date            string    `json:"date" validate:"required"`
	Impressions     int64     `json:"impressions" validate:"gte=0"`
	Reach           int64     `json:"reach" validate:"gte=0"`
	Likes           int64     `json:"likes" validate:"gte=0"`
	Comments        int64     `json:"comments" validate:"gte=0"`
	Shares          int64     `json:"shares" validate:"gte=0"`
	Saves           int64     `json:"saves" validate:"gte=0"`
	Clicks          int64     `json:"clicks" validate:"gte=0"`
	FollowersGained int64     `json:"followersGained"`

	date time.Time
}

func DecodeAnalyticsInsert(raw []byte) (*AnalyticsInsert, error) {
	verr := &Error{Entity: "analytics"}
	var in AnalyticsInsert
	if !decode(raw, &in, verr) {
		return nil, verr
	}
	check(&in, verr)
	if strings.TrimSpace(in.Date) != "" {
		d, ok := parseDate(in.Date)
		if !ok {
			verr.add("date", "date", "", "must be a date (YYYY-MM-DD or RFC 3339)")
		}
		in.date = analytics.DateOf(d)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return &in, nil
}

func (in *AnalyticsInsert) ToAnalytics() *analytics.AnalyticsData {
	row := &analytics.AnalyticsData{
		PostID:          in.PostID,
		Date:            in.date,
		Impressions:     in.Impressions,
		Reach:           in.Reach,
		Likes:           in.Likes,
		Comments:        in.Comments,
		Shares:          in.Shares,
		Saves:           in.Saves,
		Clicks:          in.Clicks,
		FollowersGained: in.FollowersGained,
	}
	row.EngagementRate = row.ComputedEngagementRate()
	return row
}

// EngageActivityInsert logs one auto-engagement action.
type EngageActivityInsert struct {
	PostID          *uuid.UUID `json:"postId"`
	SocialAccountID *uuid.UUID `json:"socialAccountId"`
	ActionType      string     `json:"actionType" validate:"required,oneof=like comment follow reply share"`
	TargetHandle    string     `json:"targetHandle" validate:"max=100"`
	Content         string     `json:"content" validate:"max=2200"`
	Status          string     `json:"status" validate:"omitempty,oneof=performed skipped failed"`
	PerformedAt     *time.Time `json:"performedAt"`
}

func DecodeEngageActivityInsert(raw []byte) (*EngageActivityInsert, error) {
	verr := &Error{Entity: "engage activity"}
	var in EngageActivityInsert
	if !decode(raw, &in, verr) {
		return nil, verr
	}
	in.ActionType = strings.ToLower(strings.TrimSpace(in.ActionType))
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	in.TargetHandle = strings.TrimSpace(in.TargetHandle)
	check(&in, verr)
	needsContent := in.ActionType == string(content.EngageComment) || in.ActionType == string(content.EngageReply)
	if needsContent && strings.TrimSpace(in.Content) == "" {
		verr.add("content", "required_if", "actionType "+in.ActionType, "is required for "+in.ActionType+" actions")
	}
	if in.PostID == nil && in.TargetHandle == "" {
		verr.add("targetHandle", "required_without", "postId", "is required when postId is absent")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return &in, nil
}

func (in *EngageActivityInsert) ToActivity(userID uuid.UUID) *content.EngageActivity {
	a := &content.EngageActivity{
		UserID:          userID,
		PostID:          in.PostID,
		SocialAccountID: in.SocialAccountID,
		ActionType:      content.EngageActionType(in.ActionType),
		TargetHandle:    in.TargetHandle,
		Content:         strings.TrimSpace(in.Content),
		Status:          content.EngageStatus(in.Status),
	}
	if in.PerformedAt != nil {
		a.PerformedAt = in.PerformedAt.UTC()
	}
	return a
}

// MonetizationInsert records revenue. Amounts are minor currency units.
type MonetizationInsert struct {
	PostID       *uuid.UUID `json:"postId"`
	Source       string     `json:"source" validate:"required,oneof=sponsorship affiliate ads subscription"`
	Platform     string     `json:"platform" validate:"omitempty,platform"`
	CampaignName string     `json:"campaignName" validate:"max=200"`
	Brand        string     `json:"brand" validate:"max=200"`
	AmountCents  int64      `json:"amountCents" validate:"gte=0"`
	Currency     string     `json:"currency" validate:"omitempty,len=3,uppercase,iso4217"`
	Status       string     `json:"status" validate:"omitempty,oneof=pending paid cancelled"`
	EarnedAt     *time.Time `json:"earnedAt"`
}

func DecodeMonetizationInsert(raw []byte) (*MonetizationInsert, error) {
	verr := &Error{Entity: "monetization record"}
	var in MonetizationInsert
	if !decode(raw, &in, verr) {
		return nil, verr
	}
	in.Source = strings.ToLower(strings.TrimSpace(in.Source))
	in.Platform = strings.ToLower(strings.TrimSpace(in.Platform))
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	in.Currency = strings.TrimSpace(in.Currency)
	check(&in, verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return &in, nil
}

func (in *MonetizationInsert) ToRecord(userID uuid.UUID) *analytics.MonetizationRecord {
	rec := &analytics.MonetizationRecord{
		UserID:       userID,
		PostID:       in.PostID,
		Source:       analytics.RevenueSource(in.Source),
		Platform:     in.Platform,
		CampaignName: strings.TrimSpace(in.CampaignName),
		Brand:        strings.TrimSpace(in.Brand),
		AmountCents:  in.AmountCents,
		Currency:     in.Currency,
		Status:       analytics.RevenueStatus(in.Status),
	}
	if rec.Currency == "" {
		rec.Currency = "USD"
	}
	if in.EarnedAt != nil {
		rec.EarnedAt = in.EarnedAt.UTC()
	}
	return rec
}

// SocialAccountLink is the body used to connect a platform account.
type SocialAccountLink struct {
	Platform          string     `json:"platform" validate:"required,platform"`
	ExternalAccountID string     `json:"externalAccountId" validate:"required,max=200"`
	Handle            string     `json:"handle" validate:"required,max=100"`
	DisplayName       string     `json:"displayName" validate:"max=200"`
	AccessToken       string     `json:"accessToken" validate:"required"`
	RefreshToken      string     `json:"refreshToken"`
	TokenExpiresAt    *time.Time `json:"tokenExpiresAt"`
}

func DecodeSocialAccountLink(raw []byte) (*SocialAccountLink, error) {
	verr := &Error{Entity: "social account"}
	var in SocialAccountLink
	if !decode(raw, &in, verr) {
		return nil, verr
	}
	in.Platform = strings.ToLower(strings.TrimSpace(in.Platform))
	in.ExternalAccountID = strings.TrimSpace(in.ExternalAccountID)
	in.Handle = strings.TrimPrefix(strings.TrimSpace(in.Handle), "@")
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	check(&in, verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return &in, nil
}

func (in *SocialAccountLink) ToAccount(userID uuid.UUID) *social.SocialAccount {
	acct := &social.SocialAccount{
		UserID:            userID,
		Platform:          social.Platform(in.Platform),
		ExternalAccountID: in.ExternalAccountID,
		Handle:            in.Handle,
		DisplayName:       in.DisplayName,
		AccessToken:       in.AccessToken,
		RefreshToken:      in.RefreshToken,
		Status:            social.AccountStatusActive,
		HealthScore:       100,
	}
	if in.TokenExpiresAt != nil {
		t := in.TokenExpiresAt.UTC()
		acct.TokenExpiresAt = &t
	}
	return acct
}

// TrainRequest is the body of a training call.
type TrainRequest struct {
	LookbackPeriod int `json:"lookbackPeriod" validate:"required,lookback"`
}

func DecodeTrainRequest(raw []byte) (engagement.LookbackPeriod, error) {
	verr := &Error{Entity: "training request"}
	var in TrainRequest
	if !decode(raw, &in, verr) {
		return 0, verr
	}
	check(&in, verr)
	if err := verr.orNil(); err != nil {
		return 0, err
	}
	return engagement.LookbackPeriod(in.LookbackPeriod), nil
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02", time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
