package validation

import (
	"strings"

	"github.com/yungbote/pulseboard-backend/internal/domain/user"
)

// Partial preference documents decode into pointer fields so that an absent
// key (or an explicit null) can be told apart from a zero value.

type preferencesInput struct {
	Dashboard     *dashboardInput     `json:"dashboard"`
	Content       *contentInput       `json:"content"`
	AutoEngage    *autoEngageInput    `json:"autoEngage"`
	Monetization  *monetizationInput  `json:"monetization"`
	Analytics     *analyticsInput     `json:"analytics"`
	Notifications *notificationsInput `json:"notifications"`
}

type dashboardInput struct {
	DefaultView      *string `json:"defaultView" validate:"omitempty,oneof=overview calendar analytics insights"`
	DefaultDateRange *int    `json:"defaultDateRange" validate:"omitempty,oneof=7 30 90"`
	DefaultPlatform  *string `json:"defaultPlatform" validate:"omitempty,oneof=all instagram twitter tiktok facebook linkedin youtube"`
	CompactMode      *bool   `json:"compactMode"`
}

type contentInput struct {
	DefaultPlatforms      []string `json:"defaultPlatforms" validate:"omitempty,max=6,unique,dive,platform"`
	DefaultHashtags       []string `json:"defaultHashtags" validate:"omitempty,max=30,dive,required,max=100"`
	AutoSchedule          *bool    `json:"autoSchedule"`
	PreferredPostingTimes []string `json:"preferredPostingTimes" validate:"omitempty,max=24,unique,dive,hhmm"`
	Tone                  *string  `json:"tone" validate:"omitempty,oneof=professional casual friendly humorous inspirational"`
}

type autoEngageInput struct {
	Enabled              *bool    `json:"enabled"`
	MaxDailyInteractions *int     `json:"maxDailyInteractions" validate:"omitempty,gte=0,lte=100"`
	Actions              []string `json:"actions" validate:"omitempty,unique,dive,oneof=like comment follow reply share"`
	TargetAudiences      []string `json:"targetAudiences" validate:"omitempty,max=20,dive,required,max=100"`
	PauseOnWeekends      *bool    `json:"pauseOnWeekends"`
}

type monetizationInput struct {
	Enabled                    *bool    `json:"enabled"`
	MinFollowersForSponsorship *int     `json:"minFollowersForSponsorship" validate:"omitempty,gte=0"`
	PreferredSources           []string `json:"preferredSources" validate:"omitempty,unique,dive,oneof=sponsorship affiliate ads subscription"`
	Currency                   *string  `json:"currency" validate:"omitempty,len=3,uppercase,iso4217"`
	ShowRevenueOnDashboard     *bool    `json:"showRevenueOnDashboard"`
}

type analyticsInput struct {
	KPIPriorities            []string `json:"kpiPriorities" validate:"omitempty,min=1,max=6,unique,dive,oneof=engagementRate reach impressions followers revenue clicks"`
	ReportFrequency          *string  `json:"reportFrequency" validate:"omitempty,oneof=daily weekly monthly"`
	BenchmarkAgainstIndustry *bool    `json:"benchmarkAgainstIndustry"`
}

type notificationsInput struct {
	Email           *bool `json:"email"`
	Push            *bool `json:"push"`
	WeeklyDigest    *bool `json:"weeklyDigest"`
	InsightAlerts   *bool `json:"insightAlerts"`
	ShadowbanAlerts *bool `json:"shadowbanAlerts"`
	PostFailures    *bool `json:"postFailures"`
}

// ResolvePreferences validates a partial preferences document and fills
// every omitted field from user.DefaultPreferences.
func ResolvePreferences(raw []byte) (user.Preferences, error) {
	return ResolvePreferencesOnto(user.DefaultPreferences(), raw)
}

// ResolvePreferencesOnto validates raw and overlays the fields it carries on
// top of base. base is not modified. On failure the zero Preferences is
// returned together with a *Error naming every rejected field.
func ResolvePreferencesOnto(base user.Preferences, raw []byte) (user.Preferences, error) {
	verr := &Error{Entity: "preferences"}
	var in preferencesInput
	if !decode(raw, &in, verr) {
		return user.Preferences{}, verr
	}
	check(&in, verr)
	if err := verr.orNil(); err != nil {
		return user.Preferences{}, err
	}
	out := base.Clone()
	in.applyTo(&out)
	checkResolved(&out, verr)
	if err := verr.orNil(); err != nil {
		return user.Preferences{}, err
	}
	return out, nil
}

// checkResolved enforces rules that depend on the merged document rather
// than on a single patch field.
func checkResolved(p *user.Preferences, verr *Error) {
	if len(p.Content.DefaultPlatforms) == 0 {
		verr.add("content.defaultPlatforms", "min", "1", "must contain at least 1 entries")
	}
	if p.AutoEngage.Enabled && len(p.AutoEngage.Actions) == 0 {
		verr.add("autoEngage.actions", "required_with", "enabled", "must name at least one action while autoEngage is enabled")
	}
}

func (in *preferencesInput) applyTo(p *user.Preferences) {
	if d := in.Dashboard; d != nil {
		setString(&p.Dashboard.DefaultView, d.DefaultView)
		setInt(&p.Dashboard.DefaultDateRange, d.DefaultDateRange)
		setString(&p.Dashboard.DefaultPlatform, d.DefaultPlatform)
		setBool(&p.Dashboard.CompactMode, d.CompactMode)
	}
	if c := in.Content; c != nil {
		setList(&p.Content.DefaultPlatforms, lowerAll(c.DefaultPlatforms))
		setList(&p.Content.DefaultHashtags, normalizeHashtags(c.DefaultHashtags))
		setBool(&p.Content.AutoSchedule, c.AutoSchedule)
		setList(&p.Content.PreferredPostingTimes, c.PreferredPostingTimes)
		setString(&p.Content.Tone, c.Tone)
	}
	if a := in.AutoEngage; a != nil {
		setBool(&p.AutoEngage.Enabled, a.Enabled)
		setInt(&p.AutoEngage.MaxDailyInteractions, a.MaxDailyInteractions)
		setList(&p.AutoEngage.Actions, a.Actions)
		setList(&p.AutoEngage.TargetAudiences, trimAll(a.TargetAudiences))
		setBool(&p.AutoEngage.PauseOnWeekends, a.PauseOnWeekends)
	}
	if m := in.Monetization; m != nil {
		setBool(&p.Monetization.Enabled, m.Enabled)
		setInt(&p.Monetization.MinFollowersForSponsorship, m.MinFollowersForSponsorship)
		setList(&p.Monetization.PreferredSources, m.PreferredSources)
		setString(&p.Monetization.Currency, m.Currency)
		setBool(&p.Monetization.ShowRevenueOnDashboard, m.ShowRevenueOnDashboard)
	}
	if a := in.Analytics; a != nil {
		setList(&p.Analytics.KPIPriorities, a.KPIPriorities)
		setString(&p.Analytics.ReportFrequency, a.ReportFrequency)
		setBool(&p.Analytics.BenchmarkAgainstIndustry, a.BenchmarkAgainstIndustry)
	}
	if n := in.Notifications; n != nil {
		setBool(&p.Notifications.Email, n.Email)
		setBool(&p.Notifications.Push, n.Push)
		setBool(&p.Notifications.WeeklyDigest, n.WeeklyDigest)
		setBool(&p.Notifications.InsightAlerts, n.InsightAlerts)
		setBool(&p.Notifications.ShadowbanAlerts, n.ShadowbanAlerts)
		setBool(&p.Notifications.PostFailures, n.PostFailures)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setList(dst *[]string, v []string) {
	if v != nil {
		*dst = append([]string{}, v...)
	}
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func lowerAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}

// normalizeHashtags drops a leading '#', lower-cases, and removes repeats
// while keeping first-seen order.
func normalizeHashtags(in []string) []string {
	if in == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		tag := strings.ToLower(strings.TrimLeft(strings.TrimSpace(raw), "#"))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
