package user

// Preferences is the fully resolved dashboard configuration for a user.
// Every field is always populated; see DefaultPreferences.
type Preferences struct {
	Dashboard     DashboardPreferences    `json:"dashboard"`
	Content       ContentPreferences      `json:"content"`
	AutoEngage    AutoEngagePreferences   `json:"autoEngage"`
	Monetization  MonetizationPreferences `json:"monetization"`
	Analytics     AnalyticsPreferences    `json:"analytics"`
	Notifications NotificationPreferences `json:"notifications"`
}

type DashboardPreferences struct {
	DefaultView      string `json:"defaultView"`
	DefaultDateRange int    `json:"defaultDateRange"`
	DefaultPlatform  string `json:"defaultPlatform"`
	CompactMode      bool   `json:"compactMode"`
}

type ContentPreferences struct {
	DefaultPlatforms      []string `json:"defaultPlatforms"`
	DefaultHashtags       []string `json:"defaultHashtags"`
	AutoSchedule          bool     `json:"autoSchedule"`
	PreferredPostingTimes []string `json:"preferredPostingTimes"`
	Tone                  string   `json:"tone"`
}

type AutoEngagePreferences struct {
	Enabled              bool     `json:"enabled"`
	MaxDailyInteractions int      `json:"maxDailyInteractions"`
	Actions              []string `json:"actions"`
	TargetAudiences      []string `json:"targetAudiences"`
	PauseOnWeekends      bool     `json:"pauseOnWeekends"`
}

type MonetizationPreferences struct {
	Enabled                    bool     `json:"enabled"`
	MinFollowersForSponsorship int      `json:"minFollowersForSponsorship"`
	PreferredSources           []string `json:"preferredSources"`
	Currency                   string   `json:"currency"`
	ShowRevenueOnDashboard     bool     `json:"showRevenueOnDashboard"`
}

type AnalyticsPreferences struct {
	KPIPriorities            []string `json:"kpiPriorities"`
	ReportFrequency          string   `json:"reportFrequency"`
	BenchmarkAgainstIndustry bool     `json:"benchmarkAgainstIndustry"`
}

type NotificationPreferences struct {
	Email           bool `json:"email"`
	Push            bool `json:"push"`
	WeeklyDigest    bool `json:"weeklyDigest"`
	InsightAlerts   bool `json:"insightAlerts"`
	ShadowbanAlerts bool `json:"shadowbanAlerts"`
	PostFailures    bool `json:"postFailures"`
}

// DefaultPreferences returns a fresh copy of the documented defaults.
func DefaultPreferences() Preferences {
	return Preferences{
		Dashboard: DashboardPreferences{
			DefaultView:      "overview",
			DefaultDateRange: 30,
			DefaultPlatform:  "all",
			CompactMode:      false,
		},
		Content: ContentPreferences{
			DefaultPlatforms:      []string{"instagram"},
			DefaultHashtags:       []string{},
			AutoSchedule:          false,
			PreferredPostingTimes: []string{"09:00", "18:00"},
			Tone:                  "friendly",
		},
		AutoEngage: AutoEngagePreferences{
			Enabled:              false,
			MaxDailyInteractions: 20,
			Actions:              []string{"like"},
			TargetAudiences:      []string{},
			PauseOnWeekends:      false,
		},
		Monetization: MonetizationPreferences{
			Enabled:                    false,
			MinFollowersForSponsorship: 1000,
			PreferredSources:           []string{"sponsorship", "affiliate"},
			Currency:                   "USD",
			ShowRevenueOnDashboard:     true,
		},
		Analytics: AnalyticsPreferences{
			KPIPriorities:            []string{"engagementRate", "reach", "followers"},
			ReportFrequency:          "weekly",
			BenchmarkAgainstIndustry: true,
		},
		Notifications: NotificationPreferences{
			Email:           true,
			Push:            true,
			WeeklyDigest:    true,
			InsightAlerts:   true,
			ShadowbanAlerts: true,
			PostFailures:    true,
		},
	}
}

// Clone deep-copies the slice fields.
func (p Preferences) Clone() Preferences {
	out := p
	out.Content.DefaultPlatforms = cloneStrings(p.Content.DefaultPlatforms)
	out.Content.DefaultHashtags = cloneStrings(p.Content.DefaultHashtags)
	out.Content.PreferredPostingTimes = cloneStrings(p.Content.PreferredPostingTimes)
	out.AutoEngage.Actions = cloneStrings(p.AutoEngage.Actions)
	out.AutoEngage.TargetAudiences = cloneStrings(p.AutoEngage.TargetAudiences)
	out.Monetization.PreferredSources = cloneStrings(p.Monetization.PreferredSources)
	out.Analytics.KPIPriorities = cloneStrings(p.Analytics.KPIPriorities)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
