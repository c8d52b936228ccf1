package engagement

import (
	"errors"
	"fmt"
	"time"
)

// LookbackPeriod is the training window in days.
type LookbackPeriod int

const (
	Lookback30  LookbackPeriod = 30
	Lookback90  LookbackPeriod = 90
	Lookback180 LookbackPeriod = 180
	Lookback365 LookbackPeriod = 365
)

var LookbackPeriods = []LookbackPeriod{Lookback30, Lookback90, Lookback180, Lookback365}

func (l LookbackPeriod) Valid() bool {
	for _, p := range LookbackPeriods {
		if l == p {
			return true
		}
	}
	return false
}

func (l LookbackPeriod) Duration() time.Duration {
	return time.Duration(l) * 24 * time.Hour
}

// Model is the output of one training run. It is never mutated after
// training; the next run replaces it wholesale.
type Model struct {
	ModelID        string         `json:"modelId"`
	TrainedAt      time.Time      `json:"trainedAt"`
	LookbackPeriod LookbackPeriod `json:"lookbackPeriod"`
	SampleSize     int            `json:"sampleSize"`
	Confidence     float64        `json:"confidence"`

	Platforms          []string            `json:"platforms"`
	ContentPatterns    ContentPatterns     `json:"contentPatterns"`
	TimingPatterns     TimingPatterns      `json:"timingPatterns"`
	AudiencePatterns   AudiencePatterns    `json:"audiencePatterns"`
	PerformanceFactors []PerformanceFactor `json:"performanceFactors"`
}

type ContentPatterns struct {
	HighEngagement []ContentPattern `json:"highEngagement"`
	LowEngagement  []ContentPattern `json:"lowEngagement"`
}

// ContentPattern is one grouping of posts, e.g. kind "contentType" value "reel".
type ContentPattern struct {
	Kind                string  `json:"kind"`
	Value               string  `json:"value"`
	AvgEngagementRate   float64 `json:"avgEngagementRate"`
	RelativePerformance float64 `json:"relativePerformance"`
	PostCount           int     `json:"postCount"`
}

type TimingPatterns struct {
	BestWindows  []TimeWindow `json:"bestWindows"`
	WorstWindows []TimeWindow `json:"worstWindows"`
	Timezone     string       `json:"timezone"`
}

type TimeWindow struct {
	DayOfWeek         string  `json:"dayOfWeek"`
	StartHour         int     `json:"startHour"`
	EndHour           int     `json:"endHour"`
	AvgEngagementRate float64 `json:"avgEngagementRate"`
	PostCount         int     `json:"postCount"`
}

type AudiencePatterns struct {
	Affinities []AudienceAffinity `json:"affinities"`
}

type AudienceAffinity struct {
	Platform          string  `json:"platform"`
	AvgEngagementRate float64 `json:"avgEngagementRate"`
	TotalReach        int64   `json:"totalReach"`
	EngagementShare   float64 `json:"engagementShare"`
	FollowersGained   int64   `json:"followersGained"`
}

// PerformanceFactor is a feature's correlation with engagement rate, in [-1, 1].
type PerformanceFactor struct {
	Factor      string  `json:"factor"`
	Impact      float64 `json:"impact"`
	Description string  `json:"description"`
}

var ErrIncomplete = errors.New("engagement model incomplete")

// Validate checks the trained-model invariant: identity is set and every
// list is non-empty.
func (m *Model) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil model", ErrIncomplete)
	}
	var missing []string
	if m.ModelID == "" {
		missing = append(missing, "modelId")
	}
	if m.TrainedAt.IsZero() {
		missing = append(missing, "trainedAt")
	}
	if len(m.Platforms) == 0 {
		missing = append(missing, "platforms")
	}
	if len(m.ContentPatterns.HighEngagement) == 0 {
		missing = append(missing, "contentPatterns.highEngagement")
	}
	if len(m.ContentPatterns.LowEngagement) == 0 {
		missing = append(missing, "contentPatterns.lowEngagement")
	}
	if len(m.TimingPatterns.BestWindows) == 0 {
		missing = append(missing, "timingPatterns.bestWindows")
	}
	if len(m.TimingPatterns.WorstWindows) == 0 {
		missing = append(missing, "timingPatterns.worstWindows")
	}
	if len(m.AudiencePatterns.Affinities) == 0 {
		missing = append(missing, "audiencePatterns.affinities")
	}
	if len(m.PerformanceFactors) == 0 {
		missing = append(missing, "performanceFactors")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: empty %v", ErrIncomplete, missing)
	}
	return nil
}

// Normalize drops duplicate and blank platforms, keeping first-seen order.
func (m *Model) Normalize() {
	if m == nil {
		return
	}
	seen := make(map[string]struct{}, len(m.Platforms))
	out := make([]string, 0, len(m.Platforms))
	for _, p := range m.Platforms {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	m.Platforms = out
}

// Clone returns a deep copy.
func (m *Model) Clone() *Model {
	if m == nil {
		return nil
	}
	out := *m
	out.Platforms = append([]string(nil), m.Platforms...)
	out.ContentPatterns.HighEngagement = append([]ContentPattern(nil), m.ContentPatterns.HighEngagement...)
	out.ContentPatterns.LowEngagement = append([]ContentPattern(nil), m.ContentPatterns.LowEngagement...)
	out.TimingPatterns.BestWindows = append([]TimeWindow(nil), m.TimingPatterns.BestWindows...)
	out.TimingPatterns.WorstWindows = append([]TimeWindow(nil), m.TimingPatterns.WorstWindows...)
	out.AudiencePatterns.Affinities = append([]AudienceAffinity(nil), m.AudiencePatterns.Affinities...)
	out.PerformanceFactors = append([]PerformanceFactor(nil), m.PerformanceFactors...)
	return &out
}
