package engagement

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yungbote/pulseboard-backend/internal/domain/analytics"
	"github.com/yungbote/pulseboard-backend/internal/domain/content"
	emodel "github.com/yungbote/pulseboard-backend/internal/domain/engagement"
)

const (
	DefaultMinSamples = 3

	maxContentPatterns = 5
	maxTimeWindows     = 3

	// confidenceSaturation is the sample count at which confidence reaches 1.
	confidenceSaturation = 50
)

// ErrInsufficientData means the window holds too little usable history to
// produce a model with every section populated. Callers surface it as an
// empty result rather than a placeholder model.
var ErrInsufficientData = errors.New("insufficient engagement data")

// Sample is one post together with every analytics row recorded for it.
type Sample struct {
	Post    *content.Post
	Metrics []*analytics.AnalyticsData
}

type Options struct {
	Lookback   emodel.LookbackPeriod
	Now        time.Time
	MinSamples int
	// Location buckets timing windows; nil means UTC.
	Location *time.Location
	// NewID overrides model id generation.
	NewID func() string
}

// observation is a post reduced to the features training looks at.
type observation struct {
	post            *content.Post
	at              time.Time
	impressions     int64
	reach           int64
	interactions    int64
	followersGained int64
	rate            float64
}

// Train aggregates published posts inside the lookback window into a model.
func Train(samples []Sample, opts Options) (*emodel.Model, error) {
	if !opts.Lookback.Valid() {
		return nil, fmt.Errorf("invalid lookback period %d", opts.Lookback)
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	minSamples := opts.MinSamples
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}

	obs := observe(samples, now.Add(-opts.Lookback.Duration()), now, loc)
	if len(obs) < minSamples {
		return nil, fmt.Errorf("%w: %d usable posts, need %d", ErrInsufficientData, len(obs), minSamples)
	}

	mean := meanRate(obs)
	high, low := contentPatterns(obs, mean)
	best, worst := timeWindows(obs)
	affinities := audienceAffinities(obs)
	factors := performanceFactors(obs)

	platforms := make([]string, 0, len(affinities))
	for _, a := range affinities {
		platforms = append(platforms, a.Platform)
	}

	id := "em_" + uuid.NewString()
	if opts.NewID != nil {
		id = opts.NewID()
	}
	m := &emodel.Model{
		ModelID:        id,
		TrainedAt:      now,
		LookbackPeriod: opts.Lookback,
		SampleSize:     len(obs),
		Confidence:     round(math.Min(1, float64(len(obs))/confidenceSaturation), 4),
		Platforms:      platforms,
		ContentPatterns: emodel.ContentPatterns{
			HighEngagement: high,
			LowEngagement:  low,
		},
		TimingPatterns: emodel.TimingPatterns{
			BestWindows:  best,
			WorstWindows: worst,
			Timezone:     loc.String(),
		},
		AudiencePatterns:   emodel.AudiencePatterns{Affinities: affinities},
		PerformanceFactors: factors,
	}
	m.Normalize()
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsufficientData, err)
	}
	return m, nil
}

func observe(samples []Sample, since, until time.Time, loc *time.Location) []observation {
	out := make([]observation, 0, len(samples))
	for _, s := range samples {
		p := s.Post
		if p == nil || p.Status != content.PostStatusPublished || p.PublishedAt == nil {
			continue
		}
		at := p.PublishedAt.UTC()
		if at.Before(since) || at.After(until) {
			continue
		}
		o := observation{post: p, at: at.In(loc)}
		for _, row := range s.Metrics {
			if row == nil || row.PostID != p.ID {
				continue
			}
			o.impressions += row.Impressions
			o.reach += row.Reach
			o.interactions += row.Interactions()
			o.followersGained += row.FollowersGained
		}
		if o.impressions <= 0 {
			continue
		}
		o.rate = float64(o.interactions) / float64(o.impressions)
		out = append(out, o)
	}
	return out
}

func meanRate(obs []observation) float64 {
	if len(obs) == 0 {
		return 0
	}
	sum := 0.0
	for _, o := range obs {
		sum += o.rate
	}
	return sum / float64(len(obs))
}

type group struct {
	key   string
	value string
	sum   float64
	n     int
}

func (g *group) mean() float64 {
	if g.n == 0 {
		return 0
	}
	return g.sum / float64(g.n)
}

// CaptionBucket names the caption-length class used in content patterns.
func CaptionBucket(text string) string {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	switch {
	case n < 80:
		return "short"
	case n < 300:
		return "medium"
	default:
		return "long"
	}
}

// contentPatterns ranks content groups by mean rate. The top half becomes
// high-engagement patterns, the bottom half low-engagement ones (worst first).
func contentPatterns(obs []observation, overall float64) (high, low []emodel.ContentPattern) {
	groups := map[string]*group{}
	add := func(kind, value string, rate float64) {
		if value == "" {
			return
		}
		k := kind + "\x00" + value
		g, ok := groups[k]
		if !ok {
			g = &group{key: kind, value: value}
			groups[k] = g
		}
		g.sum += rate
		g.n++
	}
	for _, o := range obs {
		add("contentType", string(o.post.ContentType), o.rate)
		add("captionLength", CaptionBucket(o.post.Content), o.rate)
		seen := map[string]struct{}{}
		for _, tag := range o.post.Hashtags {
			tag = strings.ToLower(strings.TrimLeft(strings.TrimSpace(tag), "#"))
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			add("hashtag", tag, o.rate)
		}
	}

	ranked := make([]*group, 0, len(groups))
	for _, g := range groups {
		ranked = append(ranked, g)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.mean() != b.mean() {
			return a.mean() > b.mean()
		}
		if a.n != b.n {
			return a.n > b.n
		}
		if a.key != b.key {
			return a.key < b.key
		}
		return a.value < b.value
	})
	if len(ranked) < 2 {
		return nil, nil
	}

	toPattern := func(g *group) emodel.ContentPattern {
		rel := 0.0
		if overall > 0 {
			rel = g.mean() / overall
		}
		return emodel.ContentPattern{
			Kind:                g.key,
			Value:               g.value,
			AvgEngagementRate:   round(g.mean(), 6),
			RelativePerformance: round(rel, 4),
			PostCount:           g.n,
		}
	}
	top := (len(ranked) + 1) / 2
	for i := 0; i < top && len(high) < maxContentPatterns; i++ {
		high = append(high, toPattern(ranked[i]))
	}
	for i := len(ranked) - 1; i >= top && len(low) < maxContentPatterns; i-- {
		low = append(low, toPattern(ranked[i]))
	}
	return high, low
}

// timeWindows groups posts by weekday and hour of the (localized) publish
// time. Best windows come first by rate, worst windows worst first.
func timeWindows(obs []observation) (best, worst []emodel.TimeWindow) {
	type slot struct {
		day  time.Weekday
		hour int
	}
	groups := map[slot]*group{}
	for _, o := range obs {
		s := slot{day: o.at.Weekday(), hour: o.at.Hour()}
		g, ok := groups[s]
		if !ok {
			g = &group{}
			groups[s] = g
		}
		g.sum += o.rate
		g.n++
	}
	slots := make([]slot, 0, len(groups))
	for s := range groups {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool {
		a, b := groups[slots[i]], groups[slots[j]]
		if a.mean() != b.mean() {
			return a.mean() > b.mean()
		}
		if slots[i].day != slots[j].day {
			return slots[i].day < slots[j].day
		}
		return slots[i].hour < slots[j].hour
	})
	if len(slots) < 2 {
		return nil, nil
	}
	toWindow := func(s slot) emodel.TimeWindow {
		g := groups[s]
		return emodel.TimeWindow{
			DayOfWeek:         s.day.String(),
			StartHour:         s.hour,
			EndHour:           s.hour + 1,
			AvgEngagementRate: round(g.mean(), 6),
			PostCount:         g.n,
		}
	}
	top := (len(slots) + 1) / 2
	for i := 0; i < top && len(best) < maxTimeWindows; i++ {
		best = append(best, toWindow(slots[i]))
	}
	for i := len(slots) - 1; i >= top && len(worst) < maxTimeWindows; i-- {
		worst = append(worst, toWindow(slots[i]))
	}
	return best, worst
}

// audienceAffinities summarizes each platform, strongest first.
func audienceAffinities(obs []observation) []emodel.AudienceAffinity {
	type agg struct {
		group
		reach        int64
		interactions int64
		followers    int64
	}
	byPlatform := map[string]*agg{}
	var total int64
	for _, o := range obs {
		name := string(o.post.Platform)
		if name == "" {
			continue
		}
		a, ok := byPlatform[name]
		if !ok {
			a = &agg{}
			a.value = name
			byPlatform[name] = a
		}
		a.sum += o.rate
		a.n++
		a.reach += o.reach
		a.interactions += o.interactions
		a.followers += o.followersGained
		total += o.interactions
	}
	out := make([]emodel.AudienceAffinity, 0, len(byPlatform))
	for name, a := range byPlatform {
		share := 0.0
		if total > 0 {
			share = float64(a.interactions) / float64(total)
		}
		out = append(out, emodel.AudienceAffinity{
			Platform:          name,
			AvgEngagementRate: round(a.mean(), 6),
			TotalReach:        a.reach,
			EngagementShare:   round(share, 4),
			FollowersGained:   a.followers,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgEngagementRate != out[j].AvgEngagementRate {
			return out[i].AvgEngagementRate > out[j].AvgEngagementRate
		}
		if out[i].EngagementShare != out[j].EngagementShare {
			return out[i].EngagementShare > out[j].EngagementShare
		}
		return out[i].Platform < out[j].Platform
	})
	return out
}

type feature struct {
	name     string
	value    func(o observation) float64
	positive string
	negative string
}

var features = []feature{
	{
		name:     "hashtagCount",
		value:    func(o observation) float64 { return float64(len(o.post.Hashtags)) },
		positive: "More hashtags go with higher engagement",
		negative: "Fewer hashtags go with higher engagement",
	},
	{
		name:     "captionLength",
		value:    func(o observation) float64 { return float64(utf8.RuneCountInString(o.post.Content)) },
		positive: "Longer captions go with higher engagement",
		negative: "Shorter captions go with higher engagement",
	},
	{
		name: "hasMedia",
		value: func(o observation) float64 {
			if len(o.post.MediaURLs) > 0 {
				return 1
			}
			return 0
		},
		positive: "Posts with media outperform text-only posts",
		negative: "Text-only posts outperform posts with media",
	},
	{
		name: "weekendPosting",
		value: func(o observation) float64 {
			if d := o.at.Weekday(); d == time.Saturday || d == time.Sunday {
				return 1
			}
			return 0
		},
		positive: "Weekend posts outperform weekday posts",
		negative: "Weekday posts outperform weekend posts",
	},
}

// performanceFactors reports the Pearson correlation of each feature with
// engagement rate. Features with no variance in the sample are omitted.
func performanceFactors(obs []observation) []emodel.PerformanceFactor {
	ys := make([]float64, len(obs))
	for i, o := range obs {
		ys[i] = o.rate
	}
	out := make([]emodel.PerformanceFactor, 0, len(features))
	for _, f := range features {
		xs := make([]float64, len(obs))
		for i, o := range obs {
			xs[i] = f.value(o)
		}
		r, ok := pearson(xs, ys)
		if !ok {
			continue
		}
		desc := f.positive
		switch {
		case math.Abs(r) < 0.1:
			desc = "No clear effect on engagement"
		case r < 0:
			desc = f.negative
		}
		out = append(out, emodel.PerformanceFactor{
			Factor:      f.name,
			Impact:      round(r, 4),
			Description: desc,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Impact) > math.Abs(out[j].Impact)
	})
	return out
}

func pearson(xs, ys []float64) (float64, bool) {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0, false
	}
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(n)
	my /= float64(n)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	r := sxy / math.Sqrt(sxx*syy)
	return math.Max(-1, math.Min(1, r)), true
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
