package engagement

import (
	"math"
	"strings"
	"time"

	"github.com/yungbote/pulseboard-backend/internal/domain/content"
	emodel "github.com/yungbote/pulseboard-backend/internal/domain/engagement"
	"github.com/yungbote/pulseboard-backend/internal/domain/social"
)

// Prediction holds the AI-derived fields for one post, each in [0, 100].
type Prediction struct {
	EngagementScore float64
	ShadowbanRisk   float64
	AudienceMatch   float64
}

// Score predicts a post's fields from a trained model. The post's calendar
// time is matched against the model's timing windows in loc (nil means the
// model's own timezone, falling back to UTC).
func Score(m *emodel.Model, p *content.Post, loc *time.Location) Prediction {
	if m == nil || p == nil {
		return Prediction{}
	}
	if loc == nil {
		loc = modelLocation(m)
	}

	rel := contentRelativePerformance(m, p)
	timing := 1.0
	inBest := false
	if at, ok := p.CalendarTime(); ok {
		at = at.In(loc)
		day, hour := at.Weekday().String(), at.Hour()
		if windowContains(m.TimingPatterns.BestWindows, day, hour) {
			timing = 1.2
			inBest = true
		} else if windowContains(m.TimingPatterns.WorstWindows, day, hour) {
			timing = 0.8
		}
	}
	engagementScore := clamp(50*rel*timing, 0, 100)

	audience := 30.0
	for i, name := range m.Platforms {
		if name == string(p.Platform) {
			n := float64(len(m.Platforms))
			audience = 40 + 60*(n-float64(i))/n
			break
		}
	}
	if inBest {
		audience += 10
	}

	return Prediction{
		EngagementScore: round(engagementScore, 2),
		ShadowbanRisk:   round(shadowbanRisk(p), 2),
		AudienceMatch:   round(clamp(audience, 0, 100), 2),
	}
}

func modelLocation(m *emodel.Model) *time.Location {
	if m.TimingPatterns.Timezone != "" {
		if loc, err := time.LoadLocation(m.TimingPatterns.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

// contentRelativePerformance is the geometric mean of the relative
// performance of every pattern the post matches; 1 when none match.
func contentRelativePerformance(m *emodel.Model, p *content.Post) float64 {
	keys := map[string]struct{}{
		"contentType\x00" + string(p.ContentType):      {},
		"captionLength\x00" + CaptionBucket(p.Content): {},
	}
	for _, tag := range p.Hashtags {
		keys["hashtag\x00"+strings.ToLower(strings.TrimLeft(tag, "#"))] = struct{}{}
	}
	logSum, n := 0.0, 0
	visit := func(list []emodel.ContentPattern) {
		for _, cp := range list {
			if _, ok := keys[cp.Kind+"\x00"+cp.Value]; !ok || cp.RelativePerformance <= 0 {
				continue
			}
			logSum += math.Log(cp.RelativePerformance)
			n++
		}
	}
	visit(m.ContentPatterns.HighEngagement)
	visit(m.ContentPatterns.LowEngagement)
	if n == 0 {
		return 1
	}
	return math.Exp(logSum / float64(n))
}

func windowContains(ws []emodel.TimeWindow, day string, hour int) bool {
	for _, w := range ws {
		if w.DayOfWeek == day && hour >= w.StartHour && hour < w.EndHour {
			return true
		}
	}
	return false
}

// shadowbanRisk scores the distribution-suppression signals a post carries
// regardless of the model: hashtag stuffing, link-heavy captions, and
// text-only posts on visual-first platforms.
func shadowbanRisk(p *content.Post) float64 {
	risk := 5.0
	switch n := len(p.Hashtags); {
	case n > 25:
		risk += 40
	case n > 15:
		risk += 20
	case n > 10:
		risk += 10
	}
	if links := strings.Count(strings.ToLower(p.Content), "http"); links > 2 {
		risk += 15
	}
	visual := p.Platform == social.PlatformInstagram || p.Platform == social.PlatformTikTok
	if visual && len(p.MediaURLs) == 0 {
		risk += 15
	}
	return clamp(risk, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
