package engagement

import (
	"fmt"
	"math"

	"github.com/yungbote/pulseboard-backend/internal/domain/analytics"
	emodel "github.com/yungbote/pulseboard-backend/internal/domain/engagement"
)

// Recommend turns a trained model into insights. UserID is left for the
// caller to set.
func Recommend(m *emodel.Model) []*analytics.Insight {
	if m == nil {
		return nil
	}
	var out []*analytics.Insight
	add := func(t analytics.InsightType, pr analytics.InsightPriority, platform, title, desc string) {
		out = append(out, &analytics.Insight{
			Type:        t,
			Priority:    pr,
			Platform:    platform,
			Title:       title,
			Description: desc,
			ModelID:     m.ModelID,
		})
	}

	if hp := m.ContentPatterns.HighEngagement; len(hp) > 0 {
		top := hp[0]
		pr := analytics.PriorityMedium
		if top.RelativePerformance >= 1.5 {
			pr = analytics.PriorityHigh
		}
		add(analytics.InsightContent, pr, "",
			fmt.Sprintf("Lean into %s", describePattern(top)),
			fmt.Sprintf("Posts with %s averaged a %.1f%% engagement rate, %.1fx your typical post, across %d posts.",
				describePattern(top), top.AvgEngagementRate*100, top.RelativePerformance, top.PostCount))
	}
	if lp := m.ContentPatterns.LowEngagement; len(lp) > 0 {
		worst := lp[0]
		add(analytics.InsightContent, analytics.PriorityLow, "",
			fmt.Sprintf("Rethink %s", describePattern(worst)),
			fmt.Sprintf("Posts with %s averaged a %.1f%% engagement rate across %d posts.",
				describePattern(worst), worst.AvgEngagementRate*100, worst.PostCount))
	}
	if bw := m.TimingPatterns.BestWindows; len(bw) > 0 {
		w := bw[0]
		add(analytics.InsightTiming, analytics.PriorityHigh, "",
			fmt.Sprintf("Post on %s around %02d:00", w.DayOfWeek, w.StartHour),
			fmt.Sprintf("Your %s %02d:00-%02d:00 (%s) posts averaged a %.1f%% engagement rate.",
				w.DayOfWeek, w.StartHour, w.EndHour, m.TimingPatterns.Timezone, w.AvgEngagementRate*100))
	}
	if ww := m.TimingPatterns.WorstWindows; len(ww) > 0 {
		w := ww[0]
		add(analytics.InsightTiming, analytics.PriorityLow, "",
			fmt.Sprintf("Avoid %s around %02d:00", w.DayOfWeek, w.StartHour),
			fmt.Sprintf("Posts in this window averaged only a %.1f%% engagement rate.", w.AvgEngagementRate*100))
	}
	if aff := m.AudiencePatterns.Affinities; len(aff) > 0 {
		a := aff[0]
		add(analytics.InsightAudience, analytics.PriorityMedium, a.Platform,
			fmt.Sprintf("Your audience is most engaged on %s", a.Platform),
			fmt.Sprintf("%s drove %.0f%% of your interactions with a %.1f%% average engagement rate.",
				a.Platform, a.EngagementShare*100, a.AvgEngagementRate*100))
	}
	if pf := m.PerformanceFactors; len(pf) > 0 && math.Abs(pf[0].Impact) >= 0.3 {
		f := pf[0]
		add(analytics.InsightGrowth, analytics.PriorityMedium, "",
			f.Description,
			fmt.Sprintf("%s has a %.2f correlation with engagement rate in the last %d days.", f.Factor, f.Impact, int(m.LookbackPeriod)))
	}
	if m.Confidence < 0.3 {
		add(analytics.InsightRisk, analytics.PriorityLow, "",
			"Recommendations are based on few posts",
			fmt.Sprintf("Only %d posts were available; publish more to sharpen these recommendations.", m.SampleSize))
	}
	return out
}

func describePattern(p emodel.ContentPattern) string {
	switch p.Kind {
	case "hashtag":
		return "#" + p.Value
	case "captionLength":
		return p.Value + " captions"
	case "contentType":
		return p.Value + " posts"
	default:
		return p.Kind + " " + p.Value
	}
}
