// Package calendar slices fetched posts into the ranges and days a viewer
// sees. Every timestamp is interpreted in the viewer's location.
package calendar

import (
	"sort"
	"strings"
	"time"

	"github.com/yungbote/pulseboard-backend/internal/domain"
)

// Filter selects posts by calendar time and platform. A zero Start or End
// leaves that side open; an empty Platform or "all" matches every platform.
type Filter struct {
	Start    time.Time
	End      time.Time
	Platform string
}

type Day struct {
	Date  time.Time
	Posts []domain.Post
}

// MonthView holds one Day per calendar day of the month, empty days included.
type MonthView struct {
	Year     int
	Month    time.Month
	Location *time.Location
	Days     []Day
}

// Total counts the posts in the view.
func (m MonthView) Total() int {
	n := 0
	for _, d := range m.Days {
		n += len(d.Posts)
	}
	return n
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// MonthRange returns the first and last instant of the month in loc, both
// inclusive.
func MonthRange(year int, month time.Month, loc *time.Location) (start, end time.Time) {
	loc = location(loc)
	start = time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// ParseMonth reads a YYYY-MM string.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, err
	}
	return t.Year(), t.Month(), nil
}

func (f Filter) matches(p *domain.Post) (time.Time, bool) {
	at, ok := p.CalendarTime()
	if !ok {
		return time.Time{}, false
	}
	if !f.Start.IsZero() && at.Before(f.Start) {
		return time.Time{}, false
	}
	if !f.End.IsZero() && at.After(f.End) {
		return time.Time{}, false
	}
	plat := strings.ToLower(strings.TrimSpace(f.Platform))
	if plat != "" && plat != "all" && string(p.Platform) != plat {
		return time.Time{}, false
	}
	return at, true
}

// Apply returns the matching posts ordered by calendar time. Posts with
// neither a scheduled nor a published time never match.
func Apply(posts []domain.Post, f Filter) []domain.Post {
	type dated struct {
		at   time.Time
		post domain.Post
	}
	hits := make([]dated, 0, len(posts))
	for i := range posts {
		if at, ok := f.matches(&posts[i]); ok {
			hits = append(hits, dated{at: at, post: posts[i]})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].at.Before(hits[j].at) })
	out := make([]domain.Post, len(hits))
	for i, h := range hits {
		out[i] = h.post
	}
	return out
}

// Month groups the posts that fall inside the month, as seen from loc, by
// calendar day. platform narrows the result the same way Filter does.
func Month(posts []domain.Post, year int, month time.Month, platform string, loc *time.Location) MonthView {
	loc = location(loc)
	start, end := MonthRange(year, month, loc)
	days := end.Day()
	view := MonthView{Year: year, Month: month, Location: loc, Days: make([]Day, days)}
	for i := range view.Days {
		view.Days[i].Date = time.Date(year, month, i+1, 0, 0, 0, 0, loc)
	}
	for _, p := range Apply(posts, Filter{Start: start, End: end, Platform: platform}) {
		at, _ := p.CalendarTime()
		d := at.In(loc).Day()
		view.Days[d-1].Posts = append(view.Days[d-1].Posts, p)
	}
	return view
}
