// Package analytics computes per-user usage summaries from answered turns.
package analytics

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
)

const (
	// DefaultWindowDays is the analytics window used when none is requested.
	DefaultWindowDays = 30
	// TrendDays is the number of days retrieved for the weekly comparison.
	TrendDays = 14

	week = 7 * 24 * time.Hour
)

// Compute builds a snapshot from a user's assistant turns.
//
// turns may extend beyond the window; only those created within windowDays
// of now feed the hourly, category and latency figures, while the weekly
// comparison always looks at the two trailing weeks. Hours are evaluated in loc.
// The second result is false when the window holds no turns.
func Compute(turns []model.Turn, now time.Time, windowDays int, loc *time.Location) (*model.AnalyticsSnapshot, bool) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if loc == nil {
		loc = time.UTC
	}

	windowStart := now.Add(-time.Duration(windowDays) * 24 * time.Hour)
	var inWindow []model.Turn
	for _, t := range turns {
		if t.Role == model.RoleAssistant && !t.CreatedAt.Before(windowStart) {
			inWindow = append(inWindow, t)
		}
	}

	snap := &model.AnalyticsSnapshot{PeriodDays: windowDays}
	if len(inWindow) == 0 {
		return snap, false
	}

	snap.HasData = true
	snap.TotalQuestions = len(inWindow)
	snap.PeakTime = peakTime(inWindow, loc)
	snap.CategoryStats, snap.FavoriteCategory = categoryStats(inWindow)
	snap.WeeklyStats = weeklyStats(turns, now)
	snap.AvgResponseTime = avgResponseTime(inWindow)
	return snap, true
}

// peakTime picks the busiest hour of day. Ties resolve to the earliest hour.
func peakTime(turns []model.Turn, loc *time.Location) *model.PeakTime {
	var counts [24]int
	for _, t := range turns {
		counts[t.CreatedAt.In(loc).Hour()]++
	}

	peak := 0
	for h := 1; h < 24; h++ {
		if counts[h] > counts[peak] {
			peak = h
		}
	}

	return &model.PeakTime{
		Hour:       peak,
		Label:      HourLabel(peak),
		HourRange:  fmt.Sprintf("%02d:00-%02d:00", peak, (peak+1)%24),
		UsageCount: counts[peak],
	}
}

// HourLabel names the part of day an hour belongs to.
func HourLabel(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 18:
		return "afternoon"
	case hour >= 18 && hour < 22:
		return "evening"
	default:
		return "night"
	}
}

func categoryStats(turns []model.Turn) (map[model.Category]model.CategoryStat, *model.FavoriteCategory) {
	counts := make(map[model.Category]int)
	for _, t := range turns {
		c := t.Category
		if c == "" {
			c = model.CategoryUnknown
		}
		counts[c]++
	}

	total := float64(len(turns))
	stats := make(map[model.Category]model.CategoryStat, len(counts))
	for c, n := range counts {
		stats[c] = model.CategoryStat{Count: n, Percentage: round(float64(n)/total*100, 1)}
	}

	var fav *model.FavoriteCategory
	for _, c := range orderedCategories(counts) {
		if fav == nil || counts[c] > fav.Count {
			fav = &model.FavoriteCategory{Name: c, Count: counts[c]}
		}
	}
	return stats, fav
}

// orderedCategories lists the categories present in counts, known ones first in table order.
func orderedCategories(counts map[model.Category]int) []model.Category {
	out := make([]model.Category, 0, len(counts))
	seen := make(map[model.Category]bool, len(counts))
	for _, c := range model.Categories {
		if _, ok := counts[c]; ok {
			out = append(out, c)
			seen[c] = true
		}
	}
	var extra []model.Category
	for c := range counts {
		if !seen[c] {
			extra = append(extra, c)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

func weeklyStats(turns []model.Turn, now time.Time) *model.WeeklyStats {
	thisStart := now.Add(-week)
	lastStart := now.Add(-2 * week)

	ws := &model.WeeklyStats{}
	for _, t := range turns {
		if t.Role != model.RoleAssistant || t.CreatedAt.After(now) {
			continue
		}
		switch {
		case !t.CreatedAt.Before(thisStart):
			ws.ThisWeek++
		case !t.CreatedAt.Before(lastStart):
			ws.LastWeek++
		}
	}
	ws.Growth = Growth(ws.ThisWeek, ws.LastWeek)
	return ws
}

// Growth is the week-over-week change in percent, rounded to one decimal.
// Growth from zero is reported as 100 when there is any activity and 0 otherwise.
func Growth(thisWeek, lastWeek int) float64 {
	if lastWeek == 0 {
		if thisWeek > 0 {
			return 100.0
		}
		return 0
	}
	return round(float64(thisWeek-lastWeek)/float64(lastWeek)*100, 1)
}

func avgResponseTime(turns []model.Turn) float64 {
	var (
		sum float64
		n   int
	)
	for i := range turns {
		if rt, ok := turns[i].ResponseTime(); ok {
			sum += rt
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return round(sum/float64(n), 2)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
