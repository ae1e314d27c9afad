package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
)

var now = time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC)

func answered(at time.Time, category model.Category, responseTime any) model.Turn {
	t := model.Turn{Role: model.RoleAssistant, Category: category, CreatedAt: at, Metadata: map[string]any{}}
	if responseTime != nil {
		t.Metadata[model.MetaResponseTime] = responseTime
	}
	return t
}

func at(daysAgo, hour int) time.Time {
	d := now.AddDate(0, 0, -daysAgo)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 30, 0, 0, time.UTC)
}

func TestCompute_NoData(t *testing.T) {
	snap, ok := Compute(nil, now, 30, time.UTC)
	assert.False(t, ok)
	assert.False(t, snap.HasData)

	// User turns and turns outside the window are ignored.
	turns := []model.Turn{
		{Role: model.RoleUser, CreatedAt: at(1, 10)},
		answered(at(45, 10), model.CategoryGit, nil),
	}
	_, ok = Compute(turns, now, 30, time.UTC)
	assert.False(t, ok)
}

func TestCompute_Snapshot(t *testing.T) {
	turns := []model.Turn{
		answered(at(1, 14), model.CategoryGit, 2.0),
		answered(at(2, 14), model.CategoryGit, 4.0),
		answered(at(3, 9), model.CategoryPython, nil),
		answered(at(10, 14), model.CategoryGeneral, 3.0),
	}

	snap, ok := Compute(turns, now, 30, time.UTC)
	require.True(t, ok)

	assert.Equal(t, 4, snap.TotalQuestions)
	require.NotNil(t, snap.PeakTime)
	assert.Equal(t, 14, snap.PeakTime.Hour)
	assert.Equal(t, "afternoon", snap.PeakTime.Label)
	assert.Equal(t, "14:00-15:00", snap.PeakTime.HourRange)
	assert.Equal(t, 3, snap.PeakTime.UsageCount)

	require.NotNil(t, snap.FavoriteCategory)
	assert.Equal(t, model.CategoryGit, snap.FavoriteCategory.Name)
	assert.Equal(t, model.CategoryStat{Count: 2, Percentage: 50.0}, snap.CategoryStats[model.CategoryGit])
	assert.Equal(t, model.CategoryStat{Count: 1, Percentage: 25.0}, snap.CategoryStats[model.CategoryPython])

	require.NotNil(t, snap.WeeklyStats)
	assert.Equal(t, 3, snap.WeeklyStats.ThisWeek)
	assert.Equal(t, 1, snap.WeeklyStats.LastWeek)
	assert.Equal(t, 200.0, snap.WeeklyStats.Growth)

	assert.Equal(t, 3.0, snap.AvgResponseTime)
}

func TestCompute_FavoriteCategoryShare(t *testing.T) {
	var turns []model.Turn
	for i := 0; i < 8; i++ {
		turns = append(turns, answered(at(i+1, 10), model.CategoryPython, nil))
	}
	turns = append(turns, answered(at(2, 11), model.CategoryGit, nil), answered(at(3, 11), model.CategoryGeneral, nil))

	snap, ok := Compute(turns, now, 30, time.UTC)
	require.True(t, ok)

	require.NotNil(t, snap.FavoriteCategory)
	assert.Equal(t, model.CategoryPython, snap.FavoriteCategory.Name)
	assert.Equal(t, 8, snap.FavoriteCategory.Count)
	assert.Equal(t, model.CategoryStat{Count: 8, Percentage: 80.0}, snap.CategoryStats[model.CategoryPython])
	assert.Equal(t, model.CategoryStat{Count: 1, Percentage: 10.0}, snap.CategoryStats[model.CategoryGit])
}

func TestCompute_CategoryPercentagesSumToHundred(t *testing.T) {
	turns := []model.Turn{
		answered(at(1, 1), model.CategoryGit, nil),
		answered(at(1, 2), model.CategoryPython, nil),
		answered(at(1, 3), model.CategoryGeneral, nil),
	}
	snap, ok := Compute(turns, now, 30, time.UTC)
	require.True(t, ok)

	var sum float64
	for _, s := range snap.CategoryStats {
		sum += s.Percentage
	}
	assert.InDelta(t, 100.0, sum, 0.2)
	assert.Equal(t, 33.3, snap.CategoryStats[model.CategoryGit].Percentage)
}

func TestCompute_TiesResolveDeterministically(t *testing.T) {
	turns := []model.Turn{
		answered(at(1, 22), model.CategoryPython, nil),
		answered(at(1, 7), model.CategoryGit, nil),
	}
	snap, ok := Compute(turns, now, 30, time.UTC)
	require.True(t, ok)

	assert.Equal(t, 7, snap.PeakTime.Hour)
	assert.Equal(t, "morning", snap.PeakTime.Label)
	assert.Equal(t, model.CategoryGit, snap.FavoriteCategory.Name)
}

func TestCompute_UsesLocation(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	turns := []model.Turn{answered(at(1, 5), model.CategoryGit, nil)}

	snap, ok := Compute(turns, now, 30, seoul)
	require.True(t, ok)
	assert.Equal(t, 14, snap.PeakTime.Hour)
}

func TestCompute_AverageIgnoresNonNumeric(t *testing.T) {
	turns := []model.Turn{
		answered(at(1, 1), model.CategoryGit, 1.234),
		answered(at(1, 2), model.CategoryGit, "fast"),
		answered(at(1, 3), model.CategoryGit, 2.0),
	}
	snap, _ := Compute(turns, now, 30, time.UTC)
	assert.Equal(t, 1.62, snap.AvgResponseTime)
}

func TestGrowth(t *testing.T) {
	assert.Equal(t, 0.0, Growth(0, 0))
	assert.Equal(t, 100.0, Growth(5, 0))
	assert.Equal(t, -50.0, Growth(2, 4))
	assert.Equal(t, 33.3, Growth(4, 3))
}

func TestHourLabel(t *testing.T) {
	assert.Equal(t, "night", HourLabel(5))
	assert.Equal(t, "morning", HourLabel(6))
	assert.Equal(t, "afternoon", HourLabel(12))
	assert.Equal(t, "evening", HourLabel(18))
	assert.Equal(t, "night", HourLabel(22))
}
