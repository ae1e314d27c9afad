package service

import (
	"context"
	"fmt"
	"time"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/analytics"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
)

// MaxAnalyticsDays bounds the analytics window.
const MaxAnalyticsDays = 365

// AnalyticsRepository is the storage used by AnalyticsService.
type AnalyticsRepository interface {
	AssistantTurnsSince(ctx context.Context, userID int64, since time.Time) ([]model.Turn, error)
}

// AnalyticsService computes usage snapshots on demand.
type AnalyticsService struct {
	repo AnalyticsRepository
	loc  *time.Location
	now  func() time.Time
}

// NewAnalyticsService creates an analytics service evaluating hours of day in loc.
func NewAnalyticsService(repo AnalyticsRepository, loc *time.Location) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{repo: repo, loc: loc, now: time.Now}
}

// Compute returns the user's snapshot over the trailing windowDays.
// A zero window selects the default. The result has HasData false when nothing was answered.
func (s *AnalyticsService) Compute(ctx context.Context, userID int64, windowDays int) (*model.AnalyticsSnapshot, error) {
	if windowDays == 0 {
		windowDays = analytics.DefaultWindowDays
	}
	if windowDays < 0 || windowDays > MaxAnalyticsDays {
		return nil, invalid("days must be between 1 and %d", MaxAnalyticsDays)
	}

	fetchDays := max(windowDays, analytics.TrendDays)
	now := s.now().UTC()
	turns, err := s.repo.AssistantTurnsSince(ctx, userID, now.AddDate(0, 0, -fetchDays))
	if err != nil {
		return nil, fmt.Errorf("failed to load turns: %w", err)
	}

	snap, _ := analytics.Compute(turns, now, windowDays, s.loc)
	return snap, nil
}
