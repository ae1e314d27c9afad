package model

// PeakTime describes the busiest hour of the day.
type PeakTime struct {
	Hour       int    `json:"hour"`
	Label      string `json:"label"`
	HourRange  string `json:"hour_range"`
	UsageCount int    `json:"usage_count"`
}

// FavoriteCategory is the most frequent category.
type FavoriteCategory struct {
	Name  Category `json:"name"`
	Count int      `json:"count"`
}

// CategoryStat is the count and share of one category.
type CategoryStat struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// WeeklyStats compares the trailing week with the week before it.
type WeeklyStats struct {
	ThisWeek int     `json:"this_week"`
	LastWeek int     `json:"last_week"`
	Growth   float64 `json:"growth"`
}

// AnalyticsSnapshot is the per-user usage summary. It is computed on demand and never stored.
type AnalyticsSnapshot struct {
	HasData          bool                      `json:"has_data"`
	PeriodDays       int                       `json:"period_days"`
	TotalQuestions   int                       `json:"total_questions"`
	PeakTime         *PeakTime                 `json:"peak_time,omitempty"`
	FavoriteCategory *FavoriteCategory         `json:"favorite_category,omitempty"`
	CategoryStats    map[Category]CategoryStat `json:"category_stats,omitempty"`
	WeeklyStats      *WeeklyStats              `json:"weekly_stats,omitempty"`
	AvgResponseTime  float64                   `json:"avg_response_time"`
}
