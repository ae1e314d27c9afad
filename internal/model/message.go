package model

import (
	"time"
)

// Role represents the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Category is the coarse topic label assigned to an assistant turn.
type Category string

const (
	CategoryGit     Category = "git"
	CategoryPython  Category = "python"
	CategoryGeneral Category = "general"
	CategoryUnknown Category = "unknown"
)

// Categories lists every category in classification priority order.
var Categories = []Category{CategoryGit, CategoryPython, CategoryGeneral, CategoryUnknown}

// Metadata keys written on assistant turns.
const (
	MetaResponseTime     = "response_time"
	MetaRelatedQuestions = "related_questions"
)

// Turn is a single message in a session.
type Turn struct {
	ID        int64  `json:"id"`
	SessionID int64  `json:"session_id"`
	UserID    *int64 `json:"user_id,omitempty"`

	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Assistant turns only
	Sources  []any          `json:"sources"`
	Metadata map[string]any `json:"metadata"`
	Category Category       `json:"category"`

	// Feedback
	IsHelpful       *bool  `json:"is_helpful"`
	FeedbackComment string `json:"feedback_comment"`

	CreatedAt time.Time `json:"created_at"`
}

// HistoryEntry is a prior turn forwarded to the gateway as conversation context.
type HistoryEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ResponseTime returns the numeric response_time metadata value, if present.
func (t *Turn) ResponseTime() (float64, bool) {
	if t.Metadata == nil {
		return 0, false
	}
	switch v := t.Metadata[MetaResponseTime].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// TurnRequest is the input of the turn pipeline.
type TurnRequest struct {
	UserID    int64
	SessionID *int64
	Message   string
}

// TurnResult is the output of a successful turn.
type TurnResult struct {
	SessionID        int64  `json:"session_id"`
	MessageID        int64  `json:"message_id"`
	Answer           string `json:"response"`
	Sources          []any  `json:"sources"`
	RelatedQuestions []any  `json:"related_questions"`
}

// HistoryQuery filters the answered-question listing.
type HistoryQuery struct {
	Limit    int
	Offset   int
	Category Category
}

// HistoryItem is one answered question in the history listing.
type HistoryItem struct {
	ID              int64     `json:"id"`
	SessionID       int64     `json:"session_id"`
	Question        string    `json:"question"`
	Answer          string    `json:"answer"`
	Category        Category  `json:"category"`
	Sources         []any     `json:"sources"`
	IsHelpful       *bool     `json:"is_helpful"`
	FeedbackComment string    `json:"feedback_comment"`
	CreatedAt       time.Time `json:"created_at"`
}

// HistoryPage is a page of the history listing.
type HistoryPage struct {
	Count   int           `json:"count"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	Results []HistoryItem `json:"results"`
}
