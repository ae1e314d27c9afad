package model

import (
	"time"
)

// EventType represents the outcome recorded by a turn event.
type EventType string

const (
	EventTypeTurnCompleted EventType = "turn.completed"
	EventTypeTurnFailed    EventType = "turn.failed"
	EventTypeFeedback      EventType = "feedback.recorded"
)

// TurnEvent is published to the event stream after a turn or feedback outcome.
type TurnEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	UserID    int64          `json:"user_id"`
	SessionID int64          `json:"session_id"`
	TurnID    int64          `json:"turn_id,omitempty"`
	Category  Category       `json:"category,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
