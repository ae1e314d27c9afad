// Package model defines data structures for the chatbot service.
package model

import (
	"time"
)

// MaxTitleLength is the number of characters of the first question kept as a session title.
const MaxTitleLength = 100

// Session is a user-owned conversation thread.
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TurnPreview is a truncated view of the most recent turn in a session.
type TurnPreview struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionSummary is a session as shown in the session list.
type SessionSummary struct {
	Session
	MessageCount int          `json:"message_count"`
	LastMessage  *TurnPreview `json:"last_message"`
}

// SessionDetail is a session with its full ordered turn list.
type SessionDetail struct {
	Session
	Messages     []Turn `json:"messages"`
	MessageCount int    `json:"message_count"`
}

// TitleFromMessage derives a session title from the first user message.
func TitleFromMessage(message string) string {
	return Truncate(message, MaxTitleLength)
}

// Truncate returns at most n characters of s without splitting a rune.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
