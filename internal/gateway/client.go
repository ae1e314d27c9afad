// Package gateway provides the client for the remote RAG answering service.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
)

// DefaultTimeout bounds a single gateway call. Multi-step retrieval routinely takes tens of seconds.
const DefaultTimeout = 90 * time.Second

// ChatPath is the gateway endpoint that answers questions.
const ChatPath = "/api/v1/chat"

var (
	// ErrNotConfigured means no gateway address is configured.
	ErrNotConfigured = errors.New("rag gateway is not configured")
	// ErrTimeout means the gateway did not answer within the timeout.
	ErrTimeout = errors.New("rag gateway timed out")
	// ErrUnreachable means the gateway could not be contacted.
	ErrUnreachable = errors.New("rag gateway is unreachable")
)

// UpstreamLogicError is a well-formed answer that reports failure.
type UpstreamLogicError struct {
	Message string
}

func (e *UpstreamLogicError) Error() string {
	return e.Message
}

// UpstreamHTTPError is a non-success HTTP status from the gateway.
type UpstreamHTTPError struct {
	StatusCode int
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("rag gateway returned HTTP %d", e.StatusCode)
}

// Request is one question forwarded to the gateway.
type Request struct {
	Question        string
	UserID          int64
	SessionID       int64
	Personalization model.PersonalizationContext
	History         []model.HistoryEntry
}

// AnswerResult is a successful gateway answer.
type AnswerResult struct {
	Answer           string
	Sources          []any
	Metadata         map[string]any
	RelatedQuestions []any
	// Elapsed is the measured round trip.
	Elapsed time.Duration
}

// Client answers questions through the RAG gateway.
type Client interface {
	Ask(ctx context.Context, req Request) (*AnswerResult, error)
}

// Config configures the HTTP gateway client.
type Config struct {
	BaseURL string
	// Timeout replaces DefaultTimeout when non-zero. Only tests set it.
	Timeout time.Duration
}
