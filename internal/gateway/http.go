package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
)

const defaultLogicError = "the answering service reported an error"

// maxResponseBytes caps how much of a gateway response is read.
const maxResponseBytes = 10 << 20

// HTTPClient is the Client implementation over HTTP.
type HTTPClient struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates a gateway client. An empty base URL is accepted;
// every call then fails with ErrNotConfigured.
func NewClient(cfg Config) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
	}
}

// Configured reports whether a gateway address is set.
func (c *HTTPClient) Configured() bool {
	return c.baseURL != ""
}

type userContext struct {
	LearningGoals    string `json:"learning_goals"`
	InterestedTopics string `json:"interested_topics"`
}

type chatRequest struct {
	Question              string               `json:"question"`
	UserID                string               `json:"user_id"`
	UserContext           userContext          `json:"user_context"`
	EnablePersonalization bool                 `json:"enable_personalization"`
	ChatHistory           []model.HistoryEntry `json:"chat_history"`
	SessionID             string               `json:"session_id"`
}

type chatResponse struct {
	Success          bool           `json:"success"`
	Answer           string         `json:"answer"`
	Sources          []any          `json:"sources"`
	Metadata         map[string]any `json:"metadata"`
	RelatedQuestions []any          `json:"related_questions"`
	Error            string         `json:"error"`
}

// Ask sends one question to the gateway. It never retries.
func (c *HTTPClient) Ask(ctx context.Context, req Request) (*AnswerResult, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	ctx, span := otel.Tracer("chatbot/gateway").Start(ctx, "gateway.Ask")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("chat.session_id", req.SessionID),
		attribute.Int("chat.history_len", len(req.History)),
	)

	result, err := c.ask(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) ask(ctx context.Context, req Request) (*AnswerResult, error) {
	history := req.History
	if history == nil {
		history = []model.HistoryEntry{}
	}
	body, err := json.Marshal(chatRequest{
		Question: req.Question,
		UserID:   strconv.FormatInt(req.UserID, 10),
		UserContext: userContext{
			LearningGoals:    req.Personalization.LearningGoals,
			InterestedTopics: req.Personalization.InterestedTopics,
		},
		EnablePersonalization: true,
		ChatHistory:           history,
		SessionID:             strconv.FormatInt(req.SessionID, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("encode gateway request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ChatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &UpstreamHTTPError{StatusCode: resp.StatusCode}
	}

	var out chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		if ctx.Err() != nil {
			return nil, classifyTransportError(ctx, err)
		}
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	elapsed := time.Since(start)

	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = defaultLogicError
		}
		return nil, &UpstreamLogicError{Message: msg}
	}

	if out.Sources == nil {
		out.Sources = []any{}
	}
	if out.Metadata == nil {
		out.Metadata = map[string]any{}
	}
	if out.RelatedQuestions == nil {
		out.RelatedQuestions = []any{}
	}
	return &AnswerResult{
		Answer:           out.Answer,
		Sources:          out.Sources,
		Metadata:         out.Metadata,
		RelatedQuestions: out.RelatedQuestions,
		Elapsed:          elapsed,
	}, nil
}

func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}
