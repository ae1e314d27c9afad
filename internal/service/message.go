package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/classifier"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/gateway"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/personalization"
	"github.com/inucreativehrd21/FINAL-SERVER/pkg/logger"
	"github.com/inucreativehrd21/FINAL-SERVER/pkg/metrics"
)

const (
	// MaxHistoryTurns is the number of prior turns forwarded to the gateway.
	MaxHistoryTurns = 10
	// MaxMessageBytes bounds a single question.
	MaxMessageBytes = 100000
)

// TurnRepository is the turn storage used by TurnService.
type TurnRepository interface {
	CreateTurn(ctx context.Context, t *model.Turn) error
	TouchSession(ctx context.Context, id int64, at time.Time) error
	EarliestTurns(ctx context.Context, sessionID, excludeID int64, limit int) ([]model.HistoryEntry, error)
}

// ContextBuilder produces the personalization context for a user.
type ContextBuilder interface {
	BuildContext(ctx context.Context, userID int64) personalization.Result
}

// TurnService runs the question/answer pipeline.
type TurnService struct {
	sessions        *SessionService
	repo            TurnRepository
	personalization ContextBuilder
	gateway         gateway.Client
	events          EventPublisher
	logger          *logger.Logger
	now             func() time.Time
}

// NewTurnService creates a new turn service.
func NewTurnService(
	sessions *SessionService,
	repo TurnRepository,
	personalizer ContextBuilder,
	gw gateway.Client,
	events EventPublisher,
	log *logger.Logger,
) *TurnService {
	if events == nil {
		events = NopPublisher{}
	}
	return &TurnService{
		sessions:        sessions,
		repo:            repo,
		personalization: personalizer,
		gateway:         gw,
		events:          events,
		logger:          log,
		now:             time.Now,
	}
}

// Submit answers one question.
//
// The user turn is persisted before the gateway is called and stays persisted
// when the call fails. The caller's cancellation is not propagated: once
// accepted, a turn runs until it completes or the gateway timeout fires.
func (s *TurnService) Submit(ctx context.Context, req model.TurnRequest) (*model.TurnResult, error) {
	ctx = context.WithoutCancel(ctx)
	ctx, span := otel.Tracer("chatbot/service").Start(ctx, "turn.Submit")
	defer span.End()

	result, err := s.submit(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("chat.session_id", result.SessionID),
		attribute.Int64("chat.message_id", result.MessageID),
	)
	return result, nil
}

func (s *TurnService) submit(ctx context.Context, req model.TurnRequest) (*model.TurnResult, error) {
	message := strings.TrimSpace(req.Message)
	if err := validateMessage(message); err != nil {
		return nil, err
	}

	sess, err := s.sessions.Resolve(ctx, req.UserID, req.SessionID, message)
	if err != nil {
		return nil, err
	}
	log := s.logger.With(zap.Int64("user_id", req.UserID), zap.Int64("session_id", sess.ID))

	userID := req.UserID
	userTurn := &model.Turn{
		SessionID: sess.ID,
		UserID:    &userID,
		Role:      model.RoleUser,
		Content:   message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.persist(ctx, userTurn); err != nil {
		return nil, err
	}

	history, err := s.HistoryWindow(ctx, sess.ID, userTurn.ID, MaxHistoryTurns)
	if err != nil {
		return nil, err
	}

	pc := s.personalization.BuildContext(ctx, req.UserID)
	metrics.PersonalizationTotal.WithLabelValues(pc.Outcome.String()).Inc()
	if pc.Outcome == personalization.LookupFailed {
		log.Warn("personalization lookup failed, continuing without profile", zap.Error(pc.Err))
	}

	start := time.Now()
	answer, err := s.gateway.Ask(ctx, gateway.Request{
		Question:        message,
		UserID:          req.UserID,
		SessionID:       sess.ID,
		Personalization: pc.Context,
		History:         history,
	})
	elapsed := time.Since(start)
	metrics.RecordGatewayCall(gatewayOutcome(err), elapsed.Seconds())
	if err != nil {
		log.Error("rag gateway call failed",
			zap.Int64("user_turn_id", userTurn.ID),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		publishEvent(ctx, s.events, s.logger, &model.TurnEvent{
			Type:      model.EventTypeTurnFailed,
			UserID:    req.UserID,
			SessionID: sess.ID,
			TurnID:    userTurn.ID,
			Reason:    gatewayOutcome(err),
			CreatedAt: s.now().UTC(),
		})
		return nil, err
	}

	if answer.Elapsed <= 0 {
		answer.Elapsed = elapsed
	}
	category := classifier.Classify(message)
	assistantTurn := &model.Turn{
		SessionID: sess.ID,
		UserID:    &userID,
		Role:      model.RoleAssistant,
		Content:   answer.Answer,
		Sources:   answer.Sources,
		Metadata:  answerMetadata(answer),
		Category:  category,
		CreatedAt: s.now().UTC(),
	}
	if err := s.persist(ctx, assistantTurn); err != nil {
		return nil, err
	}

	log.Info("turn completed",
		zap.Int64("message_id", assistantTurn.ID),
		zap.String("category", string(category)),
		zap.Int("sources", len(answer.Sources)),
		zap.Duration("elapsed", elapsed),
	)
	publishEvent(ctx, s.events, s.logger, &model.TurnEvent{
		Type:      model.EventTypeTurnCompleted,
		UserID:    req.UserID,
		SessionID: sess.ID,
		TurnID:    assistantTurn.ID,
		Category:  category,
		Metadata:  map[string]any{model.MetaResponseTime: assistantTurn.Metadata[model.MetaResponseTime]},
		CreatedAt: assistantTurn.CreatedAt,
	})

	return &model.TurnResult{
		SessionID:        sess.ID,
		MessageID:        assistantTurn.ID,
		Answer:           answer.Answer,
		Sources:          answer.Sources,
		RelatedQuestions: answer.RelatedQuestions,
	}, nil
}

// HistoryWindow returns the earliest maxTurns turns of a session, oldest first, never including excludeID.
func (s *TurnService) HistoryWindow(ctx context.Context, sessionID, excludeID int64, maxTurns int) ([]model.HistoryEntry, error) {
	if maxTurns <= 0 {
		return []model.HistoryEntry{}, nil
	}
	entries, err := s.repo.EarliestTurns(ctx, sessionID, excludeID, maxTurns)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return entries, nil
}

// persist stores a turn and bumps the session activity time.
func (s *TurnService) persist(ctx context.Context, t *model.Turn) error {
	if err := s.repo.CreateTurn(ctx, t); err != nil {
		return fmt.Errorf("failed to save %s turn: %w", t.Role, err)
	}
	if err := s.repo.TouchSession(ctx, t.SessionID, t.CreatedAt); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	metrics.RecordTurn(string(t.Role), string(t.Category))
	return nil
}

// answerMetadata merges related questions into the gateway metadata and
// fills in the measured latency when the gateway did not report one.
func answerMetadata(answer *gateway.AnswerResult) map[string]any {
	meta := make(map[string]any, len(answer.Metadata)+2)
	for k, v := range answer.Metadata {
		meta[k] = v
	}
	meta[model.MetaRelatedQuestions] = answer.RelatedQuestions
	if _, ok := meta[model.MetaResponseTime]; !ok {
		meta[model.MetaResponseTime] = math.Round(answer.Elapsed.Seconds()*100) / 100
	}
	return meta
}

func validateMessage(message string) error {
	if message == "" {
		return invalid("message is required")
	}
	if len(message) > MaxMessageBytes {
		return invalid("message exceeds %d bytes", MaxMessageBytes)
	}
	if !utf8.ValidString(message) {
		return invalid("message must be valid UTF-8")
	}
	return nil
}

func gatewayOutcome(err error) string {
	var (
		logicErr *gateway.UpstreamLogicError
		httpErr  *gateway.UpstreamHTTPError
	)
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, gateway.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, gateway.ErrTimeout):
		return "timeout"
	case errors.Is(err, gateway.ErrUnreachable):
		return "unreachable"
	case errors.As(err, &logicErr):
		return "upstream_logic"
	case errors.As(err, &httpErr):
		return "upstream_http"
	default:
		return "error"
	}
}
