package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
	"github.com/inucreativehrd21/FINAL-SERVER/pkg/logger"
	"github.com/inucreativehrd21/FINAL-SERVER/pkg/metrics"
)

// FeedbackRepository is the storage used by FeedbackService.
type FeedbackRepository interface {
	GetUserTurn(ctx context.Context, id, userID int64, role model.Role) (*model.Turn, error)
	UpdateFeedback(ctx context.Context, id, userID int64, isHelpful bool, comment string) error
}

// FeedbackService records helpfulness ratings on answers.
type FeedbackService struct {
	repo   FeedbackRepository
	events EventPublisher
	logger *logger.Logger
	now    func() time.Time
}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService(repo FeedbackRepository, events EventPublisher, log *logger.Logger) *FeedbackService {
	if events == nil {
		events = NopPublisher{}
	}
	return &FeedbackService{repo: repo, events: events, logger: log, now: time.Now}
}

// Record sets the feedback on an assistant turn that belongs to userID. Later calls overwrite earlier ones.
func (s *FeedbackService) Record(ctx context.Context, turnID, userID int64, isHelpful bool, comment string) error {
	turn, err := s.repo.GetUserTurn(ctx, turnID, userID, model.RoleAssistant)
	if err != nil {
		return notFound(err, "message", turnID)
	}
	if err := s.repo.UpdateFeedback(ctx, turnID, userID, isHelpful, comment); err != nil {
		return notFound(err, "message", turnID)
	}

	metrics.FeedbackTotal.WithLabelValues(strconv.FormatBool(isHelpful)).Inc()
	s.logger.Info("feedback recorded",
		zap.Int64("message_id", turnID),
		zap.Int64("user_id", userID),
		zap.Bool("is_helpful", isHelpful),
	)
	publishEvent(ctx, s.events, s.logger, &model.TurnEvent{
		Type:      model.EventTypeFeedback,
		UserID:    userID,
		SessionID: turn.SessionID,
		TurnID:    turnID,
		Category:  turn.Category,
		Metadata:  map[string]any{"is_helpful": isHelpful},
		CreatedAt: s.now().UTC(),
	})
	return nil
}
