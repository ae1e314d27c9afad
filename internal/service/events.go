package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
	"github.com/inucreativehrd21/FINAL-SERVER/pkg/logger"
	"github.com/inucreativehrd21/FINAL-SERVER/pkg/metrics"
)

const publishTimeout = 5 * time.Second

// EventPublisher delivers turn events to downstream consumers.
type EventPublisher interface {
	PublishTurnEvent(ctx context.Context, event *model.TurnEvent) error
}

// NopPublisher discards events. It is used when no event stream is configured.
type NopPublisher struct{}

// PublishTurnEvent implements EventPublisher.
func (NopPublisher) PublishTurnEvent(context.Context, *model.TurnEvent) error { return nil }

// publishEvent sends ev without letting a publish failure affect the caller.
func publishEvent(ctx context.Context, pub EventPublisher, log *logger.Logger, ev *model.TurnEvent) {
	if pub == nil {
		return
	}
	if ev.ID == "" {
		ev.ID = uuid.Must(uuid.NewV7()).String()
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := pub.PublishTurnEvent(ctx, ev); err != nil {
		metrics.EventPublishFailures.Inc()
		log.Warn("failed to publish event",
			zap.String("event_type", string(ev.Type)),
			zap.Int64("session_id", ev.SessionID),
			zap.Error(err),
		)
	}
}
