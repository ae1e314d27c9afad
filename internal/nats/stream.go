package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
)

const (
	// StreamName is the JetStream stream holding turn events.
	StreamName = "CHATBOT_EVENTS"

	// SubjectPrefix is the prefix for all event subjects.
	SubjectPrefix = "chatbot"
)

// StreamManager handles JetStream stream operations.
type StreamManager struct {
	js jetstream.JetStream
}

// NewStreamManager creates a stream manager on an open client.
func NewStreamManager(client *Client) *StreamManager {
	return &StreamManager{js: client.JetStream()}
}

// EnsureStream creates the event stream if it does not exist yet.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	_, err := m.js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("failed to look up stream: %w", err)
	}

	_, err = m.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      90 * 24 * time.Hour,
		MaxBytes:    10 * 1024 * 1024 * 1024,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "Chat turn and feedback events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// EventSubject returns the subject an event is published on.
func EventSubject(userID int64, eventType model.EventType) string {
	return fmt.Sprintf("%s.%d.%s", SubjectPrefix, userID, eventType)
}

// UserFilter matches every event of one user.
func UserFilter(userID int64) string {
	return fmt.Sprintf("%s.%d.>", SubjectPrefix, userID)
}

// PublishTurnEvent publishes an event and waits for the stream acknowledgement.
func (m *StreamManager) PublishTurnEvent(ctx context.Context, event *model.TurnEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := m.js.Publish(ctx, EventSubject(event.UserID, event.Type), data, jetstream.WithMsgID(event.ID)); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// RecentEvents reads up to limit of a user's events, oldest first, starting after the given stream sequence.
func (m *StreamManager) RecentEvents(ctx context.Context, userID int64, afterSequence uint64, limit int) ([]model.TurnEvent, error) {
	cfg := jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{UserFilter(userID)},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	}
	if afterSequence > 0 {
		cfg.DeliverPolicy = jetstream.DeliverByStartSequencePolicy
		cfg.OptStartSeq = afterSequence + 1
	}

	consumer, err := m.js.OrderedConsumer(ctx, StreamName, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	batch, err := consumer.Fetch(limit, jetstream.FetchMaxWait(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	var events []model.TurnEvent
	for msg := range batch.Messages() {
		var ev model.TurnEvent
		if err := json.Unmarshal(msg.Data(), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	if err := batch.Error(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("batch error: %w", err)
	}
	return events, nil
}
