package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
	"github.com/inucreativehrd21/FINAL-SERVER/pkg/logger"
	"github.com/inucreativehrd21/FINAL-SERVER/pkg/metrics"
)

// SessionRepository is the session storage used by SessionService.
type SessionRepository interface {
	CreateSession(ctx context.Context, sess *model.Session) error
	GetSession(ctx context.Context, id, userID int64) (*model.Session, error)
	ListSessions(ctx context.Context, userID int64) ([]model.SessionSummary, error)
	DeleteSession(ctx context.Context, id, userID int64) error
	ListTurns(ctx context.Context, sessionID int64) ([]model.Turn, error)
}

// SessionService handles session operations. Every lookup is scoped to the owning user.
type SessionService struct {
	repo   SessionRepository
	logger *logger.Logger
	now    func() time.Time
}

// NewSessionService creates a new session service.
func NewSessionService(repo SessionRepository, log *logger.Logger) *SessionService {
	return &SessionService{repo: repo, logger: log, now: time.Now}
}

// Resolve returns the user's session with sessionID, or creates one titled after
// firstMessage when sessionID is nil.
func (s *SessionService) Resolve(ctx context.Context, userID int64, sessionID *int64, firstMessage string) (*model.Session, error) {
	if sessionID != nil {
		sess, err := s.repo.GetSession(ctx, *sessionID, userID)
		if err != nil {
			return nil, notFound(err, "session", *sessionID)
		}
		return sess, nil
	}

	now := s.now().UTC()
	sess := &model.Session{
		UserID:    userID,
		Title:     model.TitleFromMessage(firstMessage),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	metrics.SessionsCreated.Inc()
	s.logger.Info("session created",
		zap.Int64("session_id", sess.ID),
		zap.Int64("user_id", userID),
	)
	return sess, nil
}

// List returns the user's sessions, most recently active first.
func (s *SessionService) List(ctx context.Context, userID int64) ([]model.SessionSummary, error) {
	sessions, err := s.repo.ListSessions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Detail returns a session with its full ordered turn list.
func (s *SessionService) Detail(ctx context.Context, userID, sessionID int64) (*model.SessionDetail, error) {
	sess, err := s.repo.GetSession(ctx, sessionID, userID)
	if err != nil {
		return nil, notFound(err, "session", sessionID)
	}

	turns, err := s.repo.ListTurns(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}

	return &model.SessionDetail{
		Session:      *sess,
		Messages:     turns,
		MessageCount: len(turns),
	}, nil
}

// Delete removes a session and its turns.
func (s *SessionService) Delete(ctx context.Context, userID, sessionID int64) error {
	if err := s.repo.DeleteSession(ctx, sessionID, userID); err != nil {
		return notFound(err, "session", sessionID)
	}
	s.logger.Info("session deleted",
		zap.Int64("session_id", sessionID),
		zap.Int64("user_id", userID),
	)
	return nil
}
