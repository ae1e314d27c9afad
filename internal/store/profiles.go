package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
)

// GetProfile returns the learner profile of userID.
func (s *Store) GetProfile(ctx context.Context, userID int64) (*model.UserProfile, error) {
	const q = `SELECT user_id, learning_goals, interested_topics FROM user_profiles WHERE user_id = ?`
	var (
		p             model.UserProfile
		goals, topics string
	)
	err := s.db.QueryRowContext(ctx, s.rebind(q), userID).Scan(&p.UserID, &goals, &topics)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if err := decodeJSON(goals, &p.LearningGoals); err != nil {
		return nil, fmt.Errorf("decode learning goals: %w", err)
	}
	if err := decodeJSON(topics, &p.InterestedTopics); err != nil {
		return nil, fmt.Errorf("decode interested topics: %w", err)
	}
	return &p, nil
}

// SaveProfile creates or replaces a learner profile.
func (s *Store) SaveProfile(ctx context.Context, p *model.UserProfile) error {
	if p == nil {
		return errors.New("nil profile")
	}
	goals, err := encodeJSON(p.LearningGoals, "[]")
	if err != nil {
		return fmt.Errorf("encode learning goals: %w", err)
	}
	topics, err := encodeJSON(p.InterestedTopics, "[]")
	if err != nil {
		return fmt.Errorf("encode interested topics: %w", err)
	}
	const q = `
		INSERT INTO user_profiles (user_id, learning_goals, interested_topics)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET learning_goals = excluded.learning_goals, interested_topics = excluded.interested_topics`
	if _, err := s.db.ExecContext(ctx, s.rebind(q), p.UserID, goals, topics); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
