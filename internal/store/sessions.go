package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
)

const lastMessagePreviewLength = 100

// CreateSession inserts a session and fills in its id.
func (s *Store) CreateSession(ctx context.Context, sess *model.Session) error {
	if sess == nil {
		return errors.New("nil session")
	}
	const q = `
		INSERT INTO chat_sessions (user_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`
	err := s.db.QueryRowContext(ctx, s.rebind(q),
		sess.UserID, sess.Title, s.timeArg(sess.CreatedAt), s.timeArg(sess.UpdatedAt),
	).Scan(&sess.ID)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession returns the session with id owned by userID.
func (s *Store) GetSession(ctx context.Context, id, userID int64) (*model.Session, error) {
	const q = `
		SELECT id, user_id, title, created_at, updated_at
		FROM chat_sessions
		WHERE id = ? AND user_id = ?`
	var (
		sess             model.Session
		created, updated dbTime
	)
	err := s.db.QueryRowContext(ctx, s.rebind(q), id, userID).Scan(
		&sess.ID, &sess.UserID, &sess.Title, &created, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	sess.CreatedAt, sess.UpdatedAt = created.Time, updated.Time
	return &sess, nil
}

// ListSessions returns the user's sessions, most recently active first.
func (s *Store) ListSessions(ctx context.Context, userID int64) ([]model.SessionSummary, error) {
	const q = `
		SELECT s.id, s.user_id, s.title, s.created_at, s.updated_at,
		       (SELECT COUNT(*) FROM chat_messages m WHERE m.session_id = s.id)
		FROM chat_sessions s
		WHERE s.user_id = ?
		ORDER BY s.updated_at DESC, s.id DESC`
	rows, err := s.db.QueryContext(ctx, s.rebind(q), userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := []model.SessionSummary{}
	for rows.Next() {
		var (
			sum              model.SessionSummary
			created, updated dbTime
		)
		if err := rows.Scan(&sum.ID, &sum.UserID, &sum.Title, &created, &updated, &sum.MessageCount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sum.CreatedAt, sum.UpdatedAt = created.Time, updated.Time
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Previews are fetched after the cursor is released; SQLite runs on one connection.
	for i := range out {
		if out[i].MessageCount == 0 {
			continue
		}
		preview, err := s.lastTurnPreview(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].LastMessage = preview
	}
	return out, nil
}

func (s *Store) lastTurnPreview(ctx context.Context, sessionID int64) (*model.TurnPreview, error) {
	const q = `
		SELECT role, content, created_at
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	var (
		p       model.TurnPreview
		created dbTime
	)
	err := s.db.QueryRowContext(ctx, s.rebind(q), sessionID).Scan(&p.Role, &p.Content, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last turn: %w", err)
	}
	p.Content = model.Truncate(p.Content, lastMessagePreviewLength)
	p.CreatedAt = created.Time
	return &p, nil
}

// TouchSession advances updated_at to at, never moving it backwards.
func (s *Store) TouchSession(ctx context.Context, id int64, at time.Time) error {
	const q = `
		UPDATE chat_sessions
		SET updated_at = CASE WHEN updated_at < ? THEN ? ELSE updated_at END
		WHERE id = ?`
	ts := s.timeArg(at)
	res, err := s.db.ExecContext(ctx, s.rebind(q), ts, ts, id)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSession removes a session owned by userID together with its turns.
func (s *Store) DeleteSession(ctx context.Context, id, userID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM chat_sessions WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	// Explicit so that SQLite connections without foreign_keys enabled still cascade.
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM chat_messages WHERE session_id = ?`), id); err != nil {
		return fmt.Errorf("delete session turns: %w", err)
	}
	return tx.Commit()
}
