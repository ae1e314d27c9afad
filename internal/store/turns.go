package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
)

const turnColumns = `id, session_id, user_id, role, content, sources, metadata, category, is_helpful, feedback_comment, created_at`

// CreateTurn inserts a turn and fills in its id.
func (s *Store) CreateTurn(ctx context.Context, t *model.Turn) error {
	if t == nil {
		return errors.New("nil turn")
	}
	sources, err := encodeJSON(t.Sources, "[]")
	if err != nil {
		return fmt.Errorf("encode sources: %w", err)
	}
	metadata, err := encodeJSON(t.Metadata, "{}")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	category := t.Category
	if category == "" {
		category = model.CategoryUnknown
	}
	var (
		userID  sql.NullInt64
		helpful sql.NullBool
	)
	if t.UserID != nil {
		userID = sql.NullInt64{Int64: *t.UserID, Valid: true}
	}
	if t.IsHelpful != nil {
		helpful = sql.NullBool{Bool: *t.IsHelpful, Valid: true}
	}

	const q = `
		INSERT INTO chat_messages
			(session_id, user_id, role, content, sources, metadata, category, is_helpful, feedback_comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`
	err = s.db.QueryRowContext(ctx, s.rebind(q),
		t.SessionID, userID, string(t.Role), t.Content, sources, metadata,
		string(category), helpful, t.FeedbackComment, s.timeArg(t.CreatedAt),
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	t.Category = category
	return nil
}

// ListTurns returns every turn of a session in creation order.
func (s *Store) ListTurns(ctx context.Context, sessionID int64) ([]model.Turn, error) {
	q := `SELECT ` + turnColumns + `
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY created_at, id`
	return s.queryTurns(ctx, q, sessionID)
}

// EarliestTurns returns up to limit turns of a session in creation order, skipping excludeID.
func (s *Store) EarliestTurns(ctx context.Context, sessionID, excludeID int64, limit int) ([]model.HistoryEntry, error) {
	const q = `
		SELECT role, content
		FROM chat_messages
		WHERE session_id = ? AND id <> ?
		ORDER BY created_at, id
		LIMIT ?`
	rows, err := s.db.QueryContext(ctx, s.rebind(q), sessionID, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("history window: %w", err)
	}
	defer rows.Close()

	out := []model.HistoryEntry{}
	for rows.Next() {
		var e model.HistoryEntry
		if err := rows.Scan(&e.Role, &e.Content); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetUserTurn returns the turn with id whose direct user reference is userID.
func (s *Store) GetUserTurn(ctx context.Context, id, userID int64, role model.Role) (*model.Turn, error) {
	q := `SELECT ` + turnColumns + `
		FROM chat_messages
		WHERE id = ? AND user_id = ? AND role = ?`
	turns, err := s.queryTurns(ctx, q, id, userID, string(role))
	if err != nil {
		return nil, err
	}
	if len(turns) == 0 {
		return nil, ErrNotFound
	}
	return &turns[0], nil
}

// UpdateFeedback overwrites the feedback fields of an assistant turn owned by userID.
func (s *Store) UpdateFeedback(ctx context.Context, id, userID int64, isHelpful bool, comment string) error {
	const q = `
		UPDATE chat_messages
		SET is_helpful = ?, feedback_comment = ?
		WHERE id = ? AND user_id = ? AND role = ?`
	res, err := s.db.ExecContext(ctx, s.rebind(q), isHelpful, comment, id, userID, string(model.RoleAssistant))
	if err != nil {
		return fmt.Errorf("update feedback: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AssistantTurnsSince returns the user's assistant turns created at or after since.
func (s *Store) AssistantTurnsSince(ctx context.Context, userID int64, since time.Time) ([]model.Turn, error) {
	q := `SELECT ` + turnColumns + `
		FROM chat_messages
		WHERE user_id = ? AND role = ? AND created_at >= ?
		ORDER BY created_at, id`
	return s.queryTurns(ctx, q, userID, string(model.RoleAssistant), s.timeArg(since))
}

// ListAnswered returns a page of the user's assistant turns, newest first,
// each paired with the closest preceding user turn of the same session.
func (s *Store) ListAnswered(ctx context.Context, userID int64, query model.HistoryQuery) (*model.HistoryPage, error) {
	where := `m.user_id = ? AND m.role = ?`
	args := []any{userID, string(model.RoleAssistant)}
	if query.Category != "" {
		where += ` AND m.category = ?`
		args = append(args, string(query.Category))
	}

	page := &model.HistoryPage{Limit: query.Limit, Offset: query.Offset, Results: []model.HistoryItem{}}
	if err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM chat_messages m WHERE `+where), args...).Scan(&page.Count); err != nil {
		return nil, fmt.Errorf("count history: %w", err)
	}

	q := `
		SELECT m.id, m.session_id, m.content, m.category, m.sources, m.is_helpful, m.feedback_comment, m.created_at,
		       COALESCE((
		           SELECT u.content FROM chat_messages u
		           WHERE u.session_id = m.session_id AND u.role = ?
		             AND (u.created_at < m.created_at OR (u.created_at = m.created_at AND u.id < m.id))
		           ORDER BY u.created_at DESC, u.id DESC
		           LIMIT 1
		       ), '')
		FROM chat_messages m
		WHERE ` + where + `
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT ? OFFSET ?`
	pageArgs := append([]any{string(model.RoleUser)}, args...)
	pageArgs = append(pageArgs, query.Limit, query.Offset)

	rows, err := s.db.QueryContext(ctx, s.rebind(q), pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item     model.HistoryItem
			sources  string
			helpful  sql.NullBool
			created  dbTime
			category string
		)
		if err := rows.Scan(&item.ID, &item.SessionID, &item.Answer, &category, &sources,
			&helpful, &item.FeedbackComment, &created, &item.Question); err != nil {
			return nil, fmt.Errorf("scan history item: %w", err)
		}
		item.Category = model.Category(category)
		item.CreatedAt = created.Time
		if helpful.Valid {
			v := helpful.Bool
			item.IsHelpful = &v
		}
		if err := decodeJSON(sources, &item.Sources); err != nil {
			return nil, fmt.Errorf("decode sources: %w", err)
		}
		if item.Sources == nil {
			item.Sources = []any{}
		}
		page.Results = append(page.Results, item)
	}
	return page, rows.Err()
}

func (s *Store) queryTurns(ctx context.Context, q string, args ...any) ([]model.Turn, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	out := []model.Turn{}
	for rows.Next() {
		t, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanTurn(rows *sql.Rows) (*model.Turn, error) {
	var (
		t                 model.Turn
		userID            sql.NullInt64
		role, category    string
		sources, metadata string
		helpful           sql.NullBool
		created           dbTime
	)
	if err := rows.Scan(&t.ID, &t.SessionID, &userID, &role, &t.Content, &sources, &metadata,
		&category, &helpful, &t.FeedbackComment, &created); err != nil {
		return nil, fmt.Errorf("scan turn: %w", err)
	}
	t.Role = model.Role(role)
	t.Category = model.Category(category)
	t.CreatedAt = created.Time
	if userID.Valid {
		v := userID.Int64
		t.UserID = &v
	}
	if helpful.Valid {
		v := helpful.Bool
		t.IsHelpful = &v
	}
	if err := decodeJSON(sources, &t.Sources); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	if err := decodeJSON(metadata, &t.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if t.Sources == nil {
		t.Sources = []any{}
	}
	if t.Metadata == nil {
		t.Metadata = map[string]any{}
	}
	return &t, nil
}

func encodeJSON(v any, empty string) (string, error) {
	switch x := v.(type) {
	case nil:
		return empty, nil
	case []any:
		if x == nil {
			return empty, nil
		}
	case map[string]any:
		if x == nil {
			return empty, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON(s string, dst any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), dst)
}
