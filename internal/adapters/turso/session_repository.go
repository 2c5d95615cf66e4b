package turso

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/util"
)

const sessionColumns = `id, user_id, kind, interview_id, feedback_id, state, redirect, error,
	entry_count, started_at, ended_at`

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, rec *domain.SessionRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sessionArgs(rec)...)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Update(ctx context.Context, rec *domain.SessionRecord) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET
			feedback_id = ?, state = ?, redirect = ?, error = ?, entry_count = ?, ended_at = ?
		WHERE id = ?
	`, util.NullStringPtr(rec.FeedbackID), string(rec.State), util.NullStringPtr(rec.Redirect),
		util.NullStringPtr(rec.Error), rec.EntryCount, util.NullTimePtr(rec.EndedAt), rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session %s not found", rec.ID)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.SessionRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return rec, nil
}

// ListByUser returns the user's sessions, newest first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.SessionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE user_id = ?
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func sessionArgs(rec *domain.SessionRecord) []any {
	return []any{
		rec.ID,
		rec.UserID,
		string(rec.Kind),
		util.NullStringPtr(rec.InterviewID),
		util.NullStringPtr(rec.FeedbackID),
		string(rec.State),
		util.NullStringPtr(rec.Redirect),
		util.NullStringPtr(rec.Error),
		rec.EntryCount,
		formatTime(rec.StartedAt),
		util.NullTimePtr(rec.EndedAt),
	}
}

func scanSession(s rowScanner) (*domain.SessionRecord, error) {
	var rec domain.SessionRecord
	var kind, state, startedAt string
	var interviewID, feedbackID, redirect, errMsg, endedAt sql.NullString
	if err := s.Scan(&rec.ID, &rec.UserID, &kind, &interviewID, &feedbackID, &state, &redirect,
		&errMsg, &rec.EntryCount, &startedAt, &endedAt); err != nil {
		return nil, err
	}
	rec.Kind = domain.SessionKind(kind)
	rec.State = domain.SessionState(state)
	rec.InterviewID = util.NullStringToPtr(interviewID)
	rec.FeedbackID = util.NullStringToPtr(feedbackID)
	rec.Redirect = util.NullStringToPtr(redirect)
	rec.Error = util.NullStringToPtr(errMsg)
	rec.StartedAt = parseTime(startedAt)
	rec.EndedAt = util.NullStringToTimePtr(endedAt)
	return &rec, nil
}
