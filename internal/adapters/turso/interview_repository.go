package turso

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/ports"
	"github.com/emiliopalmerini/nexa/internal/util"
)

const defaultLatestLimit = 20

const interviewColumns = `id, user_id, role, level, type, techstack, questions, finalized, cover_image, created_at`

type InterviewRepository struct {
	db *sql.DB
}

func NewInterviewRepository(db *sql.DB) *InterviewRepository {
	return &InterviewRepository{db: db}
}

func (r *InterviewRepository) Create(ctx context.Context, iv *domain.Interview) error {
	techstack, err := encodeJSON(iv.Techstack)
	if err != nil {
		return err
	}
	questions, err := encodeJSON(iv.Questions)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO interviews (`+interviewColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, iv.ID, iv.UserID, iv.Role, iv.Level, iv.Type, techstack, questions,
		util.BoolToInt64(iv.Finalized), iv.CoverImage, formatTime(iv.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}
	return nil
}

func (r *InterviewRepository) GetByID(ctx context.Context, id string) (*domain.Interview, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE id = ?`, id)
	iv, err := scanInterview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}
	return iv, nil
}

// ListByUser returns the user's interviews, newest first.
func (r *InterviewRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Interview, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+interviewColumns+` FROM interviews
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	return collectInterviews(rows)
}

// ListLatest returns finalized interviews created by other users, newest first.
func (r *InterviewRepository) ListLatest(ctx context.Context, opts ports.ListLatestOptions) ([]*domain.Interview, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLatestLimit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+interviewColumns+` FROM interviews
		WHERE finalized = 1 AND user_id != ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, opts.ExcludeUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest interviews: %w", err)
	}
	return collectInterviews(rows)
}

func collectInterviews(rows *sql.Rows) ([]*domain.Interview, error) {
	defer func() { _ = rows.Close() }()

	var out []*domain.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

func scanInterview(s rowScanner) (*domain.Interview, error) {
	var iv domain.Interview
	var techstack, questions, createdAt string
	var finalized int64
	if err := s.Scan(&iv.ID, &iv.UserID, &iv.Role, &iv.Level, &iv.Type, &techstack, &questions,
		&finalized, &iv.CoverImage, &createdAt); err != nil {
		return nil, err
	}
	if err := decodeJSON(techstack, &iv.Techstack); err != nil {
		return nil, err
	}
	if err := decodeJSON(questions, &iv.Questions); err != nil {
		return nil, err
	}
	iv.Finalized = finalized == 1
	iv.CreatedAt = parseTime(createdAt)
	return &iv, nil
}
