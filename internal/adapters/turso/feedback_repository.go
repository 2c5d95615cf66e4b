package turso

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emiliopalmerini/nexa/internal/domain"
)

const feedbackColumns = `id, interview_id, user_id, total_score, category_scores, strengths,
	areas_for_improvement, final_assessment, created_at`

type FeedbackRepository struct {
	db *sql.DB
}

func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Save inserts the report, replacing any stored report with the same ID.
func (r *FeedbackRepository) Save(ctx context.Context, f *domain.FeedbackReport) error {
	if err := f.Validate(); err != nil {
		return err
	}
	categories, err := encodeJSON(f.CategoryScores)
	if err != nil {
		return err
	}
	strengths, err := encodeJSON(f.Strengths)
	if err != nil {
		return err
	}
	areas, err := encodeJSON(f.AreasForImprovement)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO feedback (`+feedbackColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			interview_id = excluded.interview_id,
			user_id = excluded.user_id,
			total_score = excluded.total_score,
			category_scores = excluded.category_scores,
			strengths = excluded.strengths,
			areas_for_improvement = excluded.areas_for_improvement,
			final_assessment = excluded.final_assessment,
			created_at = excluded.created_at
	`, f.ID, f.InterviewID, f.UserID, f.TotalScore, categories, strengths, areas,
		f.FinalAssessment, formatTime(f.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) GetByID(ctx context.Context, id string) (*domain.FeedbackReport, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE id = ?`, id)
	return r.scanOne(row)
}

// GetByInterview returns the newest report for an interview and user.
func (r *FeedbackRepository) GetByInterview(ctx context.Context, interviewID, userID string) (*domain.FeedbackReport, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+feedbackColumns+` FROM feedback
		WHERE interview_id = ? AND user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, interviewID, userID)
	return r.scanOne(row)
}

func (r *FeedbackRepository) scanOne(row *sql.Row) (*domain.FeedbackReport, error) {
	var f domain.FeedbackReport
	var categories, strengths, areas, createdAt string
	err := row.Scan(&f.ID, &f.InterviewID, &f.UserID, &f.TotalScore, &categories, &strengths,
		&areas, &f.FinalAssessment, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	if err := decodeJSON(categories, &f.CategoryScores); err != nil {
		return nil, err
	}
	if err := decodeJSON(strengths, &f.Strengths); err != nil {
		return nil, err
	}
	if err := decodeJSON(areas, &f.AreasForImprovement); err != nil {
		return nil, err
	}
	f.CreatedAt = parseTime(createdAt)
	return &f, nil
}
