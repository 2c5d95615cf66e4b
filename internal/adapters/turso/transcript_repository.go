package turso

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/emiliopalmerini/nexa/internal/adapters/storage"
	"github.com/emiliopalmerini/nexa/internal/domain"
)

// TranscriptRepository archives session transcripts in the database as
// gzip-compressed JSON lines.
type TranscriptRepository struct {
	db *sql.DB
}

func NewTranscriptRepository(db *sql.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

func (r *TranscriptRepository) Store(ctx context.Context, sessionID string, entries []domain.TranscriptEntry) error {
	var buf bytes.Buffer
	if err := storage.EncodeTranscript(&buf, entries); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transcripts (session_id, gzip_data, created_at) VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET gzip_data = excluded.gzip_data
	`, sessionID, buf.Bytes(), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to store transcript in database: %w", err)
	}
	return nil
}

func (r *TranscriptRepository) Get(ctx context.Context, sessionID string) ([]domain.TranscriptEntry, error) {
	var gzipData []byte
	err := r.db.QueryRowContext(ctx, `SELECT gzip_data FROM transcripts WHERE session_id = ?`, sessionID).Scan(&gzipData)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript from database: %w", err)
	}
	return storage.DecodeTranscript(bytes.NewReader(gzipData))
}

func (r *TranscriptRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transcripts WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	return nil
}

func (r *TranscriptRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transcripts WHERE session_id = ?`, sessionID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
