package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/emiliopalmerini/nexa/internal/domain"
	"github.com/emiliopalmerini/nexa/internal/util"
)

// TranscriptStorage archives session transcripts as files under the XDG
// data directory.
type TranscriptStorage struct {
	baseDir string
}

func NewTranscriptStorage() (*TranscriptStorage, error) {
	baseDir, err := util.GetXDGDataDir()
	if err != nil {
		return nil, err
	}
	return NewTranscriptStorageAt(filepath.Join(baseDir, "transcripts"))
}

// NewTranscriptStorageAt stores transcripts in dir, creating it if needed.
func NewTranscriptStorageAt(dir string) (*TranscriptStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcripts directory: %w", err)
	}
	return &TranscriptStorage{baseDir: dir}, nil
}

func (s *TranscriptStorage) Store(ctx context.Context, sessionID string, entries []domain.TranscriptEntry) error {
	destPath := s.getPath(sessionID)

	tmp, err := os.CreateTemp(s.baseDir, sessionID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create transcript file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := EncodeTranscript(tmp, entries); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close transcript file: %w", err)
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return fmt.Errorf("failed to move transcript into place: %w", err)
	}
	return nil
}

func (s *TranscriptStorage) Get(ctx context.Context, sessionID string) ([]domain.TranscriptEntry, error) {
	file, err := os.Open(s.getPath(sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return DecodeTranscript(file)
}

func (s *TranscriptStorage) Delete(ctx context.Context, sessionID string) error {
	if err := os.Remove(s.getPath(sessionID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	return nil
}

func (s *TranscriptStorage) Exists(ctx context.Context, sessionID string) (bool, error) {
	_, err := os.Stat(s.getPath(sessionID))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (s *TranscriptStorage) getPath(sessionID string) string {
	return filepath.Join(s.baseDir, sessionID+".jsonl.gz")
}
