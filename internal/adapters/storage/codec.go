package storage

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"

	"github.com/emiliopalmerini/nexa/internal/domain"
)

// EncodeTranscript writes entries as gzip-compressed JSON lines.
func EncodeTranscript(w io.Writer, entries []domain.TranscriptEntry) error {
	gw := gzip.NewWriter(w)
	enc := json.NewEncoder(gw)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			_ = gw.Close()
			return fmt.Errorf("failed to encode transcript entry: %w", err)
		}
	}
	if err := gw.Close(); err != nil {
		return fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return nil
}

// DecodeTranscript reads what EncodeTranscript wrote.
func DecodeTranscript(r io.Reader) ([]domain.TranscriptEntry, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer func() { _ = gr.Close() }()

	var entries []domain.TranscriptEntry
	scanner := bufio.NewScanner(gr)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var e domain.TranscriptEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("failed to decode transcript entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	return entries, nil
}
