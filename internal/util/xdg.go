package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetXDGDataDir returns where nexa keeps local data: NEXA_DATA_DIR when set,
// then $XDG_DATA_HOME/nexa, then ~/.local/share/nexa.
func GetXDGDataDir() (string, error) {
	if dir := os.Getenv("NEXA_DATA_DIR"); dir != "" {
		return dir, nil
	}
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "nexa"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "nexa"), nil
}

// LocalDatabaseURL is the embedded database used when no remote one is configured.
func LocalDatabaseURL() (string, error) {
	dir, err := GetXDGDataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return "file:" + filepath.Join(dir, "nexa.db"), nil
}
