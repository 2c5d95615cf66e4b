package turso

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/nexa/internal/util"
)

// DBConfig addresses the database. A libsql:// URL needs an auth token; a
// file: URL is opened as an embedded database.
type DBConfig struct {
	URL       string
	AuthToken string
}

// LoadDBConfig reads NEXA_DATABASE_URL and NEXA_AUTH_TOKEN, falling back to a
// local file under the data directory.
func LoadDBConfig() (DBConfig, error) {
	cfg := DBConfig{
		URL:       os.Getenv("NEXA_DATABASE_URL"),
		AuthToken: os.Getenv("NEXA_AUTH_TOKEN"),
	}
	if cfg.URL == "" {
		local, err := util.LocalDatabaseURL()
		if err != nil {
			return cfg, err
		}
		cfg.URL = local
	}
	return cfg, nil
}

func (c DBConfig) dsn() (string, error) {
	if c.URL == "" {
		return "", fmt.Errorf("NEXA_DATABASE_URL environment variable is required")
	}
	if strings.HasPrefix(c.URL, "file:") {
		return c.URL, nil
	}
	if c.AuthToken == "" {
		return "", fmt.Errorf("NEXA_AUTH_TOKEN environment variable is required for %s", c.URL)
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("invalid database url: %w", err)
	}
	q := u.Query()
	q.Set("authToken", c.AuthToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// NewDB opens and pings the database.
func NewDB(ctx context.Context, cfg DBConfig) (*sql.DB, error) {
	dsn, err := cfg.dsn()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if strings.HasPrefix(dsn, "file:") {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	return db, nil
}
