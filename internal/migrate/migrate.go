package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/emiliopalmerini/nexa/migrations"
)

// Migration represents a single database migration with up and down SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Status describes where the schema stands.
type Status struct {
	Current int
	Latest  int
	Dirty   bool
	Pending []Migration
}

// EnsureMigrationsTable creates the schema_migrations table if it doesn't exist.
func EnsureMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

// GetCurrentVersion returns the current migration version and dirty state.
func GetCurrentVersion(ctx context.Context, db *sql.DB) (int, bool, error) {
	var version int
	var dirty int

	err := db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return version, dirty == 1, nil
}

// SetVersion sets the migration version and dirty state.
func SetVersion(ctx context.Context, db *sql.DB, version int, dirty bool) error {
	dirtyInt := 0
	if dirty {
		dirtyInt = 1
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return err
	}
	if version > 0 {
		_, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, dirtyInt)
		return err
	}
	return nil
}

var upPattern = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

// LoadMigrations reads the embedded migration files sorted by version.
func LoadMigrations() ([]Migration, error) {
	return loadFrom(migrations.FS)
}

func loadFrom(fsys fs.FS) ([]Migration, error) {
	var result []Migration

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		matches := upPattern.FindStringSubmatch(filepath.Base(path))
		if matches == nil {
			return nil
		}

		version, _ := strconv.Atoi(matches[1])
		name := matches[2]

		upSQL, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		downPath := fmt.Sprintf("%s_%s.down.sql", matches[1], name)
		downSQL, err := fs.ReadFile(fsys, downPath)
		if err != nil {
			downSQL = nil
		}

		result = append(result, Migration{
			Version: version,
			Name:    name,
			UpSQL:   string(upSQL),
			DownSQL: string(downSQL),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})
	return result, nil
}

// SplitSQL splits a SQL script into statements on semicolons.
func SplitSQL(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// Runner applies migrations against one database.
type Runner struct {
	db         *sql.DB
	migrations []Migration
	logger     *slog.Logger
}

// NewRunner loads the embedded migrations.
func NewRunner(db *sql.DB, logger *slog.Logger) (*Runner, error) {
	all, err := LoadMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{db: db, migrations: all, logger: logger}, nil
}

func (r *Runner) prepare(ctx context.Context) (int, error) {
	if err := EnsureMigrationsTable(ctx, r.db); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}
	current, dirty, err := GetCurrentVersion(ctx, r.db)
	if err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return current, fmt.Errorf("database is in dirty state at version %d", current)
	}
	return current, nil
}

func (r *Runner) run(ctx context.Context, m Migration, up bool) error {
	direction := "up"
	script := m.UpSQL
	target := m.Version
	if !up {
		direction = "down"
		script = m.DownSQL
		target = m.Version - 1
	}

	r.logger.Info("applying migration", "direction", direction, "version", m.Version, "name", m.Name)

	if err := SetVersion(ctx, r.db, m.Version, true); err != nil {
		return fmt.Errorf("failed to set dirty flag: %w", err)
	}
	for _, stmt := range SplitSQL(script) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration %d %s: %w\nSQL: %s", m.Version, direction, err, stmt)
		}
	}
	if err := SetVersion(ctx, r.db, target, false); err != nil {
		return fmt.Errorf("failed to clear dirty flag: %w", err)
	}
	return nil
}

// Up runs every pending migration and returns how many were applied.
func (r *Runner) Up(ctx context.Context) (int, error) {
	current, err := r.prepare(ctx)
	if err != nil {
		return 0, err
	}
	return r.upTo(ctx, current, r.latest())
}

// UpTo runs pending migrations up to and including target.
func (r *Runner) UpTo(ctx context.Context, target int) (int, error) {
	current, err := r.prepare(ctx)
	if err != nil {
		return 0, err
	}
	return r.upTo(ctx, current, target)
}

func (r *Runner) upTo(ctx context.Context, current, target int) (int, error) {
	count := 0
	for _, m := range r.migrations {
		if m.Version <= current {
			continue
		}
		if m.Version > target {
			break
		}
		if err := r.run(ctx, m, true); err != nil {
			return count, err
		}
		count++
	}
	if count > 0 {
		r.logger.Info("schema migrated", "applied", count)
	}
	return count, nil
}

// DownTo rolls back migrations above target.
func (r *Runner) DownTo(ctx context.Context, target int) (int, error) {
	current, err := r.prepare(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := len(r.migrations) - 1; i >= 0; i-- {
		m := r.migrations[i]
		if m.Version > current {
			continue
		}
		if m.Version <= target {
			break
		}
		if m.DownSQL == "" {
			return count, fmt.Errorf("no down migration for version %d", m.Version)
		}
		if err := r.run(ctx, m, false); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Status reports the current and latest versions and what is pending.
func (r *Runner) Status(ctx context.Context) (*Status, error) {
	if err := EnsureMigrationsTable(ctx, r.db); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}
	current, dirty, err := GetCurrentVersion(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("failed to get current version: %w", err)
	}

	s := &Status{Current: current, Latest: r.latest(), Dirty: dirty}
	for _, m := range r.migrations {
		if m.Version > current {
			s.Pending = append(s.Pending, m)
		}
	}
	return s, nil
}

func (r *Runner) latest() int {
	if len(r.migrations) == 0 {
		return 0
	}
	return r.migrations[len(r.migrations)-1].Version
}

// RunAll runs all pending migrations on the provided database.
func RunAll(ctx context.Context, db *sql.DB) error {
	r, err := NewRunner(db, slog.New(slog.DiscardHandler))
	if err != nil {
		return err
	}
	_, err = r.Up(ctx)
	return err
}
