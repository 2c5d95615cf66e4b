package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/nexa/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  nexa migrate          # Run all pending migrations
  nexa migrate 1        # Migrate to version 1
  nexa migrate 0        # Rollback all migrations
  nexa migrate status   # Show current and pending versions`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the schema version",
	Args:  cobra.NoArgs,
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func newRunner(ctx context.Context) (*migrate.Runner, func(), error) {
	db, owns, err := openDB(ctx)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if owns {
			_ = db.Close()
		}
	}
	runner, err := migrate.NewRunner(db, nil)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return runner, cleanup, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	runner, cleanup, err := newRunner(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	status, err := runner.Status(ctx)
	if err != nil {
		return err
	}
	if status.Dirty {
		return fmt.Errorf("database is in dirty state at version %d, manual intervention required", status.Current)
	}
	fmt.Fprintf(out, "Current version: %d\n", status.Current)

	var applied int
	switch {
	case len(args) == 0:
		applied, err = runner.Up(ctx)
	default:
		target, convErr := strconv.Atoi(args[0])
		if convErr != nil || target < 0 {
			return fmt.Errorf("invalid version number: %s", args[0])
		}
		switch {
		case target > status.Current:
			applied, err = runner.UpTo(ctx, target)
		case target < status.Current:
			applied, err = runner.DownTo(ctx, target)
		default:
			fmt.Fprintln(out, "Already at target version")
			return nil
		}
	}
	if err != nil {
		return err
	}

	if applied == 0 {
		fmt.Fprintln(out, "No migrations to run")
		return nil
	}
	after, err := runner.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Applied %d migration(s), now at version %d\n", applied, after.Current)
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	runner, cleanup, err := newRunner(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	status, err := runner.Status(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Current version: %d\n", status.Current)
	fmt.Fprintf(out, "Latest version:  %d\n", status.Latest)
	if status.Dirty {
		fmt.Fprintln(out, "State:           dirty")
	}
	if len(status.Pending) == 0 {
		fmt.Fprintln(out, "Schema is up to date")
		return nil
	}
	fmt.Fprintln(out, "Pending:")
	for _, m := range status.Pending {
		fmt.Fprintf(out, "  %03d_%s\n", m.Version, m.Name)
	}
	return nil
}
