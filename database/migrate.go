package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies every embedded migration that is not yet recorded in
// schema_migrations, in filename order, each in its own transaction.
func Migrate(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("db is required")
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (filename text PRIMARY KEY, applied_at timestamptz NOT NULL DEFAULT now())`); err != nil {
		return fmt.Errorf("ensure migrations table: %w", err)
	}

	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list embedded migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		var applied bool
		if err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE filename = $1)`, name).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied {
			continue
		}

		body, err := migrationFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if err := applyMigration(ctx, db, name, string(body)); err != nil {
			return err
		}
	}

	return nil
}

// applyMigration runs one script in a transaction together with its
// schema_migrations row. A duplicate-object error means another instance is
// migrating concurrently; the whole script is rolled back and run once more,
// relying on IF NOT EXISTS. A file is never recorded unless its script
// committed.
func applyMigration(ctx context.Context, db *sql.DB, name, body string) error {
	err := runMigration(ctx, db, name, body)
	if err != nil && isIgnorableMigrationError(err) {
		err = runMigration(ctx, db, name, body)
	}
	if err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	return nil
}

func runMigration(ctx context.Context, db *sql.DB, name, body string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return fmt.Errorf("exec script: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (filename) VALUES ($1) ON CONFLICT (filename) DO NOTHING`, name); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func isIgnorableMigrationError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	switch pqErr.Code {
	case "42P07", // duplicate_table
		"42710", // duplicate_object
		"42701": // duplicate_column
		return true
	default:
		return false
	}
}
