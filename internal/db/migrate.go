package db

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed schema.sql
var schemaSQL string

//go:embed notify.sql
var notifySQL string

// Migration is a named, idempotent schema step.
type Migration struct {
	Name string
	SQL  string
}

// Migrations returns the ordered schema steps applied by Migrate.
func Migrations() []Migration {
	return []Migration{
		{Name: "create_tables", SQL: schemaSQL},
		{Name: "catalog_notify_triggers", SQL: notifySQL},
	}
}

// Migrate applies every migration. Each step is safe to re-run.
func (db *DB) Migrate(ctx context.Context) error {
	slog.Info("Starting database migrations")

	for _, m := range Migrations() {
		if _, err := db.pool.Exec(ctx, m.SQL); err != nil {
			slog.Error("Migration failed", "name", m.Name, "error", err)
			return fmt.Errorf("migration %s failed: %w", m.Name, err)
		}
		slog.Info("Migration completed", "name", m.Name)
	}

	slog.Info("All migrations completed successfully")
	return nil
}
