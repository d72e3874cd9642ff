package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS todo (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		title       TEXT    NOT NULL,
		description TEXT,
		completed   INTEGER NOT NULL DEFAULT 0 CHECK (completed IN (0, 1)),
		priority    INTEGER NOT NULL DEFAULT 0,
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tag (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT    NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS todo_tag (
		todo_id INTEGER NOT NULL REFERENCES todo(id) ON DELETE CASCADE,
		tag_id  INTEGER NOT NULL REFERENCES tag(id)  ON DELETE CASCADE,
		PRIMARY KEY (todo_id, tag_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_todo_created_at ON todo(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_todo_updated_at ON todo(updated_at)`,
	`CREATE INDEX IF NOT EXISTS idx_todo_tag_tag_id ON todo_tag(tag_id)`,
}

// CreateSchema creates the todo, tag and todo_tag tables if they are missing.
// It is safe to run on every startup.
func CreateSchema(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning schema transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema: %w", err)
	}
	return nil
}
