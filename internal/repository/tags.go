package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"todo-tracker/internal/models"
)

// FindOrCreateTag returns the id of the tag called name, creating it first if
// needed. Repeated calls with the same name yield the same id.
func (s *Store) FindOrCreateTag(ctx context.Context, name string) (int64, error) {
	id, err := s.tagID(ctx, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("looking up tag %q: %w", name, err)
	}

	// Another process may have created it since the lookup; the unique
	// constraint turns that race into a no-op.
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO tag (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name); err != nil {
		return 0, s.writeFailed(ctx, "insert tag", err)
	}
	id, err = s.tagID(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("looking up tag %q: %w", name, err)
	}
	return id, nil
}

func (s *Store) tagID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, `SELECT id FROM tag WHERE name = ?`, name)
	return id, err
}

// AttachTag associates a tag with a todo. Attaching twice is a no-op.
func (s *Store) AttachTag(ctx context.Context, todoID, tagID int64) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO todo_tag (todo_id, tag_id) VALUES (?, ?)`, todoID, tagID); err != nil {
		return s.writeFailed(ctx, "attach tag", err)
	}
	return nil
}

// ListTodosForTag returns the todos carrying tagID, most recently updated first.
func (s *Store) ListTodosForTag(ctx context.Context, tagID int64) ([]models.Todo, error) {
	todos := []models.Todo{}
	err := s.db.SelectContext(ctx, &todos,
		`SELECT t.id, t.title, t.description, t.completed, t.priority, t.created_at, t.updated_at
		 FROM todo t
		 JOIN todo_tag tt ON tt.todo_id = t.id
		 WHERE tt.tag_id = ?
		 ORDER BY t.updated_at DESC, t.id DESC`, tagID)
	if err != nil {
		return nil, fmt.Errorf("listing todos for tag %d: %w", tagID, err)
	}
	return todos, nil
}

// ListAllTags returns every tag in alphabetical order.
func (s *Store) ListAllTags(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := s.db.SelectContext(ctx, &tags, `SELECT id, name FROM tag ORDER BY name`); err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

// TagByName returns the tag called name, or nil.
func (s *Store) TagByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := s.db.GetContext(ctx, &tag, `SELECT id, name FROM tag WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting tag %q: %w", name, err)
	}
	return &tag, nil
}

// PrimaryTag returns the name of one tag attached to the todo, or nil when it
// has none. Which tag is returned for a multi-tag todo is unspecified.
func (s *Store) PrimaryTag(ctx context.Context, todoID int64) (*string, error) {
	var name string
	err := s.db.GetContext(ctx, &name,
		`SELECT tag.name FROM tag
		 JOIN todo_tag ON todo_tag.tag_id = tag.id
		 WHERE todo_tag.todo_id = ?
		 LIMIT 1`, todoID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting tag for todo %d: %w", todoID, err)
	}
	return &name, nil
}

// DeleteTag removes a tag and its associations.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tag WHERE id = ?`, id); err != nil {
		return s.writeFailed(ctx, "delete tag", err)
	}
	return nil
}
