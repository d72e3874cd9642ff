package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"todo-tracker/internal/models"
	"todo-tracker/pkg/logger"
)

const todoColumns = `id, title, description, completed, priority, created_at, updated_at`

// Insert persists a new todo and returns its id. Zero timestamps are filled
// with the current time.
func (s *Store) Insert(ctx context.Context, todo *models.Todo) (int64, error) {
	now := s.timestamp()
	if todo.CreatedAt == 0 {
		todo.CreatedAt = now
	}
	if todo.UpdatedAt == 0 {
		todo.UpdatedAt = todo.CreatedAt
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO todo (title, description, completed, priority, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		todo.Title, todo.Description, todo.Completed, todo.Priority, todo.CreatedAt, todo.UpdatedAt)
	if err != nil {
		return 0, s.writeFailed(ctx, "insert todo", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, s.writeFailed(ctx, "insert todo", err)
	}
	todo.ID = id
	logger.Debug(ctx, "Todo inserted", "id", id)
	return id, nil
}

// List returns all todos, newest first.
func (s *Store) List(ctx context.Context) ([]models.Todo, error) {
	todos := []models.Todo{}
	err := s.db.SelectContext(ctx, &todos,
		`SELECT `+todoColumns+` FROM todo ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}
	return todos, nil
}

// Get returns the todo with the given id, or nil when there is none.
func (s *Store) Get(ctx context.Context, id int64) (*models.Todo, error) {
	var t models.Todo
	err := s.db.GetContext(ctx, &t, `SELECT `+todoColumns+` FROM todo WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting todo %d: %w", id, err)
	}
	return &t, nil
}

// Search returns todos whose title or description contains query, newest
// first. Matching is a literal substring match, ASCII case-insensitive; an
// empty query matches everything.
func (s *Store) Search(ctx context.Context, query string) ([]models.Todo, error) {
	pattern := "%" + escapeLike(query) + "%"
	todos := []models.Todo{}
	err := s.db.SelectContext(ctx, &todos,
		`SELECT `+todoColumns+` FROM todo
		 WHERE title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'
		 ORDER BY created_at DESC, id DESC`,
		pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("searching todos: %w", err)
	}
	return todos, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// SetCompleted updates the completion flag and refreshes updated_at. An
// unknown id affects no rows and is not an error.
func (s *Store) SetCompleted(ctx context.Context, id int64, completed bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE todo SET completed = ?, updated_at = ? WHERE id = ?`,
		completed, s.timestamp(), id)
	if err != nil {
		return s.writeFailed(ctx, "update todo", err)
	}
	return nil
}

// Delete removes a todo along with its tag associations. Deleting an unknown
// id is not an error.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM todo WHERE id = ?`, id); err != nil {
		return s.writeFailed(ctx, "delete todo", err)
	}
	return nil
}

// Completed returns the completed subset of List.
func (s *Store) Completed(ctx context.Context) ([]models.Todo, error) {
	return s.filter(ctx, func(t models.Todo) bool { return t.Completed })
}

// Active returns the not yet completed subset of List.
func (s *Store) Active(ctx context.Context) ([]models.Todo, error) {
	return s.filter(ctx, func(t models.Todo) bool { return !t.Completed })
}

// ByPriority returns the todos whose priority falls in level.
func (s *Store) ByPriority(ctx context.Context, level models.PriorityLevel) ([]models.Todo, error) {
	return s.filter(ctx, func(t models.Todo) bool { return models.LevelOf(t.Priority) == level })
}

// Stats computes aggregate counts over List.
func (s *Store) Stats(ctx context.Context) (models.Stats, error) {
	todos, err := s.List(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	return models.ComputeStats(todos), nil
}

func (s *Store) filter(ctx context.Context, keep func(models.Todo) bool) ([]models.Todo, error) {
	todos, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Todo, 0, len(todos))
	for _, t := range todos {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out, nil
}
