package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todo-tracker/internal/models"
	"todo-tracker/pkg/logger"
)

// Store is the persistence a command is applied to.
type Store interface {
	Insert(ctx context.Context, todo *models.Todo) (int64, error)
	Get(ctx context.Context, id int64) (*models.Todo, error)
	SetCompleted(ctx context.Context, id int64, completed bool) error
	Delete(ctx context.Context, id int64) error
	FindOrCreateTag(ctx context.Context, name string) (int64, error)
	AttachTag(ctx context.Context, todoID, tagID int64) error
}

var (
	ErrUnknownAction = errors.New("unknown command action")
	ErrUnknownTodo   = errors.New("todo does not exist")
	ErrInvalidTodo   = errors.New("invalid todo")
)

// Apply performs one inbox command against the store with the same rules the
// HTTP API enforces.
func Apply(ctx context.Context, store Store, cmd models.TodoCommand) error {
	switch cmd.Action {
	case models.ActionCreate:
		return applyCreate(ctx, store, cmd)
	case models.ActionComplete, models.ActionUncomplete:
		existing, err := store.Get(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: %d", ErrUnknownTodo, cmd.ID)
		}
		return store.SetCompleted(ctx, cmd.ID, cmd.Action == models.ActionComplete)
	case models.ActionDelete:
		return store.Delete(ctx, cmd.ID)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
}

func applyCreate(ctx context.Context, store Store, cmd models.TodoCommand) error {
	if strings.TrimSpace(cmd.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidTodo)
	}
	if cmd.Priority < 0 || cmd.Priority > 10 {
		return fmt.Errorf("%w: priority must be between 1 and 10", ErrInvalidTodo)
	}

	todo := models.Todo{Title: cmd.Title, Priority: cmd.Priority}
	if cmd.Description != "" {
		desc := cmd.Description
		todo.Description = &desc
	}
	if !cmd.RequestedAt.IsZero() {
		todo.CreatedAt = cmd.RequestedAt.Unix()
	}
	id, err := store.Insert(ctx, &todo)
	if err != nil {
		return err
	}

	if name := strings.TrimSpace(cmd.Tag); name != "" {
		tagID, err := store.FindOrCreateTag(ctx, name)
		if err != nil {
			return err
		}
		if err := store.AttachTag(ctx, id, tagID); err != nil {
			return err
		}
	}
	logger.Info(ctx, "Remote todo created", "id", id, "event_id", cmd.EventID)
	return nil
}
