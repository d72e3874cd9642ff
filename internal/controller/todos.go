package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"todo-tracker/internal/models"
	"todo-tracker/internal/router"
	"todo-tracker/pkg/logger"
)

// TodoResponse is the API shape of a todo. Description and Tag encode as null
// when absent.
type TodoResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Priority    int     `json:"priority"`
	Completed   bool    `json:"completed"`
	CreatedAt   int64   `json:"createdAt"`
	UpdatedAt   int64   `json:"updatedAt"`
	Tag         *string `json:"tag"`
}

type createTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Priority    *int    `json:"priority"`
	Tag         *string `json:"tag"`
}

type deleteResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

func (h *Handler) toResponse(ctx context.Context, t models.Todo) (TodoResponse, error) {
	tag, err := h.store.PrimaryTag(ctx, t.ID)
	if err != nil {
		return TodoResponse{}, err
	}
	return TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Tag:         tag,
	}, nil
}

func (h *Handler) todoList(ctx context.Context, todos []models.Todo, err error) (*router.Response, error) {
	if err != nil {
		return nil, err
	}
	out := make([]TodoResponse, 0, len(todos))
	for _, t := range todos {
		r, err := h.toResponse(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return router.JSON(http.StatusOK, out)
}

func (h *Handler) todo(ctx context.Context, status int, t models.Todo) (*router.Response, error) {
	r, err := h.toResponse(ctx, t)
	if err != nil {
		return nil, err
	}
	return router.JSON(status, r)
}

// GetTodos lists every todo, newest first.
func (h *Handler) GetTodos(req *router.Request) (*router.Response, error) {
	ctx := req.Context()
	todos, err := h.store.List(ctx)
	return h.todoList(ctx, todos, err)
}

// GetTodo returns one todo or 404.
func (h *Handler) GetTodo(req *router.Request) (*router.Response, error) {
	ctx := req.Context()
	id, err := parseID(req.Param("id"), "Invalid todo ID")
	if err != nil {
		return nil, err
	}
	t, err := h.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, router.ErrNotFound
	}
	return h.todo(ctx, http.StatusOK, *t)
}

// CreateTodo validates the body, stores the todo, attaches the optional tag
// and returns the stored record with 201.
func (h *Handler) CreateTodo(req *router.Request) (*router.Response, error) {
	ctx := req.Context()

	var payload createTodoRequest
	if err := req.Decode(&payload); err != nil {
		return nil, err
	}
	if err := h.validateCreate(req.Body); err != nil {
		logger.Debug(ctx, "CreateTodo schema validation failed", "error", err)
		return nil, router.BadRequest("Invalid request body")
	}

	if strings.TrimSpace(payload.Title) == "" {
		return nil, router.BadRequest("Title cannot be empty")
	}
	priority := 0
	if payload.Priority != nil {
		if *payload.Priority < 1 || *payload.Priority > 10 {
			return nil, router.BadRequest("Priority must be between 1 and 10")
		}
		priority = *payload.Priority
	}

	todo := models.Todo{Title: payload.Title, Priority: priority}
	if payload.Description != nil && *payload.Description != "" {
		todo.Description = payload.Description
	}

	id, err := h.store.Insert(ctx, &todo)
	if err != nil {
		return nil, err
	}

	if payload.Tag != nil {
		if name := strings.TrimSpace(*payload.Tag); name != "" {
			tagID, err := h.store.FindOrCreateTag(ctx, name)
			if err != nil {
				return nil, err
			}
			if err := h.store.AttachTag(ctx, id, tagID); err != nil {
				return nil, err
			}
		}
	}

	created, err := h.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, router.ErrInternal
	}
	logger.Info(ctx, "Todo created", "id", id)
	return h.todo(ctx, http.StatusCreated, *created)
}

// validateCreate checks body against the create schema. Numbers stay
// json.Number so the integer type check sees 2.5 as fractional.
func (h *Handler) validateCreate(body []byte) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	return h.createSchema.Validate(doc)
}

// CompleteTodo marks a todo done.
func (h *Handler) CompleteTodo(req *router.Request) (*router.Response, error) {
	return h.setCompleted(req, true)
}

// UncompleteTodo marks a todo not done.
func (h *Handler) UncompleteTodo(req *router.Request) (*router.Response, error) {
	return h.setCompleted(req, false)
}

func (h *Handler) setCompleted(req *router.Request, completed bool) (*router.Response, error) {
	ctx := req.Context()
	id, err := parseID(req.Param("id"), "Invalid todo ID")
	if err != nil {
		return nil, err
	}
	existing, err := h.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, router.ErrNotFound
	}

	if err := h.store.SetCompleted(ctx, id, completed); err != nil {
		return nil, err
	}

	updated, err := h.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, router.ErrInternal
	}
	return h.todo(ctx, http.StatusOK, *updated)
}

// DeleteTodo removes a todo or returns 404.
func (h *Handler) DeleteTodo(req *router.Request) (*router.Response, error) {
	ctx := req.Context()
	id, err := parseID(req.Param("id"), "Invalid todo ID")
	if err != nil {
		return nil, err
	}
	existing, err := h.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, router.ErrNotFound
	}
	if err := h.store.Delete(ctx, id); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Todo deleted", "id", id)
	return router.JSON(http.StatusOK, deleteResponse{Success: true, ID: id})
}

// SearchTodos treats the :id segment as a percent-encoded search query.
func (h *Handler) SearchTodos(req *router.Request) (*router.Response, error) {
	ctx := req.Context()
	query := req.Param("id")
	if decoded, err := url.PathUnescape(query); err == nil {
		query = decoded
	}
	todos, err := h.store.Search(ctx, query)
	return h.todoList(ctx, todos, err)
}

func (h *Handler) GetCompleted(req *router.Request) (*router.Response, error) {
	ctx := req.Context()
	todos, err := h.store.Completed(ctx)
	return h.todoList(ctx, todos, err)
}

func (h *Handler) GetActive(req *router.Request) (*router.Response, error) {
	ctx := req.Context()
	todos, err := h.store.Active(ctx)
	return h.todoList(ctx, todos, err)
}

// GetByPriority filters by high, medium or low.
func (h *Handler) GetByPriority(req *router.Request) (*router.Response, error) {
	ctx := req.Context()
	level, err := models.ParseLevel(req.Param("level"))
	if err != nil {
		return nil, router.BadRequest("Invalid priority level. Use: high, medium, or low")
	}
	todos, err := h.store.ByPriority(ctx, level)
	return h.todoList(ctx, todos, err)
}

func (h *Handler) GetStats(req *router.Request) (*router.Response, error) {
	stats, err := h.store.Stats(req.Context())
	if err != nil {
		return nil, err
	}
	return router.JSON(http.StatusOK, stats)
}
