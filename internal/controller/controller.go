package controller

import (
	"context"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"todo-tracker/internal/models"
	"todo-tracker/internal/router"
)

//go:embed assets/index.html assets/create_todo.schema.json
var assets embed.FS

const createTodoSchemaURL = "mem://create_todo.schema.json"

// Store is the persistence the HTTP handlers need.
type Store interface {
	Insert(ctx context.Context, todo *models.Todo) (int64, error)
	List(ctx context.Context) ([]models.Todo, error)
	Get(ctx context.Context, id int64) (*models.Todo, error)
	Search(ctx context.Context, query string) ([]models.Todo, error)
	SetCompleted(ctx context.Context, id int64, completed bool) error
	Delete(ctx context.Context, id int64) error
	FindOrCreateTag(ctx context.Context, name string) (int64, error)
	AttachTag(ctx context.Context, todoID, tagID int64) error
	ListTodosForTag(ctx context.Context, tagID int64) ([]models.Todo, error)
	ListAllTags(ctx context.Context) ([]models.Tag, error)
	PrimaryTag(ctx context.Context, todoID int64) (*string, error)
	Completed(ctx context.Context) ([]models.Todo, error)
	Active(ctx context.Context) ([]models.Todo, error)
	ByPriority(ctx context.Context, level models.PriorityLevel) ([]models.Todo, error)
	Stats(ctx context.Context) (models.Stats, error)
}

// Handler serves the todo API on top of a Store.
type Handler struct {
	store        Store
	version      string
	now          func() time.Time
	createSchema *jsonschema.Schema
	index        string
}

type Option func(*Handler)

// WithClock overrides the time source used by the health endpoint.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// New compiles the embedded request schema and loads the index page.
func New(store Store, version string, opts ...Option) (*Handler, error) {
	raw, err := assets.ReadFile("assets/create_todo.schema.json")
	if err != nil {
		return nil, fmt.Errorf("reading create todo schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(createTodoSchemaURL, strings.NewReader(string(raw))); err != nil {
		return nil, fmt.Errorf("loading create todo schema: %w", err)
	}
	schema, err := compiler.Compile(createTodoSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compiling create todo schema: %w", err)
	}

	index, err := assets.ReadFile("assets/index.html")
	if err != nil {
		return nil, fmt.Errorf("reading index page: %w", err)
	}

	h := &Handler{
		store:        store,
		version:      version,
		now:          time.Now,
		createSchema: schema,
		index:        string(index),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Register adds every API route to b in dispatch order.
func (h *Handler) Register(b *router.Builder) {
	b.GET("/", h.Index)
	b.GET("/version", h.Version)
	b.GET("/health", h.Health)

	b.GET("/api/todos", h.GetTodos)
	b.GET("/api/tags", h.GetTags)
	b.GET("/api/tags/:id/todos", h.GetTodosForTag)
	b.GET("/api/todos/:id", h.GetTodo)
	b.POST("/api/todos", h.CreateTodo)
	b.PATCH("/api/todos/:id/complete", h.CompleteTodo)
	b.PATCH("/api/todos/:id/uncomplete", h.UncompleteTodo)
	b.DELETE("/api/todos/:id", h.DeleteTodo)
	b.GET("/api/todos/search/:id", h.SearchTodos)
	b.GET("/api/stats", h.GetStats)
	b.GET("/api/todos/filter/completed", h.GetCompleted)
	b.GET("/api/todos/filter/active", h.GetActive)
	b.GET("/api/todos/filter/priority/:level", h.GetByPriority)
}

func parseID(raw, message string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, router.BadRequest(message)
	}
	return id, nil
}
