package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-tracker/internal/controller"
	"todo-tracker/internal/repository"
	"todo-tracker/internal/routes"
	"todo-tracker/internal/testutil"
)

type todoBody struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
	Priority    int     `json:"priority"`
	CreatedAt   int64   `json:"createdAt"`
	UpdatedAt   int64   `json:"updatedAt"`
	Tag         *string `json:"tag"`
}

type testServer struct {
	engine *gin.Engine
	clock  *testutil.Clock
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	clock := testutil.NewClock(time.Unix(1_700_000_000, 0))
	store := testutil.NewStore(t, repository.WithClock(clock.Now))
	h, err := controller.New(store, "1.2.3", controller.WithClock(clock.Now))
	require.NoError(t, err)
	return &testServer{engine: routes.Router(routes.Table(h)), clock: clock}
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestCreateCompleteDeleteLifecycle(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodPost, "/api/todos", `{"title":"Write spec","priority":11}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Priority must be between 1 and 10", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	w = s.do(t, http.MethodPost, "/api/todos", `{"title":"Write spec","priority":5}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"priority":5,"completed":false`)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "close", w.Header().Get("Connection"))
	created := decode[todoBody](t, w)
	assert.Nil(t, created.Description)
	assert.Nil(t, created.Tag)

	s.clock.Advance(3 * time.Second)
	w = s.do(t, http.MethodPatch, "/api/todos/"+itoa(created.ID)+"/complete", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"completed":true`)
	completed := decode[todoBody](t, w)
	assert.Greater(t, completed.UpdatedAt, created.CreatedAt)

	w = s.do(t, http.MethodPatch, "/api/todos/"+itoa(created.ID)+"/uncomplete", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[todoBody](t, w).Completed)

	w = s.do(t, http.MethodDelete, "/api/todos/"+itoa(created.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"id":`+itoa(created.ID)+`}`, w.Body.String())

	w = s.do(t, http.MethodDelete, "/api/todos/9999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not Found", w.Body.String())
}

func TestCreateValidation(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"blank title", `{"title":"   "}`, "Title cannot be empty"},
		{"zero priority", `{"title":"x","priority":0}`, "Priority must be between 1 and 10"},
		{"missing body", ``, "Missing request body"},
		{"malformed", `{"title":`, "Invalid request body"},
		{"missing title", `{"priority":3}`, "Invalid request body"},
		{"wrong type", `{"title":"x","priority":"high"}`, "Invalid request body"},
		{"fractional priority", `{"title":"x","priority":2.5}`, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/todos", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestCreateWithTagAndDescription(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodPost, "/api/todos", `{"title":"Buy Coffee","description":"beans","tag":"  errand  "}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[todoBody](t, w)
	require.NotNil(t, created.Tag)
	assert.Equal(t, "errand", *created.Tag)
	require.NotNil(t, created.Description)
	assert.Equal(t, "beans", *created.Description)
	assert.Equal(t, 0, created.Priority)

	w = s.do(t, http.MethodPost, "/api/todos", `{"title":"Empty description","description":""}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"description":null`)

	tags := decode[[]map[string]any](t, s.do(t, http.MethodGet, "/api/tags", ""))
	require.Len(t, tags, 1)
	assert.Equal(t, "errand", tags[0]["name"])

	w = s.do(t, http.MethodGet, "/api/tags/"+itoa(int64(tags[0]["id"].(float64)))+"/todos", "")
	require.Equal(t, http.StatusOK, w.Code)
	forTag := decode[[]todoBody](t, w)
	require.Len(t, forTag, 1)
	assert.Equal(t, "Buy Coffee", forTag[0].Title)

	w = s.do(t, http.MethodGet, "/api/tags/abc/todos", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid tag ID", w.Body.String())
}

func TestGetTodo(t *testing.T) {
	s := newServer(t)
	created := decode[todoBody](t, s.do(t, http.MethodPost, "/api/todos", `{"title":"one"}`))

	w := s.do(t, http.MethodGet, "/api/todos/"+itoa(created.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "one", decode[todoBody](t, w).Title)

	w = s.do(t, http.MethodGet, "/api/todos/404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/todos/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid todo ID", w.Body.String())

	w = s.do(t, http.MethodPatch, "/api/todos/abc/complete", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, "/api/todos/77/complete", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSearchAndFilters(t *testing.T) {
	s := newServer(t)
	for _, body := range []string{
		`{"title":"Buy Coffee","priority":6}`,
		`{"title":"Ship release","priority":7}`,
		`{"title":"Water plants","priority":3}`,
		`{"title":"Someday"}`,
	} {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/todos", body).Code)
		s.clock.Advance(time.Second)
	}

	all := decode[[]todoBody](t, s.do(t, http.MethodGet, "/api/todos", ""))
	require.Len(t, all, 4)
	assert.Equal(t, "Someday", all[0].Title, "newest first")

	found := decode[[]todoBody](t, s.do(t, http.MethodGet, "/api/todos/search/cof", ""))
	require.Len(t, found, 1)
	assert.Equal(t, "Buy Coffee", found[0].Title)

	found = decode[[]todoBody](t, s.do(t, http.MethodGet, "/api/todos/search/Water%20pl", ""))
	require.Len(t, found, 1)
	assert.Equal(t, "Water plants", found[0].Title)

	high := decode[[]todoBody](t, s.do(t, http.MethodGet, "/api/todos/filter/priority/HIGH", ""))
	require.Len(t, high, 1)
	assert.Equal(t, "Ship release", high[0].Title)

	w := s.do(t, http.MethodGet, "/api/todos/filter/priority/urgent", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid priority level. Use: high, medium, or low", w.Body.String())

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPatch, "/api/todos/"+itoa(all[0].ID)+"/complete", "").Code)

	done := decode[[]todoBody](t, s.do(t, http.MethodGet, "/api/todos/filter/completed", ""))
	require.Len(t, done, 1)
	assert.Equal(t, "Someday", done[0].Title)
	active := decode[[]todoBody](t, s.do(t, http.MethodGet, "/api/todos/filter/active", ""))
	assert.Len(t, active, 3)

	stats := decode[map[string]int](t, s.do(t, http.MethodGet, "/api/stats", ""))
	assert.Equal(t, map[string]int{
		"total": 4, "completed": 1, "active": 3,
		"highPriority": 1, "mediumPriority": 1, "lowPriority": 1,
	}, stats)
}

func TestStaticEndpoints(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<html")

	w = s.do(t, http.MethodGet, "/version", "")
	assert.Equal(t, "1.2.3", w.Body.String())

	w = s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[map[string]any](t, w)
	assert.Equal(t, "ok", health["status"])
	assert.InDelta(t, 1_700_000_000, health["timestamp"], 1)
}

func TestTransportEdges(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/api/todos/", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "trailing slash is a different path")
	assert.Equal(t, "Not Found", w.Body.String())

	w = s.do(t, http.MethodDelete, "/api/todos/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPatch, "/api/todos//complete", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPut, "/api/todos/1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method Not Allowed", w.Body.String())

	w = s.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/todos", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))

	w = s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `todo_http_requests_total`)
	assert.Contains(t, w.Body.String(), `route="/api/todos"`)
}

func TestAbsoluteFormRequestURI(t *testing.T) {
	s := newServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/todos", `{"title":"Proxy me"}`).Code)

	req := httptest.NewRequest(http.MethodGet, "http://todo.example/api/todos/search/proxy?x=1", nil)
	req.RequestURI = "http://todo.example/api/todos/search/proxy?x=1"
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	found := decode[[]todoBody](t, w)
	require.Len(t, found, 1)
	assert.Equal(t, "Proxy me", found[0].Title)
}

func TestBodyTooLarge(t *testing.T) {
	s := newServer(t)
	big := `{"title":"` + strings.Repeat("x", 2<<20) + `"}`

	w := s.do(t, http.MethodPost, "/api/todos", big)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
