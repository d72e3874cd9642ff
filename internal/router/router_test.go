package router

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echo(name string) HandlerFunc {
	return func(req *Request) (*Response, error) {
		return Text(http.StatusOK, name+":"+req.Param("id")), nil
	}
}

func serve(t *testing.T, table *Table, method, uri string) (*Response, string) {
	t.Helper()
	return table.Serve(NewRequest(method, uri, nil, nil))
}

func TestParamBindsAnyContent(t *testing.T) {
	b := NewBuilder()
	b.GET("/a/:id/b", echo("ab"))
	table := b.Freeze()

	for _, value := range []string{"1", "hello", "%20", "-"} {
		resp, pattern := serve(t, table, http.MethodGet, "/a/"+value+"/b")
		assert.Equal(t, http.StatusOK, resp.Status, value)
		assert.Equal(t, "ab:"+value, string(resp.Body))
		assert.Equal(t, "/a/:id/b", pattern)
	}
}

func TestSegmentCountMustMatch(t *testing.T) {
	b := NewBuilder()
	b.GET("/a/:id/b", echo("ab"))
	table := b.Freeze()

	for _, path := range []string{"/a/1", "/a/1/b/c", "/a/1/b/", "/", "/a"} {
		_, err := table.Route(NewRequest(http.MethodGet, path, nil, nil))
		assert.ErrorIs(t, err, ErrNotFound, path)
	}
}

func TestEmptySegmentNeverBindsParam(t *testing.T) {
	b := NewBuilder()
	b.GET("/a/:id", echo("a"))
	b.GET("/a/:id/b", echo("ab"))
	b.DELETE("/a/:id", echo("del"))
	table := b.Freeze()

	for _, path := range []string{"/a/", "/a/x/b/", "/a//b", "/a/x/"} {
		_, err := table.Route(NewRequest(http.MethodGet, path, nil, nil))
		assert.ErrorIs(t, err, ErrNotFound, path)
	}
	resp, pattern := serve(t, table, http.MethodDelete, "/a/")
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Empty(t, pattern)

	resp, pattern = serve(t, table, http.MethodGet, "/a/x")
	assert.Equal(t, "a:x", string(resp.Body))
	assert.Equal(t, "/a/:id", pattern)
}

func TestTrailingSlashIsStrict(t *testing.T) {
	b := NewBuilder()
	b.GET("/api/todos", echo("list"))
	table := b.Freeze()

	resp, _ := serve(t, table, http.MethodGet, "/api/todos")
	assert.Equal(t, http.StatusOK, resp.Status)

	resp, pattern := serve(t, table, http.MethodGet, "/api/todos/")
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, "Not Found", string(resp.Body))
	assert.Empty(t, pattern)
}

func TestLiteralsAreCaseSensitive(t *testing.T) {
	b := NewBuilder()
	b.GET("/api/tags", echo("tags"))
	table := b.Freeze()

	_, err := table.Route(NewRequest(http.MethodGet, "/API/tags", nil, nil))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFirstRegisteredRouteWins(t *testing.T) {
	b := NewBuilder()
	b.GET("/api/todos/:id", echo("byID"))
	b.GET("/api/todos/stats", echo("stats"))
	table := b.Freeze()

	resp, pattern := serve(t, table, http.MethodGet, "/api/todos/stats")
	assert.Equal(t, "byID:stats", string(resp.Body))
	assert.Equal(t, "/api/todos/:id", pattern)
}

func TestMethodWithoutRoutesIsNotAllowed(t *testing.T) {
	b := NewBuilder()
	b.GET("/api/todos", echo("list"))
	table := b.Freeze()

	resp, _ := serve(t, table, http.MethodPut, "/api/todos")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Status)
	assert.Equal(t, "Method Not Allowed", string(resp.Body))

	// A method with routes but no matching path is a 404, not a 405.
	b2 := NewBuilder()
	b2.GET("/api/todos", echo("list"))
	b2.DELETE("/api/todos/:id", echo("delete"))
	resp, _ = serve(t, b2.Freeze(), http.MethodDelete, "/api/tags/1")
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestRegisterAfterFreezePanics(t *testing.T) {
	b := NewBuilder()
	b.GET("/", echo("index"))
	b.Freeze()

	assert.Panics(t, func() { b.POST("/late", echo("late")) })
}

func TestMatchReportsPatternAndParams(t *testing.T) {
	b := NewBuilder()
	b.GET("/api/tags/:id/todos", echo("tag"))
	table := b.Freeze()

	m, err := table.Match(http.MethodGet, "/api/tags/12/todos")
	require.NoError(t, err)
	assert.Equal(t, "/api/tags/:id/todos", m.Pattern)
	assert.Equal(t, map[string]string{"id": "12"}, m.Params)
}

func TestHandlerErrors(t *testing.T) {
	b := NewBuilder()
	b.GET("/bad", func(*Request) (*Response, error) { return nil, BadRequest("Invalid todo ID") })
	b.GET("/missing", func(*Request) (*Response, error) { return nil, ErrNotFound })
	b.GET("/boom", func(*Request) (*Response, error) { return nil, errors.New("disk on fire") })
	b.GET("/panic", func(*Request) (*Response, error) { panic("unreachable state") })
	b.GET("/nil", func(*Request) (*Response, error) { return nil, nil })
	table := b.Freeze()

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/bad", http.StatusBadRequest, "Invalid todo ID"},
		{"/missing", http.StatusNotFound, "Not Found"},
		{"/boom", http.StatusInternalServerError, "Internal Server Error"},
		{"/panic", http.StatusInternalServerError, "Internal Server Error"},
		{"/nil", http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tt := range tests {
		resp, pattern := serve(t, table, http.MethodGet, tt.path)
		assert.Equal(t, tt.status, resp.Status, tt.path)
		assert.Equal(t, tt.body, string(resp.Body), tt.path)
		assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
		assert.Equal(t, tt.path, pattern)
	}
}

func TestRouteReturnsAPIErrors(t *testing.T) {
	b := NewBuilder()
	b.GET("/boom", func(*Request) (*Response, error) { return nil, errors.New("boom") })
	table := b.Freeze()

	_, err := table.Route(NewRequest(http.MethodGet, "/boom", nil, nil))
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestRootPattern(t *testing.T) {
	b := NewBuilder()
	b.GET("/", echo("index"))
	table := b.Freeze()

	resp, _ := serve(t, table, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, resp.Status)
	resp, _ = serve(t, table, http.MethodGet, "/?x=1")
	assert.Equal(t, http.StatusOK, resp.Status)
}
