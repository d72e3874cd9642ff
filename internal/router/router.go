// Package router is a small method + path-segment router. Routes are
// registered on a Builder during startup; Freeze turns the Builder into an
// immutable Table that is safe for concurrent use without locking.
package router

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"todo-tracker/pkg/logger"
)

// HandlerFunc serves a matched request. Returning an *Error reports it to the
// client as-is; any other error becomes a 500.
type HandlerFunc func(req *Request) (*Response, error)

type segment struct {
	value string
	param bool
}

type route struct {
	pattern  string
	segments []segment
	handler  HandlerFunc
}

func splitPath(path string) []string {
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

func compile(pattern string) []segment {
	parts := splitPath(pattern)
	segments := make([]segment, len(parts))
	for i, p := range parts {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			segments[i] = segment{value: name, param: true}
		} else {
			segments[i] = segment{value: p}
		}
	}
	return segments
}

// match reports whether path segments fit the route and returns the bound
// parameters.
func (r route) match(parts []string) (map[string]string, bool) {
	if len(parts) != len(r.segments) {
		return nil, false
	}
	var params map[string]string
	for i, seg := range r.segments {
		if seg.param {
			// A parameter never binds an empty segment, so "/a/" misses "/a/:id".
			if parts[i] == "" {
				return nil, false
			}
			if params == nil {
				params = map[string]string{}
			}
			params[seg.value] = parts[i]
			continue
		}
		if seg.value != parts[i] {
			return nil, false
		}
	}
	if params == nil {
		params = map[string]string{}
	}
	return params, true
}

// Builder collects routes. It is not safe for concurrent use.
type Builder struct {
	routes map[string][]route
	frozen bool
}

func NewBuilder() *Builder {
	return &Builder{routes: map[string][]route{}}
}

// Handle registers handler for method and pattern. Segments starting with ':'
// are parameters. Registering after Freeze panics.
func (b *Builder) Handle(method, pattern string, handler HandlerFunc) {
	if b.frozen {
		panic(fmt.Sprintf("router: %s %s registered after Freeze", method, pattern))
	}
	if handler == nil {
		panic(fmt.Sprintf("router: nil handler for %s %s", method, pattern))
	}
	b.routes[method] = append(b.routes[method], route{
		pattern:  pattern,
		segments: compile(pattern),
		handler:  handler,
	})
}

func (b *Builder) GET(pattern string, h HandlerFunc)    { b.Handle(http.MethodGet, pattern, h) }
func (b *Builder) POST(pattern string, h HandlerFunc)   { b.Handle(http.MethodPost, pattern, h) }
func (b *Builder) PATCH(pattern string, h HandlerFunc)  { b.Handle(http.MethodPatch, pattern, h) }
func (b *Builder) DELETE(pattern string, h HandlerFunc) { b.Handle(http.MethodDelete, pattern, h) }

// Freeze ends registration and returns the immutable route table.
func (b *Builder) Freeze() *Table {
	b.frozen = true
	routes := make(map[string][]route, len(b.routes))
	for method, rs := range b.routes {
		routes[method] = append([]route(nil), rs...)
	}
	return &Table{routes: routes}
}

// Table is a frozen set of routes.
type Table struct {
	routes map[string][]route
}

// Match is the outcome of a successful lookup.
type Match struct {
	Pattern string
	Params  map[string]string
	handler HandlerFunc
}

// Match finds the first route registered for method whose segments fit path.
func (t *Table) Match(method, path string) (*Match, error) {
	routes, ok := t.routes[method]
	if !ok || len(routes) == 0 {
		return nil, ErrMethodNotAllowed
	}
	parts := splitPath(path)
	for _, r := range routes {
		if params, ok := r.match(parts); ok {
			return &Match{Pattern: r.pattern, Params: params, handler: r.handler}, nil
		}
	}
	return nil, ErrNotFound
}

// Route dispatches req. The returned error is always an *Error.
func (t *Table) Route(req *Request) (*Response, error) {
	resp, _, err := t.route(req)
	return resp, err
}

func (t *Table) route(req *Request) (resp *Response, pattern string, err error) {
	m, err := t.Match(req.Method, req.Path)
	if err != nil {
		return nil, "", err
	}
	pattern = m.Pattern

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error(req.Context(), "Handler panicked",
				"route", pattern, "panic", rec, "stack", string(debug.Stack()))
			resp, err = nil, ErrInternal
		}
	}()

	resp, err = m.handler(req.withParams(m.Params))
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) {
			return nil, pattern, apiErr
		}
		logger.Error(req.Context(), "Handler failed", "route", pattern, "error", err)
		return nil, pattern, ErrInternal
	}
	if resp == nil {
		logger.Error(req.Context(), "Handler returned no response", "route", pattern)
		return nil, pattern, ErrInternal
	}
	return resp, pattern, nil
}

// Serve dispatches req and always produces a response, turning errors into
// plain-text bodies. It also returns the matched pattern ("" when none).
func (t *Table) Serve(req *Request) (*Response, string) {
	resp, pattern, err := t.route(req)
	if err != nil {
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			apiErr = ErrInternal
		}
		return Text(apiErr.Status, apiErr.Message), pattern
	}
	return resp, pattern
}
