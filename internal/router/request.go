package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// Request is a parsed HTTP request as seen by handlers.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   []byte

	params map[string]string
	ctx    context.Context
}

// NewRequest splits uri into path and query at the first '?'. Query pairs are
// split on '&' and then on the first '='; only values are percent-decoded.
func NewRequest(method, uri string, header http.Header, body []byte) *Request {
	if header == nil {
		header = http.Header{}
	}
	path, rawQuery, _ := strings.Cut(uri, "?")
	return &Request{
		Method: method,
		Path:   path,
		Query:  parseQuery(rawQuery),
		Header: header,
		Body:   body,
	}
}

func parseQuery(raw string) map[string]string {
	query := map[string]string{}
	if raw == "" {
		return query
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		query[key] = value
	}
	return query
}

// Param returns the path parameter bound to name, or "".
func (r *Request) Param(name string) string {
	return r.params[name]
}

// Params returns a copy of every bound path parameter.
func (r *Request) Params() map[string]string {
	out := make(map[string]string, len(r.params))
	for k, v := range r.params {
		out[k] = v
	}
	return out
}

func (r *Request) withParams(params map[string]string) *Request {
	clone := *r
	clone.params = params
	return &clone
}

// Context returns the request context, never nil.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithContext returns a shallow copy of r carrying ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	clone := *r
	clone.ctx = ctx
	return &clone
}

// Decode unmarshals the JSON body into v.
func (r *Request) Decode(v any) error {
	if len(strings.TrimSpace(string(r.Body))) == 0 {
		return BadRequest("Missing request body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return BadRequest("Invalid request body")
	}
	return nil
}
