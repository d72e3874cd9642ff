package router

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const (
	contentTypeJSON = "application/json"
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
)

// Response is what a handler hands back to the transport.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

func newResponse(status int, contentType string, body []byte) *Response {
	h := http.Header{}
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(body)))
	h.Set("Connection", "close")
	return &Response{Status: status, Header: h, Body: body}
}

// JSON encodes v. Encoding failures surface as ErrInternal.
func JSON(status int, v any) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, ErrInternal
	}
	return newResponse(status, contentTypeJSON, body), nil
}

func HTML(status int, body string) *Response {
	return newResponse(status, contentTypeHTML, []byte(body))
}

func Text(status int, body string) *Response {
	return newResponse(status, contentTypeText, []byte(body))
}
