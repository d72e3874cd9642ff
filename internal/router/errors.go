package router

import "net/http"

// Error is a failure the API reports to the client: a status code and a
// plain-text message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// BadRequest reports malformed input.
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

var (
	ErrNotFound         = &Error{Status: http.StatusNotFound, Message: "Not Found"}
	ErrMethodNotAllowed = &Error{Status: http.StatusMethodNotAllowed, Message: "Method Not Allowed"}
	ErrInternal         = &Error{Status: http.StatusInternalServerError, Message: "Internal Server Error"}
)
