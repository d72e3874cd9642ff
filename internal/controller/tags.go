package controller

import (
	"net/http"

	"todo-tracker/internal/router"
)

func (h *Handler) GetTags(req *router.Request) (*router.Response, error) {
	tags, err := h.store.ListAllTags(req.Context())
	if err != nil {
		return nil, err
	}
	return router.JSON(http.StatusOK, tags)
}

// GetTodosForTag lists the todos carrying a tag, most recently updated first.
// An unknown tag id yields an empty list.
func (h *Handler) GetTodosForTag(req *router.Request) (*router.Response, error) {
	ctx := req.Context()
	tagID, err := parseID(req.Param("id"), "Invalid tag ID")
	if err != nil {
		return nil, err
	}
	todos, err := h.store.ListTodosForTag(ctx, tagID)
	return h.todoList(ctx, todos, err)
}
