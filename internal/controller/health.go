package controller

import (
	"net/http"

	"todo-tracker/internal/router"
)

type healthResponse struct {
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
}

// Health returns 200 while the process is alive.
func (h *Handler) Health(*router.Request) (*router.Response, error) {
	now := h.now()
	return router.JSON(http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: float64(now.UnixNano()) / 1e9,
	})
}

func (h *Handler) Version(*router.Request) (*router.Response, error) {
	return router.Text(http.StatusOK, h.version), nil
}

// Index serves the bundled single-page client.
func (h *Handler) Index(*router.Request) (*router.Response, error) {
	return router.HTML(http.StatusOK, h.index), nil
}
