package routes

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"todo-tracker/internal/controller"
	"todo-tracker/internal/middleware"
	"todo-tracker/internal/router"
	"todo-tracker/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Table registers the API on a fresh builder and freezes it.
func Table(h *controller.Handler) *router.Table {
	b := router.NewBuilder()
	h.Register(b)
	return b.Freeze()
}

// Router builds the gin engine. /metrics is served by gin; every other request
// goes to the frozen route table.
func Router(table *router.Table) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false
	engine.HandleMethodNotAllowed = false
	engine.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(), middleware.Metrics())

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.NoRoute(serveTable(table))

	return engine
}

func serveTable(table *router.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
		if err != nil {
			logger.Warn(ctx, "Reading request body failed", "error", err)
			c.String(http.StatusBadRequest, "Invalid request body")
			return
		}

		// RequestURI may be absolute-form ("http://host/path"); URL never is.
		uri := c.Request.URL.EscapedPath()
		if c.Request.URL.RawQuery != "" {
			uri += "?" + c.Request.URL.RawQuery
		}
		req := router.NewRequest(c.Request.Method, uri, c.Request.Header, body).WithContext(ctx)
		resp, pattern := table.Serve(req)
		if pattern != "" {
			c.Set(middleware.RouteKey, pattern)
		}

		for k, vs := range resp.Header {
			for _, v := range vs {
				c.Writer.Header().Add(k, v)
			}
		}
		c.Status(resp.Status)
		if _, err := c.Writer.Write(resp.Body); err != nil {
			logger.Debug(ctx, "Writing response failed", "error", err)
		}
	}
}
