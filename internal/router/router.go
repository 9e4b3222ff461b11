package router // package router defines how HTTP routes are registered

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-tracker/internal/config"
	"github.com/iliyamo/movie-tracker/internal/handler"
	"github.com/iliyamo/movie-tracker/internal/metrics"
)

// RegisterRoutes registers the operational endpoints: liveness,
// readiness and the Prometheus scrape target.
func RegisterRoutes(e *echo.Echo, m *metrics.Manager, deps map[string]handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(deps))
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
}

// RegisterMovies registers the movie list pages. limit guards every page
// when scope is config.ScopeAll and only the catalog-backed routes
// (POST /add and /upload) otherwise.
func RegisterMovies(e *echo.Echo, h *handler.MovieHandler, limit echo.MiddlewareFunc, scope string) {
	var pages, upstream []echo.MiddlewareFunc
	if limit != nil {
		upstream = append(upstream, limit)
		if scope == config.ScopeAll {
			pages = append(pages, limit)
		}
	}

	e.GET("/", h.List, pages...)
	e.GET("/edit", h.EditForm, pages...)
	e.POST("/edit", h.Edit, pages...)
	e.GET("/delete", h.Delete, pages...)
	e.GET("/add", h.AddForm, pages...)

	e.POST("/add", h.Add, upstream...)
	e.GET("/upload", h.Upload, upstream...)
}
