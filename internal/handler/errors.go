package handler

import (
    "errors"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog/log"

    "github.com/iliyamo/movie-tracker/internal/moviedb"
    "github.com/iliyamo/movie-tracker/internal/repository"
    "github.com/iliyamo/movie-tracker/internal/view"
)

// ErrorHandler is the echo HTTPErrorHandler. It maps domain errors to a
// status code, logs the failure and renders the error page.
func ErrorHandler(err error, c echo.Context) {
    if c.Response().Committed {
        return
    }
    page := errorPage(err)

    req := c.Request()
    ev := log.Warn()
    if !isClientError(err) {
        ev = log.Error()
    }
    ev.Err(err).
        Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
        Str("method", req.Method).
        Str("path", req.URL.Path).
        Int("status", page.Status).
        Msg("request failed")

    if req.Method == http.MethodHead {
        _ = c.NoContent(page.Status)
        return
    }
    if rerr := c.Render(page.Status, view.PageError, page); rerr != nil {
        log.Error().Err(rerr).Msg("render error page")
        _ = c.String(page.Status, page.Message)
    }
}

func errorPage(err error) view.ErrorPage {
    status, msg := http.StatusInternalServerError, "Something went wrong. Please try again."

    var he *echo.HTTPError
    switch {
    case errors.As(err, &he):
        status = he.Code
        msg = fmt.Sprint(he.Message)
    case errors.Is(err, repository.ErrMovieNotFound):
        status, msg = http.StatusNotFound, "That movie is not on your list."
    case errors.Is(err, moviedb.ErrUpstreamNotFound):
        status, msg = http.StatusNotFound, "The movie database has no movie with that id."
    case errors.Is(err, moviedb.ErrUpstreamUnavailable):
        status, msg = http.StatusBadGateway, "The movie database is unavailable right now. Please try again later."
    case errors.Is(err, repository.ErrConstraint):
        status, msg = http.StatusUnprocessableEntity, "The movie is missing a title or release year and cannot be added."
    }
    return view.ErrorPage{Status: status, Title: http.StatusText(status), Message: msg}
}

// isClientError reports whether err comes from the request itself rather
// than the server or its dependencies.
func isClientError(err error) bool {
    var he *echo.HTTPError
    if errors.As(err, &he) {
        return he.Code < 500
    }
    return errors.Is(err, repository.ErrMovieNotFound) ||
        errors.Is(err, repository.ErrConstraint) ||
        errors.Is(err, moviedb.ErrUpstreamNotFound)
}
