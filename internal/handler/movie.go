// Package handler exposes the HTTP handlers of the movie tracker. Every
// handler that touches the database opens its own unit of work, finishes
// it before rendering and leaves error presentation to ErrorHandler.
package handler

import (
    "context"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movie-tracker/internal/form"
    "github.com/iliyamo/movie-tracker/internal/metrics"
    "github.com/iliyamo/movie-tracker/internal/model"
    "github.com/iliyamo/movie-tracker/internal/moviedb"
    "github.com/iliyamo/movie-tracker/internal/queue"
    "github.com/iliyamo/movie-tracker/internal/ranking"
    "github.com/iliyamo/movie-tracker/internal/repository"
    "github.com/iliyamo/movie-tracker/internal/utils"
    "github.com/iliyamo/movie-tracker/internal/view"
)

// Form names bound into form tokens.
const (
    formAdd  = "add"
    formEdit = "edit"
)

const msgFormExpired = "Your form has expired. Please submit it again."

// MovieStore opens units of work on the movie list.
type MovieStore interface {
    Begin(ctx context.Context) (repository.MovieUnit, error)
}

// Catalog is the external movie database.
type Catalog interface {
    SearchByTitle(ctx context.Context, query string) ([]moviedb.SearchResult, error)
    FetchByID(ctx context.Context, id int) (*moviedb.MovieDetails, error)
    PosterURL(posterPath string) string
}

// EventPublisher receives activity events after a change is committed.
type EventPublisher interface {
    Publish(ctx context.Context, ev queue.MovieActivityEvent) error
}

// MovieHandler serves the movie list pages.
type MovieHandler struct {
    Store      MovieStore       // Store opens units of work
    Catalog    Catalog          // Catalog searches and fetches upstream movies
    Events     EventPublisher   // Events receives activity events
    Metrics    *metrics.Manager // Metrics may be nil
    FormSecret string           // FormSecret signs form tokens
    FormTTL    time.Duration    // FormTTL bounds how long a rendered form stays valid
}

// NewMovieHandler constructs a MovieHandler and panics if a required
// dependency is missing.
func NewMovieHandler(store MovieStore, catalog Catalog, events EventPublisher, m *metrics.Manager, formSecret string, formTTL time.Duration) *MovieHandler {
    if store == nil || catalog == nil || events == nil {
        panic("nil dependency passed to NewMovieHandler")
    }
    if formSecret == "" {
        panic("empty form secret passed to NewMovieHandler")
    }
    return &MovieHandler{
        Store:      store,
        Catalog:    catalog,
        Events:     events,
        Metrics:    m,
        FormSecret: formSecret,
        FormTTL:    formTTL,
    }
}

// List handles GET /. It sorts the list by ?sorted=, recomputes every
// ranking for that order and writes the rankings back before rendering.
func (h *MovieHandler) List(c echo.Context) error {
    ctx := c.Request().Context()
    key, _ := model.ParseSortKey(c.QueryParam("sorted"))

    unit, err := h.Store.Begin(ctx)
    if err != nil {
        return err
    }
    defer func() { _ = unit.Rollback() }()

    movies, err := unit.List(ctx, key)
    if err != nil {
        return err
    }
    ranking.Apply(movies, key)
    if err := ranking.Persist(ctx, unit, movies); err != nil {
        return err
    }
    if err := unit.Commit(); err != nil {
        return fmt.Errorf("commit rankings: %w", err)
    }
    h.Metrics.ObserveRanking(string(key), len(movies))

    return c.Render(http.StatusOK, view.PageIndex, view.IndexPage{
        Movies:    movies,
        SortLabel: key.Label(),
        Sorts:     view.SortOptions(key),
    })
}

// AddForm handles GET /add.
func (h *MovieHandler) AddForm(c echo.Context) error {
    return h.renderAdd(c, form.AddForm{}, nil)
}

// Add handles POST /add. A valid title is searched upstream and every
// match is offered on the select page.
func (h *MovieHandler) Add(c echo.Context) error {
    f := form.AddForm{MovieTitle: c.FormValue("movie_title")}
    if err := utils.VerifyFormToken(h.FormSecret, addBinding(requestNonce(c)), c.FormValue("csrf_token")); err != nil {
        return h.renderAdd(c, f, map[string]string{"": msgFormExpired})
    }
    if err := f.Validate(); err != nil {
        return h.renderAdd(c, f, form.FieldErrors(err))
    }

    query := strings.TrimSpace(f.MovieTitle)
    results, err := h.Catalog.SearchByTitle(c.Request().Context(), query)
    if err != nil {
        return err
    }
    candidates := make([]view.Candidate, 0, len(results))
    for _, r := range results {
        candidates = append(candidates, view.Candidate{MovieDBID: r.ID, Title: r.Title, Year: r.Year(), ReleaseDate: r.ReleaseDate})
    }
    return c.Render(http.StatusOK, view.PageSelect, view.SelectPage{Query: query, Candidates: candidates})
}

// Upload handles GET /upload?movie_db_id=. It fetches the chosen movie
// upstream, stores it without rating or review and shows the edit page.
func (h *MovieHandler) Upload(c echo.Context) error {
    ctx := c.Request().Context()
    raw := strings.TrimSpace(c.QueryParam("movie_db_id"))
    movieDBID, err := strconv.Atoi(raw)
    if err != nil || movieDBID <= 0 {
        return echo.NewHTTPError(http.StatusBadRequest, "movie_db_id must be a positive integer")
    }

    details, err := h.Catalog.FetchByID(ctx, movieDBID)
    if err != nil {
        return err
    }
    m := model.Movie{
        Title:       details.Title,
        Year:        details.ReleaseYear(),
        Description: details.Overview,
        ImgURL:      h.Catalog.PosterURL(details.PosterPath),
    }

    unit, err := h.Store.Begin(ctx)
    if err != nil {
        return err
    }
    defer func() { _ = unit.Rollback() }()
    if err := unit.Create(ctx, &m); err != nil {
        return err
    }
    if err := unit.Commit(); err != nil {
        return fmt.Errorf("commit new movie: %w", err)
    }

    ev := queue.NewActivityEvent(queue.EventMovieAdded, m.ID, m.Title)
    ev.Year = m.Year
    h.publish(ctx, ev)

    return h.renderEdit(c, m, form.UpdateForm{}, nil)
}

// EditForm handles GET /edit?id=.
func (h *MovieHandler) EditForm(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return err
    }
    m, err := h.get(c.Request().Context(), id)
    if err != nil {
        return err
    }
    return h.renderEdit(c, *m, form.UpdateForm{NewRating: m.Rating, NewReview: m.Review}, nil)
}

// Edit handles POST /edit?id=. Only rating and review change; on success
// the client is sent back to the list.
func (h *MovieHandler) Edit(c echo.Context) error {
    ctx := c.Request().Context()
    id, err := parseID(c, "id")
    if err != nil {
        return err
    }
    f := form.UpdateForm{NewRating: c.FormValue("new_rating"), NewReview: c.FormValue("new_review")}

    unit, err := h.Store.Begin(ctx)
    if err != nil {
        return err
    }
    defer func() { _ = unit.Rollback() }()

    m, err := unit.GetByID(ctx, id)
    if err != nil {
        return err
    }
    if err := utils.VerifyFormToken(h.FormSecret, editBinding(requestNonce(c), id), c.FormValue("csrf_token")); err != nil {
        return h.renderEdit(c, *m, f, map[string]string{"": msgFormExpired})
    }
    if err := f.Validate(); err != nil {
        return h.renderEdit(c, *m, f, form.FieldErrors(err))
    }

    if err := unit.UpdateReview(ctx, id, f.Rating(), f.Review()); err != nil {
        return err
    }
    if err := unit.Commit(); err != nil {
        return fmt.Errorf("commit review: %w", err)
    }

    ev := queue.NewActivityEvent(queue.EventMovieReviewed, m.ID, m.Title)
    ev.Year, ev.Rating, ev.Review = m.Year, f.Rating(), f.Review()
    h.publish(ctx, ev)

    return c.Redirect(http.StatusFound, "/")
}

// Delete handles GET /delete?id=. Deleting a movie that is not on the list
// (including a second delete) is a 404.
func (h *MovieHandler) Delete(c echo.Context) error {
    ctx := c.Request().Context()
    id, err := parseID(c, "id")
    if err != nil {
        return err
    }

    unit, err := h.Store.Begin(ctx)
    if err != nil {
        return err
    }
    defer func() { _ = unit.Rollback() }()

    m, err := unit.GetByID(ctx, id)
    if err != nil {
        return err
    }
    if err := unit.Delete(ctx, id); err != nil {
        return err
    }
    if err := unit.Commit(); err != nil {
        return fmt.Errorf("commit delete: %w", err)
    }

    ev := queue.NewActivityEvent(queue.EventMovieDeleted, m.ID, m.Title)
    ev.Year = m.Year
    h.publish(ctx, ev)

    return c.Redirect(http.StatusFound, "/")
}

// get reads one movie in a unit of work of its own.
func (h *MovieHandler) get(ctx context.Context, id uint64) (*model.Movie, error) {
    unit, err := h.Store.Begin(ctx)
    if err != nil {
        return nil, err
    }
    defer func() { _ = unit.Rollback() }()

    m, err := unit.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    return m, unit.Commit()
}

func (h *MovieHandler) renderAdd(c echo.Context, f form.AddForm, errs map[string]string) error {
    tok, err := utils.NewFormToken(h.FormSecret, addBinding(issueNonce(c)), h.FormTTL)
    if err != nil {
        return err
    }
    return c.Render(http.StatusOK, view.PageAdd, view.AddPage{Form: f, Errors: errs, CSRFToken: tok.Token})
}

func (h *MovieHandler) renderEdit(c echo.Context, m model.Movie, f form.UpdateForm, errs map[string]string) error {
    tok, err := utils.NewFormToken(h.FormSecret, editBinding(issueNonce(c), m.ID), h.FormTTL)
    if err != nil {
        return err
    }
    return c.Render(http.StatusOK, view.PageEdit, view.EditPage{Movie: m, Form: f, Errors: errs, CSRFToken: tok.Token})
}

// publish is best-effort; the publisher logs its own failures.
func (h *MovieHandler) publish(ctx context.Context, ev queue.MovieActivityEvent) {
    _ = h.Events.Publish(ctx, ev)
}

// parseID reads a positive integer id from the query string or returns a
// 400 error.
func parseID(c echo.Context, name string) (uint64, error) {
    raw := strings.TrimSpace(c.QueryParam(name))
    id, err := strconv.ParseUint(raw, 10, 64)
    if err != nil || id == 0 {
        return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
    }
    return id, nil
}
