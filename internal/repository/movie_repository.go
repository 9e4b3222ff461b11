// Package repository contains data access logic separated from HTTP handlers.
// This file defines the movie repository. Every operation runs inside a
// unit of work (a database transaction) opened with Begin, so a handler
// scopes all of its reads and writes to the lifetime of one request and
// decides explicitly whether to commit or roll back.
package repository

import (
	"context"      // context carries request deadlines into DB calls
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used for sentinel comparisons
	"fmt"          // fmt wraps errors with operation context
	"strconv"      // strconv formats the ranking column
	"strings"      // strings trims user supplied text
	"unicode/utf8" // utf8 truncates long descriptions on rune boundaries

	"github.com/iliyamo/movie-tracker/internal/model"
)

// maxColumnLen mirrors the VARCHAR(250) width of the text columns.
const maxColumnLen = 250

// MovieUnit is the set of movie operations available inside one unit of
// work. Commit makes the writes visible; Rollback discards them and is a
// no-op once the unit has been committed.
type MovieUnit interface {
	Create(ctx context.Context, m *model.Movie) error
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
	List(ctx context.Context, key model.SortKey) ([]model.Movie, error)
	UpdateReview(ctx context.Context, id uint64, rating, review string) error
	SetRanking(ctx context.Context, id uint64, rank int) error
	Delete(ctx context.Context, id uint64) error
	Commit() error
	Rollback() error
}

// MovieRepo opens units of work against the movies table. It depends on a
// sql.DB connection pool which should be configured elsewhere.
type MovieRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// Begin starts a new unit of work. The caller must finish it with Commit
// or Rollback; deferring Rollback right after Begin is always safe.
func (r *MovieRepo) Begin(ctx context.Context) (MovieUnit, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin movie unit: %w", err)
	}
	return &MovieTx{tx: tx}, nil
}

// MovieTx is a MovieUnit backed by a *sql.Tx.
type MovieTx struct {
	tx   *sql.Tx
	done bool
}

// Commit commits the transaction.
func (t *MovieTx) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	return t.tx.Commit()
}

// Rollback aborts the transaction unless it was already finished.
func (t *MovieTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.tx.Rollback()
}

// Create inserts a new movie and populates its ID. Title and year are
// required; a missing value fails with ErrConstraint before touching the
// database. Rating, ranking and review are always inserted as NULL.
func (t *MovieTx) Create(ctx context.Context, m *model.Movie) error {
	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" {
		return fmt.Errorf("%w: title is required", ErrConstraint)
	}
	if m.Year < 1000 || m.Year > 9999 {
		return fmt.Errorf("%w: year %d is not a four digit year", ErrConstraint, m.Year)
	}
	m.Description = truncate(m.Description, maxColumnLen)
	m.Rating, m.Ranking, m.Review = "", "", ""

	const q = `INSERT INTO movies (title, year, description, rating, ranking, review, img_url)
	           VALUES (?, ?, ?, NULL, NULL, NULL, ?)`
	res, err := t.tx.ExecContext(ctx, q, m.Title, m.Year, nullable(m.Description), nullable(m.ImgURL))
	if err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}
	m.ID = uint64(id)
	return nil
}

// GetByID fetches a movie by its id. It returns ErrMovieNotFound if no row
// is found.
func (t *MovieTx) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	const q = `SELECT id, title, year, description, rating, ranking, review, img_url
	           FROM movies WHERE id = ?`
	m, err := scanMovie(t.tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("get movie %d: %w", id, err)
	}
	return m, nil
}

// List returns every movie ordered ascending by key, with id as the
// secondary key.
func (t *MovieTx) List(ctx context.Context, key model.SortKey) ([]model.Movie, error) {
	q := `SELECT id, title, year, description, rating, ranking, review, img_url
	      FROM movies ORDER BY ` + orderClause(key)
	rows, err := t.tx.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	out := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("list movies: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return out, nil
}

// UpdateReview sets the rating and review of a movie and nothing else.
// It returns ErrMovieNotFound when no row matched.
func (t *MovieTx) UpdateReview(ctx context.Context, id uint64, rating, review string) error {
	const q = `UPDATE movies SET rating = ?, review = ? WHERE id = ?`
	res, err := t.tx.ExecContext(ctx, q, nullable(strings.TrimSpace(rating)), nullable(truncate(strings.TrimSpace(review), maxColumnLen)), id)
	if err != nil {
		return fmt.Errorf("update movie %d: %w", id, err)
	}
	return requireRow(res)
}

// SetRanking stores rank in the text ranking column of a movie.
func (t *MovieTx) SetRanking(ctx context.Context, id uint64, rank int) error {
	const q = `UPDATE movies SET ranking = ? WHERE id = ?`
	res, err := t.tx.ExecContext(ctx, q, strconv.Itoa(rank), id)
	if err != nil {
		return fmt.Errorf("rank movie %d: %w", id, err)
	}
	return requireRow(res)
}

// Delete removes a movie permanently. Deleting an id that does not exist
// (including a second delete of the same id) returns ErrMovieNotFound.
func (t *MovieTx) Delete(ctx context.Context, id uint64) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete movie %d: %w", id, err)
	}
	return requireRow(res)
}

// orderClause maps each sort key to its ORDER BY expression.
func orderClause(key model.SortKey) string {
	switch key {
	case model.SortByRating:
		// NULL ratings first, then numeric value
		return "rating IS NOT NULL, CAST(rating AS DECIMAL(10,2)), id"
	case model.SortByYear:
		return "year, id"
	case model.SortByAlphabet:
		return "title, id"
	default:
		return "id"
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(s rowScanner) (*model.Movie, error) {
	var (
		m                                     model.Movie
		desc, rating, ranking, review, imgURL sql.NullString
	)
	if err := s.Scan(&m.ID, &m.Title, &m.Year, &desc, &rating, &ranking, &review, &imgURL); err != nil {
		return nil, err
	}
	m.Description = desc.String
	m.Rating = rating.String
	m.Ranking = ranking.String
	m.Review = review.String
	m.ImgURL = imgURL.String
	return &m, nil
}

// requireRow turns a zero RowsAffected into ErrMovieNotFound. The DSN sets
// clientFoundRows so an UPDATE writing identical values still counts.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// nullable maps the empty string to SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
