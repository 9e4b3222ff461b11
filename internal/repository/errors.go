// Package repository defines error types that are reused across the data
// access layer. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios with errors.Is.
// ErrMovieNotFound indicates that no row matched the requested id, while
// ErrConstraint signals that a record could not be written because a
// required column was missing or invalid.
package repository

import "errors"

// ErrMovieNotFound is returned when a movie id does not exist. Handlers
// translate this into an HTTP 404 response.
var ErrMovieNotFound = errors.New("movie not found")

// ErrConstraint is returned when a movie is missing a required field
// (title or year). Handlers translate this into an HTTP 422 response.
var ErrConstraint = errors.New("constraint violation")
