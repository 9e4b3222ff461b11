// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "time"

    "github.com/google/uuid"
)

// ActivityQueueName is the durable queue carrying MovieActivityEvent.
const ActivityQueueName = "movie.activity"

// Activity event types.
const (
    EventMovieAdded    = "movie.added"
    EventMovieReviewed = "movie.reviewed"
    EventMovieDeleted  = "movie.deleted"
)

// MovieActivityEvent is published after a change to the movie list has
// been committed.  It carries a snapshot of the record so consumers can
// log or index it without querying the database.
type MovieActivityEvent struct {
    EventID    string `json:"event_id"`
    Type       string `json:"type"`
    MovieID    uint64 `json:"movie_id"`
    Title      string `json:"title"`
    Year       int    `json:"year,omitempty"`
    Rating     string `json:"rating,omitempty"`
    Review     string `json:"review,omitempty"`
    OccurredAt string `json:"occurred_at"`
}

// NewActivityEvent stamps a fresh event id and the current UTC time.
func NewActivityEvent(eventType string, movieID uint64, title string) MovieActivityEvent {
    return MovieActivityEvent{
        EventID:    uuid.NewString(),
        Type:       eventType,
        MovieID:    movieID,
        Title:      title,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    }
}
