package moviedb

import "errors"

// ErrUpstreamNotFound is returned when the catalog has no movie with the
// requested id.
var ErrUpstreamNotFound = errors.New("movie not found upstream")

// ErrUpstreamUnavailable wraps network failures, unexpected status codes
// and undecodable responses from the catalog.
var ErrUpstreamUnavailable = errors.New("movie catalog unavailable")
