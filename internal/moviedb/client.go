// Package moviedb is a small client for The Movie Database (TMDB) v3 API.
// It exposes the two lookups the tracker needs: searching by title and
// fetching one movie by its catalog id. Calls are never retried.
package moviedb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the TMDB v3 API root.
	DefaultEndpoint = "https://api.themoviedb.org/3"
	// DefaultImageBase is the poster host; poster paths are appended to it.
	DefaultImageBase = "https://image.tmdb.org/t/p/w500"
	// DefaultTimeout bounds a single upstream round trip.
	DefaultTimeout = 15 * time.Second
)

// Operation names reported to the observer.
const (
	OpSearch = "search"
	OpFetch  = "fetch"
)

// Observer is notified after every upstream call with its outcome.
type Observer func(op string, err error)

// Client talks to the TMDB API using an API key.
type Client struct {
	endpoint  string
	imageBase string
	apiKey    string
	http      *http.Client
	observe   Observer
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the API root, e.g. to point at a test server.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithImageBase overrides the poster base URL.
func WithImageBase(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.imageBase = strings.TrimRight(base, "/")
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithObserver registers a callback invoked after each call.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observe = o }
}

// NewClient builds a Client for the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint:  DefaultEndpoint,
		imageBase: DefaultImageBase,
		apiKey:    apiKey,
		http:      &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchByTitle returns the catalog matches for query, adult titles
// included. An empty result set is not an error.
func (c *Client) SearchByTitle(ctx context.Context, query string) (results []SearchResult, err error) {
	defer func() { c.report(OpSearch, err) }()

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)
	params.Set("include_adult", "true")

	var resp searchResponse
	if err := c.get(ctx, "/search/movie", params, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return []SearchResult{}, nil
	}
	return resp.Results, nil
}

// FetchByID returns the details of one catalog movie. It fails with
// ErrUpstreamNotFound when the id is unknown upstream.
func (c *Client) FetchByID(ctx context.Context, id int) (details *MovieDetails, err error) {
	defer func() { c.report(OpFetch, err) }()

	params := url.Values{}
	params.Set("api_key", c.apiKey)

	var d MovieDetails
	if err := c.get(ctx, "/movie/"+strconv.Itoa(id), params, &d); err != nil {
		return nil, err
	}
	if d.Title == "" {
		return nil, fmt.Errorf("%w: movie %d has no title", ErrUpstreamUnavailable, id)
	}
	return &d, nil
}

// PosterURL joins the image base and a poster path. An empty path yields
// an empty URL.
func (c *Client) PosterURL(posterPath string) string {
	posterPath = strings.TrimSpace(posterPath)
	if posterPath == "" {
		return ""
	}
	return c.imageBase + "/" + strings.TrimLeft(posterPath, "/")
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.endpoint + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrUpstreamNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}

func (c *Client) report(op string, err error) {
	if c.observe != nil {
		c.observe(op, err)
	}
}

// redact keeps the API key out of error messages; url.Error includes the
// full request URL.
func redact(err error, key string) string {
	msg := err.Error()
	if key == "" {
		return msg
	}
	return strings.ReplaceAll(msg, key, "***")
}
