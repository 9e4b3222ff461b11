package moviedb

import (
	"strconv"
	"strings"
)

// SearchResult is one entry of a TMDB /search/movie response.
type SearchResult struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Overview    string `json:"overview"`
	PosterPath  string `json:"poster_path"`
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// MovieDetails is the subset of a TMDB /movie/{id} payload the tracker
// stores.
type MovieDetails struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Overview    string `json:"overview"`
	PosterPath  string `json:"poster_path"`
}

// ReleaseYear returns the first four characters of the release date as a
// number, or 0 when the date is missing or malformed.
func (d MovieDetails) ReleaseYear() int {
	return yearOf(d.ReleaseDate)
}

// Year is the release year of a search result, 0 when unknown.
func (r SearchResult) Year() int {
	return yearOf(r.ReleaseDate)
}

func yearOf(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil || y <= 0 {
		return 0
	}
	return y
}
