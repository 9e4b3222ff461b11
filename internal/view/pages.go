package view

import (
	"github.com/iliyamo/movie-tracker/internal/form"
	"github.com/iliyamo/movie-tracker/internal/model"
)

// Page names accepted by Renderer.
const (
	PageIndex  = "index"
	PageAdd    = "add"
	PageSelect = "select"
	PageEdit   = "edit"
	PageError  = "error"
)

// SortOption is one entry of the sort menu on the index page.
type SortOption struct {
	Key    model.SortKey
	Label  string
	Active bool
}

type IndexPage struct {
	Movies    []model.Movie
	SortLabel string
	Sorts     []SortOption
}

type AddPage struct {
	Form      form.AddForm
	Errors    map[string]string
	CSRFToken string
}

// Candidate is one catalog match offered on the select page.
type Candidate struct {
	MovieDBID   int
	Title       string
	Year        int // 0 when the catalog has no release date
	ReleaseDate string
}

type SelectPage struct {
	Query      string
	Candidates []Candidate
}

type EditPage struct {
	Movie     model.Movie
	Form      form.UpdateForm
	Errors    map[string]string
	CSRFToken string
}

type ErrorPage struct {
	Status  int
	Title   string
	Message string
}

// SortOptions builds the sort menu with active marked.
func SortOptions(active model.SortKey) []SortOption {
	out := make([]SortOption, 0, len(model.SortKeys))
	for _, k := range model.SortKeys {
		out = append(out, SortOption{Key: k, Label: k.Label(), Active: k == active})
	}
	return out
}
