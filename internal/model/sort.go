package model

import (
	"cmp"
	"strings"

	"github.com/shopspring/decimal"
)

// SortKey selects the ordering used by the movie list.
type SortKey string

const (
	SortByRating   SortKey = "rating"
	SortByDate     SortKey = "date" // insertion order, i.e. id
	SortByYear     SortKey = "year"
	SortByAlphabet SortKey = "alphabet"
)

// DefaultSortKey is used whenever the requested key is missing or unknown.
const DefaultSortKey = SortByDate

// SortKeys lists every supported key in the order the list page offers them.
var SortKeys = []SortKey{SortByRating, SortByDate, SortByYear, SortByAlphabet}

// ParseSortKey maps the raw `sorted` query value to a SortKey. The boolean
// is false when raw was not a known key, in which case DefaultSortKey is
// returned.
func ParseSortKey(raw string) (SortKey, bool) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(raw))); k {
	case SortByRating, SortByDate, SortByYear, SortByAlphabet:
		return k, true
	}
	return DefaultSortKey, false
}

// Label returns the title-cased key shown on the list page ("Rating", "Date", ...).
func (k SortKey) Label() string {
	s := string(k)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Compare orders a before b under k. Ties on the key fall back to id so the
// result never depends on storage order.
func (k SortKey) Compare(a, b Movie) int {
	var c int
	switch k {
	case SortByRating:
		c = compareRating(a.Rating, b.Rating)
	case SortByYear:
		c = cmp.Compare(a.Year, b.Year)
	case SortByAlphabet:
		c = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	}
	if c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// compareRating compares ratings numerically. Unset ratings sort first; a
// value that is not a number compares as zero, matching CAST in MySQL.
func compareRating(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}
	return ratingValue(a).Cmp(ratingValue(b))
}

func ratingValue(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
