// Package ranking assigns list positions to movies. The first movie in the
// requested order gets the highest rank and the last one gets 1, and every
// rank is written back to the store on each render.
package ranking

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/iliyamo/movie-tracker/internal/model"
)

// Writer persists a single movie's rank.
type Writer interface {
	SetRanking(ctx context.Context, id uint64, rank int) error
}

// Rank returns the rank of position i in a list of n movies.
func Rank(n, i int) int { return n - i }

// Apply sorts movies in place by key and sets each Ranking field. Sorting
// is stable and key.Compare breaks ties by id, so the result is the same
// whatever order the store returned.
func Apply(movies []model.Movie, key model.SortKey) {
	slices.SortStableFunc(movies, key.Compare)
	n := len(movies)
	for i := range movies {
		movies[i].Ranking = strconv.Itoa(Rank(n, i))
	}
}

// Persist writes the rank of every movie through w. Movies must already be
// in display order. Rows are written in ascending id order whatever the
// display order, so concurrent renders with different sort keys lock rows
// in the same sequence. An empty slice writes nothing.
func Persist(ctx context.Context, w Writer, movies []model.Movie) error {
	type write struct {
		id   uint64
		rank int
	}
	n := len(movies)
	writes := make([]write, n)
	for i, m := range movies {
		writes[i] = write{id: m.ID, rank: Rank(n, i)}
	}
	slices.SortFunc(writes, func(a, b write) int { return cmp.Compare(a.id, b.id) })

	for _, wr := range writes {
		if err := w.SetRanking(ctx, wr.id, wr.rank); err != nil {
			return fmt.Errorf("persist ranking for movie %d: %w", wr.id, err)
		}
	}
	return nil
}
