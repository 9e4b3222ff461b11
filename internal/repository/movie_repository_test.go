package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-tracker/internal/model"
)

var movieColumns = []string{"id", "title", "year", "description", "rating", "ranking", "review", "img_url"}

func newUnit(t *testing.T) (MovieUnit, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	unit, err := NewMovieRepo(db).Begin(context.Background())
	require.NoError(t, err)
	return unit, mock
}

func TestCreateInsertsWithUnsetReviewFields(t *testing.T) {
	unit, mock := newUnit(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO movies")).
		WithArgs("Inception", 2010, "A thief who steals secrets.", "https://image.tmdb.org/t/p/w500/x.jpg").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	m := &model.Movie{
		Title:       "  Inception ",
		Year:        2010,
		Description: "A thief who steals secrets.",
		Rating:      "9",
		ImgURL:      "https://image.tmdb.org/t/p/w500/x.jpg",
	}
	require.NoError(t, unit.Create(ctx, m))
	require.NoError(t, unit.Commit())

	assert.Equal(t, uint64(7), m.ID)
	assert.Equal(t, "Inception", m.Title)
	assert.Empty(t, m.Rating)
	assert.Empty(t, m.Ranking)
	assert.Empty(t, m.Review)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStoresEmptyOptionalFieldsAsNull(t *testing.T) {
	unit, mock := newUnit(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO movies")).
		WithArgs("Heat", 1995, nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, unit.Create(context.Background(), &model.Movie{Title: "Heat", Year: 1995}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTruncatesLongDescription(t *testing.T) {
	unit, mock := newUnit(t)
	long := strings.Repeat("é", 300)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO movies")).
		WithArgs("Heat", 1995, strings.Repeat("é", 250), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, unit.Create(context.Background(), &model.Movie{Title: "Heat", Year: 1995, Description: long}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsMissingRequiredFields(t *testing.T) {
	unit, mock := newUnit(t)
	ctx := context.Background()

	err := unit.Create(ctx, &model.Movie{Title: "   ", Year: 2010})
	assert.ErrorIs(t, err, ErrConstraint)

	err = unit.Create(ctx, &model.Movie{Title: "Heat"})
	assert.ErrorIs(t, err, ErrConstraint)

	err = unit.Create(ctx, &model.Movie{Title: "Heat", Year: 95})
	assert.ErrorIs(t, err, ErrConstraint)

	// nothing reached the database
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDMapsNullColumns(t *testing.T) {
	unit, mock := newUnit(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM movies WHERE id = ?")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(movieColumns).
			AddRow(3, "Alien", 1979, "In space.", nil, nil, nil, "http://img/alien.jpg"))

	m, err := unit.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, model.Movie{ID: 3, Title: "Alien", Year: 1979, Description: "In space.", ImgURL: "http://img/alien.jpg"}, *m)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	unit, mock := newUnit(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM movies WHERE id = ?")).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows(movieColumns))

	_, err := unit.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestListUsesOrderClausePerKey(t *testing.T) {
	cases := map[model.SortKey]string{
		model.SortByDate:     "ORDER BY id",
		model.SortByYear:     "ORDER BY year, id",
		model.SortByAlphabet: "ORDER BY title, id",
		model.SortByRating:   "ORDER BY rating IS NOT NULL, CAST(rating AS DECIMAL(10,2)), id",
	}
	for key, clause := range cases {
		t.Run(string(key), func(t *testing.T) {
			unit, mock := newUnit(t)
			mock.ExpectQuery(regexp.QuoteMeta(clause) + "$").
				WillReturnRows(sqlmock.NewRows(movieColumns).
					AddRow(1, "Alien", 1979, nil, "8", "2", "good", nil).
					AddRow(2, "Heat", 1995, nil, nil, nil, nil, nil))

			got, err := unit.List(context.Background(), key)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "8", got[0].Rating)
			assert.Equal(t, "2", got[0].Ranking)
			assert.Empty(t, got[1].Rating)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestListEmptyStore(t *testing.T) {
	unit, mock := newUnit(t)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows(movieColumns))

	got, err := unit.List(context.Background(), model.SortByDate)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUpdateReviewTouchesOnlyRatingAndReview(t *testing.T) {
	unit, mock := newUnit(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE movies SET rating = ?, review = ? WHERE id = ?")).
		WithArgs("7.5", "Great heist.", uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, unit.UpdateReview(context.Background(), 5, " 7.5 ", "Great heist."))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReviewNotFound(t *testing.T) {
	unit, mock := newUnit(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE movies SET rating")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := unit.UpdateReview(context.Background(), 99, "7", "ok")
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestSetRankingWritesText(t *testing.T) {
	unit, mock := newUnit(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE movies SET ranking = ? WHERE id = ?")).
		WithArgs("3", uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, unit.SetRanking(context.Background(), 1, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTwiceFailsSecondTime(t *testing.T) {
	unit, mock := newUnit(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM movies WHERE id = ?")).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM movies WHERE id = ?")).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, unit.Delete(ctx, 4))
	assert.ErrorIs(t, unit.Delete(ctx, 4), ErrMovieNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePropagatesDriverErrors(t *testing.T) {
	unit, mock := newUnit(t)
	boom := errors.New("connection reset")

	mock.ExpectExec("DELETE").WillReturnError(boom)

	err := unit.Delete(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrMovieNotFound)
}

func TestRollbackAfterCommitIsNoop(t *testing.T) {
	unit, mock := newUnit(t)
	mock.ExpectCommit()

	require.NoError(t, unit.Commit())
	assert.NoError(t, unit.Rollback())
	assert.ErrorIs(t, unit.Commit(), sql.ErrTxDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRollbackDiscardsUnit(t *testing.T) {
	unit, mock := newUnit(t)
	mock.ExpectRollback()

	require.NoError(t, unit.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
