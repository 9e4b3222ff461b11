// Package form validates the HTML forms posted to the movie handlers.
package form

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

var (
	minRating = decimal.Zero
	maxRating = decimal.NewFromInt(10)
)

// AddForm is posted from the add page to search the movie catalog.
type AddForm struct {
	MovieTitle string `json:"movie_title" form:"movie_title"`
}

func (f AddForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.MovieTitle,
			validation.By(notBlank("Movie title is required.")),
			validation.Length(0, 250).Error("Movie title must be at most 250 characters."),
		),
	)
}

// UpdateForm is posted from the edit page.
type UpdateForm struct {
	NewRating string `json:"new_rating" form:"new_rating"`
	NewReview string `json:"new_review" form:"new_review"`
}

func (f UpdateForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.NewRating,
			validation.By(notBlank("Rating is required.")),
			validation.By(ratingInRange),
		),
		validation.Field(&f.NewReview,
			validation.By(notBlank("Review is required.")),
			validation.Length(0, 250).Error("Review must be at most 250 characters."),
		),
	)
}

// Rating returns the normalized rating, e.g. "07.50" becomes "7.5".
// It assumes Validate passed.
func (f UpdateForm) Rating() string {
	d, err := decimal.NewFromString(strings.TrimSpace(f.NewRating))
	if err != nil {
		return strings.TrimSpace(f.NewRating)
	}
	return d.String()
}

// Review returns the trimmed review text.
func (f UpdateForm) Review() string {
	return strings.TrimSpace(f.NewReview)
}

// FieldErrors flattens a validation error into one message per form field,
// keyed by the form tag. A non-validation error is reported under "".
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		out[""] = err.Error()
		return out
	}
	for field, ferr := range verrs {
		out[field] = ferr.Error()
	}
	return out
}

func notBlank(msg string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return errors.New(msg)
		}
		return nil
	}
}

func ratingInRange(value interface{}) error {
	s, _ := value.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return errors.New("Rating must be a number.")
	}
	if d.LessThan(minRating) || d.GreaterThan(maxRating) {
		return errors.New("Rating must be between 0 and 10.")
	}
	return nil
}
