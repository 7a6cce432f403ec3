package service

import (
	"github.com/shopspring/decimal"

	apperrors "recipes/internal/errors"
	"recipes/internal/model"
)

// Accepted star range for a single rating.
const (
	MinRating = 1
	MaxRating = 5
)

// ValidateRating rejects ratings outside MinRating..MaxRating.
func ValidateRating(stars int) error {
	if stars < MinRating || stars > MaxRating {
		return apperrors.ErrInvalidRating
	}
	return nil
}

// ApplyRating appends stars to the history and recomputes the average from the full history.
func ApplyRating(recipe *model.Recipe, stars int) {
	recipe.Ratings = append(recipe.Ratings, stars)
	avg, ok := recipe.Ratings.Average()
	recipe.AvgRating = decimal.NullDecimal{Decimal: avg, Valid: ok}
}
