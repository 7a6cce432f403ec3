package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipes/internal/model"
)

// IngredientRepository is the ingredient ledger.
type IngredientRepository interface {
	Increment(ctx context.Context, name string) error
	Top(ctx context.Context, n int) ([]model.Ingredient, error)
}

type ingredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates a new ingredient repository.
func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

// Increment inserts name with a usage of 1, or bumps the usage of an existing entry by 1.
func (r *ingredientRepository) Increment(ctx context.Context, name string) error {
	ingredient := &model.Ingredient{Name: name, Used: 1}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"used":       gorm.Expr("used + ?", 1),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP(3)"),
		}),
	}).Create(ingredient).Error
}

// Top returns the n most used ingredients; ties keep insertion order.
func (r *ingredientRepository) Top(ctx context.Context, n int) ([]model.Ingredient, error) {
	if n <= 0 {
		return []model.Ingredient{}, nil
	}
	var ingredients []model.Ingredient
	if err := r.db.WithContext(ctx).Order("used DESC").Order("id ASC").Limit(n).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}
