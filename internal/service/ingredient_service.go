package service

import (
	"context"
	"fmt"

	"recipes/internal/model"
	"recipes/internal/repository"
)

// IngredientService reads the ingredient usage ledger.
type IngredientService interface {
	Top(ctx context.Context, n int) ([]model.Ingredient, error)
}

type ingredientService struct {
	repo repository.IngredientRepository
}

// NewIngredientService creates a new ingredient service.
func NewIngredientService(repo repository.IngredientRepository) IngredientService {
	return &ingredientService{repo: repo}
}

// Top returns the n most used ingredients, ties in first-recorded order.
func (s *ingredientService) Top(ctx context.Context, n int) ([]model.Ingredient, error) {
	if n <= 0 {
		return []model.Ingredient{}, nil
	}
	ingredients, err := s.repo.Top(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("top ingredients: %w", err)
	}
	return ingredients, nil
}
