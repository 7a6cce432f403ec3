package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipes/internal/model"
)

// SearchField selects the recipe column a search stage matches against.
type SearchField int

const (
	SearchByName SearchField = iota
	SearchByBody
	SearchByIngredients
)

func (f SearchField) column() string {
	switch f {
	case SearchByBody:
		return "body"
	case SearchByIngredients:
		return "ingredient_list"
	default:
		return "name"
	}
}

// String returns the stage label used in logs and metrics.
func (f SearchField) String() string {
	switch f {
	case SearchByBody:
		return "body"
	case SearchByIngredients:
		return "ingredients"
	default:
		return "name"
	}
}

// RecipeRepository is the recipe store.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *model.Recipe) error
	FindByID(ctx context.Context, id uint) (*model.Recipe, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Recipe, error)
	UpdateRating(ctx context.Context, recipe *model.Recipe) error
	List(ctx context.Context) ([]model.Recipe, error)
	ListByOwner(ctx context.Context, email string) ([]model.Recipe, error)
	ListByIngredientCount(ctx context.Context, limit int, ascending bool) ([]model.Recipe, error)
	Search(ctx context.Context, field SearchField, query string) ([]model.Recipe, error)
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// Create creates a new recipe.
func (r *recipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	return r.db.WithContext(ctx).Create(recipe).Error
}

// FindByID finds a recipe by ID.
func (r *recipeRepository) FindByID(ctx context.Context, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// FindByIDForUpdate finds a recipe by ID with a row-level lock.
// It only holds the lock when called inside a transaction.
func (r *recipeRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// UpdateRating persists the rating history and average of a recipe.
func (r *recipeRepository) UpdateRating(ctx context.Context, recipe *model.Recipe) error {
	return r.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("id = ?", recipe.ID).
		Updates(map[string]interface{}{
			"ratings":    recipe.Ratings,
			"avg_rating": recipe.AvgRating,
		}).Error
}

// List lists all recipes ordered by name.
func (r *recipeRepository) List(ctx context.Context) ([]model.Recipe, error) {
	var recipes []model.Recipe
	if err := r.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// ListByOwner lists the recipes submitted by the given email in insertion order.
func (r *recipeRepository) ListByOwner(ctx context.Context, email string) ([]model.Recipe, error) {
	var recipes []model.Recipe
	if err := r.db.WithContext(ctx).Where("owner_email = ?", email).Order("id ASC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// ListByIngredientCount lists up to limit recipes ordered by ingredient count.
func (r *recipeRepository) ListByIngredientCount(ctx context.Context, limit int, ascending bool) ([]model.Recipe, error) {
	order := "ingredient_count DESC"
	if ascending {
		order = "ingredient_count ASC"
	}
	var recipes []model.Recipe
	if err := r.db.WithContext(ctx).Order(order).Order("id ASC").Limit(limit).Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// Search returns recipes whose field contains query, case-insensitively, in insertion order.
func (r *recipeRepository) Search(ctx context.Context, field SearchField, query string) ([]model.Recipe, error) {
	pattern := containsPattern(query)
	var recipes []model.Recipe
	if err := r.db.WithContext(ctx).
		Where("LOWER("+field.column()+") LIKE ?", pattern).
		Order("id ASC").
		Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// containsPattern builds the LIKE pattern matched against LOWER(column).
func containsPattern(query string) string {
	return "%" + escapeLike(strings.ToLower(query)) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
