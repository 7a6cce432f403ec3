package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"recipes/internal/cache"
	apperrors "recipes/internal/errors"
	"recipes/internal/metrics"
	"recipes/internal/model"
	"recipes/internal/repository"
)

const recipeCacheTTL = 5 * time.Minute

// searchStages is the fallback order; the first stage with any match wins.
var searchStages = []repository.SearchField{
	repository.SearchByName,
	repository.SearchByBody,
	repository.SearchByIngredients,
}

// RecipeInput is the payload for creating a recipe.
type RecipeInput struct {
	Name        string
	Body        string
	Ingredients string
}

// RecipeCache is the read-through cache for single recipes. *cache.Client satisfies it.
type RecipeCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) bool
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	AddJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// RecipeService handles recipe ingestion, ratings and queries.
type RecipeService interface {
	Create(ctx context.Context, token string, input RecipeInput) (*model.Recipe, error)
	Get(ctx context.Context, id uint) (*model.Recipe, error)
	Rate(ctx context.Context, token string, id uint, stars int) (*model.Recipe, error)
	Search(ctx context.Context, query string) ([]model.Recipe, error)
	List(ctx context.Context) ([]model.Recipe, error)
	ListMine(ctx context.Context, token string) ([]model.Recipe, error)
	Fewest(ctx context.Context, n int) ([]model.Recipe, error)
	Most(ctx context.Context, n int) ([]model.Recipe, error)
}

type recipeService struct {
	recipes  repository.RecipeRepository
	uow      repository.UnitOfWork
	resolver TokenResolver
	cache    RecipeCache
	metrics  metrics.Recorder
	logger   zerolog.Logger
}

// NewRecipeService creates a new recipe service.
func NewRecipeService(
	recipes repository.RecipeRepository,
	uow repository.UnitOfWork,
	resolver TokenResolver,
	recipeCache RecipeCache,
	recorder metrics.Recorder,
	logger zerolog.Logger,
) RecipeService {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if recipeCache == nil {
		recipeCache = (*cache.Client)(nil)
	}
	return &recipeService{
		recipes:  recipes,
		uow:      uow,
		resolver: resolver,
		cache:    recipeCache,
		metrics:  recorder,
		logger:   logger,
	}
}

func (s *recipeService) cacheKey(id uint) string {
	return fmt.Sprintf("recipe:%d", id)
}

// owner resolves the acting user. Any token problem becomes ErrForbidden
// while keeping the underlying cause in the chain.
func (s *recipeService) owner(ctx context.Context, token string) (*model.User, error) {
	user, err := s.resolver.Resolve(ctx, token)
	if err != nil {
		if apperrors.IsAuthError(err) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrForbidden, err)
		}
		return nil, err
	}
	return user, nil
}

// Create stores a recipe owned by the token holder and records each ingredient in the ledger.
// The recipe row and every ledger upsert commit together or not at all.
func (s *recipeService) Create(ctx context.Context, token string, input RecipeInput) (*model.Recipe, error) {
	owner, err := s.owner(ctx, token)
	if err != nil {
		return nil, err
	}

	tokens := SplitIngredients(input.Ingredients)
	names := NormalizeIngredients(tokens)
	for _, name := range names {
		if n := utf8.RuneCountInString(name); n > model.MaxIngredientNameLength {
			return nil, fmt.Errorf("%w: %d > %d characters", apperrors.ErrIngredientTooLong, n, model.MaxIngredientNameLength)
		}
	}

	recipe := &model.Recipe{
		Name:            input.Name,
		Body:            input.Body,
		OwnerEmail:      owner.Email,
		IngredientList:  input.Ingredients,
		IngredientCount: len(tokens),
	}

	err = s.uow.WithTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Recipes.Create(ctx, recipe); err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		for _, name := range names {
			if err := repos.Ingredients.Increment(ctx, name); err != nil {
				return fmt.Errorf("record ingredient %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRecipeCreated(len(tokens))
	s.logger.Info().
		Uint("recipe_id", recipe.ID).
		Int("ingredients", len(tokens)).
		Msg("recipe created")
	return recipe, nil
}

// Get retrieves a recipe by ID with caching.
func (s *recipeService) Get(ctx context.Context, id uint) (*model.Recipe, error) {
	// Try cache first
	var cached model.Recipe
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	recipe, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("find recipe: %w", err)
	}

	// Only fill an empty slot: a Rate that committed after our read has
	// already cached the newer copy.
	_ = s.cache.AddJSON(ctx, s.cacheKey(id), recipe, recipeCacheTTL)
	return recipe, nil
}

// Rate appends a rating and recomputes the average under a row lock so
// concurrent ratings are never lost. Anyone may rate; a token, when
// presented, must still resolve.
func (s *recipeService) Rate(ctx context.Context, token string, id uint, stars int) (*model.Recipe, error) {
	if err := ValidateRating(stars); err != nil {
		return nil, err
	}

	rater := "anonymous"
	if token != "" {
		user, err := s.resolver.Resolve(ctx, token)
		if err != nil {
			return nil, err
		}
		rater = user.PublicID
	}

	var updated *model.Recipe
	err := s.uow.WithTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		recipe, err := repos.Recipes.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrRecipeNotFound
			}
			return fmt.Errorf("lock recipe: %w", err)
		}

		ApplyRating(recipe, stars)
		if err := repos.Recipes.UpdateRating(ctx, recipe); err != nil {
			return fmt.Errorf("update rating: %w", err)
		}
		updated = recipe
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Overwrite rather than delete so a concurrent Get cannot re-cache the pre-rating row.
	_ = s.cache.SetJSON(ctx, s.cacheKey(id), updated, recipeCacheTTL)
	s.metrics.RecordRating()
	s.logger.Debug().
		Uint("recipe_id", id).
		Str("rater", rater).
		Int("stars", stars).
		Msg("recipe rated")
	return updated, nil
}

// Search tries name, then body, then ingredient list, returning the first non-empty stage.
func (s *recipeService) Search(ctx context.Context, query string) ([]model.Recipe, error) {
	for _, field := range searchStages {
		found, err := s.recipes.Search(ctx, field, query)
		if err != nil {
			return nil, fmt.Errorf("search by %s: %w", field, err)
		}
		if len(found) > 0 {
			s.metrics.RecordSearch(field.String())
			return found, nil
		}
	}
	s.metrics.RecordSearch("none")
	return []model.Recipe{}, nil
}

// List returns every recipe.
func (s *recipeService) List(ctx context.Context) ([]model.Recipe, error) {
	recipes, err := s.recipes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// ListMine returns the recipes owned by the token holder.
func (s *recipeService) ListMine(ctx context.Context, token string) ([]model.Recipe, error) {
	owner, err := s.owner(ctx, token)
	if err != nil {
		return nil, err
	}
	recipes, err := s.recipes.ListByOwner(ctx, owner.Email)
	if err != nil {
		return nil, fmt.Errorf("list recipes by owner: %w", err)
	}
	return recipes, nil
}

// Fewest returns up to n recipes with the fewest ingredients.
func (s *recipeService) Fewest(ctx context.Context, n int) ([]model.Recipe, error) {
	return s.byIngredientCount(ctx, n, true)
}

// Most returns up to n recipes with the most ingredients.
func (s *recipeService) Most(ctx context.Context, n int) ([]model.Recipe, error) {
	return s.byIngredientCount(ctx, n, false)
}

func (s *recipeService) byIngredientCount(ctx context.Context, n int, ascending bool) ([]model.Recipe, error) {
	if n <= 0 {
		return []model.Recipe{}, nil
	}
	recipes, err := s.recipes.ListByIngredientCount(ctx, n, ascending)
	if err != nil {
		return nil, fmt.Errorf("list recipes by ingredient count: %w", err)
	}
	return recipes, nil
}
