package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories groups the stores bound to one connection or transaction.
type Repositories struct {
	Users       UserRepository
	Recipes     RecipeRepository
	Ingredients IngredientRepository
}

// NewRepositories builds all stores on top of db.
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:       NewUserRepository(db),
		Recipes:     NewRecipeRepository(db),
		Ingredients: NewIngredientRepository(db),
	}
}

// UnitOfWork runs a function against stores that share one database transaction.
type UnitOfWork interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type unitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a GORM-backed unit of work.
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &unitOfWork{db: db}
}

// WithTransaction executes fn within a database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (u *unitOfWork) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepositories(tx))
	})
}
