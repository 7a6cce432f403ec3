// Package app assembles the stores, caches and services shared by the server and seed binaries.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"recipes/internal/auth"
	"recipes/internal/cache"
	"recipes/internal/config"
	"recipes/internal/db"
	"recipes/internal/enrich"
	"recipes/internal/metrics"
	"recipes/internal/repository"
	"recipes/internal/service"
)

// App holds the wired dependencies.
type App struct {
	DB      *gorm.DB
	Cache   *cache.Client
	Metrics *metrics.Collector

	Auth        service.AuthService
	Recipes     service.RecipeService
	Ingredients service.IngredientService
}

// New connects to MySQL and Redis, migrates the schema and builds the services.
// Metrics are registered on reg.
func New(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, logger zerolog.Logger) (*App, error) {
	gormDB, err := db.NewMySQL(cfg.MySQLDSN, logger.With().Str("component", "gorm").Logger())
	if err != nil {
		return nil, err
	}

	// Drop tables if RESET_DB is set
	if cfg.ResetDB {
		logger.Warn().Msg("RESET_DB=true detected, dropping all tables")
		db.Reset(gormDB, logger)
	}

	if err := db.Migrate(gormDB); err != nil {
		return nil, err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(ctx); err != nil {
		// The cache fails safe; the service keeps running without it.
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, continuing without cache")
	}

	collector := metrics.NewCollector(reg)

	// Initialize repositories
	repos := repository.NewRepositories(gormDB)
	uow := repository.NewUnitOfWork(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, auth.WithTTL(cfg.TokenTTL))
	tokenStore := auth.NewTokenStore(cacheClient)
	enricher := enrich.NewClient(enrich.Config{
		URL:     cfg.EnrichURL,
		APIKey:  cfg.EnrichAPIKey,
		Timeout: cfg.EnrichTimeout,
	})

	// Initialize services
	authService := service.NewAuthService(repos.Users, jwtService, tokenStore, enricher, collector,
		logger.With().Str("component", "auth").Logger())
	recipeService := service.NewRecipeService(repos.Recipes, uow, authService, cacheClient, collector,
		logger.With().Str("component", "recipes").Logger())
	ingredientService := service.NewIngredientService(repos.Ingredients)

	return &App{
		DB:          gormDB,
		Cache:       cacheClient,
		Metrics:     collector,
		Auth:        authService,
		Recipes:     recipeService,
		Ingredients: ingredientService,
	}, nil
}

// Close releases the database pool and the Redis client.
func (a *App) Close() error {
	if err := a.Cache.Close(); err != nil {
		return fmt.Errorf("close cache: %w", err)
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}
