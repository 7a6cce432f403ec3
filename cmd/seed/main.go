package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"recipes/internal/app"
	"recipes/internal/config"
	apperrors "recipes/internal/errors"
	"recipes/internal/logging"
	"recipes/internal/service"
)

// SeedUser is one author in a seed file, with the recipes they submit.
type SeedUser struct {
	Email     string       `json:"email"`
	Password  string       `json:"password"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Recipes   []SeedRecipe `json:"recipes"`
}

// SeedRecipe is a recipe plus the ratings it should receive.
type SeedRecipe struct {
	Name        string `json:"name"`
	Body        string `json:"body"`
	Ingredients string `json:"ingredients"`
	Ratings     []int  `json:"ratings"`
}

// Summary counts what a seed run did.
type Summary struct {
	UsersCreated   int
	UsersExisting  int
	RecipesCreated int
	RatingsApplied int
}

type options struct {
	file  string
	reset bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users, recipes and ratings from a JSON file",
		Long: `Load users, recipes and ratings from a JSON file.

Every user is registered (or reused when the email already exists), logged in,
and their recipes are submitted through the same services the API uses, so the
ingredient ledger and rating averages stay consistent.

Example:
  seed --file cmd/seed/testdata/seed.json
  seed --file seed.json --reset`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "path to the seed JSON file (required)")
	cmd.Flags().BoolVar(&opts.reset, "reset", false, "drop all tables before seeding")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runSeed(ctx context.Context, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.reset {
		cfg.ResetDB = true
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger := logging.With("seed")

	users, err := loadSeedFile(opts.file)
	if err != nil {
		return err
	}
	logger.Info().Str("file", opts.file).Int("users", len(users)).Msg("seed file loaded")

	application, err := app.New(ctx, cfg, prometheus.NewRegistry(), logger)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing application")
		}
	}()

	summary, err := seed(ctx, application.Auth, application.Recipes, users, logger)
	if err != nil {
		return err
	}

	logger.Info().
		Int("users_created", summary.UsersCreated).
		Int("users_existing", summary.UsersExisting).
		Int("recipes_created", summary.RecipesCreated).
		Int("ratings_applied", summary.RatingsApplied).
		Msg("seed completed")
	return nil
}

// loadSeedFile reads a JSON array of SeedUser.
func loadSeedFile(path string) ([]SeedUser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var users []SeedUser
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return users, nil
}

// seed registers each user, logs them in and submits their recipes and ratings.
func seed(ctx context.Context, auth service.AuthService, recipes service.RecipeService, users []SeedUser, logger zerolog.Logger) (Summary, error) {
	var summary Summary
	for _, u := range users {
		_, err := auth.Register(ctx, u.Email, u.Password, u.FirstName, u.LastName)
		switch {
		case err == nil:
			summary.UsersCreated++
		case errors.Is(err, apperrors.ErrUserExists):
			summary.UsersExisting++
		default:
			return summary, fmt.Errorf("register %s: %w", u.Email, err)
		}

		token, _, err := auth.Login(ctx, u.Email, u.Password)
		if err != nil {
			return summary, fmt.Errorf("login %s: %w", u.Email, err)
		}

		for _, r := range u.Recipes {
			recipe, err := recipes.Create(ctx, token, service.RecipeInput{
				Name:        r.Name,
				Body:        r.Body,
				Ingredients: r.Ingredients,
			})
			if err != nil {
				return summary, fmt.Errorf("create recipe %q: %w", r.Name, err)
			}
			summary.RecipesCreated++

			// Seeded ratings are anonymous.
			for _, stars := range r.Ratings {
				if _, err := recipes.Rate(ctx, "", recipe.ID, stars); err != nil {
					logger.Warn().Err(err).Uint("recipe_id", recipe.ID).Int("stars", stars).Msg("skipping rating")
					continue
				}
				summary.RatingsApplied++
			}
		}
	}
	return summary, nil
}
