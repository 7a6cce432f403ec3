package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"recipes/docs"
	"recipes/internal/config"
	"recipes/internal/handler"
	"recipes/internal/service"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth        *handler.AuthHandler
	Recipes     *handler.RecipeHandler
	Ingredients *handler.IngredientHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	resolver service.TokenResolver,
	handlers Handlers,
	gatherer prometheus.Gatherer,
	logger zerolog.Logger,
) {
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	}

	// Add validator
	e.Validator = NewValidator()

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	required := handler.Authenticate(resolver, true)
	optional := handler.Authenticate(resolver, false)

	// Public routes
	api.POST("/auth/register", handlers.Auth.Register)
	api.POST("/auth/login", handlers.Auth.Login)

	// Secured routes (require a session token)
	secured := api.Group("", required)
	secured.POST("/auth/logout", handlers.Auth.Logout)
	secured.GET("/me", handlers.Auth.Me)
	secured.POST("/recipes", handlers.Recipes.Create)
	secured.GET("/recipes/mine", handlers.Recipes.ListMine)

	// Open routes; a supplied token must still be valid
	open := api.Group("", optional)
	open.GET("/recipes", handlers.Recipes.List)
	open.GET("/recipes/fewest", handlers.Recipes.Fewest)
	open.GET("/recipes/most", handlers.Recipes.Most)
	open.GET("/recipes/search", handlers.Recipes.Search)
	open.GET("/recipes/:id", handlers.Recipes.Get)
	open.POST("/recipes/:id/ratings", handlers.Recipes.Rate)
	open.GET("/ingredients/top", handlers.Ingredients.Top)
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logger.Info()
			if v.Error != nil {
				event = logger.Warn().Err(v.Error)
			}
			event.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates the request validator used by all handlers.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
