package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"recipes/internal/service"
)

const listingSize = 3

// RecipeHandler handles recipe endpoints.
type RecipeHandler struct {
	recipeService service.RecipeService
}

// NewRecipeHandler creates a new recipe handler.
func NewRecipeHandler(recipeService service.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService}
}

// CreateRecipeRequest represents a recipe submission.
type CreateRecipeRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Body        string `json:"body"`
	Ingredients string `json:"ingredients"`
}

// RateRequest represents a rating submission.
type RateRequest struct {
	Stars *int `json:"stars" validate:"required"`
}

// List godoc
// @Summary List all recipes
// @Tags recipes
// @Produce json
// @Success 200 {array} model.Recipe
// @Failure 500 {object} errors.ErrorResponse
// @Router /recipes [get]
func (h *RecipeHandler) List(c echo.Context) error {
	recipes, err := h.recipeService.List(c.Request().Context())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, recipes)
}

// Create godoc
// @Summary Submit a recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRecipeRequest true "Recipe"
// @Success 201 {object} model.Recipe
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /recipes [post]
func (h *RecipeHandler) Create(c echo.Context) error {
	var req CreateRecipeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	recipe, err := h.recipeService.Create(c.Request().Context(), sessionToken(c), service.RecipeInput{
		Name:        req.Name,
		Body:        req.Body,
		Ingredients: req.Ingredients,
	})
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusCreated, recipe)
}

// ListMine godoc
// @Summary List the caller's recipes
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Recipe
// @Failure 401 {object} errors.ErrorResponse
// @Router /recipes/mine [get]
func (h *RecipeHandler) ListMine(c echo.Context) error {
	recipes, err := h.recipeService.ListMine(c.Request().Context(), sessionToken(c))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, recipes)
}

// Fewest godoc
// @Summary Recipes with the fewest ingredients
// @Tags recipes
// @Produce json
// @Param n query int false "How many" default(3)
// @Success 200 {array} model.Recipe
// @Router /recipes/fewest [get]
func (h *RecipeHandler) Fewest(c echo.Context) error {
	n := listingSize
	if err := echo.QueryParamsBinder(c).Int("n", &n).BindError(); err != nil {
		return badRequest("n must be an integer")
	}
	recipes, err := h.recipeService.Fewest(c.Request().Context(), n)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, recipes)
}

// Most godoc
// @Summary Recipes with the most ingredients
// @Tags recipes
// @Produce json
// @Param n query int false "How many" default(3)
// @Success 200 {array} model.Recipe
// @Router /recipes/most [get]
func (h *RecipeHandler) Most(c echo.Context) error {
	n := listingSize
	if err := echo.QueryParamsBinder(c).Int("n", &n).BindError(); err != nil {
		return badRequest("n must be an integer")
	}
	recipes, err := h.recipeService.Most(c.Request().Context(), n)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, recipes)
}

// Search godoc
// @Summary Search recipes by name, then body, then ingredients
// @Tags recipes
// @Produce json
// @Param q query string false "Search text"
// @Success 200 {array} model.Recipe
// @Failure 500 {object} errors.ErrorResponse
// @Router /recipes/search [get]
func (h *RecipeHandler) Search(c echo.Context) error {
	recipes, err := h.recipeService.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, recipes)
}

// Get godoc
// @Summary Get a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} model.Recipe
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id} [get]
func (h *RecipeHandler) Get(c echo.Context) error {
	var id uint
	if err := echo.PathParamsBinder(c).MustUint("id", &id).BindError(); err != nil {
		return badRequest("invalid recipe ID")
	}

	recipe, err := h.recipeService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, recipe)
}

// Rate godoc
// @Summary Rate a recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param request body RateRequest true "Stars, 1 to 5"
// @Success 200 {object} model.Recipe
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id}/ratings [post]
func (h *RecipeHandler) Rate(c echo.Context) error {
	var id uint
	if err := echo.PathParamsBinder(c).MustUint("id", &id).BindError(); err != nil {
		return badRequest("invalid recipe ID")
	}

	var req RateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	recipe, err := h.recipeService.Rate(c.Request().Context(), sessionToken(c), id, *req.Stars)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, recipe)
}
