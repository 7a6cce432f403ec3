package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"recipes/internal/service"
)

const topIngredients = 5

// IngredientHandler serves the ingredient usage ledger.
type IngredientHandler struct {
	ingredientService service.IngredientService
}

// NewIngredientHandler creates a new ingredient handler.
func NewIngredientHandler(ingredientService service.IngredientService) *IngredientHandler {
	return &IngredientHandler{ingredientService: ingredientService}
}

// Top godoc
// @Summary Most used ingredients
// @Tags ingredients
// @Produce json
// @Param n query int false "How many" default(5)
// @Success 200 {array} model.Ingredient
// @Failure 500 {object} errors.ErrorResponse
// @Router /ingredients/top [get]
func (h *IngredientHandler) Top(c echo.Context) error {
	n := topIngredients
	if err := echo.QueryParamsBinder(c).Int("n", &n).BindError(); err != nil {
		return badRequest("n must be an integer")
	}

	ingredients, err := h.ingredientService.Top(c.Request().Context(), n)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, ingredients)
}
