package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"recipes/internal/config"
	apperrors "recipes/internal/errors"
	"recipes/internal/handler"
	"recipes/internal/logging"
	"recipes/internal/model"
	"recipes/internal/router"
	"recipes/internal/service"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*model.User, error) {
	args := m.Called(ctx, email, password, firstName, lastName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*model.User), args.Error(2)
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAuthService) IssueToken(user *model.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *mockAuthService) Resolve(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockAuthService) ResolveOptional(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type mockRecipeService struct {
	mock.Mock
}

func (m *mockRecipeService) recipe(args mock.Arguments) (*model.Recipe, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *mockRecipeService) recipes(args mock.Arguments) ([]model.Recipe, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

func (m *mockRecipeService) Create(ctx context.Context, token string, input service.RecipeInput) (*model.Recipe, error) {
	return m.recipe(m.Called(ctx, token, input))
}

func (m *mockRecipeService) Get(ctx context.Context, id uint) (*model.Recipe, error) {
	return m.recipe(m.Called(ctx, id))
}

func (m *mockRecipeService) Rate(ctx context.Context, token string, id uint, stars int) (*model.Recipe, error) {
	return m.recipe(m.Called(ctx, token, id, stars))
}

func (m *mockRecipeService) Search(ctx context.Context, query string) ([]model.Recipe, error) {
	return m.recipes(m.Called(ctx, query))
}

func (m *mockRecipeService) List(ctx context.Context) ([]model.Recipe, error) {
	return m.recipes(m.Called(ctx))
}

func (m *mockRecipeService) ListMine(ctx context.Context, token string) ([]model.Recipe, error) {
	return m.recipes(m.Called(ctx, token))
}

func (m *mockRecipeService) Fewest(ctx context.Context, n int) ([]model.Recipe, error) {
	return m.recipes(m.Called(ctx, n))
}

func (m *mockRecipeService) Most(ctx context.Context, n int) ([]model.Recipe, error) {
	return m.recipes(m.Called(ctx, n))
}

type mockIngredientService struct {
	mock.Mock
}

func (m *mockIngredientService) Top(ctx context.Context, n int) ([]model.Ingredient, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Ingredient), args.Error(1)
}

type testServer struct {
	e           *echo.Echo
	auth        *mockAuthService
	recipes     *mockRecipeService
	ingredients *mockIngredientService
}

var alice = &model.User{PublicID: "pid-alice", FirstName: "Alice", Email: "alice@example.com"}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		e:           echo.New(),
		auth:        new(mockAuthService),
		recipes:     new(mockRecipeService),
		ingredients: new(mockIngredientService),
	}
	s.auth.On("Resolve", mock.Anything, "good").Return(alice, nil).Maybe()
	s.auth.On("Resolve", mock.Anything, "stale").Return(nil, apperrors.ErrExpiredToken).Maybe()
	s.auth.On("Resolve", mock.Anything, "forged").Return(nil, apperrors.ErrInvalidToken).Maybe()

	router.Register(s.e, &config.Config{}, s.auth, router.Handlers{
		Auth:        handler.NewAuthHandler(s.auth, 30*time.Minute),
		Recipes:     handler.NewRecipeHandler(s.recipes),
		Ingredients: handler.NewIngredientHandler(s.ingredients),
	}, prometheus.NewRegistry(), logging.Nop())
	return s
}

func (s *testServer) do(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) map[string]string {
	return map[string]string{echo.HeaderAuthorization: "Bearer " + token}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)
	s.auth.On("Register", mock.Anything, "alice@example.com", "secret1", "Alice", "A").Return(alice, nil)
	s.auth.On("Register", mock.Anything, "taken@example.com", "secret1", "T", "").Return(nil, apperrors.ErrUserExists)

	rec := s.do(http.MethodPost, "/api/auth/register",
		`{"email":"alice@example.com","password":"secret1","first_name":"Alice","last_name":"A"}`, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"public_id":"pid-alice"`)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(http.MethodPost, "/api/auth/register",
		`{"email":"taken@example.com","password":"secret1","first_name":"T"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "USER_ALREADY_EXISTS", decodeError(t, rec).Code)

	rec = s.do(http.MethodPost, "/api/auth/register", `{"email":"x@example.com","password":"123"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, rec).Code)
}

func TestLogin_SetsCookieUsableForMe(t *testing.T) {
	s := newTestServer(t)
	s.auth.On("Login", mock.Anything, "alice@example.com", "secret1").Return("good", alice, nil)
	s.auth.On("Login", mock.Anything, "alice@example.com", "nope").Return("", nil, apperrors.ErrInvalidCredentials)

	rec := s.do(http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Name)
	assert.Equal(t, "good", cookies[0].Value)

	rec = s.do(http.MethodGet, "/api/me", "", map[string]string{"Cookie": "token=good"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@example.com")

	rec = s.do(http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, rec).Code)
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	s.auth.On("Logout", mock.Anything, "good").Return(nil)

	rec := s.do(http.MethodPost, "/api/auth/logout", "", bearer("good"))
	assert.Equal(t, http.StatusOK, rec.Code)
	s.auth.AssertExpectations(t)

	rec = s.do(http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "MISSING_TOKEN", decodeError(t, rec).Code)
}

func TestCreateRecipe(t *testing.T) {
	s := newTestServer(t)
	input := service.RecipeInput{Name: "Pancakes", Body: "Mix.", Ingredients: "Egg, Flour"}
	s.recipes.On("Create", mock.Anything, "good", input).
		Return(&model.Recipe{ID: 1, Name: "Pancakes", IngredientCount: 2, OwnerEmail: alice.Email}, nil)

	payload := `{"name":"Pancakes","body":"Mix.","ingredients":"Egg, Flour"}`

	rec := s.do(http.MethodPost, "/api/recipes", payload, bearer("good"))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ingredient_count":2`)

	rec = s.do(http.MethodPost, "/api/recipes", payload, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "MISSING_TOKEN", decodeError(t, rec).Code)

	rec = s.do(http.MethodPost, "/api/recipes", payload, bearer("stale"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "EXPIRED_TOKEN", decodeError(t, rec).Code)

	s.recipes.AssertNumberOfCalls(t, "Create", 1)
}

func TestCreateRecipe_ForbiddenFromService(t *testing.T) {
	s := newTestServer(t)
	s.recipes.On("Create", mock.Anything, "good", mock.Anything).Return(nil, apperrors.ErrForbidden)

	rec := s.do(http.MethodPost, "/api/recipes", `{"name":"Soup"}`, bearer("good"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, rec).Code)
}

func TestOptionalAuthRoutes(t *testing.T) {
	s := newTestServer(t)
	s.recipes.On("List", mock.Anything).Return([]model.Recipe{{ID: 1, Name: "Tea"}}, nil)

	rec := s.do(http.MethodGet, "/api/recipes", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/recipes", "", bearer("good"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/recipes", "", bearer("forged"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", decodeError(t, rec).Code)
}

func TestSearchAndListings(t *testing.T) {
	s := newTestServer(t)
	s.recipes.On("Search", mock.Anything, "cake").Return([]model.Recipe{{ID: 3, Name: "Cake"}}, nil)
	s.recipes.On("Fewest", mock.Anything, 3).Return([]model.Recipe{}, nil)
	s.recipes.On("Most", mock.Anything, 2).Return([]model.Recipe{}, nil)
	s.recipes.On("ListMine", mock.Anything, "good").Return([]model.Recipe{}, nil)

	rec := s.do(http.MethodGet, "/api/recipes/search?q=cake", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cake")

	rec = s.do(http.MethodGet, "/api/recipes/fewest", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = s.do(http.MethodGet, "/api/recipes/most?n=2", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/recipes/most?n=lots", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/recipes/mine", "", bearer("good"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/recipes/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	s.recipes.AssertExpectations(t)
}

func TestGetAndRate(t *testing.T) {
	s := newTestServer(t)
	s.recipes.On("Get", mock.Anything, uint(4)).Return(&model.Recipe{ID: 4, Name: "Stew"}, nil)
	s.recipes.On("Get", mock.Anything, uint(5)).Return(nil, apperrors.ErrRecipeNotFound)
	s.recipes.On("Rate", mock.Anything, "", uint(4), 5).Return(&model.Recipe{ID: 4, Ratings: model.RatingHistory{5}}, nil)
	s.recipes.On("Rate", mock.Anything, "", uint(4), 9).Return(nil, apperrors.ErrInvalidRating)
	s.recipes.On("Rate", mock.Anything, "good", uint(4), 3).Return(&model.Recipe{ID: 4, Ratings: model.RatingHistory{5, 3}}, nil)

	rec := s.do(http.MethodGet, "/api/recipes/4", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/recipes/5", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "RECIPE_NOT_FOUND", decodeError(t, rec).Code)

	rec = s.do(http.MethodGet, "/api/recipes/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/recipes/4/ratings", `{"stars":5}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ratings":[5]`)

	rec = s.do(http.MethodPost, "/api/recipes/4/ratings", `{"stars":9}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_RATING", decodeError(t, rec).Code)

	rec = s.do(http.MethodPost, "/api/recipes/4/ratings", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, rec).Code)

	rec = s.do(http.MethodPost, "/api/recipes/4/ratings", `{"stars":3}`, bearer("good"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ratings":[5,3]`)

	s.recipes.AssertExpectations(t)
}

func TestTopIngredients(t *testing.T) {
	s := newTestServer(t)
	s.ingredients.On("Top", mock.Anything, 5).Return([]model.Ingredient{{Name: "salt", Used: 4}}, nil)

	rec := s.do(http.MethodGet, "/api/ingredients/top", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"salt"`)
	s.ingredients.AssertExpectations(t)
}
