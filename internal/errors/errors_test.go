package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"missing token", ErrMissingToken, http.StatusUnauthorized, "MISSING_TOKEN"},
		{"expired token", ErrExpiredToken, http.StatusUnauthorized, "EXPIRED_TOKEN"},
		{"invalid token", fmt.Errorf("resolve: %w", ErrInvalidToken), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"forbidden keeps token cause", fmt.Errorf("%w: %w", ErrForbidden, ErrMissingToken), http.StatusUnauthorized, "MISSING_TOKEN"},
		{"bare forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"user exists", ErrUserExists, http.StatusConflict, "USER_ALREADY_EXISTS"},
		{"registration invalid", ErrRegistrationInvalid, http.StatusBadRequest, "REGISTRATION_INVALID"},
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"rating", ErrInvalidRating, http.StatusBadRequest, "INVALID_RATING"},
		{"recipe not found", ErrRecipeNotFound, http.StatusNotFound, "RECIPE_NOT_FOUND"},
		{"ingredient too long", fmt.Errorf("%w: 300 > 255", ErrIngredientTooLong), http.StatusBadRequest, "INVALID_INGREDIENT"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
			assert.Equal(t, tt.wantCode, httpErr.ToErrorResponse().Code)
		})
	}
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(ErrExpiredToken))
	assert.True(t, IsAuthError(fmt.Errorf("%w: %w", ErrForbidden, ErrInvalidToken)))
	assert.False(t, IsAuthError(ErrInvalidRating))
	assert.False(t, IsAuthError(nil))
}
