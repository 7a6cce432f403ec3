package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrMissingToken is returned when a workflow needs a credential and none was presented.
	ErrMissingToken = errors.New("token is missing")
	// ErrInvalidToken is returned when a token fails verification, is malformed, was revoked,
	// or refers to a user that no longer exists.
	ErrInvalidToken = errors.New("token is invalid")
	// ErrExpiredToken is returned when a token is past its expiry.
	ErrExpiredToken = errors.New("token has expired")
	// ErrForbidden is returned when a workflow requires an owner and none could be resolved.
	ErrForbidden = errors.New("forbidden")

	// ErrUserExists is returned when registering an email that is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrRegistrationInvalid is returned when registration input is rejected.
	ErrRegistrationInvalid = errors.New("registration is invalid")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidRating is returned when a rating is outside the accepted range.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrRecipeNotFound is returned when a recipe is not found.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrIngredientTooLong is returned when a normalized ingredient name exceeds the ledger key size.
	ErrIngredientTooLong = errors.New("ingredient name is too long")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// IsAuthError reports whether err stems from token resolution.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrForbidden)
}

// MapErrorToHTTP maps domain errors to HTTP errors.
// Token errors are checked before ErrForbidden so a wrapped cause keeps its own code.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrMissingToken):
		return NewHTTPError(http.StatusUnauthorized, ErrMissingToken.Error(), "MISSING_TOKEN")
	case errors.Is(err, ErrExpiredToken):
		return NewHTTPError(http.StatusUnauthorized, ErrExpiredToken.Error(), "EXPIRED_TOKEN")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrUserExists):
		return NewHTTPError(http.StatusConflict, ErrUserExists.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrRegistrationInvalid):
		return NewHTTPError(http.StatusBadRequest, ErrRegistrationInvalid.Error(), "REGISTRATION_INVALID")
	case errors.Is(err, ErrInvalidRating):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidRating.Error(), "INVALID_RATING")
	case errors.Is(err, ErrRecipeNotFound):
		return NewHTTPError(http.StatusNotFound, ErrRecipeNotFound.Error(), "RECIPE_NOT_FOUND")
	case errors.Is(err, ErrIngredientTooLong):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_INGREDIENT")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
