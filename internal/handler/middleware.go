package handler

import (
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "recipes/internal/errors"
	"recipes/internal/model"
	"recipes/internal/service"
)

// Context keys set by Authenticate.
const (
	ViewerKey = "viewer"
	TokenKey  = "token"
)

// TokenLookup reads the session token from the bearer header, then the token cookie.
const TokenLookup = "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + TokenKey

// Authenticate resolves the presented session token into the viewer.
// When required is false a request without any token passes through anonymously,
// but a token that is present and unusable is still rejected.
func Authenticate(resolver service.TokenResolver, required bool) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: TokenLookup,
		ContextKey:  ViewerKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			user, err := resolver.Resolve(c.Request().Context(), auth)
			if err != nil {
				return nil, err
			}
			c.Set(TokenKey, auth)
			return user, nil
		},
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			var extractErr *echojwt.TokenExtractionError
			if errors.As(err, &extractErr) || errors.Is(err, apperrors.ErrMissingToken) {
				if !required {
					return nil
				}
				return respondError(apperrors.ErrMissingToken)
			}
			return respondError(err)
		},
	})
}

// viewer returns the resolved user, or nil for an anonymous request.
func viewer(c echo.Context) *model.User {
	user, _ := c.Get(ViewerKey).(*model.User)
	return user
}

// sessionToken returns the raw token the request was authenticated with.
func sessionToken(c echo.Context) string {
	token, _ := c.Get(TokenKey).(string)
	return token
}
