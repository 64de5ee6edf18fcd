package auth

import (
	"errors"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/account_service/internal/apperr"
	"github.com/Skotchmaster/account_service/internal/tokens"
)

const (
	AccessCookie = "accessToken"
	contextKey   = "user"
)

// RequireLogin accepts an access token from the Authorization header or the
// access cookie and stores its claims on the context.
func RequireLogin(signer *tokens.Signer) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  contextKey,
		TokenLookup: "header:Authorization:Bearer ,cookie:" + AccessCookie,
		ParseTokenFunc: func(c echo.Context, auth string) (any, error) {
			return signer.ParseAccessToken(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, tokens.ErrInvalidToken) {
				return apperr.Wrap(apperr.CodeUserNotAuthenticated, "Invalid or expired access token", err)
			}
			return apperr.Wrap(apperr.CodeUserNotAuthenticated, "Missing access token", err)
		},
	})
}

func Claims(c echo.Context) (*tokens.AccessClaims, bool) {
	claims, ok := c.Get(contextKey).(*tokens.AccessClaims)
	return claims, ok
}

// UserID returns the id of the logged in user.
func UserID(c echo.Context) (uuid.UUID, error) {
	claims, ok := Claims(c)
	if !ok {
		return uuid.Nil, apperr.NotAuthenticated("")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperr.NotAuthenticated("Invalid or expired access token")
	}
	return id, nil
}
