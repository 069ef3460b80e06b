package middleware

import (
	"errors"
	"fmt"
	"food-ordering-api/internal/auth"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	identityKey = "identity"
	tokenCookie = "token"
)

var errInvalidToken = errors.New("invalid token")

type authMessages struct {
	missing string
	expired string
	invalid string
}

var (
	customerMessages = authMessages{
		missing: "Not authorized, token missing",
		expired: "Token expired",
		invalid: "Invalid token",
	}
	adminMessages = authMessages{
		missing: "Admin token missing",
		expired: "Admin token expired",
		invalid: "Invalid admin token",
	}
)

// CustomerAuth requires a valid token from the "token" cookie or, without one, the bearer header.
func CustomerAuth(tokens auth.TokenManager) echo.MiddlewareFunc {
	return tokenAuth(tokens, customerMessages)
}

// AdminAuth is the same gate with admin wording. It does not look at any role claim.
func AdminAuth(tokens auth.TokenManager) echo.MiddlewareFunc {
	return tokenAuth(tokens, adminMessages)
}

func tokenAuth(tokens auth.TokenManager, msgs authMessages) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  identityKey,
		TokenLookup: "cookie:" + tokenCookie + ",header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			// a present cookie is the only credential, the header is not a fallback for it
			if cookie, err := c.Cookie(tokenCookie); err == nil && cookie.Value != "" {
				token = cookie.Value
			}
			claims, err := tokens.Parse(token)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", errInvalidToken, err)
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				return echo.NewHTTPError(http.StatusForbidden, msgs.expired)
			case errors.Is(err, errInvalidToken):
				return echo.NewHTTPError(http.StatusForbidden, msgs.invalid)
			default:
				return echo.NewHTTPError(http.StatusUnauthorized, msgs.missing)
			}
		},
	})
}

// IdentityFrom returns the caller attached by CustomerAuth or AdminAuth.
func IdentityFrom(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(identityKey).(*auth.Claims)
	return claims, ok && claims != nil
}
