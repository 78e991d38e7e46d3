package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// ContextKey is where the echo-jwt middleware stores the parsed token.
const ContextKey = "user"

// ClaimsFrom returns the claims of the authenticated request, if any.
func ClaimsFrom(c echo.Context) (*Claims, bool) {
	token, ok := c.Get(ContextKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(*Claims)
	return claims, ok
}
