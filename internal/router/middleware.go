package router

import (
	"crypto/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"

	"github.com/mkajic20/smart-charger-backend/internal/auth"
	"github.com/mkajic20/smart-charger-backend/internal/errors"
)

// requestIDs generates monotonic ULIDs for the RequestID middleware.
type requestIDs struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newRequestIDs() *requestIDs {
	return &requestIDs{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *requestIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, errors.ErrorResponse{Error: "forbidden", Code: "FORBIDDEN"})
}

// RequireRole allows requests whose token carries one of roles.
func RequireRole(roles ...uint) echo.MiddlewareFunc {
	allowed := make(map[uint]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := auth.ClaimsFrom(c)
			if !ok || !allowed[claims.RoleID] {
				return forbidden(c)
			}
			return next(c)
		}
	}
}

// RequireOwner allows requests whose token user matches the :id path
// parameter. When allowAdmin is set administrators pass as well.
func RequireOwner(allowAdmin bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := auth.ClaimsFrom(c)
			if !ok {
				return forbidden(c)
			}
			if allowAdmin && claims.IsAdmin() {
				return next(c)
			}
			id, err := strconv.ParseUint(c.Param("id"), 10, 64)
			if err != nil || uint(id) != claims.UserID {
				return forbidden(c)
			}
			return next(c)
		}
	}
}

// RequireAccessToken fails requests authenticated with anything but an access token.
func RequireAccessToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := auth.ClaimsFrom(c)
		if !ok || !claims.IsAccess() {
			return c.JSON(http.StatusUnauthorized, errors.ErrorResponse{Error: "missing or invalid token", Code: "INVALID_TOKEN"})
		}
		return next(c)
	}
}

// RejectRevoked fails requests whose access token was blacklisted at logout.
// Lookup errors let the request through; the cache is not authoritative.
func RejectRevoked(tokens auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := auth.ClaimsFrom(c)
			if !ok {
				return next(c)
			}
			revoked, err := tokens.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if err == nil && revoked {
				return c.JSON(http.StatusUnauthorized, errors.ErrorResponse{Error: "token has been revoked", Code: "TOKEN_REVOKED"})
			}
			return next(c)
		}
	}
}
