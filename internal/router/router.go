package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mkajic20/smart-charger-backend/internal/auth"
	"github.com/mkajic20/smart-charger-backend/internal/config"
	"github.com/mkajic20/smart-charger-backend/internal/errors"
	"github.com/mkajic20/smart-charger-backend/internal/handler"
	"github.com/mkajic20/smart-charger-backend/internal/logging"
)

// Handlers groups the HTTP handlers wired by Register.
type Handlers struct {
	Auth     *handler.AuthHandler
	Chargers *handler.ChargerHandler
	Cards    *handler.CardHandler
	Sessions *handler.SessionHandler
	Users    *handler.UserHandler
	History  *handler.HistoryHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, logger *zap.Logger, jwtService *auth.JWTService, tokens auth.TokenStoreInterface, h Handlers) {
	ids := newRequestIDs()
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: ids.Next}))
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", handler.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	jwtConfig := echojwt.Config{
		SigningKey:    jwtService.Secret(),
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		ContextKey:    auth.ContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return new(auth.Claims) },
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: "missing or invalid token",
				Code:  "INVALID_TOKEN",
			})
		},
	}

	// Public routes. Logout reads the bearer token when present so it can be
	// blacklisted, but does not require one.
	optionalJWT := jwtConfig
	optionalJWT.ContinueOnIgnoredError = true
	optionalJWT.ErrorHandler = func(c echo.Context, err error) error { return nil }

	api.POST("/register", h.Auth.Register)
	api.POST("/login", h.Auth.Login)
	api.POST("/refresh", h.Auth.Refresh)
	api.POST("/logout", h.Auth.Logout, echojwt.WithConfig(optionalJWT))

	// Card reader routes carry no user token.
	reader := api.Group("")
	if cfg.ReaderRateLimit > 0 {
		reader.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.ReaderRateLimit)),
		}))
	}
	reader.POST("/cards/verify", h.Sessions.VerifyCard)
	reader.POST("/events/start", h.Sessions.StartCharging)
	reader.PATCH("/events/stop", h.Sessions.EndCharging)

	secured := api.Group("", echojwt.WithConfig(jwtConfig), RequireAccessToken, RejectRevoked(tokens))

	secured.GET("/chargers", h.Chargers.ListChargers)
	secured.GET("/chargers/:id", h.Chargers.GetCharger)
	secured.GET("/chargers/:id/session", h.Chargers.ActiveSession)

	owner := secured.Group("/users/:id", RequireOwner(false))
	owner.GET("/cards", h.Cards.ListUserCards)
	owner.POST("/cards", h.Cards.AddUserCard)
	owner.GET("/cards/:cardId", h.Cards.GetUserCard)
	owner.DELETE("/cards/:cardId", h.Cards.DeleteUserCard)
	secured.GET("/users/:id/history", h.History.UserHistory, RequireOwner(true))

	adminOnly := RequireRole(auth.RoleAdmin)
	secured.POST("/chargers", h.Chargers.CreateCharger, adminOnly)
	secured.PUT("/chargers/:id", h.Chargers.UpdateCharger, adminOnly)
	secured.DELETE("/chargers/:id", h.Chargers.DeleteCharger, adminOnly)

	admin := secured.Group("/admin", adminOnly)
	admin.GET("/cards", h.Cards.ListCards)
	admin.GET("/cards/:id", h.Cards.GetCard)
	admin.PATCH("/cards/:id", h.Cards.ToggleCard)
	admin.DELETE("/cards/:id", h.Cards.DeleteCard)
	admin.GET("/history", h.History.FullHistory)
	admin.GET("/roles", h.Users.ListRoles)
	admin.GET("/users", h.Users.ListUsers)
	admin.GET("/users/:id", h.Users.GetUser)
	admin.PATCH("/users/:id/activate", h.Users.ToggleUser)
	admin.PATCH("/users/:id/role/:roleId", h.Users.UpdateRole)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
