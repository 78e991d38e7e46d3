package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	_ "github.com/mkajic20/smart-charger-backend/docs" // swagger docs

	"github.com/mkajic20/smart-charger-backend/internal/auth"
	"github.com/mkajic20/smart-charger-backend/internal/cache"
	"github.com/mkajic20/smart-charger-backend/internal/config"
	"github.com/mkajic20/smart-charger-backend/internal/db"
	"github.com/mkajic20/smart-charger-backend/internal/events"
	"github.com/mkajic20/smart-charger-backend/internal/handler"
	"github.com/mkajic20/smart-charger-backend/internal/logging"
	"github.com/mkajic20/smart-charger-backend/internal/repository"
	"github.com/mkajic20/smart-charger-backend/internal/router"
	"github.com/mkajic20/smart-charger-backend/internal/scheduler"
	"github.com/mkajic20/smart-charger-backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title SmartCharger API
// @version 1.0
// @description EV charging backend with RFID cards, chargers, charging sessions and JWT authentication.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			logger.Fatal("reset database", zap.Error(err))
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, running without cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		publisher = events.NewAMQPPublisher(cfg.AMQPURL, cfg.SessionQueue, logger)
	}
	defer func() { _ = publisher.Close() }()

	// Initialize repositories
	store := repository.NewStore(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)
	hasher := auth.NewBcryptHasher(0)

	// Initialize services
	authService := service.NewAuthService(store.Users(), jwtService, tokenStore, hasher, logger)
	chargerService := service.NewChargerService(store, cacheClient, logger)
	cardService := service.NewCardService(store, cacheClient, logger)
	userService := service.NewUserService(store.Users(), store.Roles(), cacheClient, logger)
	sessionService := service.NewSessionService(store, cacheClient, publisher, logger)
	historyService := service.NewHistoryService(store.Events(), store.Users())

	if cfg.ReconcileSchedule != "" {
		sched := scheduler.New(cfg.ReconcileSchedule, service.NewReconciler(store, cacheClient, logger), logger)
		if err := sched.Start(ctx); err != nil {
			logger.Fatal("start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, logger, jwtService, tokenStore, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Chargers: handler.NewChargerHandler(chargerService, sessionService),
		Cards:    handler.NewCardHandler(cardService),
		Sessions: handler.NewSessionHandler(sessionService, cardService),
		Users:    handler.NewUserHandler(userService),
		History:  handler.NewHistoryHandler(historyService),
	})

	logger.Info("swagger documentation available", zap.String("url", swaggerURL(cfg.SwaggerHost)))

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("server starting", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}

// swaggerURL builds the docs URL; SwaggerHost may already include a scheme.
func swaggerURL(host string) string {
	switch {
	case host == "":
		return "http://localhost:5000/swagger/index.html"
	case strings.HasPrefix(host, "http://"), strings.HasPrefix(host, "https://"):
		return host + "/swagger/index.html"
	default:
		return "http://" + host + "/swagger/index.html"
	}
}
