package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/resource-router/internal/auth"
	"github.com/iliyamo/resource-router/internal/config"
	"github.com/iliyamo/resource-router/internal/database"
	"github.com/iliyamo/resource-router/internal/handler"
	"github.com/iliyamo/resource-router/internal/logger"
	"github.com/iliyamo/resource-router/internal/middleware"
	"github.com/iliyamo/resource-router/internal/repository"
	"github.com/iliyamo/resource-router/internal/router"
	"github.com/iliyamo/resource-router/internal/service"
	"github.com/iliyamo/resource-router/internal/validation"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environment variables win

	cfg, err := config.Load()
	if err != nil {
		logger.New("info").Fatal("invalid configuration", zap.Error(err))
	}
	log := logger.New(cfg.LogLevel).With(zap.String("env", cfg.Env))
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("database connection failed", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	if cfg.DBAutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatal("auto migrate failed", zap.Error(err))
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler(log)
	e.Validator = validation.New()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.TrustedHosts(cfg.AllowedHosts))
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType},
			AllowCredentials: true,
		}))
	}
	e.Use(middleware.Metrics())
	e.Use(middleware.RequestLogger(log))

	res := handler.Resources{
		Sessions:     database.NewSessions(db),
		Auth:         auth.NewBearer(repository.NewTokenRepo(db)),
		Logger:       log,
		Validator:    validation.New(),
		StrictDelete: cfg.StrictDelete,
	}
	if cfg.EventsEnabled {
		res.Publisher = service.NewPublisher(cfg.AMQPURL, log)
	}

	// Rate limiting is optional: without Redis the limiter passes everything.
	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil && cfg.RateLimit.Enabled {
		log.Warn("redis unreachable, rate limiting disabled", zap.String("addr", cfg.Redis.Addr))
	}
	limiter := middleware.RateLimit(cfg.RateLimit, rdb, log)

	router.RegisterRoutes(e, db)
	if err := router.RegisterResources(e, res, limiter); err != nil {
		log.Fatal("resource configuration", zap.Error(err))
	}

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
