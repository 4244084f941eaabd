package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/deppfellow/dca-api/internal/config"
	"github.com/deppfellow/dca-api/internal/database"
	"github.com/deppfellow/dca-api/internal/handler"
	"github.com/deppfellow/dca-api/internal/logger"
	"github.com/deppfellow/dca-api/internal/middleware"
	"github.com/deppfellow/dca-api/internal/router"
	"github.com/deppfellow/dca-api/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize new relic")
	}
	defer loggerService.Shutdown()

	appLogger := logger.NewLoggerWithService(cfg.Observability, loggerService)

	// Code that only sees a context.Context falls back to the app logger.
	zerolog.DefaultContextLogger = &appLogger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, &appLogger, loggerService)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to initialize server")
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, &appLogger, cfg); err != nil {
			appLogger.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	mw := middleware.NewMiddlewares(srv)
	handlers := handler.NewHandlers(srv)
	r := router.NewRouter(srv, handlers, mw)

	srv.SetupHTTPServer(r)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			appLogger.Error().Err(err).Msg("server stopped unexpectedly")
		}
	case <-ctx.Done():
		appLogger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server exited properly")
}
