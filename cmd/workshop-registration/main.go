// Package main Workshop Registration API
//
// @title           Workshop Registration API
// @version         1.0
// @description     API для записи участников на воркшопы с учётом вместимости и листа ожидания

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/workshop-registration/internal/app/workshopregistration"
	"github.com/magabrotheeeer/workshop-registration/internal/config"
	"github.com/magabrotheeeer/workshop-registration/internal/lib/sl"
)

const envLocal = "local"

func main() {
	cfg := config.MustLoad()

	level := slog.LevelInfo
	if cfg.Env == envLocal {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	logger.Info("starting workshop-registration", slog.String("env", cfg.Env))
	logger.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := workshopregistration.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("workshop-registration stopped gracefully")
}
