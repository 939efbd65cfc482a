package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/cookieless/beacon/internal/config"
	"codeberg.org/cookieless/beacon/internal/logger"
)

func main() {
	flags := config.ParseServerFlags(os.Args[1:])

	// load configuration from .env, the optional YAML file and the environment
	cfg, err := config.LoadEnvironmentVariables(flags.ConfigPath)
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	flags.Apply(cfg)

	logger.SetDefault(logger.New(cfg.Environment, cfg.LogLevel, nil))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("starting beacon server",
		"environment", cfg.Environment,
		"beacon_path", cfg.BeaconPath,
	)

	// create server with all dependencies
	srv, err := NewServer(cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	srv.Start()

	// start server in goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	// wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// graceful shutdown with 10 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// stop taking beacon hits first so every published event gets drained
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorErr(err, "visitor events not fully delivered")
	}

	logger.Info("server stopped")
}
