package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/joho/godotenv"

	"github.com/tendant/simple-gallery/pkg/gallery/api"
	"github.com/tendant/simple-gallery/pkg/gallery/config"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		fmt.Println("Usage: server")
		fmt.Println()
		fmt.Println(config.EnvUsage())
		return
	}

	// A missing .env file is fine
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	serverConfig, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("Failed to load server configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(serverConfig)
	slog.SetDefault(logger.Logger)

	svc, err := serverConfig.BuildService()
	if err != nil {
		slog.Error("Failed to build service", "error", err)
		os.Exit(1)
	}

	handler := api.NewGalleryHandler(svc, serverConfig.MaxUploadBytes)

	httpServer := &http.Server{
		Addr:              ":" + serverConfig.Port,
		Handler:           api.NewRouter(handler, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		slog.Info("Gallery server starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"storage", serverConfig.Storage.Type,
			"max_upload_bytes", serverConfig.MaxUploadBytes)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exiting")
}

func newLogger(cfg *config.ServerConfig) *httplog.Logger {
	level := slog.LevelInfo
	if cfg.IsDevelopment() {
		level = slog.LevelDebug
	}
	return httplog.NewLogger("simple-gallery", httplog.Options{
		JSON:             !cfg.IsDevelopment(),
		LogLevel:         level,
		Concise:          cfg.IsDevelopment(),
		RequestHeaders:   false,
		MessageFieldName: "message",
		Tags: map[string]string{
			"env": cfg.Environment,
		},
		QuietDownRoutes: []string{"/health"},
		QuietDownPeriod: 10 * time.Second,
	})
}
