package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"plagiarism_detection/internal/app"
	"plagiarism_detection/internal/config"
	"plagiarism_detection/internal/logging"
	"plagiarism_detection/internal/server"
	"plagiarism_detection/internal/workspace"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, comparePath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ./config.yaml or the workspace config)")
	flag.StringVar(&comparePath, "p", "", "Directory of comparison files used for every check")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("invalid environment: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if err := run(cfg, comparePath); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(cfg *config.AppConfig, comparePath string) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	engine, closeArchive, err := app.NewEngine(context.Background(), cfg, logger)
	if err != nil {
		return fmt.Errorf("engine init failed: %w", err)
	}
	defer func() { _ = closeArchive() }()

	root, err := workspace.EnsureDefault()
	if err != nil {
		return fmt.Errorf("workspace initialization failed: %w", err)
	}

	opts := app.Options(cfg)
	opts.ComparePath = comparePath
	srv := &server.Server{
		Engine:    engine,
		Defaults:  opts,
		Logger:    logger,
		MaxUpload: int64(cfg.Server.MaxUploadMB) << 20,
		Workspace: root,
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}()

	logger.Info("plagiarism service started", zap.String("addr", cfg.Server.Addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("server gracefully stopped")
	return nil
}
