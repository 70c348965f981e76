// Package main provides the HTTP ingestion server for statusdeck.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lfmonteiro/statusdeck/internal/config"
	"github.com/lfmonteiro/statusdeck/internal/db"
	"github.com/lfmonteiro/statusdeck/internal/metrics"
	"github.com/lfmonteiro/statusdeck/internal/parser"
	"github.com/lfmonteiro/statusdeck/internal/server"
	"github.com/lfmonteiro/statusdeck/internal/service"
	"github.com/lfmonteiro/statusdeck/internal/summary"
)

func main() {
	cfg := config.Load()

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	slog.SetDefault(logger)
	defer func() { _ = cleanup() }()

	slog.Info("starting statusdeck-server", "addr", cfg.ListenAddr)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dbClient, err := db.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		cancel()
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := dbClient.InitSchema(ctx); err != nil {
		cancel()
		slog.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}
	cancel()
	defer dbClient.Close()

	patterns, err := loadPatterns(cfg)
	if err != nil {
		slog.Error("failed to load report template", "error", err)
		os.Exit(1)
	}

	summarizer, err := summary.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialize summarizer", "error", err)
		os.Exit(1)
	}

	var svcSummarizer service.Summarizer
	if summarizer != nil {
		svcSummarizer = summarizer
		slog.Info("summarizer enabled", "provider", cfg.SummarizerProvider, "model", cfg.SummarizerModel)
	}

	stats := metrics.NewCollector()
	ingest := service.NewIngestService(parser.NewFactory(patterns), dbClient, svcSummarizer, logger).WithMetrics(stats)
	srv := server.New(ingest, dbClient, service.NewTaskTracker(), logger).WithMetrics(stats)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("HTTP API available", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func loadPatterns(cfg config.Config) (*parser.Patterns, error) {
	if cfg.TemplateFile == "" {
		return parser.MustDefaultPatterns(), nil
	}
	spec, err := parser.LoadTemplate(cfg.TemplateFile)
	if err != nil {
		return nil, err
	}
	return spec.Compile()
}
