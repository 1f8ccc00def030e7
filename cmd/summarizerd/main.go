package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/clinidocs/summarizer/internal/common"
	"github.com/clinidocs/summarizer/internal/extract"
	"github.com/clinidocs/summarizer/internal/jobs"
	"github.com/clinidocs/summarizer/internal/llm/groq"
	"github.com/clinidocs/summarizer/internal/pipeline"
	"github.com/clinidocs/summarizer/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	extractor := extract.NewExtractor(extract.Config{Pdftotext: cfg.Extract.Pdftotext}, logger)
	generator := groq.NewClient(groq.Config{
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		Timeout:         cfg.LLM.Timeout,
	}, logger)

	var recorder jobs.Recorder
	if cfg.Jobs.DBPath != "" {
		store, err := jobs.Open(cfg.Jobs.DBPath, logger)
		if err != nil {
			logger.Error("failed to open jobs db", "path", cfg.Jobs.DBPath, "error", err)
			os.Exit(1)
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				logger.Warn("jobs db close failed", "error", cerr)
			}
		}()
		recorder = store
		logger.Info("jobs audit trail enabled", "path", cfg.Jobs.DBPath)
	}

	svc := server.NewService(
		pipeline.NewPrescriptionTask(extractor, generator, logger),
		pipeline.NewReportTask(extractor, generator, logger),
		recorder,
		cfg.Server.MaxUploadBytes,
		logger,
	)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: svc.Routes(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr, "model", cfg.LLM.Model)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
