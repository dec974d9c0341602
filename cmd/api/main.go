package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/adrigdeva/ragchat/internal/api"
	"github.com/adrigdeva/ragchat/internal/config"
	"github.com/adrigdeva/ragchat/internal/database"
	"github.com/adrigdeva/ragchat/internal/llm"
	"github.com/adrigdeva/ragchat/internal/vectorstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := vectorstore.NewPgVectorStore(db, cfg.Vector.Collection, cfg.Embedding.Dimensions)
	if err := store.EnsureCollection(ctx); err != nil {
		slog.Error("failed to prepare vector collection", "error", err)
		os.Exit(1)
	}

	gateway, err := llm.NewGateway(cfg.LLM, cfg.Embedding)
	if err != nil {
		slog.Error("failed to configure LLM gateway", "error", err)
		os.Exit(1)
	}

	pool, err := ants.NewPool(cfg.Ingest.Workers)
	if err != nil {
		slog.Error("failed to create worker pool", "error", err)
		os.Exit(1)
	}
	defer pool.Release()

	router := api.NewRouter(db, pool, gateway, cfg)
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr(),
			"chatProvider", cfg.LLM.Provider, "embedProvider", cfg.Embedding.Provider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
