// negobot - price negotiation chat service for a small e-commerce store.
// Designed for Cloud Run deployment; state lives in MySQL when configured
// and in memory otherwise.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"negobot/internal/catalog"
	"negobot/internal/chat"
	"negobot/internal/config"
	"negobot/internal/handler"
	"negobot/internal/intent"
	"negobot/internal/middleware"
	"negobot/internal/policy"
	"negobot/internal/search"
	"negobot/internal/session"
	"negobot/internal/transcript"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Initialize structured logger
	logger := initLogger()

	// Load configuration
	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.String("bot_name", cfg.BotName),
		slog.Bool("mysql", cfg.MySQLDSN != ""),
		slog.Bool("openai", cfg.OpenAI.APIKey != ""),
	)

	// Storage: MySQL in production, memory otherwise
	cat, recorder, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating stores: %w", err)
	}
	defer cleanup()

	// Seed the catalog from CSV if configured
	if cfg.CatalogCSV != "" {
		n, err := catalog.LoadCSV(ctx, cat, cfg.CatalogCSV)
		if err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
		logger.Info("catalog seeded", slog.Int("products", n), slog.String("file", cfg.CatalogCSV))
	}

	// Negotiation policy
	policies, err := policy.NewStore(cfg.SeedPolicy())
	if err != nil {
		return fmt.Errorf("seeding policy: %w", err)
	}

	// Intent classification: model-backed when a key is configured, with
	// the rule-based classifier as the always-on fallback
	classifier := buildClassifier(cfg, logger)

	// Product search
	index := buildIndex(ctx, cfg, cat, logger)

	sessions := session.NewStore()
	chatSvc := chat.New(chat.Config{
		Catalog:    cat,
		Policies:   policies,
		Sessions:   sessions,
		Classifier: classifier,
		Recorder:   recorder,
		Index:      index,
		BotName:    cfg.BotName,
		Logger:     logger,
	})

	h := handler.New(handler.Config{
		Chat:     chatSvc,
		Catalog:  cat,
		Policies: policies,
		Sessions: sessions,
		Recorder: recorder,
		Index:    index,
		Logger:   logger,
	})

	// Setup routes
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	// Apply middleware chain: recovery → request ID → logging → handler
	// Recovery must be outermost to catch panics from the other layers
	httpHandler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logging(logger),
	)(mux)

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Channel for server errors
	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("addr", server.Addr),
		)
		serverErr <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErr:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give outstanding requests time to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			// Force close if graceful shutdown fails
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// buildStores selects the catalog and transcript backends. With a MySQL
// DSN both share one connection pool; without one everything is in memory
// and lost on restart.
func buildStores(ctx context.Context, cfg *config.Config) (catalog.Store, transcript.Recorder, func(), error) {
	if cfg.MySQLDSN == "" {
		return catalog.NewMemory(), transcript.NewMemory(), func() {}, nil
	}

	cat, err := catalog.OpenMySQL(ctx, cfg.MySQLDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	recorder := transcript.NewMySQL(cat.DB())
	return cat, recorder, func() { cat.Close() }, nil
}

// buildClassifier wires the intent pipeline. The rule-based classifier is
// always present; the model classifier fronts it when configured.
func buildClassifier(cfg *config.Config, logger *slog.Logger) intent.Classifier {
	rules := intent.NewRules()
	if cfg.OpenAI.APIKey == "" {
		return intent.NewFallback(nil, rules, logger)
	}
	llm := intent.NewLLM(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	return intent.NewFallback(llm, rules, logger)
}

// buildIndex creates the search index and loads any persisted vectors.
// A load failure is not fatal: search starts empty until a reindex.
func buildIndex(ctx context.Context, cfg *config.Config, cat catalog.Store, logger *slog.Logger) *search.Index {
	var embedder search.Embedder
	if cfg.OpenAI.APIKey != "" {
		embedder = search.NewOpenAI(cfg.OpenAI.APIKey)
	} else {
		embedder = search.NewHashing()
	}

	index := search.NewIndex(cat, embedder)
	if err := index.Load(ctx); err != nil {
		logger.Warn("loading search index", slog.String("error", err.Error()))
	}
	return index
}

// initLogger creates a structured logger configured for the environment.
// Production uses JSON format for GCP Cloud Logging compatibility.
// Development uses text format for readability.
func initLogger() *slog.Logger {
	level := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source location in debug mode
		AddSource: level == slog.LevelDebug,
	}

	// JSON for production (Cloud Logging compatible), text for development
	if os.Getenv("ENVIRONMENT") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
