package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/relaywire/dispatch-chain/internal/chain"
	"github.com/relaywire/dispatch-chain/internal/config"
	"github.com/relaywire/dispatch-chain/internal/domain"
	"github.com/relaywire/dispatch-chain/internal/handler"
	"github.com/relaywire/dispatch-chain/internal/middleware"
	"github.com/relaywire/dispatch-chain/internal/repository/postgres"
	"github.com/relaywire/dispatch-chain/internal/repository/redis"
	"github.com/relaywire/dispatch-chain/internal/service"
)

// @title Dispatch Chain API
// @version 1.0
// @description Multi-channel notification dispatch service

// @contact.name API Support
// @contact.email support@relaywire.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logLevel := slog.LevelInfo
	if cfg.App.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("starting dispatch service",
		"env", cfg.App.Env,
		"port", cfg.Server.Port,
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize PostgreSQL
	db, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL")

	// Initialize Redis
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	logger.Info("connected to Redis")

	// Initialize repositories
	outcomeRepo := postgres.NewOutcomeRepository(db)
	idempotencyStore := redis.NewIdempotencyStore(redisClient, cfg.Idempotency.TTL)
	rateLimiter := redis.NewRateLimiter(redisClient, cfg.RateLimit.PerSecond)

	// Assemble the delivery chain, outermost channel first. A request walks
	// chat, sms, email and always reaches the terminal log recorder.
	env := chain.SystemEnv()
	var dispatchChain domain.Handler = chain.NewTerminal(chain.TerminalConfig{
		SystemName: cfg.Chain.SystemName,
	}, env, logger)
	dispatchChain = chain.NewEmail(dispatchChain, chain.EmailConfig{
		SMTPHost: cfg.Chain.EmailSMTPHost,
		SMTPPort: cfg.Chain.EmailSMTPPort,
		Sender:   cfg.Chain.EmailSender,
	}, env, logger)
	dispatchChain = chain.NewSMS(dispatchChain, chain.SMSConfig{
		Provider:     cfg.Chain.SMSProvider,
		SenderNumber: cfg.Chain.SMSSenderNumber,
	}, env, logger)
	dispatchChain = chain.NewChat(dispatchChain, chain.ChatConfig{
		WorkspaceURL: cfg.Chain.ChatWorkspaceURL,
		BotName:      cfg.Chain.ChatBotName,
	}, env, logger)
	logger.Info("assembled delivery chain", "channels", dispatchChain.Channels())

	// Initialize service
	dispatchService := service.NewDispatchService(dispatchChain, outcomeRepo, idempotencyStore, rateLimiter, logger)

	// Initialize WebSocket hub
	wsHub := handler.NewWebSocketHub(logger)
	go wsHub.Run()

	dispatchService.SetOutcomeBroadcast(func(o *domain.Outcome) {
		wsHub.BroadcastOutcome(o)
	})

	// Initialize handlers
	dispatchHandler := handler.NewDispatchHandler(dispatchService)
	healthHandler := handler.NewHealthHandler()
	healthHandler.AddChecker("postgres", db)
	healthHandler.AddChecker("redis", redisClient)

	metrics := handler.NewMetrics()
	metricsHandler := handler.NewMetricsHandler(metrics, rateLimiter)
	wsHandler := handler.NewWebSocketHandler(wsHub)

	dispatchService.SetDispatchObserver(metrics.RecordDispatch)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Correlation)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(chimiddleware.Compress(5))

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// Metrics endpoints
	r.Handle("/metrics", metricsHandler.Handler())
	r.Get("/metrics/realtime", metricsHandler.RealtimeMetrics)

	// WebSocket endpoint
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/dispatch", func(r chi.Router) {
			dispatchHandler.RegisterRoutes(r)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	cancel()

	logger.Info("server stopped")
}
