package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tutorbot/internal/config"
	"tutorbot/internal/handler"
	"tutorbot/internal/metrics"
	"tutorbot/internal/middleware"
	"tutorbot/internal/payment"
	"tutorbot/internal/ratelimit"
	"tutorbot/internal/repository/memory"
	"tutorbot/internal/server"
	"tutorbot/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	sessionIdleTimeout = time.Hour
	sweepInterval      = 15 * time.Minute
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Tutor Registration Bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully")

	// Initialize in-memory stores (state is volatile by design)
	sessions := memory.NewSessionRepo()
	txs := memory.NewTransactionRepo()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Initialize payment gateway client
	gateway := payment.NewChapa(cfg.Chapa.SecretKey, cfg.Chapa.BaseURL, logger)

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Telegram bot initialized")

	// Initialize services
	notifier := handler.NewNotifier(bot)
	registrationService := service.NewRegistrationService(sessions, logger)
	reviewService := service.NewReviewService(sessions, txs, gateway, notifier, cfg.AdminChatID, cfg.PublicBaseURL, logger)
	confirmService := service.NewConfirmationService(sessions, txs, gateway, notifier, cfg.AdminChatID, logger)

	// Rate limiting applies to every inbound message
	limiter := ratelimit.New(ratelimit.DefaultWindow, ratelimit.DefaultMaxRequests)
	bot.Use(middleware.RateLimit(limiter, logger, m.RateLimitedRejections.Inc))

	// Initialize handler
	h := handler.NewHandler(bot, registrationService, reviewService, m, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start idle-session sweep in background
	go runSessionSweep(ctx, sessions, m, logger)

	// Start HTTP surface (payment webhook, health, metrics)
	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: server.New(confirmService, sessions, m, registry, logger).Router(),
	}
	go func() {
		logger.Info("HTTP server listening", zap.String("port", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	bot.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	logger.Info("Bot stopped gracefully")
}

// runSessionSweep periodically evicts sessions idle beyond the timeout.
// Only idle/collecting sessions are eligible; applications awaiting review
// or payment always survive.
func runSessionSweep(ctx context.Context, sessions *memory.SessionRepo, m *metrics.Metrics, logger *zap.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Session sweep stopped")
			return
		case <-ticker.C:
			removed := sessions.DeleteIdle(sessionIdleTimeout)
			m.ActiveSessions.Set(float64(sessions.Count()))
			if removed > 0 {
				logger.Info("Evicted idle sessions", zap.Int("count", removed))
			}
		}
	}
}
