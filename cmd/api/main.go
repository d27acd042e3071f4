package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/gramseva/sahayak/internal/api/router"
	"github.com/gramseva/sahayak/internal/backend"
	appconfig "github.com/gramseva/sahayak/internal/config"
	"github.com/gramseva/sahayak/internal/conversation"
	"github.com/gramseva/sahayak/internal/observability/metrics"
	"github.com/gramseva/sahayak/pkg/logging"
)

func main() {
	// Load .env if present; real deployments use environment variables.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting sahayak API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Error("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	llm, err := conversation.NewGeminiLLMClient(context.Background(), conversation.GeminiConfig{
		APIKey:          cfg.GeminiAPIKey,
		ModelID:         cfg.GeminiModelID,
		Timeout:         cfg.GeminiTimeout,
		MaxRetries:      cfg.GeminiMaxRetries,
		Temperature:     cfg.Temperature,
		TopP:            cfg.TopP,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize gemini client", "error", err)
		os.Exit(1)
	}
	defer llm.Close()

	tz, err := time.LoadLocation(cfg.PromptTimezone)
	if err != nil {
		logger.Error("invalid timezone", "timezone", cfg.PromptTimezone, "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	conversationMetrics := metrics.NewConversationMetrics(registry)

	backendClient := backend.NewClient(cfg.BackendBaseURL, cfg.ClientID, cfg.BackendTimeout, logger)
	store := conversation.NewSessionStore(rdb, cfg.SessionTTL, cfg.SearchCacheTTL, nil)
	orchestrator := conversation.NewOrchestrator(llm, backendClient, store, conversationMetrics, logger, conversation.Options{
		LanguageThreshold: cfg.MarathiKeywordThreshold,
		NearbyRadiusKm:    cfg.NearbyRadiusKm,
		NearbyPageSize:    cfg.NearbyPageSize,
		TaskDueDays:       cfg.TaskDueDays,
		Timezone:          tz,
	})

	r := router.New(&router.Config{
		Logger:              logger,
		ConversationHandler: conversation.NewHandler(orchestrator, logger),
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		SearchRateLimit:     cfg.SearchRateLimit,
		SearchRateBurst:     cfg.SearchRateBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
