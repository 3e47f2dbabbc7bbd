package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"betsafe-ai/internal/config"
	"betsafe-ai/internal/database"
	"betsafe-ai/internal/handlers"
	"betsafe-ai/internal/middleware"
	"betsafe-ai/internal/router"
	"betsafe-ai/internal/services"
	"betsafe-ai/internal/session"
	"betsafe-ai/web"
)

func main() {
	log.Println("🛡️ Starting BetSafe AI...")

	// ──── Step 1: Load Environment Variables ────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("✗ Configuration error: %v", err)
	}
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Rate Limiter (Redis when configured) ────
	window := time.Minute
	var queryLimiter *middleware.RateLimiter
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClient.Close()
		queryLimiter = middleware.NewRedisRateLimiter(redisClient, "query", cfg.RateLimitPerMinute, window)
		log.Println("✓ Redis connected (shared rate limits)")
	} else {
		queryLimiter = middleware.NewRateLimiter(cfg.RateLimitPerMinute, window)
		log.Println("✓ In-memory rate limiter")
	}
	defer queryLimiter.Close()

	// ──── Step 3: Sessions ────
	store := session.NewStore(cfg.SessionTTL)
	defer store.Close()
	sessions := middleware.NewSessions(store, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	log.Printf("✓ Session store ready (idle TTL %s)", cfg.SessionTTL)

	// ──── Step 4: Gemini Dispatcher ────
	dispatcher := services.NewDispatcher(
		services.NewGeminiFactory(cfg.GeminiModel, services.SystemInstruction),
		cfg.GeminiConcurrentReqs,
	)
	log.Printf("✓ Gemini dispatcher initialized (model %s, %d concurrent)", cfg.GeminiModel, cfg.GeminiConcurrentReqs)

	// ──── Step 5: Handlers & Router ────
	pageHandler := handlers.NewPageHandler(store, dispatcher, queryLimiter, web.PageTemplate())
	apiHandler := handlers.NewAPIHandler(store, dispatcher)

	r := router.New(sessions, queryLimiter, pageHandler, apiHandler, web.StaticHandler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ BetSafe AI ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
