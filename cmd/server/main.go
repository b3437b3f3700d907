package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/projectk/projectk-backend/internal/config"
	"github.com/projectk/projectk-backend/internal/database"
	"github.com/projectk/projectk-backend/internal/handler"
	"github.com/projectk/projectk-backend/internal/llm"
	"github.com/projectk/projectk-backend/internal/logger"
	"github.com/projectk/projectk-backend/internal/metrics"
	"github.com/projectk/projectk-backend/internal/middleware"
	"github.com/projectk/projectk-backend/internal/repository"
	"github.com/projectk/projectk-backend/internal/router"
	"github.com/projectk/projectk-backend/internal/service"
	"github.com/projectk/projectk-backend/internal/tracing"
	"github.com/projectk/projectk-backend/internal/validator"
	"github.com/projectk/projectk-backend/internal/worker"
	"github.com/rs/zerolog"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Bool("ai_enabled", cfg.AIEnabled()).
		Msg("Starting Project K Backend")

	// ─── Initialize Validator & Metrics ────────────────────────────────
	validator.Setup()
	metrics.Init()

	// ─── Tracing (optional) ────────────────────────────────────────────
	if cfg.TracingEnabled {
		tp, err := tracing.Init(cfg.TracingCollectorEndpoint)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tracing")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				log.Error().Err(err).Msg("Tracer shutdown error")
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Language Model ────────────────────────────────────────────────
	// A nil client makes every tutor reply an apology and every practice
	// test come from the question bank.
	var model llm.Client
	if cfg.AIEnabled() {
		model = llm.NewOpenAIClient(llm.Config{
			BaseURL: cfg.AIBaseURL,
			APIKey:  cfg.AIAPIKey,
			Model:   cfg.AIModel,
			Timeout: cfg.AITimeout,
		})
	} else {
		log.Warn().Msg("AI_API_KEY not set, tutor replies will fall back to the apology message")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	chatSessionRepo := repository.NewChatSessionRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	practiceRepo := repository.NewPracticeRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)
	tokenSessions := repository.NewTokenSessionRepository(rdb)
	activityQueue := repository.NewActivityQueue(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, tokenSessions)
	userService := service.NewUserService(userRepo, authService)
	tutor := service.NewTutorRouter(model, cfg.AITimeout, cfg.ChatHistoryTurns, log)
	chatService := service.NewChatService(chatSessionRepo, messageRepo, tutor, activityQueue, log)
	practiceService := service.NewPracticeService(practiceRepo, model, cfg.AITimeout, cfg.PracticeFallback, log)
	classService := service.NewClassService(classRepo)
	dashboardService := service.NewDashboardService(dashboardRepo, classRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, userService),
		Chat:      handler.NewChatHandler(chatService),
		Class:     handler.NewClassHandler(classService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Practice:  handler.NewPracticeHandler(practiceService),
		WS:        handler.NewWSHandler(chatService, log, cfg.AllowedOrigins),
		System:    handler.NewSystemHandler(version),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	activityWorker := worker.NewActivityWorker(pool, rdb, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		activityWorker.Start(workerCtx)
	}()

	var authLimiter *middleware.RateLimiter
	stopCleanup := make(chan struct{})
	if cfg.AuthRateLimit > 0 {
		authLimiter = middleware.NewRateLimiter(cfg.AuthRateLimit)
		go authLimiter.RunCleanup(time.Minute, stopCleanup)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg, log, authLimiter)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests. Model calls can take up to
	// AI_TIMEOUT_SECONDS, so in-flight chat turns get that long to finish.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.AITimeout+5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	close(stopCleanup)

	// 2. Stop background workers and wait for the pending batch to flush.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
