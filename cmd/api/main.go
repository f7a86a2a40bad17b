package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Nanpapu/eventhub-sub001/internal/config"
	"github.com/Nanpapu/eventhub-sub001/internal/connect"
	"github.com/Nanpapu/eventhub-sub001/internal/container"
	"github.com/Nanpapu/eventhub-sub001/internal/helpers"
	"github.com/Nanpapu/eventhub-sub001/internal/queue"
	"github.com/Nanpapu/eventhub-sub001/internal/routes"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	logger.Info("Starting EventHub API server", "environment", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var clients container.Clients

	clients.Mongo, err = connect.MongoDBConnect(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to MongoDB successfully", "database", cfg.MongoDBDatabase)

	if cfg.SupabaseEnabled() {
		clients.Supabase, err = connect.InitSupabase(cfg)
		if err != nil {
			logger.Error("Failed to connect to Supabase", "error", err)
			os.Exit(1)
		}
		logger.Info("Connected to Supabase successfully")
	} else {
		logger.Warn("Supabase not configured, signup and login routes are disabled")
	}

	if cfg.RedisAddr != "" {
		clients.Redis, err = connect.RedisConnect(ctx, cfg)
		if err != nil {
			// rate limits fall back to local buckets, the sweep runs unlocked
			logger.Warn("Redis unavailable, continuing without it", "error", err)
		} else {
			logger.Info("Connected to Redis successfully", "addr", cfg.RedisAddr)
		}
	}

	if cfg.CloudinaryEnabled() {
		clients.Cloudinary, err = connect.CloudinaryCredentials(cfg)
		if err != nil {
			logger.Error("Failed to connect to Cloudinary", "error", err)
			os.Exit(1)
		}
		logger.Info("Cloudinary configured")
	}

	if cfg.RabbitMQURL != "" {
		clients.Publisher = queue.NewPublisher(cfg.RabbitMQURL, logger)
		logger.Info("Purchase messages will be published", "queue", queue.TicketPurchasedQueue)
	}

	verifier, err := helpers.NewTokenVerifier(ctx, cfg.SupabaseURL, cfg.JWTSecret, logger)
	if err != nil {
		logger.Error("Failed to set up token verification", "error", err)
		os.Exit(1)
	}
	defer verifier.Close()

	app := container.NewContainer(cfg, logger, verifier, clients)

	if err := app.Indexes.EnsureIndexes(ctx); err != nil {
		logger.Error("Failed to ensure MongoDB indexes", "error", err)
		os.Exit(1)
	}

	router := routes.SetupRoutes(app)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	schedCtx, stopScheduler := context.WithCancel(context.Background())
	if cfg.ReminderEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.Scheduler.Run(schedCtx)
		}()
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Server is shutting down...")

	stopScheduler()
	wg.Wait()

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if clients.Publisher != nil {
		if err := clients.Publisher.Close(); err != nil {
			logger.Error("Error closing RabbitMQ connection", "error", err)
		}
	}
	if clients.Redis != nil {
		if err := clients.Redis.Close(); err != nil {
			logger.Error("Error closing Redis connection", "error", err)
		}
	}
	if err := connect.MongoDBDisconnect(clients.Mongo); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}

	logger.Info("Server exited")
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
