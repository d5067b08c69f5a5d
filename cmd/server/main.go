package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"gatherly/config"
	_ "gatherly/docs"
	"gatherly/internal/adapters/auth"
	"gatherly/internal/cache"
	deliveryhttp "gatherly/internal/delivery/http"
	"gatherly/internal/delivery/http/controllers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
	"gatherly/internal/repository/postgres"
	"gatherly/internal/services"
)

// @title Gatherly API
// @version 1.0
// @description Event registration platform: events, venues, registrations, and manual guests.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("failed to reach database", "err", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	var store domain.CacheStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Error("failed to reach redis", "addr", cfg.RedisAddr, "err", err)
			os.Exit(1)
		}
		store = cache.NewRedisStore(client)
		logger.Info("using redis cache", "addr", cfg.RedisAddr)
	} else {
		store = cache.NewMemoryStore()
		logger.Info("using in-process cache")
	}

	eventRepo := postgres.NewEventRepository(db)
	guestRepo := postgres.NewGuestRepository(db)
	venueRepo := postgres.NewVenueRepository(db)
	userRepo := postgres.NewUserRepository(db)

	detailsSvc := services.NewEventDetailsService(
		eventRepo, venueRepo, guestRepo, store,
		cfg.CacheSlidingTTL, cfg.CacheAbsoluteTTL, cfg.ContextTimeout,
		logger,
	)
	eventSvc := services.NewEventService(eventRepo, venueRepo, detailsSvc, cfg.ContextTimeout)
	admissionSvc := services.NewAdmissionService(eventRepo, guestRepo, userRepo, detailsSvc, cfg.ContextTimeout)

	tokens := auth.NewJWTAdapter(cfg.JWTSecret)

	eventController := controllers.NewEventController(logger, eventSvc, detailsSvc)
	admissionController := controllers.NewAdmissionController(logger, admissionSvc)
	guestController := controllers.NewGuestController(logger, admissionSvc)

	mux := deliveryhttp.NewRouter(tokens, eventController, admissionController, guestController)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
