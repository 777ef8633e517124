package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"potluck/auth"
	"potluck/collab"
	"potluck/collaboration"
	"potluck/config"
	"potluck/db"
	"potluck/middleware"
	"potluck/mq"
	"potluck/proposals"
	"potluck/ratelim"
	"potluck/rdx"
	"potluck/recipes"
	"potluck/routes"
	"potluck/utils"
)

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel, AddSource: cfg.IsDevelopment()}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// Wrap the router in CORS, security headers, request logging and panic
// recovery, outermost last.
func setupHandler(cfg *config.Config, logger *slog.Logger, router http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return middleware.RecoverMiddleware(logger, middleware.Logging(logger, middleware.SecurityHeaders(c.Handler(router))))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	client, err := db.Connect(connectCtx, cfg.MongoURI)
	connectCancel()
	if err != nil {
		logger.Error("mongo unavailable", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("mongo disconnect", "error", err)
		}
	}()
	logger.Info("connected to MongoDB", "database", cfg.MongoDatabase)

	database := client.Database(cfg.MongoDatabase)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		logger.Error("creating indexes", "error", err)
		os.Exit(1)
	}

	var (
		cache  rdx.Cache  = rdx.NopCache{}
		events mq.Emitter = mq.LogEmitter{Logger: logger}
	)
	if cfg.RedisAddr != "" {
		conn, err := rdx.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Error("redis unavailable", "error", err)
			os.Exit(1)
		}
		defer conn.Close()
		cache = rdx.NewRedisCache(conn, "potluck:")
		events = mq.NewRedisEmitter(conn, cfg.EventsChannel)
		logger.Info("connected to Redis", "addr", cfg.RedisAddr, "channel", cfg.EventsChannel)
	}

	recipeStore := db.NewCachedRecipeStore(db.NewMongoRecipeStore(database), cache, cfg.RecipeCacheTTL, logger)
	userStore := db.NewMongoUserStore(database)

	clock := utils.RealClock{}
	ids := utils.UUIDGenerator{}
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, clock)
	engine := proposals.NewEngine(recipeStore, clock, ids, events, logger)
	registry := collab.NewRegistry(recipeStore, userStore, clock, cfg.DefaultPermission, events, logger)

	rateLimiter := ratelim.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).TrustProxies(cfg.TrustedProxies...)
	go rateLimiter.Run(ctx, time.Minute)

	router := routes.New(routes.Handlers{
		Auth:          auth.NewHandler(auth.NewService(userStore, tokens, clock, ids, logger), logger),
		Recipes:       recipes.NewHandler(recipes.NewService(recipeStore, engine, clock, ids, events, logger), logger),
		Collaboration: collaboration.NewHandler(recipeStore, registry, logger),
		Authenticator: middleware.NewAuthenticator(tokens, logger),
		RateLimiter:   rateLimiter,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupHandler(cfg, logger, router),
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(cancel)

	go func() {
		logger.Info("server started", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("could not listen", "port", cfg.Port, "error", err)
			os.Exit(1)
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("shutdown signal received, shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		return
	}
	logger.Info("server stopped cleanly")
}
