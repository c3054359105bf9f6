package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/snaveenk972/learning-platform/internal/cache"
	"github.com/snaveenk972/learning-platform/internal/config"
	"github.com/snaveenk972/learning-platform/internal/db"
	httpserver "github.com/snaveenk972/learning-platform/internal/http"
	"github.com/snaveenk972/learning-platform/internal/repository"
	"github.com/snaveenk972/learning-platform/internal/seed"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	store := repository.NewStore(pool)

	if cfg.SeedDemoData {
		if err := seed.Run(ctx, store); err != nil {
			log.Fatalf("seed demo data: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("redis unavailable, question cache disabled: %v", err)
			redisClient = nil
		}
	}

	questions := cache.NewQuestions(redisClient, store, cfg.QuestionCacheTTL)
	server := httpserver.NewServer(cfg, store, questions)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Print("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
