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

	"github.com/joho/godotenv"

	"github.com/blackinbot/backend/internal/access"
	"github.com/blackinbot/backend/internal/api"
	"github.com/blackinbot/backend/internal/config"
	"github.com/blackinbot/backend/internal/handlers"
	"github.com/blackinbot/backend/internal/middleware"
	"github.com/blackinbot/backend/internal/payments"
	"github.com/blackinbot/backend/internal/telegram"
	"github.com/blackinbot/backend/store"
	"github.com/blackinbot/backend/types"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	var st types.Store
	if cfg.PostgresDSN != "" || os.Getenv("POSTGRES_HOST") != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer pgStore.Close()
		st = pgStore
	} else {
		log.Println("Warning: POSTGRES_DSN not set, using in-memory store")
		st = store.NewMemoryStore()
	}

	var rdb *store.RedisClient
	if cfg.RedisAddr != "" {
		var err error
		rdb, err = store.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "blackinbot")
		if err != nil {
			log.Printf("Warning: Redis unavailable, bot lookups go straight to the store: %v", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}
	botCache := store.NewBotCache(rdb, st, 10*time.Minute)

	clients := telegram.NewFactory(cfg.TelegramAPIBaseURL)
	gateway := payments.NewPushinPay(cfg.PushinpayBaseURL, cfg.PlatformSplitToken)

	auth := middleware.NewAuth(cfg.JWTSecret, cfg.JWTLifetime, st)
	botHandler := handlers.NewBotHandler(st, gateway, clients)
	reconciler := access.NewReconciler(st, clients)
	sweeper := access.NewSweeper(st, clients)

	if cfg.SweepInterval > 0 {
		sweeper.Start(cfg.SweepInterval)
		defer sweeper.Stop()
	}

	server := api.NewServer(api.Deps{
		Store:           st,
		BotCache:        botCache,
		Clients:         clients,
		Auth:            auth,
		BotHandler:      botHandler,
		Reconciler:      reconciler,
		Sweeper:         sweeper,
		PushinpaySecret: cfg.PushinpaySecret,
		PublicBaseURL:   cfg.PublicBaseURL,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Router(),
	}

	go func() {
		log.Printf("API listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
