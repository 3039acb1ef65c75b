package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opengaia/gaia-engine/internal/config"
	"github.com/opengaia/gaia-engine/internal/engine"
	"github.com/opengaia/gaia-engine/internal/handlers"
	"github.com/opengaia/gaia-engine/internal/logger"
	"github.com/opengaia/gaia-engine/internal/middleware"
	"github.com/opengaia/gaia-engine/internal/services"
	relayevents "github.com/opengaia/gaia-engine/internal/services/events"
	"github.com/opengaia/gaia-engine/internal/storage"
	"github.com/opengaia/gaia-engine/pkg/events"
	"github.com/opengaia/gaia-engine/pkg/state"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting Gaia Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"backend_url", cfg.BackendURL)

	backend := services.NewGaiaService(cfg.BackendURL, log)

	session := state.NewSession()
	bus := events.NewBus(log)
	defer bus.Close()

	controller := engine.NewController(session, backend, bus, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is optional: with it we get session persistence and the
	// event relay for out-of-process UIs; without it the engine runs
	// fully in memory.
	var store storage.Storage
	if cfg.RedisAddr != "" {
		redisStore := storage.NewRedisStorage(cfg.RedisAddr, cfg.SessionTTL, log)
		pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := redisStore.Ping(pingCtx); err != nil {
			pingCancel()
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		pingCancel()
		store = redisStore
		log.Info("Session storage enabled", "redis_addr", cfg.RedisAddr)

		relayClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		broadcaster := relayevents.NewBroadcaster(relayClient, log)
		relaySub, relayUnsub := bus.Subscribe()
		defer relayUnsub()
		go broadcaster.Relay(ctx, relaySub)

		// Write-behind persistence after every completed-set change.
		persistSub, persistUnsub := bus.Subscribe()
		defer persistUnsub()
		go func() {
			for e := range persistSub {
				if e.Type != events.TypeTasksChanged && e.Type != events.TypeDialogueTurn {
					continue
				}
				saveCtx, saveCancel := context.WithTimeout(ctx, 5*time.Second)
				if err := store.SaveSession(saveCtx, session.ID(), session.Snapshot()); err != nil {
					log.Error("Failed to persist session", "error", err)
				}
				saveCancel()
			}
		}()
	}

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(store, log))
	mux.Handle("/v1/worlds", handlers.NewWorldHandler(session, backend, log))
	mux.Handle("/v1/interact", handlers.NewInteractHandler(controller, log))

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(mux),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")
	cancel()

	if store != nil {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage connection", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
