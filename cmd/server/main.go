package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sukiism/internal/cache"
	"sukiism/internal/config"
	"sukiism/internal/infra"
	"sukiism/internal/repository"
	"sukiism/internal/router"
	"sukiism/internal/service"
	"sukiism/internal/sheet"
	"sukiism/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev: pretty, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	}

	// ── Spreadsheet store ────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := repository.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open spreadsheet store")
	}
	defer backend.Close()

	cbCfg := infra.DefaultCBConfig()
	cbCfg.Name = cfg.StoreDriver
	cbCfg.IsFailure = sheet.IsTransportFailure
	storeCB := infra.NewCircuitBreaker(cbCfg)
	store := sheet.NewResilient(backend, sheet.RetryPolicy{
		Attempts:  cfg.StoreRetryAttempts,
		BaseDelay: cfg.StoreRetryDelay,
	}, storeCB)

	var readCache cache.Cache
	switch cfg.CacheDriver {
	case "redis":
		if rdb == nil {
			log.Fatal().Msg("CACHE_DRIVER=redis requires REDIS_URL")
		}
		readCache = cache.NewRedis(rdb, cfg.CacheTTL)
	default:
		readCache = cache.NewMemory(cfg.CacheTTL)
	}

	items := repository.NewItemRepository(store, readCache, cfg.ItemsSheet, cfg.RetiredSheet)
	txs := repository.NewTransactionRepository(store, readCache, cfg.TransactionsSheet)
	if err := items.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare items sheet")
	}
	if err := txs.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare transactions sheet")
	}

	// ── Restock alerts ───────────────────────────────────────────────────────
	// Alerts go through the Redis queue when available so a slow SMTP server
	// never holds up a ledger write.
	var sender worker.Sender
	if mailer := infra.NewMailer(cfg); mailer.Configured() {
		sender = mailer
	}
	alerts := worker.NewRestockAlertWorker(sender, cfg.AlertEmail, cfg.Currency)

	var notifier service.RestockNotifier
	if rdb != nil {
		pool := worker.NewPool(rdb)
		pool.Handle(worker.JobRestockAlert, alerts)
		pool.Start(ctx, cfg.WorkerPoolSize)
		notifier = worker.NewDispatcher(rdb)
	} else {
		notifier = worker.NewInline(alerts)
	}

	r := router.New(cfg, router.Deps{
		Store:    store,
		Cache:    readCache,
		DB:       db,
		RDB:      rdb,
		StoreCB:  storeCB,
		Notifier: notifier,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("sukiism stock ledger listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
