package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xavierca1/ligue-leads/internal/config"
	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/database"
	"github.com/xavierca1/ligue-leads/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/infra/http/router"
	"github.com/xavierca1/ligue-leads/internal/infra/logger"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Storage
	var (
		db    *sql.DB
		store entity.LeadStore
	)
	switch cfg.Storage {
	case config.StorageMemory:
		store = database.NewMemoryLeadStore()
		log.Warn("using in-memory storage, leads are lost on restart")
	default:
		db, err = database.NewDBConnection(cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			log.DatabaseError("connect", err)
			os.Exit(1)
		}
		defer db.Close()

		if cfg.RunMigrations {
			if err := database.RunMigrations(ctx, db); err != nil {
				log.DatabaseError("migrate", err)
				os.Exit(1)
			}
		}
		store = database.NewPostgresLeadStore(db)
	}

	// 2. Lead events
	var (
		events usecase.LeadEventPublisher = queue.NoopProducer{}
		broker handlers.BrokerStatus
	)
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Error("rabbitmq unavailable, lead events disabled", slog.String("error", err.Error()))
		} else {
			defer rabbitMQ.Close()
			events = queue.NewProducer(rabbitMQ.Ch)
			broker = rabbitMQ
		}
	}

	// 3. Handlers
	leadUC := usecase.NewLeadUseCase(events, log.Logger)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, log)
	defer limiter.Stop()

	handler := router.New(router.Options{
		Leads:       handlers.NewLeadHandler(store, leadUC, log),
		Health:      handlers.NewHealthHandler(db, broker, cfg.Storage),
		RateLimiter: limiter,
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   true,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("lead service listening", slog.String("addr", cfg.HTTPAddr), slog.String("storage", cfg.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
	log.Info("lead service stopped")
}
