package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"dealer_backoffice_backend/internal/catalog"
	"dealer_backoffice_backend/internal/customers"
	"dealer_backoffice_backend/internal/listings"
	"dealer_backoffice_backend/internal/quotes"
	"dealer_backoffice_backend/internal/scheduler"
	"dealer_backoffice_backend/platform/config"
	"dealer_backoffice_backend/platform/db"
	"dealer_backoffice_backend/platform/events"
	"dealer_backoffice_backend/platform/logger"
	"dealer_backoffice_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// The sweep and sync run through the same services the API uses, so
	// status transitions and events behave identically in both processes.
	catalogModule := catalog.NewModule(pool, cfg, val, log)
	customersModule := customers.NewModule(pool, eventBus, val, log)
	quotesModule := quotes.NewModule(pool, catalogModule.OfferSource(), customersModule.Directory(), cfg, eventBus, val, log)
	listingsModule := listings.NewModule(pool, eventBus, val, log)

	worker, err := scheduler.NewWorker(cfg, quotesModule.Service(), listingsModule.Service(), log)
	if err != nil {
		log.Error("failed to create scheduler worker", "error", err)
		panic("failed to create scheduler worker: " + err.Error())
	}

	log.Info("scheduler worker running")
	worker.Run(ctx)
	log.Info("scheduler worker stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", lastErr)

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return lastErr
}
