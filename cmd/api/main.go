package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"dealer_backoffice_backend/internal/adapters"
	"dealer_backoffice_backend/internal/admin"
	"dealer_backoffice_backend/internal/catalog"
	"dealer_backoffice_backend/internal/customers"
	"dealer_backoffice_backend/internal/dashboard"
	"dealer_backoffice_backend/internal/email"
	apphttp "dealer_backoffice_backend/internal/http"
	"dealer_backoffice_backend/internal/listings"
	"dealer_backoffice_backend/internal/pdf"
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
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	catalogModule := catalog.NewModule(pool, cfg, val, log)
	if err := catalogModule.RegisterConfigured(ctx, cfg); err != nil {
		log.Error("failed to register configured distributors", "error", err)
		panic("failed to register configured distributors: " + err.Error())
	}

	customersModule := customers.NewModule(pool, eventBus, val, log)
	quotesModule := quotes.NewModule(pool, catalogModule.OfferSource(), customersModule.Directory(), cfg, eventBus, val, log)
	quoteRenderer := pdf.NewQuoteRenderer(cfg.EmailFromName)
	quotesModule.SetPDFRenderer(quoteRenderer)
	listingsModule := listings.NewModule(pool, eventBus, val, log)
	dashboardModule := dashboard.NewModule(pool)

	// Email notifier subscribes to quote events (not HTTP-facing). Sent-quote
	// mail carries the rendered PDF.
	notifier := email.NewNotifier(email.NewSender(cfg), log)
	notifier.SetPDFSource(adapters.NewQuotePDFAdapter(quotesModule.Service(), quoteRenderer))
	notifier.Register(eventBus)

	modules := []apphttp.Module{
		catalogModule,
		customersModule,
		quotesModule,
		listingsModule,
		dashboardModule,
	}

	// Admin task triggers need the queue; without Redis the worker's cron
	// schedule is the only way jobs run, so the endpoints stay unmounted.
	taskClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Warn("task queue unavailable, admin task endpoints disabled", "error", err)
	} else {
		defer taskClient.Close()
		modules = append(modules, admin.NewModule(taskClient, log))
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules:  modules,
	}

	engine := apphttp.NewRouter(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
