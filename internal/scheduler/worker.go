package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"dealer_backoffice_backend/platform/config"
	"dealer_backoffice_backend/platform/logger"
)

// QuoteSweeper expires overdue sent quotes. Implemented by the quotes service.
type QuoteSweeper interface {
	ExpireSweep(ctx context.Context) (int64, error)
}

// ListingSyncer stamps active listings as synced. Implemented by the listings
// service.
type ListingSyncer interface {
	SyncActive(ctx context.Context) (int64, error)
}

// Worker consumes background tasks and also registers the recurring schedule
// for them.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	quotes    QuoteSweeper
	listings  ListingSyncer
	log       *logger.Logger
}

// NewWorker creates the asynq server, handler mux, and recurring schedule.
func NewWorker(cfg config.SchedulerConfig, quotes QuoteSweeper, listings ListingSyncer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}
	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		scheduler: asynq.NewScheduler(opt, nil),
		mux:       mux,
		quotes:    quotes,
		listings:  listings,
		log:       log,
	}

	mux.HandleFunc(TaskQuoteExpirySweep, w.handleQuoteExpirySweep)
	mux.HandleFunc(TaskListingSync, w.handleListingSync)

	if err := w.registerSchedule(queue); err != nil {
		return nil, err
	}
	return w, nil
}

// registerSchedule sets up the recurring tasks: the expiry sweep hourly, the
// listing sync every 6 hours.
func (w *Worker) registerSchedule(queue string) error {
	sweep, err := NewQuoteExpirySweepTask()
	if err != nil {
		return err
	}
	if _, err := w.scheduler.Register("@every 1h", sweep, asynq.Queue(queue)); err != nil {
		return fmt.Errorf("register expiry sweep: %w", err)
	}

	sync, err := NewListingSyncTask()
	if err != nil {
		return err
	}
	if _, err := w.scheduler.Register("@every 6h", sync, asynq.Queue(queue)); err != nil {
		return fmt.Errorf("register listing sync: %w", err)
	}
	return nil
}

func (w *Worker) handleQuoteExpirySweep(ctx context.Context, task *asynq.Task) error {
	count, err := w.quotes.ExpireSweep(ctx)
	if err != nil {
		return err
	}
	w.log.Info("quote expiry sweep completed", "expired", count)
	return nil
}

func (w *Worker) handleListingSync(ctx context.Context, task *asynq.Task) error {
	count, err := w.listings.SyncActive(ctx)
	if err != nil {
		return err
	}
	w.log.Info("listing sync completed", "synced", count)
	return nil
}

// Run starts the scheduler and the task server, blocking until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		if err := w.scheduler.Run(); err != nil {
			w.log.Error("task scheduler stopped", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		w.scheduler.Shutdown()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
