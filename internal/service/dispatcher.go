package service

import (
	"context"
	"errors"
	"sync"
	"time"

	updater "openhab_updater"
	"openhab_updater/internal/logger"
	"openhab_updater/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultWorkers     = 4
	defaultBackoffBase = 2 * time.Second
	defaultBackoffMax  = 60 * time.Second

	workBuffer = 256
)

// OutcomeObserver is called with every terminal outcome after it has been
// persisted.
type OutcomeObserver func(updater.UpdateOutcome)

// DispatcherService executes queued requests through the Updater. It owns the
// retry loop: the attempt counter starts at 1 and a retry signal sleeps an
// exponential backoff before the next attempt. Requests for different items
// run concurrently on the worker pool; each in-flight request is owned by
// exactly one worker.
type DispatcherService struct {
	updater  Updater
	queue    repository.QueueRepo
	outcomes repository.OutcomeRepo
	cfg      DispatchConfig
	log      *logger.Logger

	work chan updater.PendingUpdate

	mu        sync.Mutex
	observers []OutcomeObserver
}

func NewDispatcherService(upd Updater, queue repository.QueueRepo, outcomes repository.OutcomeRepo, cfg DispatchConfig, log *logger.Logger) *DispatcherService {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = defaultBackoffMax
	}
	return &DispatcherService{
		updater:  upd,
		queue:    queue,
		outcomes: outcomes,
		cfg:      cfg,
		log:      log,
		work:     make(chan updater.PendingUpdate, workBuffer),
	}
}

// AddObserver registers a terminal-outcome callback. Observers registered
// after Run started are picked up for subsequent outcomes.
func (d *DispatcherService) AddObserver(fn OutcomeObserver) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, fn)
}

// Enqueue persists the request and hands it to the worker pool. Returns the
// queue id.
func (d *DispatcherService) Enqueue(ctx context.Context, req updater.UpdateRequest) (string, error) {
	p := updater.PendingUpdate{
		ID:         uuid.NewString(),
		Request:    req,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := d.queue.Enqueue(ctx, p); err != nil {
		return "", err
	}
	select {
	case d.work <- p:
	default:
		// Channel full. The row is persisted, so it is picked up on restart.
		if d.log != nil {
			d.log.Warnw("dispatch_queue_full", "id", p.ID, "item", req.ItemName)
		}
	}
	return p.ID, nil
}

// Run recovers persisted queue rows, then processes work until ctx is
// canceled.
func (d *DispatcherService) Run(ctx context.Context) {
	d.recover(ctx)

	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.worker(ctx)
		}()
	}
	wg.Wait()
}

// recover re-enqueues rows left over from a previous run.
func (d *DispatcherService) recover(ctx context.Context) {
	pending, err := d.queue.ListPending(ctx)
	if err != nil {
		if d.log != nil {
			d.log.Errorw("dispatch_recover_failed", "err", err)
		}
		return
	}
	for _, p := range pending {
		select {
		case d.work <- p:
		case <-ctx.Done():
			return
		}
	}
	if len(pending) > 0 && d.log != nil {
		d.log.Infow("dispatch_recovered_pending", "count", len(pending))
	}
}

func (d *DispatcherService) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-d.work:
			d.process(ctx, p)
		}
	}
}

// process drives one request to a terminal outcome.
func (d *DispatcherService) process(ctx context.Context, p updater.PendingUpdate) {
	for attempt := 1; ; attempt++ {
		outcome, err := d.updater.Execute(ctx, p.Request, attempt)
		if err != nil {
			if errors.Is(err, ErrAwaitingConnection) {
				if !sleepCtx(ctx, d.backoff(attempt)) {
					return // shut down; row stays queued for restart
				}
				continue
			}
			// Context cancellation mid-attempt: leave the row queued.
			if d.log != nil {
				d.log.Warnw("dispatch_attempt_aborted", "id", p.ID, "item", p.Request.ItemName, "err", err)
			}
			return
		}

		outcome.ID = p.ID
		if err := d.outcomes.Save(ctx, outcome); err != nil && d.log != nil {
			d.log.Errorw("outcome_save_failed", "id", p.ID, "err", err)
		}
		if err := d.queue.Delete(ctx, p.ID); err != nil && d.log != nil {
			d.log.Errorw("queue_delete_failed", "id", p.ID, "err", err)
		}
		d.notifyObservers(outcome)
		return
	}
}

func (d *DispatcherService) notifyObservers(outcome updater.UpdateOutcome) {
	d.mu.Lock()
	observers := make([]OutcomeObserver, len(d.observers))
	copy(observers, d.observers)
	d.mu.Unlock()
	for _, fn := range observers {
		fn(outcome)
	}
}

// backoff doubles per retry from the base, capped at the configured maximum.
func (d *DispatcherService) backoff(attempt int) time.Duration {
	delay := d.cfg.BackoffBase
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= d.cfg.BackoffMax {
			return d.cfg.BackoffMax
		}
	}
	if delay > d.cfg.BackoffMax {
		return d.cfg.BackoffMax
	}
	return delay
}

// sleepCtx waits d or until ctx is done; reports whether the full wait
// elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
