package services

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

// JobHandler runs one job. Returning an error wrapping errs.ErrJobPermanent
// buries the job without further attempts.
type JobHandler func(ctx context.Context, job *models.Job) error

// Queue enqueues durable jobs.
type Queue struct {
	store  JobStore
	logger zerolog.Logger
}

func NewQueue(store JobStore) *Queue {
	return &Queue{
		store:  store,
		logger: log.With().Str("service", "queue").Logger(),
	}
}

// Enqueue stores a pending job. A non-empty dedupeKey that matches a pending
// job makes the call a no-op.
func (q *Queue) Enqueue(ctx context.Context, kind string, payload any, dedupeKey string) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}
	job := &models.Job{
		Kind:    kind,
		Payload: datatypes.JSON(raw),
		Status:  models.JobStatusPending,
	}
	if dedupeKey != "" {
		job.DedupeKey = &dedupeKey
	}

	created, err := q.store.Enqueue(ctx, job)
	if err != nil {
		return err
	}
	if !created {
		q.logger.Debug().Str("kind", kind).Str("dedupeKey", dedupeKey).Msg("Equivalent job already pending")
		return nil
	}
	q.logger.Debug().Str("kind", kind).Str("jobId", job.ID.String()).Msg("Job enqueued")
	return nil
}

// DecodePayload unmarshals the job payload into v.
func DecodePayload(job *models.Job, v any) error {
	if err := json.Unmarshal(job.Payload, v); err != nil {
		return errs.NewPermanentJobError("malformed payload", err)
	}
	return nil
}

type WorkerConfig struct {
	Concurrency  int
	PollInterval time.Duration
	Lease        time.Duration
	BaseDelay    time.Duration
	MaxDelay     time.Duration
}

func (c *WorkerConfig) setDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.Lease <= 0 {
		c.Lease = 5 * time.Minute
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 10 * time.Second
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = time.Hour
	}
}

// Worker polls the job table and dispatches claimed jobs to handlers by kind.
type Worker struct {
	store    JobStore
	cfg      WorkerConfig
	mu       sync.RWMutex
	handlers map[string]JobHandler
	logger   zerolog.Logger
	now      func() time.Time
}

func NewWorker(store JobStore, cfg WorkerConfig) *Worker {
	cfg.setDefaults()
	return &Worker{
		store:    store,
		cfg:      cfg,
		handlers: make(map[string]JobHandler),
		logger:   log.With().Str("service", "worker").Logger(),
		now:      time.Now,
	}
}

// Handle registers the handler for a job kind, replacing any previous one.
func (w *Worker) Handle(kind string, h JobHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[kind] = h
}

// Run polls until ctx is cancelled. In-flight jobs finish before it returns.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().
		Int("concurrency", w.cfg.Concurrency).
		Dur("pollInterval", w.cfg.PollInterval).
		Msg("Job worker started")

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		n, err := w.RunOnce(ctx)
		if err != nil && ctx.Err() == nil {
			w.logger.Error().Err(err).Msg("Job poll failed")
		}
		// a full batch suggests more work is waiting
		if n == w.cfg.Concurrency && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Job worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce claims up to Concurrency jobs and processes them in parallel. It
// returns how many jobs were claimed.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	jobs, err := w.store.Claim(ctx, w.cfg.Concurrency, w.cfg.Lease)
	if err != nil {
		return 0, err
	}

	// jobs are finished on a context that outlives shutdown so state is recorded
	finishCtx := context.WithoutCancel(ctx)
	g := new(errgroup.Group)
	for _, job := range jobs {
		g.Go(func() error {
			w.process(ctx, finishCtx, job)
			return nil
		})
	}
	return len(jobs), g.Wait()
}

func (w *Worker) process(ctx, finishCtx context.Context, job *models.Job) {
	logger := w.logger.With().
		Str("jobId", job.ID.String()).
		Str("kind", job.Kind).
		Int("attempt", job.Attempts).
		Logger()

	w.mu.RLock()
	handler, ok := w.handlers[job.Kind]
	w.mu.RUnlock()

	var err error
	if !ok {
		err = errs.NewUnknownJobKindError(job.Kind)
	} else {
		runCtx, cancel := context.WithTimeout(ctx, w.cfg.Lease)
		started := w.now()
		err = runHandler(runCtx, handler, job)
		cancel()
		logger = logger.With().Dur("duration", w.now().Sub(started)).Logger()
	}

	if err == nil {
		if cerr := w.store.Complete(finishCtx, job.ID); cerr != nil {
			logger.Error().Err(cerr).Msg("Failed to mark job succeeded")
			return
		}
		logger.Info().Msg("Job succeeded")
		return
	}

	if !ok || errs.IsPermanentJobError(err) || job.Attempts >= job.MaxAttempts {
		if berr := w.store.Bury(finishCtx, job.ID, err.Error()); berr != nil {
			logger.Error().Err(berr).Msg("Failed to mark job dead")
			return
		}
		logger.Error().Err(err).Msg("Job dead")
		return
	}

	delay := RetryDelay(job.Attempts, w.cfg.BaseDelay, w.cfg.MaxDelay)
	if rerr := w.store.Reschedule(finishCtx, job.ID, w.now().Add(delay), err.Error()); rerr != nil {
		logger.Error().Err(rerr).Msg("Failed to reschedule job")
		return
	}
	logger.Warn().Err(err).Dur("retryIn", delay).Msg("Job failed, rescheduled")
}

func runHandler(ctx context.Context, handler JobHandler, job *models.Job) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("jobId", job.ID.String()).Bytes("stack", debug.Stack()).Msg("Job handler panicked")
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return handler(ctx, job)
}

// RetryDelay is the delay before attempt+1: base doubled per attempt, capped at max.
func RetryDelay(attempt int, base, max time.Duration) time.Duration {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     base,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         max,
	}
	b.Reset()
	delay := base
	for i := 0; i < attempt; i++ {
		delay = b.NextBackOff()
	}
	return delay
}
