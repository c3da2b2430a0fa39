package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

func TestRetryDelay(t *testing.T) {
	base := 10 * time.Second
	maxDelay := time.Minute

	assert.Equal(t, base, RetryDelay(0, base, maxDelay))
	assert.Equal(t, base, RetryDelay(1, base, maxDelay))
	assert.Equal(t, 20*time.Second, RetryDelay(2, base, maxDelay))
	assert.Equal(t, 40*time.Second, RetryDelay(3, base, maxDelay))
	assert.Equal(t, maxDelay, RetryDelay(4, base, maxDelay))
	assert.Equal(t, maxDelay, RetryDelay(20, base, maxDelay))
}

func TestQueue_Enqueue_Dedupes(t *testing.T) {
	store := newFakeJobs()
	q := NewQueue(store)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "thing", map[string]int{"n": 1}, "thing:1"))
	require.NoError(t, q.Enqueue(ctx, "thing", map[string]int{"n": 2}, "thing:1"))
	require.NoError(t, q.Enqueue(ctx, "thing", map[string]int{"n": 3}, ""))
	require.NoError(t, q.Enqueue(ctx, "thing", map[string]int{"n": 4}, ""))

	jobs := store.byKind("thing")
	require.Len(t, jobs, 3)
	assert.JSONEq(t, `{"n":1}`, string(jobs[0].Payload))
	assert.Equal(t, models.JobStatusPending, jobs[0].Status)
}

func TestQueue_Enqueue_AllowsNewJobOnceRunning(t *testing.T) {
	store := newFakeJobs()
	q := NewQueue(store)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "thing", nil, "thing:1"))
	_, err := store.Claim(ctx, 10, time.Minute)
	require.NoError(t, err)
	require.NoError(t, q.Enqueue(ctx, "thing", nil, "thing:1"))

	assert.Len(t, store.byKind("thing"), 2)
}

func TestDecodePayload_Malformed(t *testing.T) {
	var payload HighlightPayload
	err := DecodePayload(&models.Job{Payload: []byte("{")}, &payload)
	assert.True(t, errs.IsPermanentJobError(err))
}

type workerFixture struct {
	store  *fakeJobs
	queue  *Queue
	worker *Worker
	clock  time.Time
}

func newWorkerFixture() *workerFixture {
	f := &workerFixture{store: newFakeJobs(), clock: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	f.store.now = func() time.Time { return f.clock }
	f.queue = NewQueue(f.store)
	f.worker = NewWorker(f.store, WorkerConfig{Concurrency: 1, BaseDelay: time.Second, MaxDelay: time.Minute})
	f.worker.now = func() time.Time { return f.clock }
	return f
}

func (f *workerFixture) only(t *testing.T, kind string) *models.Job {
	t.Helper()
	jobs := f.store.byKind(kind)
	require.Len(t, jobs, 1)
	return jobs[0]
}

func TestWorker_RunOnce_Succeeds(t *testing.T) {
	f := newWorkerFixture()
	ctx := context.Background()
	var got HighlightPayload
	f.worker.Handle("greet", func(_ context.Context, job *models.Job) error {
		return DecodePayload(job, &got)
	})
	want := HighlightPayload{TenantID: newTestTenant().ID}
	require.NoError(t, f.queue.Enqueue(ctx, "greet", want, ""))

	n, err := f.worker.RunOnce(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, want, got)
	job := f.only(t, "greet")
	assert.Equal(t, models.JobStatusSucceeded, job.Status)
	assert.Equal(t, 1, job.Attempts)
	assert.Nil(t, job.LockedUntil)
}

func TestWorker_RunOnce_ReschedulesFailure(t *testing.T) {
	f := newWorkerFixture()
	ctx := context.Background()
	f.worker.Handle("flaky", func(context.Context, *models.Job) error { return errors.New("upstream timeout") })
	require.NoError(t, f.queue.Enqueue(ctx, "flaky", nil, ""))

	_, err := f.worker.RunOnce(ctx)
	require.NoError(t, err)

	job := f.only(t, "flaky")
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Equal(t, "upstream timeout", job.LastError)
	assert.Equal(t, f.clock.Add(time.Second), job.RunAfter)

	n, err := f.worker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "job is not due yet")

	f.clock = f.clock.Add(time.Second)
	n, err = f.worker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	job = f.only(t, "flaky")
	assert.Equal(t, 2, job.Attempts)
	assert.Equal(t, f.clock.Add(2*time.Second), job.RunAfter)
}

func TestWorker_RunOnce_FailedJobYieldsToNewerDuplicate(t *testing.T) {
	f := newWorkerFixture()
	ctx := context.Background()
	f.worker.Handle("sync", func(ctx context.Context, _ *models.Job) error {
		assert.NoError(t, f.queue.Enqueue(ctx, "sync", map[string]int{"rev": 2}, "sync:1"))
		return errors.New("upstream timeout")
	})
	require.NoError(t, f.queue.Enqueue(ctx, "sync", map[string]int{"rev": 1}, "sync:1"))

	n, err := f.worker.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	jobs := f.store.byKind("sync")
	require.Len(t, jobs, 2)
	assert.Equal(t, models.JobStatusSucceeded, jobs[0].Status)
	assert.Nil(t, jobs[0].LockedUntil)
	assert.Equal(t, models.JobStatusPending, jobs[1].Status)
	assert.JSONEq(t, `{"rev":2}`, string(jobs[1].Payload))
}

func TestWorker_RunOnce_BuriesAfterMaxAttempts(t *testing.T) {
	f := newWorkerFixture()
	ctx := context.Background()
	var calls atomic.Int32
	f.worker.Handle("flaky", func(context.Context, *models.Job) error {
		calls.Add(1)
		return errBoom
	})
	_, err := f.store.Enqueue(ctx, &models.Job{Kind: "flaky", Payload: []byte("{}"), MaxAttempts: 2})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := f.worker.RunOnce(ctx)
		require.NoError(t, err)
		f.clock = f.clock.Add(time.Hour)
	}

	job := f.only(t, "flaky")
	assert.Equal(t, models.JobStatusDead, job.Status)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "boom", job.LastError)
}

func TestWorker_RunOnce_PermanentErrorBuriesImmediately(t *testing.T) {
	f := newWorkerFixture()
	ctx := context.Background()
	f.worker.Handle("doomed", func(context.Context, *models.Job) error {
		return errs.NewPermanentJobError("target gone", nil)
	})
	require.NoError(t, f.queue.Enqueue(ctx, "doomed", nil, ""))

	_, err := f.worker.RunOnce(ctx)
	require.NoError(t, err)

	job := f.only(t, "doomed")
	assert.Equal(t, models.JobStatusDead, job.Status)
	assert.Equal(t, 1, job.Attempts)
}

func TestWorker_RunOnce_UnknownKind(t *testing.T) {
	f := newWorkerFixture()
	ctx := context.Background()
	require.NoError(t, f.queue.Enqueue(ctx, "mystery", nil, ""))

	_, err := f.worker.RunOnce(ctx)
	require.NoError(t, err)

	job := f.only(t, "mystery")
	assert.Equal(t, models.JobStatusDead, job.Status)
	assert.Contains(t, job.LastError, "mystery")
}

func TestWorker_RunOnce_RecoversPanic(t *testing.T) {
	f := newWorkerFixture()
	ctx := context.Background()
	f.worker.Handle("panicky", func(context.Context, *models.Job) error { panic("nil map") })
	require.NoError(t, f.queue.Enqueue(ctx, "panicky", nil, ""))

	_, err := f.worker.RunOnce(ctx)
	require.NoError(t, err)

	job := f.only(t, "panicky")
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Contains(t, job.LastError, "nil map")
}

func TestWorker_RunOnce_ReclaimsExpiredLease(t *testing.T) {
	f := newWorkerFixture()
	ctx := context.Background()
	require.NoError(t, f.queue.Enqueue(ctx, "slow", nil, ""))
	claimed, err := f.store.Claim(ctx, 1, time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	done := false
	f.worker.Handle("slow", func(context.Context, *models.Job) error {
		done = true
		return nil
	})

	n, err := f.worker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock = f.clock.Add(2 * time.Minute)
	n, err = f.worker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, done)
	assert.Equal(t, 2, f.only(t, "slow").Attempts)
}

func TestWorker_Run_StopsOnCancel(t *testing.T) {
	f := newWorkerFixture()
	f.worker.cfg.PollInterval = 10 * time.Millisecond
	processed := make(chan struct{}, 1)
	f.worker.Handle("tick", func(context.Context, *models.Job) error {
		processed <- struct{}{}
		return nil
	})
	require.NoError(t, f.queue.Enqueue(context.Background(), "tick", nil, ""))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.worker.Run(ctx) }()

	select {
	case <-processed:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
