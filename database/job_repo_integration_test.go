//go:build integration

package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) (Database, func()) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	gdb, err := Open(Config{DSN: fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())})
	require.NoError(t, err)

	db := New(gdb)
	require.NoError(t, db.Migrate(ctx))

	cleanup := func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = container.Terminate(ctx)
	}
	return db, cleanup
}

func dedupeKey(s string) *string { return &s }

func TestIntegration_JobRepo(t *testing.T) {
	ctx := context.Background()
	db, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()
	repo := db.JobRepo()

	t.Run("enqueue dedupes pending jobs", func(t *testing.T) {
		created, err := repo.Enqueue(ctx, &models.Job{Kind: "dedupe", DedupeKey: dedupeKey("dedupe:1")})
		require.NoError(t, err)
		assert.True(t, created)

		created, err = repo.Enqueue(ctx, &models.Job{Kind: "dedupe", DedupeKey: dedupeKey("dedupe:1")})
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("claim leases due jobs once", func(t *testing.T) {
		job := &models.Job{Kind: "claim", RunAfter: time.Now().Add(-time.Second)}
		_, err := repo.Enqueue(ctx, job)
		require.NoError(t, err)

		claimed, err := repo.Claim(ctx, 100, time.Minute)
		require.NoError(t, err)
		var found bool
		for _, c := range claimed {
			if c.ID == job.ID {
				found = true
				assert.Equal(t, models.JobStatusRunning, c.Status)
				assert.Equal(t, 1, c.Attempts)
			}
		}
		require.True(t, found)

		again, err := repo.Claim(ctx, 100, time.Minute)
		require.NoError(t, err)
		for _, c := range again {
			assert.NotEqual(t, job.ID, c.ID)
		}
		require.NoError(t, repo.Complete(ctx, job.ID))
	})

	t.Run("reschedule yields to a newer pending duplicate", func(t *testing.T) {
		first := &models.Job{Kind: "sync", DedupeKey: dedupeKey("sync:1"), RunAfter: time.Now().Add(-time.Second)}
		_, err := repo.Enqueue(ctx, first)
		require.NoError(t, err)
		_, err = repo.Claim(ctx, 100, time.Minute)
		require.NoError(t, err)

		second := &models.Job{Kind: "sync", DedupeKey: dedupeKey("sync:1"), RunAfter: time.Now().Add(time.Hour)}
		created, err := repo.Enqueue(ctx, second)
		require.NoError(t, err)
		require.True(t, created)

		require.NoError(t, repo.Reschedule(ctx, first.ID, time.Now().Add(time.Minute), "upstream timeout"))

		jobs, err := repo.FindAll(ctx, "", 0)
		require.NoError(t, err)
		statuses := map[string]string{}
		for _, j := range jobs {
			statuses[j.ID.String()] = j.Status
			if j.ID == first.ID {
				assert.Equal(t, supersededPrefix+"upstream timeout", j.LastError)
				assert.Nil(t, j.LockedUntil)
			}
		}
		assert.Equal(t, models.JobStatusSucceeded, statuses[first.ID.String()])
		assert.Equal(t, models.JobStatusPending, statuses[second.ID.String()])
	})

	t.Run("reschedule without a duplicate returns to pending", func(t *testing.T) {
		job := &models.Job{Kind: "flaky", RunAfter: time.Now().Add(-time.Second)}
		_, err := repo.Enqueue(ctx, job)
		require.NoError(t, err)
		_, err = repo.Claim(ctx, 100, time.Minute)
		require.NoError(t, err)

		require.NoError(t, repo.Reschedule(ctx, job.ID, time.Now().Add(time.Minute), "boom"))

		pending, err := repo.FindAll(ctx, models.JobStatusPending, 0)
		require.NoError(t, err)
		var found bool
		for _, j := range pending {
			found = found || j.ID == job.ID
		}
		assert.True(t, found)
	})

	t.Run("retry of a dead job conflicts with a pending duplicate", func(t *testing.T) {
		dead := &models.Job{Kind: "retry", DedupeKey: dedupeKey("retry:1"), RunAfter: time.Now().Add(-time.Second)}
		_, err := repo.Enqueue(ctx, dead)
		require.NoError(t, err)
		_, err = repo.Claim(ctx, 100, time.Minute)
		require.NoError(t, err)
		require.NoError(t, repo.Bury(ctx, dead.ID, "gave up"))
		_, err = repo.Enqueue(ctx, &models.Job{Kind: "retry", DedupeKey: dedupeKey("retry:1"), RunAfter: time.Now().Add(time.Hour)})
		require.NoError(t, err)

		err = repo.Retry(ctx, dead.ID)
		assert.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("finish on a missing job is not found", func(t *testing.T) {
		err := repo.Complete(ctx, uuid.New())
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}
