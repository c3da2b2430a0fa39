package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

type JobRepo struct {
	db *gorm.DB
}

func NewJobRepo(db *gorm.DB) *JobRepo {
	return &JobRepo{db}
}

// Enqueue inserts a pending job. When a pending job with the same dedupe key
// already exists the call is a no-op and reports false.
func (r *JobRepo) Enqueue(ctx context.Context, job *models.Job) (bool, error) {
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	if job.RunAfter.IsZero() {
		job.RunAfter = time.Now()
	}
	if job.MaxAttempts == 0 {
		job.MaxAttempts = 8
	}
	if len(job.Payload) == 0 {
		job.Payload = datatypes.JSON("{}")
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(job)
	if res.Error != nil {
		return false, mapError(res.Error, "job")
	}
	return res.RowsAffected > 0, nil
}

// Claim locks up to limit runnable jobs for lease and marks them running.
// A job is runnable when it is pending and due, or running with an expired lease.
func (r *JobRepo) Claim(ctx context.Context, limit int, lease time.Duration) ([]*models.Job, error) {
	var claimed []*models.Job
	now := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("(status = ? AND run_after <= ?) OR (status = ? AND locked_until < ?)",
				models.JobStatusPending, now, models.JobStatusRunning, now).
			Order("run_after ASC").
			Limit(limit).
			Find(&claimed).Error
		if err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(claimed))
		lockedUntil := now.Add(lease)
		for i, job := range claimed {
			ids[i] = job.ID
			job.Status = models.JobStatusRunning
			job.Attempts++
			job.LockedUntil = &lockedUntil
		}
		return tx.Model(&models.Job{}).Where("id IN ?", ids).Updates(map[string]interface{}{
			"status":       models.JobStatusRunning,
			"attempts":     gorm.Expr("attempts + 1"),
			"locked_until": lockedUntil,
			"updated_at":   now,
		}).Error
	})
	if err != nil {
		return nil, mapError(err, "job")
	}
	return claimed, nil
}

// Complete marks a job succeeded
func (r *JobRepo) Complete(ctx context.Context, id uuid.UUID) error {
	return r.finish(ctx, id, map[string]interface{}{
		"status":       models.JobStatusSucceeded,
		"locked_until": nil,
		"last_error":   "",
	})
}

// Reschedule returns a job to pending with a new run-after time. When an
// equivalent job was enqueued while this one ran, the pending one does the
// work and this job is closed as superseded.
func (r *JobRepo) Reschedule(ctx context.Context, id uuid.UUID, runAfter time.Time, lastErr string) error {
	err := r.finish(ctx, id, map[string]interface{}{
		"status":       models.JobStatusPending,
		"run_after":    runAfter,
		"locked_until": nil,
		"last_error":   lastErr,
	})
	if !errs.IsAlreadyExists(err) {
		return err
	}
	return r.finish(ctx, id, map[string]interface{}{
		"status":       models.JobStatusSucceeded,
		"locked_until": nil,
		"last_error":   supersededPrefix + lastErr,
	})
}

const supersededPrefix = "superseded by pending job: "

// Bury marks a job dead; it is not claimed again unless retried
func (r *JobRepo) Bury(ctx context.Context, id uuid.UUID, lastErr string) error {
	return r.finish(ctx, id, map[string]interface{}{
		"status":       models.JobStatusDead,
		"locked_until": nil,
		"last_error":   lastErr,
	})
}

func (r *JobRepo) finish(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return mapError(res.Error, "job")
	}
	if res.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound, "job")
	}
	return nil
}

// FindAll lists jobs, optionally filtered by status, newest first
func (r *JobRepo) FindAll(ctx context.Context, status string, limit int) ([]*models.Job, error) {
	var jobs []*models.Job
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Order("created_at DESC").Find(&jobs).Error
	return jobs, mapError(err, "jobs")
}

// Retry resets a dead job so the worker picks it up again
func (r *JobRepo) Retry(ctx context.Context, id uuid.UUID) error {
	var job models.Job
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return mapError(err, "job")
	}
	if job.Status != models.JobStatusDead {
		return errs.NewConflictError("only dead jobs can be retried")
	}
	err := r.db.WithContext(ctx).Model(&job).Updates(map[string]interface{}{
		"status":     models.JobStatusPending,
		"attempts":   0,
		"run_after":  time.Now(),
		"last_error": "",
	}).Error
	if err = mapError(err, "job"); errs.IsAlreadyExists(err) {
		return errs.NewConflictError("an equivalent job is already pending").WithCause(err)
	}
	return err
}
