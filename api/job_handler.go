package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

const defaultJobListLimit = 100

type jobAdmin interface {
	FindAll(ctx context.Context, status string, limit int) ([]*models.Job, error)
	Retry(ctx context.Context, id uuid.UUID) error
}

type jobHandler struct {
	responder Responder
	logger    zerolog.Logger
	jobs      jobAdmin
}

func newJobHandler(jobs jobAdmin) jobHandler {
	logger := log.With().Str("handlerName", "jobHandler").Logger()

	return jobHandler{
		responder: NewResponder(logger),
		logger:    logger,
		jobs:      jobs,
	}
}

// getJobs lists background jobs
// @Summary List jobs
// @Tags Jobs
// @Produce json
// @Param status query string false "Filter by status" Enums(pending, running, succeeded, dead)
// @Param limit query int false "Maximum number of jobs" default(100)
// @Success 200 {object} CollectionResponse[models.Job]
// @Failure 403 {object} ErrorResponse "Forbidden - Admin role required"
// @Router /admin/jobs [get]
func (h jobHandler) getJobs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		switch status {
		case "", models.JobStatusPending, models.JobStatusRunning, models.JobStatusSucceeded, models.JobStatusDead:
		default:
			h.responder.WriteError(w, errs.NewInvalidFieldError("status", "unknown job status"))
			return
		}

		limit := defaultJobListLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > 1000 {
				h.responder.WriteError(w, errs.NewInvalidFieldError("limit", "must be between 1 and 1000"))
				return
			}
			limit = n
		}

		jobs, err := h.jobs.FindAll(r.Context(), status, limit)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find jobs", "jobs", err))
			return
		}
		h.responder.WriteJSON(w, newCollection(jobs))
	}
}

// retryJob puts a dead job back in the queue
// @Summary Retry dead job
// @Tags Jobs
// @Param jobID path string true "Job ID" format(uuid)
// @Success 202
// @Failure 404 {object} ErrorResponse "Not Found - Job not found"
// @Failure 409 {object} ErrorResponse "Conflict - Job is not dead"
// @Router /admin/job/{jobID}/retry [post]
func (h jobHandler) retryJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, err := uuidParam(r, "jobID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.jobs.Retry(r.Context(), jobID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("retry", "job", err))
			return
		}
		h.logger.Info().Str("jobId", jobID.String()).Msg("Dead job requeued")
		w.WriteHeader(http.StatusAccepted)
	}
}
