package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

type stubJobs struct {
	jobs      []*models.Job
	gotStatus string
	gotLimit  int
	retried   []uuid.UUID
}

func (s *stubJobs) FindAll(_ context.Context, status string, limit int) ([]*models.Job, error) {
	s.gotStatus, s.gotLimit = status, limit
	var out []*models.Job
	for _, j := range s.jobs {
		if status == "" || j.Status == status {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *stubJobs) Retry(_ context.Context, id uuid.UUID) error {
	for _, j := range s.jobs {
		if j.ID != id {
			continue
		}
		if j.Status != models.JobStatusDead {
			return errs.NewConflictError("only dead jobs can be retried")
		}
		s.retried = append(s.retried, id)
		return nil
	}
	return errs.NewNotFound("job")
}

func newJobRouter(jobs *stubJobs) http.Handler {
	h := newJobHandler(jobs)
	r := chi.NewRouter()
	r.Get("/admin/jobs", h.getJobs())
	r.Post("/admin/job/{jobID}/retry", h.retryJob())
	return r
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestJobHandler_GetJobs(t *testing.T) {
	jobs := &stubJobs{jobs: []*models.Job{
		{Base: models.Base{ID: uuid.New()}, Kind: models.JobKindHighlightSync, Status: models.JobStatusDead},
		{Base: models.Base{ID: uuid.New()}, Kind: models.JobKindDeployHook, Status: models.JobStatusPending},
	}}
	router := newJobRouter(jobs)

	rec := serve(router, http.MethodGet, "/admin/jobs?status=dead&limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	var list CollectionResponse[models.Job]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "dead", jobs.gotStatus)
	assert.Equal(t, 5, jobs.gotLimit)

	rec = serve(router, http.MethodGet, "/admin/jobs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultJobListLimit, jobs.gotLimit)
}

func TestJobHandler_GetJobs_Validation(t *testing.T) {
	router := newJobRouter(&stubJobs{})

	tests := []struct {
		query string
		field string
	}{
		{"status=exploded", "status"},
		{"limit=0", "limit"},
		{"limit=1001", "limit"},
		{"limit=ten", "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := serve(router, http.MethodGet, "/admin/jobs?"+tt.query)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.field, decodeError(t, rec).Field)
		})
	}
}

func TestJobHandler_RetryJob(t *testing.T) {
	dead := &models.Job{Base: models.Base{ID: uuid.New()}, Status: models.JobStatusDead}
	pending := &models.Job{Base: models.Base{ID: uuid.New()}, Status: models.JobStatusPending}
	jobs := &stubJobs{jobs: []*models.Job{dead, pending}}
	router := newJobRouter(jobs)

	assert.Equal(t, http.StatusAccepted, serve(router, http.MethodPost, "/admin/job/"+dead.ID.String()+"/retry").Code)
	assert.Equal(t, []uuid.UUID{dead.ID}, jobs.retried)

	assert.Equal(t, http.StatusConflict, serve(router, http.MethodPost, "/admin/job/"+pending.ID.String()+"/retry").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodPost, "/admin/job/"+uuid.NewString()+"/retry").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPost, "/admin/job/not-a-uuid/retry").Code)
}
