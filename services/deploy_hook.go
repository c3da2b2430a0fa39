package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

// DeployHookPayload names the tenant whose site should rebuild.
type DeployHookPayload struct {
	TenantID uuid.UUID `json:"tenantId"`
}

// DeployHooks asks a tenant's static site host to rebuild after content changes.
type DeployHooks struct {
	queue      *Queue
	tenants    TenantStore
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewDeployHooks(queue *Queue, tenants TenantStore) *DeployHooks {
	return &DeployHooks{
		queue:      queue,
		tenants:    tenants,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		logger:     log.With().Str("service", "deployHooks").Logger(),
	}
}

// Trigger queues one rebuild per tenant; bursts of edits collapse into the
// pending job.
func (d *DeployHooks) Trigger(ctx context.Context, tenantID uuid.UUID) {
	key := models.JobKindDeployHook + ":" + tenantID.String()
	if err := d.queue.Enqueue(ctx, models.JobKindDeployHook, DeployHookPayload{TenantID: tenantID}, key); err != nil {
		d.logger.Error().Err(err).Str("tenantId", tenantID.String()).Msg("Failed to enqueue deploy hook")
	}
}

func (d *DeployHooks) Register(w *Worker) {
	w.Handle(models.JobKindDeployHook, d.Run)
}

// Run POSTs to the tenant's deploy hook URL. Tenants without one succeed
// immediately.
func (d *DeployHooks) Run(ctx context.Context, job *models.Job) error {
	var payload DeployHookPayload
	if err := DecodePayload(job, &payload); err != nil {
		return err
	}
	tenant, err := d.tenants.FindByID(ctx, payload.TenantID)
	if err != nil {
		if errs.IsNotFound(err) {
			return errs.NewPermanentJobError("tenant no longer exists", err)
		}
		return err
	}
	if tenant.DeployHookURL == nil || *tenant.DeployHookURL == "" {
		d.logger.Debug().Str("tenant", tenant.Slug).Msg("No deploy hook configured")
		return nil
	}

	body, _ := json.Marshal(map[string]string{"tenant": tenant.Slug, "trigger": "content_change"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *tenant.DeployHookURL, bytes.NewReader(body))
	if err != nil {
		return errs.NewPermanentJobError("invalid deploy hook URL", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return errs.NewServiceUnreachableError("deploy hook", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 300 {
		return errs.NewUpstreamStatusError("deploy hook", resp.StatusCode, string(respBody))
	}
	d.logger.Info().Str("tenant", tenant.Slug).Int("status", resp.StatusCode).Msg("Deploy hook triggered")
	return nil
}
