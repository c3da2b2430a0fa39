package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

const highlightSummaryLimit = 280

// HighlightPayload identifies the project a highlight job works on.
type HighlightPayload struct {
	TenantID  uuid.UUID `json:"tenantId"`
	ProjectID uuid.UUID `json:"projectId"`
}

// ProjectService stores projects and queues their highlight mirroring.
type ProjectService struct {
	projects ProjectStore
	queue    *Queue
	logger   zerolog.Logger
}

func NewProjectService(projects ProjectStore, queue *Queue) *ProjectService {
	return &ProjectService{
		projects: projects,
		queue:    queue,
		logger:   log.With().Str("service", "projects").Logger(),
	}
}

func (s *ProjectService) Create(ctx context.Context, tenantID uuid.UUID, project *models.Project) (*models.Project, error) {
	project.ID = uuid.Nil
	project.TenantID = tenantID
	if err := prepareProject(project); err != nil {
		return nil, err
	}
	if err := s.projects.Add(ctx, project); err != nil {
		return nil, err
	}
	s.enqueueSync(ctx, project)
	return project, nil
}

// Update saves the project. A project switched to a source that is not
// mirrored has its highlight removed.
func (s *ProjectService) Update(ctx context.Context, tenantID, id uuid.UUID, project *models.Project) (*models.Project, error) {
	existing, err := s.projects.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	project.ID = existing.ID
	project.TenantID = tenantID
	project.CreatedAt = existing.CreatedAt
	if err := prepareProject(project); err != nil {
		return nil, err
	}
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}

	if existing.Mirrored() && !project.Mirrored() {
		s.enqueueDelete(ctx, project)
	} else {
		s.enqueueSync(ctx, project)
	}
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	existing, err := s.projects.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.enqueueDelete(ctx, existing)
	return nil
}

func prepareProject(project *models.Project) error {
	project.Title = strings.TrimSpace(project.Title)
	if project.Title == "" {
		return errs.NewMissingRequiredFieldError("title")
	}
	project.Source = strings.ToLower(strings.TrimSpace(project.Source))
	if project.Source == "" {
		project.Source = models.ProjectSourceManual
	}
	return nil
}

// enqueueSync is best effort: the project write already succeeded.
func (s *ProjectService) enqueueSync(ctx context.Context, project *models.Project) {
	if !project.Mirrored() {
		s.logger.Debug().Str("projectId", project.ID.String()).Str("source", project.Source).Msg("Project not mirrored, skipping highlight sync")
		return
	}
	payload := HighlightPayload{TenantID: project.TenantID, ProjectID: project.ID}
	if err := s.queue.Enqueue(ctx, models.JobKindHighlightSync, payload, models.JobKindHighlightSync+":"+project.ID.String()); err != nil {
		s.logger.Error().Err(err).Str("projectId", project.ID.String()).Msg("Failed to enqueue highlight sync")
	}
}

func (s *ProjectService) enqueueDelete(ctx context.Context, project *models.Project) {
	payload := HighlightPayload{TenantID: project.TenantID, ProjectID: project.ID}
	if err := s.queue.Enqueue(ctx, models.JobKindHighlightDelete, payload, models.JobKindHighlightDelete+":"+project.ID.String()); err != nil {
		s.logger.Error().Err(err).Str("projectId", project.ID.String()).Msg("Failed to enqueue highlight delete")
	}
}

// HighlightSyncer holds the job handlers that mirror projects into highlights.
type HighlightSyncer struct {
	projects   ProjectStore
	highlights HighlightStore
	logger     zerolog.Logger
	now        func() time.Time
}

func NewHighlightSyncer(projects ProjectStore, highlights HighlightStore) *HighlightSyncer {
	return &HighlightSyncer{
		projects:   projects,
		highlights: highlights,
		logger:     log.With().Str("service", "highlights").Logger(),
		now:        time.Now,
	}
}

// Register wires the sync and delete handlers into w.
func (s *HighlightSyncer) Register(w *Worker) {
	w.Handle(models.JobKindHighlightSync, s.Sync)
	w.Handle(models.JobKindHighlightDelete, s.Delete)
}

// Sync upserts the highlight of the project named in the payload.
func (s *HighlightSyncer) Sync(ctx context.Context, job *models.Job) error {
	var payload HighlightPayload
	if err := DecodePayload(job, &payload); err != nil {
		return err
	}

	project, err := s.projects.FindByID(ctx, payload.TenantID, payload.ProjectID)
	if err != nil {
		if errs.IsNotFound(err) {
			return errs.NewPermanentJobError("project "+payload.ProjectID.String()+" no longer exists", err)
		}
		return err
	}
	if !project.Mirrored() {
		return s.highlights.DeleteByProject(ctx, project.ID)
	}

	highlight := HighlightFromProject(project, s.now())
	if err := s.highlights.Upsert(ctx, highlight); err != nil {
		return err
	}
	s.logger.Info().Str("projectId", project.ID.String()).Msg("Project highlight synced")
	return nil
}

// Delete removes the highlight of a deleted project.
func (s *HighlightSyncer) Delete(ctx context.Context, job *models.Job) error {
	var payload HighlightPayload
	if err := DecodePayload(job, &payload); err != nil {
		return err
	}
	if err := s.highlights.DeleteByProject(ctx, payload.ProjectID); err != nil {
		return err
	}
	s.logger.Info().Str("projectId", payload.ProjectID.String()).Msg("Project highlight removed")
	return nil
}

// HighlightFromProject builds the public mirror of a project.
func HighlightFromProject(project *models.Project, syncedAt time.Time) *models.ProjectHighlight {
	return &models.ProjectHighlight{
		TenantID:  project.TenantID,
		ProjectID: project.ID,
		Title:     project.Title,
		Summary:   truncateWords(project.Description, highlightSummaryLimit),
		ImageURL:  project.ImageURL,
		Featured:  project.Featured,
		SyncedAt:  syncedAt,
	}
}
