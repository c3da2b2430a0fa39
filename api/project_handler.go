package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/tenant-site-backend/models"
)

type projectReader interface {
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]*models.Project, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Project, error)
}

type projectWriter interface {
	Create(ctx context.Context, tenantID uuid.UUID, project *models.Project) (*models.Project, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, project *models.Project) (*models.Project, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	projects  projectReader
	service   projectWriter
}

func newProjectHandler(projects projectReader, service projectWriter) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger),
		logger:    logger,
		projects:  projects,
		service:   service,
	}
}

// getAllProjects retrieves all projects of the tenant
// @Summary Get all projects
// @Description Retrieves all portfolio projects, including those that are not mirrored into highlights
// @Tags Projects
// @Produce json
// @Success 200 {object} CollectionResponse[models.Project] "List of projects"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching projects"
// @Router /admin/projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		projects, err := h.projects.FindAll(r.Context(), tenant.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find projects", "projects", err))
			return
		}
		h.responder.WriteJSON(w, newCollection(projects))
	}
}

// getProject retrieves a specific project by ID
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} models.Project "Project details"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid projectID"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /admin/project/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.FindByID(r.Context(), tenant.ID, projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find project", "project", err))
			return
		}
		h.responder.WriteJSON(w, project)
	}
}

// createProject creates a new project and queues its highlight sync
// @Summary Create project
// @Description Creates a project. Projects whose source is not facebook are mirrored into highlights by the worker.
// @Tags Projects
// @Accept json
// @Produce json
// @Param project body models.Project true "Project data"
// @Success 201 {object} models.Project "Created project"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Router /admin/project [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var project models.Project
		if err := decodeJSON(w, r, &project); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		created, err := h.service.Create(r.Context(), tenant.ID, &project)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "project", err))
			return
		}
		h.responder.WriteCreated(w, created)
	}
}

// updateProject updates an existing project
// @Summary Update project
// @Tags Projects
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param project body models.Project true "Updated project data"
// @Success 200 {object} models.Project "Updated project"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /admin/project/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var project models.Project
		if err := decodeJSON(w, r, &project); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		updated, err := h.service.Update(r.Context(), tenant.ID, projectID, &project)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "project", err))
			return
		}
		h.responder.WriteJSON(w, updated)
	}
}

// deleteProject deletes a project and queues removal of its highlight
// @Summary Delete project
// @Tags Projects
// @Param projectID path string true "Project ID" format(uuid)
// @Success 204
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /admin/project/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.service.Delete(r.Context(), tenant.ID, projectID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "project", err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
