package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
	"github.com/rpupo63/tenant-site-backend/services"
)

type themeManager interface {
	Update(ctx context.Context, tenantID uuid.UUID, cfg models.ThemeConfig) (*models.Tenant, error)
	Publish(ctx context.Context, tenant *models.Tenant) (*services.PublishedTheme, error)
	FetchRemote(ctx context.Context, tenantID uuid.UUID, url string) (*models.Tenant, error)
}

type themeHandler struct {
	responder Responder
	logger    zerolog.Logger
	themes    themeManager
}

func newThemeHandler(themes themeManager) themeHandler {
	logger := log.With().Str("handlerName", "themeHandler").Logger()

	return themeHandler{
		responder: NewResponder(logger),
		logger:    logger,
		themes:    themes,
	}
}

// ThemeResponse carries the stored configuration and the values it resolves to.
type ThemeResponse struct {
	Config   models.ThemeConfig `json:"config"`
	Resolved map[string]string  `json:"resolved"`
}

// ThemeImportRequest names a remote theme JSON document.
type ThemeImportRequest struct {
	URL string `json:"url"`
}

func newThemeResponse(tenant *models.Tenant) ThemeResponse {
	cfg := tenant.Theme.Data()
	return ThemeResponse{Config: cfg, Resolved: services.ResolveTheme(&cfg)}
}

// getTheme returns the tenant theme
// @Summary Get theme
// @Tags Theme
// @Produce json
// @Success 200 {object} ThemeResponse
// @Router /admin/theme [get]
func (h themeHandler) getTheme() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, newThemeResponse(tenant))
	}
}

// updateTheme merges the given fields over the stored theme
// @Summary Update theme
// @Tags Theme
// @Accept json
// @Produce json
// @Param theme body models.ThemeConfig true "Theme fields to change"
// @Success 200 {object} ThemeResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid colour"
// @Router /admin/theme [put]
func (h themeHandler) updateTheme() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var cfg models.ThemeConfig
		if err := decodeJSON(w, r, &cfg); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		updated, err := h.themes.Update(r.Context(), tenant.ID, cfg)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "theme", err))
			return
		}
		h.responder.WriteJSON(w, newThemeResponse(updated))
	}
}

// publishTheme uploads the generated stylesheet and theme JSON
// @Summary Publish theme
// @Tags Theme
// @Produce json
// @Success 200 {object} services.PublishedTheme
// @Failure 500 {object} ErrorResponse "Internal Server Error - Storage not configured"
// @Failure 502 {object} ErrorResponse "Bad Gateway - Upload failed"
// @Router /admin/theme/publish [post]
func (h themeHandler) publishTheme() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		published, err := h.themes.Publish(r.Context(), tenant)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, published)
	}
}

// importTheme fetches a theme JSON document and merges it over the stored theme
// @Summary Import theme
// @Tags Theme
// @Accept json
// @Produce json
// @Param request body ThemeImportRequest true "Path or URL of a theme JSON document on the theme asset host"
// @Success 200 {object} ThemeResponse
// @Failure 502 {object} ErrorResponse "Bad Gateway - Theme host failed"
// @Router /admin/theme/import [post]
func (h themeHandler) importTheme() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req ThemeImportRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		req.URL = strings.TrimSpace(req.URL)
		if req.URL == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("url"))
			return
		}

		updated, err := h.themes.FetchRemote(r.Context(), tenant.ID, req.URL)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("import", "theme", err))
			return
		}
		h.responder.WriteJSON(w, newThemeResponse(updated))
	}
}
