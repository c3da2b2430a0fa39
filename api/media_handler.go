package api

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
	"github.com/rpupo63/tenant-site-backend/services"
)

const maxMediaSize = 10 << 20

// allowedMediaTypes maps each accepted sniffed type to the extension stored
// objects get. Scriptable formats such as SVG and HTML are never accepted.
var allowedMediaTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

type mediaRepository interface {
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]*models.Media, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Media, error)
	Add(ctx context.Context, media *models.Media) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type mediaHandler struct {
	responder Responder
	logger    zerolog.Logger
	media     mediaRepository
	storage   services.ObjectStorage
}

// newMediaHandler accepts a nil storage; uploads then fail with a config error.
func newMediaHandler(media mediaRepository, storage services.ObjectStorage) mediaHandler {
	logger := log.With().Str("handlerName", "mediaHandler").Logger()

	return mediaHandler{
		responder: NewResponder(logger),
		logger:    logger,
		media:     media,
		storage:   storage,
	}
}

// getAllMedia lists uploaded media
// @Summary Get all media
// @Tags Media
// @Produce json
// @Success 200 {object} CollectionResponse[models.Media]
// @Router /admin/media [get]
func (h mediaHandler) getAllMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		media, err := h.media.FindAll(r.Context(), tenant.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find media", "media", err))
			return
		}
		h.responder.WriteJSON(w, newCollection(media))
	}
}

// uploadMedia stores a file in object storage and records it
// @Summary Upload media
// @Tags Media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param alt formData string false "Alt text"
// @Success 201 {object} models.Media
// @Failure 413 {object} ErrorResponse "Request Entity Too Large"
// @Failure 415 {object} ErrorResponse "Unsupported Media Type"
// @Failure 502 {object} ErrorResponse "Bad Gateway - Storage upload failed"
// @Router /admin/media [post]
func (h mediaHandler) uploadMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if h.storage == nil {
			h.responder.WriteError(w, errs.NewConfigError("S3_BUCKET"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxMediaSize)
		if err := r.ParseMultipartForm(maxMediaSize); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(maxMediaSize))
				return
			}
			h.responder.WriteError(w, errs.NewMalformedPayloadError("multipart", err))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("file"))
			return
		}
		defer file.Close()

		contentType, err := sniffContentType(file)
		if err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("multipart", err))
			return
		}
		ext, ok := allowedMediaTypes[contentType]
		if !ok {
			h.logger.Warn().
				Str("declared", header.Header.Get("Content-Type")).
				Str("sniffed", contentType).
				Msg("Rejected media upload")
			h.responder.WriteError(w, errs.NewUnsupportedMediaTypeError(contentType, mediaTypeNames()))
			return
		}

		key := mediaKey(tenant.Slug, ext)
		url, err := h.storage.Put(r.Context(), key, file, contentType)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		media := &models.Media{
			TenantID:    tenant.ID,
			ObjectKey:   key,
			ContentType: contentType,
			Size:        header.Size,
			Alt:         strings.TrimSpace(r.FormValue("alt")),
			URL:         url,
		}
		if err := h.media.Add(r.Context(), media); err != nil {
			if delErr := h.storage.Delete(r.Context(), key); delErr != nil {
				h.logger.Error().Err(delErr).Str("key", key).Msg("Failed to remove orphaned object")
			}
			h.responder.WriteError(w, wrapDatabaseError("create", "media", err))
			return
		}

		h.logger.Info().Str("key", key).Int64("size", header.Size).Msg("Media uploaded")
		h.responder.WriteCreated(w, media)
	}
}

// deleteMedia removes the object and its record
// @Summary Delete media
// @Tags Media
// @Param mediaID path string true "Media ID" format(uuid)
// @Success 204
// @Failure 404 {object} ErrorResponse "Not Found - Media not found"
// @Router /admin/media/{mediaID} [delete]
func (h mediaHandler) deleteMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		mediaID, err := uuidParam(r, "mediaID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		media, err := h.media.FindByID(r.Context(), tenant.ID, mediaID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find media", "media", err))
			return
		}
		if err := h.media.Delete(r.Context(), tenant.ID, mediaID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "media", err))
			return
		}
		if h.storage != nil {
			if err := h.storage.Delete(r.Context(), media.ObjectKey); err != nil {
				h.logger.Warn().Err(err).Str("key", media.ObjectKey).Msg("Failed to delete object; record already removed")
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// sniffContentType detects the type from the leading bytes and rewinds the file.
// The client's declared Content-Type is ignored.
func sniffContentType(file io.ReadSeeker) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	contentType, _, _ := mime.ParseMediaType(http.DetectContentType(head[:n]))
	return contentType, nil
}

func mediaTypeNames() []string {
	names := make([]string, 0, len(allowedMediaTypes))
	for t := range allowedMediaTypes {
		names = append(names, t)
	}
	sort.Strings(names)
	return names
}

// mediaKey names the object with a UUID and the extension of its sniffed type.
func mediaKey(tenantSlug, ext string) string {
	return "media/" + tenantSlug + "/" + uuid.NewString() + ext
}
