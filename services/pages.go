package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

// PageService validates block composition before pages are stored.
type PageService struct {
	pages PageStore
}

func NewPageService(pages PageStore) *PageService {
	return &PageService{pages: pages}
}

func (s *PageService) Create(ctx context.Context, tenantID uuid.UUID, page *models.Page) (*models.Page, error) {
	page.ID = uuid.Nil
	page.TenantID = tenantID
	if err := preparePage(page); err != nil {
		return nil, err
	}
	if err := s.pages.Add(ctx, page); err != nil {
		return nil, mapPageWriteError(page, err)
	}
	return page, nil
}

func (s *PageService) Update(ctx context.Context, tenantID, id uuid.UUID, page *models.Page) (*models.Page, error) {
	existing, err := s.pages.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	page.ID = existing.ID
	page.TenantID = tenantID
	page.CreatedAt = existing.CreatedAt
	if err := preparePage(page); err != nil {
		return nil, err
	}
	if err := s.pages.Update(ctx, page); err != nil {
		return nil, mapPageWriteError(page, err)
	}
	return page, nil
}

func (s *PageService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.pages.Delete(ctx, tenantID, id)
}

func preparePage(page *models.Page) error {
	page.Title = strings.TrimSpace(page.Title)
	if page.Title == "" {
		return errs.NewMissingRequiredFieldError("title")
	}
	page.Slug = Slugify(firstNonEmpty(page.Slug, page.Title))
	if page.Slug == "" {
		return errs.NewInvalidFieldError("slug", "must contain a letter or digit")
	}
	for i, block := range page.Blocks {
		if !models.ValidBlockType(block.Type) {
			return errs.NewInvalidFieldError(fmt.Sprintf("blocks[%d].type", i), "unknown block type "+block.Type)
		}
	}
	return nil
}

func mapPageWriteError(page *models.Page, err error) error {
	if errs.IsAlreadyExists(err) {
		return errs.NewConflictError("page slug " + page.Slug + " already in use")
	}
	return err
}
