package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rpupo63/tenant-site-backend/models"
)

// The stores below are the slices of the database repositories each service
// needs. database.*Repo satisfy them; tests use in-memory fakes.

type TenantStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	FindByDomain(ctx context.Context, domain string) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
}

type UserStore interface {
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error)
}

type ProductStore interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
	SKUInUse(ctx context.Context, tenantID uuid.UUID, sku string, excludeID uuid.UUID) (bool, error)
	SetHasVariants(ctx context.Context, tenantID, id uuid.UUID, hasVariants bool) error
	Add(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type VariantStore interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ProductVariant, error)
	SKUInUse(ctx context.Context, tenantID uuid.UUID, sku string, excludeID uuid.UUID) (bool, error)
	CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error)
	Add(ctx context.Context, variant *models.ProductVariant) error
	Update(ctx context.Context, variant *models.ProductVariant) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type CustomerStore interface {
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.Customer, error)
	Add(ctx context.Context, customer *models.Customer) error
	IncrementOrderCount(ctx context.Context, tenantID, id uuid.UUID) error
}

type OrderStore interface {
	LatestNumber(ctx context.Context, tenantID uuid.UUID) (int, error)
	Add(ctx context.Context, order *models.Order) error
}

type InquiryStore interface {
	Add(ctx context.Context, inquiry *models.Inquiry) error
}

type ProjectStore interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Project, error)
	Add(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type HighlightStore interface {
	Upsert(ctx context.Context, highlight *models.ProjectHighlight) error
	DeleteByProject(ctx context.Context, projectID uuid.UUID) error
}

type JobStore interface {
	Enqueue(ctx context.Context, job *models.Job) (bool, error)
	Claim(ctx context.Context, limit int, lease time.Duration) ([]*models.Job, error)
	Complete(ctx context.Context, id uuid.UUID) error
	Reschedule(ctx context.Context, id uuid.UUID, runAfter time.Time, lastErr string) error
	Bury(ctx context.Context, id uuid.UUID, lastErr string) error
}

type PageStore interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Page, error)
	Add(ctx context.Context, page *models.Page) error
	Update(ctx context.Context, page *models.Page) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
