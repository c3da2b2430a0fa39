package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

type stubCatalog struct {
	products []*models.Product
}

func (s *stubCatalog) FindAll(_ context.Context, tenantID uuid.UUID, status string) ([]*models.Product, error) {
	var out []*models.Product
	for _, p := range s.products {
		if p.TenantID == tenantID && p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubCatalog) FindBySlug(_ context.Context, tenantID uuid.UUID, slug string) (*models.Product, error) {
	for _, p := range s.products {
		if p.TenantID == tenantID && p.Slug == slug {
			return p, nil
		}
	}
	return nil, errs.NewNotFound("product")
}

type stubOrders struct {
	got *models.Order
	err error
}

func (s *stubOrders) Create(_ context.Context, tenant *models.Tenant, order *models.Order) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.got = order
	order.ID = uuid.New()
	order.TenantID = tenant.ID
	order.OrderNumber = 7
	order.Status = models.OrderStatusPending
	order.Total = decimal.NewNullDecimal(decimal.RequireFromString("25.00"))
	return order, nil
}

type stubForms struct {
	got *models.Inquiry
}

func (s *stubForms) SubmitInquiry(_ context.Context, tenant *models.Tenant, inquiry *models.Inquiry) (*models.Inquiry, error) {
	if strings.TrimSpace(inquiry.Email) == "" {
		return nil, errs.NewMissingRequiredFieldError("email")
	}
	s.got = inquiry
	inquiry.ID = uuid.New()
	inquiry.TenantID = tenant.ID
	inquiry.Status = "new"
	return inquiry, nil
}

type siteFixture struct {
	tenant  *models.Tenant
	catalog *stubCatalog
	orders  *stubOrders
	forms   *stubForms
	router  http.Handler
}

func newSiteFixture() *siteFixture {
	f := &siteFixture{
		tenant:  testTenant("acme"),
		catalog: &stubCatalog{},
		orders:  &stubOrders{},
		forms:   &stubForms{},
	}
	h := newSiteHandler(nil, f.catalog, nil, f.orders, f.forms)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ctxWithTenant(r.Context(), f.tenant)))
		})
	})
	r.Get("/site/theme.css", h.getThemeCSS())
	r.Get("/site/products", h.getProducts())
	r.Get("/site/products/{slug}", h.getProduct())
	r.Post("/site/forms/inquiry", h.submitInquiry())
	r.Post("/site/forms/order", h.submitOrder())
	f.router = r
	return f
}

func (f *siteFixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestSiteHandler_ThemeCSS(t *testing.T) {
	f := newSiteFixture()
	primary := "#112233"
	f.tenant.Theme = datatypes.NewJSONType(models.ThemeConfig{Colors: models.ThemeColors{Primary: &primary}})

	rec := f.do(http.MethodGet, "/site/theme.css", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/css; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), ":root {"))
	assert.Contains(t, rec.Body.String(), "--color-primary: #112233;")
}

func TestSiteHandler_Products(t *testing.T) {
	f := newSiteFixture()
	f.catalog.products = []*models.Product{
		{Base: models.Base{ID: uuid.New()}, TenantID: f.tenant.ID, Title: "Mug", Slug: "mug", Status: models.ProductStatusActive},
		{Base: models.Base{ID: uuid.New()}, TenantID: f.tenant.ID, Title: "Draft", Slug: "draft", Status: models.ProductStatusDraft},
		{Base: models.Base{ID: uuid.New()}, TenantID: uuid.New(), Title: "Elsewhere", Slug: "elsewhere", Status: models.ProductStatusActive},
	}

	rec := f.do(http.MethodGet, "/site/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list CollectionResponse[models.Product]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "mug", list.Items[0].Slug)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/site/products/mug", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/site/products/draft", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/site/products/elsewhere", "").Code)
}

func TestSiteHandler_SubmitInquiry(t *testing.T) {
	f := newSiteFixture()

	rec := f.do(http.MethodPost, "/site/forms/inquiry", `{"name":"Ada","email":"ada@example.com","message":"Hi","sourcePage":" /contact "}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, f.forms.got)
	assert.Equal(t, "/contact", f.forms.got.SourcePage)
	assert.Equal(t, f.tenant.ID, f.forms.got.TenantID)

	rec = f.do(http.MethodPost, "/site/forms/inquiry", `{"name":"Ada","message":"Hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email", decodeError(t, rec).Field)
}

func TestSiteHandler_SubmitOrder(t *testing.T) {
	f := newSiteFixture()
	productID := uuid.New()

	rec := f.do(http.MethodPost, "/site/forms/order", `{"productId":"`+productID.String()+`","quantity":2,"notes":" gift ","customerData":{"email":"ada@example.com","name":"Ada"}}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp OrderFormResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.OrderNumber)
	assert.Equal(t, "ORD-000007", resp.Reference)
	assert.Equal(t, models.OrderStatusPending, resp.Status)
	assert.True(t, resp.Total.Valid)
	assert.Equal(t, "25", resp.Total.Decimal.String())

	require.NotNil(t, f.orders.got)
	assert.Equal(t, productID, f.orders.got.ProductID)
	assert.Equal(t, "gift", f.orders.got.Notes)
	assert.Equal(t, "ada@example.com", f.orders.got.CustomerData.Email)
}

func TestSiteHandler_SubmitOrder_Errors(t *testing.T) {
	f := newSiteFixture()
	f.orders.err = errs.NewCustomerCreateError("ada@example.com", errs.ErrDatabaseQuery)

	rec := f.do(http.MethodPost, "/site/forms/order", `{"productId":"`+uuid.NewString()+`","customerData":{"email":"ada@example.com"}}`)
	assert.Equal(t, "customerData", decodeError(t, rec).Field)

	req := httptest.NewRequest(http.MethodPost, "/site/forms/order", strings.NewReader("productId=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = f.do(http.MethodPost, "/site/forms/order", `{"productId":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
