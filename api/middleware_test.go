package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
	"github.com/rpupo63/tenant-site-backend/services"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type memTenants struct {
	tenants []*models.Tenant
	err     error
}

func (m *memTenants) FindByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	for _, t := range m.tenants {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, errs.NewNotFound("tenant")
}

func (m *memTenants) FindBySlug(_ context.Context, slug string) (*models.Tenant, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, t := range m.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, nil
}

func (m *memTenants) FindByDomain(_ context.Context, domain string) (*models.Tenant, error) {
	for _, t := range m.tenants {
		if t.Domain != nil && *t.Domain == domain {
			return t, nil
		}
	}
	return nil, nil
}

func testTenant(slug string) *models.Tenant {
	domain := slug + ".example.com"
	return &models.Tenant{Base: models.Base{ID: uuid.New()}, Name: slug, Slug: slug, Domain: &domain, IsActive: true}
}

// echoTenant writes the slug of the tenant on the request context.
var echoTenant = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	tenant, err := ctxGetTenant(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(tenant.Slug))
})

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestTenantMiddleware_ResolutionOrder(t *testing.T) {
	acme, globex, initech := testTenant("acme"), testTenant("globex"), testTenant("initech")
	mw := newTenantMiddleware(&memTenants{tenants: []*models.Tenant{acme, globex, initech}})
	handler := mw.resolve(echoTenant)

	tests := []struct {
		name   string
		header string
		cookie string
		host   string
		want   string
	}{
		{"header wins", "acme", "globex", "initech.example.com", "acme"},
		{"cookie before host", "", "globex", "initech.example.com", "globex"},
		{"host", "", "", "initech.example.com", "initech"},
		{"host with port", "", "", "initech.example.com:8080", "initech"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/site/products", nil)
			req.Host = tt.host
			if tt.header != "" {
				req.Header.Set(tenantHeader, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: tenantCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestTenantMiddleware_Failures(t *testing.T) {
	inactive := testTenant("closed")
	inactive.IsActive = false

	t.Run("unknown tenant", func(t *testing.T) {
		handler := newTenantMiddleware(&memTenants{}).resolve(echoTenant)
		req := httptest.NewRequest(http.MethodGet, "/site/products", nil)
		req.Header.Set(tenantHeader, "nobody")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "tenant", decodeError(t, rec).Field)
	})

	t.Run("inactive tenant", func(t *testing.T) {
		handler := newTenantMiddleware(&memTenants{tenants: []*models.Tenant{inactive}}).resolve(echoTenant)
		req := httptest.NewRequest(http.MethodGet, "/site/products", nil)
		req.Header.Set(tenantHeader, "closed")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("lookup error", func(t *testing.T) {
		handler := newTenantMiddleware(&memTenants{err: errs.ErrDatabaseQuery}).resolve(echoTenant)
		req := httptest.NewRequest(http.MethodGet, "/site/products", nil)
		req.Header.Set(tenantHeader, "acme")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

type memUsers struct {
	users []*models.User
	err   error
}

func (m *memUsers) FindByID(_ context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.TenantID == tenantID && u.ID == id {
			return u, nil
		}
	}
	return nil, errs.NewNotFound("user")
}

// issueToken registers a user of tenant with role and signs a token for it.
func (m *memUsers) issueToken(t *testing.T, tenant *models.Tenant, role string) (string, *models.User) {
	t.Helper()
	user := &models.User{Base: models.Base{ID: uuid.New()}, TenantID: tenant.ID, Role: role}
	m.users = append(m.users, user)
	auth := services.NewAuthService(nil, testSecret, time.Hour)
	token, err := auth.IssueToken(user)
	require.NoError(t, err)
	return token, user
}

func (m *memUsers) bearer(t *testing.T, tenant *models.Tenant, role string) string {
	t.Helper()
	token, _ := m.issueToken(t, tenant, role)
	return "Bearer " + token
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	acme := testTenant("acme")
	inactive := testTenant("closed")
	inactive.IsActive = false
	users := &memUsers{}
	mw := newAuthMiddleware(services.NewAuthService(nil, testSecret, time.Hour), &memTenants{tenants: []*models.Tenant{acme, inactive}}, users)
	handler := mw.authenticate(echoTenant)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", users.bearer(t, acme, models.RoleEditor), http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"unknown tenant", users.bearer(t, testTenant("ghost"), models.RoleAdmin), http.StatusUnauthorized},
		{"inactive tenant", users.bearer(t, inactive, models.RoleAdmin), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "acme", rec.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_Authenticate_ChecksCurrentUser(t *testing.T) {
	acme := testTenant("acme")
	users := &memUsers{}
	mw := newAuthMiddleware(services.NewAuthService(nil, testSecret, time.Hour), &memTenants{tenants: []*models.Tenant{acme}}, users)
	handler := mw.authenticate(echoTenant)

	send := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("removed user", func(t *testing.T) {
		token, user := users.issueToken(t, acme, models.RoleAdmin)
		require.Equal(t, http.StatusOK, send(token).Code)

		for i, u := range users.users {
			if u.ID == user.ID {
				users.users = append(users.users[:i], users.users[i+1:]...)
				break
			}
		}

		rec := send(token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "authorization", decodeError(t, rec).Field)
	})

	t.Run("demoted user", func(t *testing.T) {
		token, user := users.issueToken(t, acme, models.RoleAdmin)
		user.Role = models.RoleEditor

		assert.Equal(t, http.StatusUnauthorized, send(token).Code)
	})

	t.Run("user of another tenant", func(t *testing.T) {
		token, user := users.issueToken(t, acme, models.RoleAdmin)
		user.TenantID = uuid.New()

		assert.Equal(t, http.StatusUnauthorized, send(token).Code)
	})

	t.Run("lookup error", func(t *testing.T) {
		token, _ := users.issueToken(t, acme, models.RoleAdmin)
		users.err = errs.ErrDatabaseQuery
		defer func() { users.err = nil }()

		assert.Equal(t, http.StatusInternalServerError, send(token).Code)
	})
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	acme := testTenant("acme")
	users := &memUsers{}
	mw := newAuthMiddleware(services.NewAuthService(nil, testSecret, time.Hour), &memTenants{tenants: []*models.Tenant{acme}}, users)
	handler := mw.authenticate(mw.requireRole(models.RoleAdmin)(echoTenant))

	for role, status := range map[string]int{models.RoleAdmin: http.StatusOK, models.RoleEditor: http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/admin/jobs", nil)
		req.Header.Set("Authorization", users.bearer(t, acme, role))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, status, rec.Code, role)
	}
}

type recordingHooks struct {
	mu      sync.Mutex
	tenants []uuid.UUID
}

func (r *recordingHooks) Trigger(_ context.Context, tenantID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants = append(r.tenants, tenantID)
}

func TestDeployHookMiddleware(t *testing.T) {
	acme := testTenant("acme")
	tests := []struct {
		name    string
		method  string
		status  int
		trigger bool
	}{
		{"created", http.MethodPost, http.StatusCreated, true},
		{"updated", http.MethodPut, http.StatusOK, true},
		{"deleted", http.MethodDelete, http.StatusNoContent, true},
		{"read", http.MethodGet, http.StatusOK, false},
		{"rejected", http.MethodPost, http.StatusBadRequest, false},
		{"failed", http.MethodPut, http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hooks := &recordingHooks{}
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			handler := DeployHookMiddleware(hooks)(inner)
			req := httptest.NewRequest(tt.method, "/admin/products", nil)
			req = req.WithContext(ctxWithTenant(req.Context(), acme))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.trigger {
				assert.Equal(t, []uuid.UUID{acme.ID}, hooks.tenants)
			} else {
				assert.Empty(t, hooks.tenants)
			}
		})
	}
}

func TestDeployHookMiddleware_NilNotifier(t *testing.T) {
	handler := DeployHookMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	req := httptest.NewRequest(http.MethodPost, "/admin/products", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestLogInternalServerErrors_RecoversPanic(t *testing.T) {
	handler := LogInternalServerErrors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSCheckMiddleware(t *testing.T) {
	handler := CORSCheckMiddleware([]string{"https://acme.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/site/products", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodOptions, "/site/products", nil)
	req.Header.Set("Origin", "https://acme.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
