package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

// catalog backs fakeProducts and fakeVariants so SKU checks can see both.
type catalog struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
	variants map[uuid.UUID]*models.ProductVariant
}

func newCatalog() *catalog {
	return &catalog{
		products: make(map[uuid.UUID]*models.Product),
		variants: make(map[uuid.UUID]*models.ProductVariant),
	}
}

func (c *catalog) productStore() fakeProducts { return fakeProducts{c} }
func (c *catalog) variantStore() fakeVariants { return fakeVariants{c} }

func (c *catalog) product(id uuid.UUID) *models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

type fakeProducts struct{ *catalog }

func (f fakeProducts) FindByID(_ context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok || p.TenantID != tenantID {
		return nil, errs.NewNotFound("product")
	}
	cp := *p
	return &cp, nil
}

func (f fakeProducts) SKUInUse(_ context.Context, tenantID uuid.UUID, sku string, excludeID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.TenantID == tenantID && p.ID != excludeID && p.SKU != nil && *p.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeProducts) SetHasVariants(_ context.Context, tenantID, id uuid.UUID, hasVariants bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok || p.TenantID != tenantID {
		return errs.NewNotFound("product")
	}
	p.HasVariants = hasVariants
	return nil
}

func (f fakeProducts) Add(_ context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	cp := *product
	f.products[product.ID] = &cp
	return nil
}

func (f fakeProducts) Update(_ context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[product.ID]; !ok {
		return errs.NewNotFound("product")
	}
	cp := *product
	f.products[product.ID] = &cp
	return nil
}

func (f fakeProducts) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok || p.TenantID != tenantID {
		return errs.NewNotFound("product")
	}
	delete(f.products, id)
	for vid, v := range f.variants {
		if v.ProductID == id {
			delete(f.variants, vid)
		}
	}
	return nil
}

type fakeVariants struct{ *catalog }

func (f fakeVariants) FindByID(_ context.Context, tenantID, id uuid.UUID) (*models.ProductVariant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.variants[id]
	if !ok || v.TenantID != tenantID {
		return nil, errs.NewNotFound("variant")
	}
	cp := *v
	return &cp, nil
}

func (f fakeVariants) SKUInUse(_ context.Context, tenantID uuid.UUID, sku string, excludeID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.variants {
		if v.TenantID == tenantID && v.ID != excludeID && v.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeVariants) CountByProduct(_ context.Context, tenantID, productID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, v := range f.variants {
		if v.TenantID == tenantID && v.ProductID == productID {
			n++
		}
	}
	return n, nil
}

func (f fakeVariants) Add(_ context.Context, variant *models.ProductVariant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.variants {
		if v.TenantID == variant.TenantID && v.SKU == variant.SKU {
			return errs.NewAlreadyExists("variant")
		}
	}
	if variant.ID == uuid.Nil {
		variant.ID = uuid.New()
	}
	cp := *variant
	f.variants[variant.ID] = &cp
	return nil
}

func (f fakeVariants) Update(_ context.Context, variant *models.ProductVariant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.variants[variant.ID]; !ok {
		return errs.NewNotFound("variant")
	}
	cp := *variant
	f.variants[variant.ID] = &cp
	return nil
}

func (f fakeVariants) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.variants[id]
	if !ok || v.TenantID != tenantID {
		return errs.NewNotFound("variant")
	}
	delete(f.variants, id)
	return nil
}

type fakeCustomers struct {
	mu        sync.Mutex
	customers []*models.Customer
	addErr    error
	// beforeAdd runs inside Add before the uniqueness check, simulating a
	// concurrent request that wins the insert.
	beforeAdd func(f *fakeCustomers, customer *models.Customer)
}

func (f *fakeCustomers) FindByEmail(_ context.Context, tenantID uuid.UUID, email string) (*models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.customers {
		if c.TenantID == tenantID && c.Email == strings.ToLower(email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCustomers) Add(_ context.Context, customer *models.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.beforeAdd != nil {
		hook := f.beforeAdd
		f.beforeAdd = nil
		hook(f, customer)
	}
	if f.addErr != nil {
		return f.addErr
	}
	for _, c := range f.customers {
		if c.TenantID == customer.TenantID && c.Email == customer.Email {
			return errs.NewAlreadyExists("customer")
		}
	}
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	cp := *customer
	f.customers = append(f.customers, &cp)
	return nil
}

func (f *fakeCustomers) IncrementOrderCount(_ context.Context, tenantID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.customers {
		if c.TenantID == tenantID && c.ID == id {
			c.OrderCount++
			return nil
		}
	}
	return errs.NewNotFound("customer")
}

type fakeOrders struct {
	mu     sync.Mutex
	orders []*models.Order
	// stolen makes the next Add calls lose their number to a phantom order.
	stolen int
}

func (f *fakeOrders) LatestNumber(_ context.Context, tenantID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latest := 0
	for _, o := range f.orders {
		if o.TenantID == tenantID && o.OrderNumber > latest {
			latest = o.OrderNumber
		}
	}
	return latest, nil
}

func (f *fakeOrders) Add(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stolen > 0 {
		f.stolen--
		f.orders = append(f.orders, &models.Order{Base: models.Base{ID: uuid.New()}, TenantID: order.TenantID, OrderNumber: order.OrderNumber})
		return errs.NewAlreadyExists("order")
	}
	for _, o := range f.orders {
		if o.TenantID == order.TenantID && o.OrderNumber == order.OrderNumber {
			return errs.NewAlreadyExists("order")
		}
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	cp := *order
	f.orders = append(f.orders, &cp)
	return nil
}

type fakeInquiries struct {
	inquiries []*models.Inquiry
}

func (f *fakeInquiries) Add(_ context.Context, inquiry *models.Inquiry) error {
	inquiry.ID = uuid.New()
	cp := *inquiry
	f.inquiries = append(f.inquiries, &cp)
	return nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	orders    []*models.Order
	inquiries []*models.Inquiry
	err       error
}

func (f *fakeNotifier) NotifyOrder(_ context.Context, _ *models.Tenant, order *models.Order, _ *models.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, order)
	return f.err
}

func (f *fakeNotifier) NotifyInquiry(_ context.Context, _ *models.Tenant, inquiry *models.Inquiry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inquiries = append(f.inquiries, inquiry)
	return f.err
}

type fakeProjects struct {
	projects map[uuid.UUID]*models.Project
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{projects: make(map[uuid.UUID]*models.Project)}
}

func (f *fakeProjects) FindByID(_ context.Context, tenantID, id uuid.UUID) (*models.Project, error) {
	p, ok := f.projects[id]
	if !ok || p.TenantID != tenantID {
		return nil, errs.NewNotFound("project")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjects) Add(_ context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	cp := *project
	f.projects[project.ID] = &cp
	return nil
}

func (f *fakeProjects) Update(_ context.Context, project *models.Project) error {
	if _, ok := f.projects[project.ID]; !ok {
		return errs.NewNotFound("project")
	}
	cp := *project
	f.projects[project.ID] = &cp
	return nil
}

func (f *fakeProjects) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	p, ok := f.projects[id]
	if !ok || p.TenantID != tenantID {
		return errs.NewNotFound("project")
	}
	delete(f.projects, id)
	return nil
}

type fakeHighlights struct {
	byProject map[uuid.UUID]*models.ProjectHighlight
}

func newFakeHighlights() *fakeHighlights {
	return &fakeHighlights{byProject: make(map[uuid.UUID]*models.ProjectHighlight)}
}

func (f *fakeHighlights) Upsert(_ context.Context, highlight *models.ProjectHighlight) error {
	cp := *highlight
	f.byProject[highlight.ProjectID] = &cp
	return nil
}

func (f *fakeHighlights) DeleteByProject(_ context.Context, projectID uuid.UUID) error {
	delete(f.byProject, projectID)
	return nil
}

// fakeJobs is an in-memory JobStore with the dedupe and claim rules of the
// jobs table.
type fakeJobs struct {
	mu   sync.Mutex
	jobs []*models.Job
	now  func() time.Time
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{now: time.Now}
}

func (f *fakeJobs) Enqueue(_ context.Context, job *models.Job) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job.DedupeKey != nil {
		for _, j := range f.jobs {
			if j.Status == models.JobStatusPending && j.DedupeKey != nil && *j.DedupeKey == *job.DedupeKey {
				return false, nil
			}
		}
	}
	job.ID = uuid.New()
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	if job.MaxAttempts == 0 {
		job.MaxAttempts = 8
	}
	if job.RunAfter.IsZero() {
		job.RunAfter = f.now()
	}
	cp := *job
	f.jobs = append(f.jobs, &cp)
	return true, nil
}

func (f *fakeJobs) Claim(_ context.Context, limit int, lease time.Duration) ([]*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	var claimed []*models.Job
	for _, j := range f.jobs {
		if len(claimed) == limit {
			break
		}
		due := j.Status == models.JobStatusPending && !j.RunAfter.After(now)
		expired := j.Status == models.JobStatusRunning && j.LockedUntil != nil && j.LockedUntil.Before(now)
		if !due && !expired {
			continue
		}
		until := now.Add(lease)
		j.Status = models.JobStatusRunning
		j.Attempts++
		j.LockedUntil = &until
		cp := *j
		claimed = append(claimed, &cp)
	}
	return claimed, nil
}

func (f *fakeJobs) find(id uuid.UUID) (*models.Job, error) {
	for _, j := range f.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, errs.NewNotFound("job")
}

func (f *fakeJobs) Complete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, err := f.find(id)
	if err != nil {
		return err
	}
	j.Status = models.JobStatusSucceeded
	j.LockedUntil = nil
	return nil
}

func (f *fakeJobs) Reschedule(_ context.Context, id uuid.UUID, runAfter time.Time, lastErr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, err := f.find(id)
	if err != nil {
		return err
	}
	j.LockedUntil = nil
	j.LastError = lastErr
	if j.DedupeKey != nil {
		for _, other := range f.jobs {
			if other != j && other.Status == models.JobStatusPending && other.DedupeKey != nil && *other.DedupeKey == *j.DedupeKey {
				j.Status = models.JobStatusSucceeded
				return nil
			}
		}
	}
	j.Status = models.JobStatusPending
	j.RunAfter = runAfter
	return nil
}

func (f *fakeJobs) Bury(_ context.Context, id uuid.UUID, lastErr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, err := f.find(id)
	if err != nil {
		return err
	}
	j.Status = models.JobStatusDead
	j.LastError = lastErr
	j.LockedUntil = nil
	return nil
}

func (f *fakeJobs) byKind(kind string) []*models.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Job
	for _, j := range f.jobs {
		if j.Kind == kind {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out
}

type fakeTenants struct {
	tenants map[uuid.UUID]*models.Tenant
}

func newFakeTenants(tenants ...*models.Tenant) *fakeTenants {
	f := &fakeTenants{tenants: make(map[uuid.UUID]*models.Tenant)}
	for _, t := range tenants {
		f.tenants[t.ID] = t
	}
	return f
}

func (f *fakeTenants) FindByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, ok := f.tenants[id]
	if !ok {
		return nil, errs.NewNotFound("tenant")
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTenants) FindBySlug(_ context.Context, slug string) (*models.Tenant, error) {
	for _, t := range f.tenants {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeTenants) FindByDomain(_ context.Context, domain string) (*models.Tenant, error) {
	for _, t := range f.tenants {
		if t.Domain != nil && *t.Domain == domain {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeTenants) Add(_ context.Context, tenant *models.Tenant) error {
	for _, t := range f.tenants {
		if t.Slug == tenant.Slug {
			return errs.NewAlreadyExists("tenant")
		}
	}
	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}
	cp := *tenant
	f.tenants[tenant.ID] = &cp
	return nil
}

func (f *fakeTenants) Update(_ context.Context, tenant *models.Tenant) error {
	if _, ok := f.tenants[tenant.ID]; !ok {
		return errs.NewNotFound("tenant")
	}
	cp := *tenant
	f.tenants[tenant.ID] = &cp
	return nil
}

type fakeUsers struct {
	users []*models.User
}

func (f *fakeUsers) FindByEmail(_ context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.TenantID == tenantID && u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) Add(_ context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users = append(f.users, user)
	return nil
}

type fakeEmail struct {
	mu         sync.Mutex
	subjects   []string
	recipients [][]string
	err        error
}

func (f *fakeEmail) SendEmail(_ context.Context, subject, _ string, recipients []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subject)
	f.recipients = append(f.recipients, recipients)
	return f.err
}

type fakeSMS struct {
	mu     sync.Mutex
	to     []string
	bodies []string
	err    error
}

func (f *fakeSMS) SendSMS(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.to = append(f.to, to)
	f.bodies = append(f.bodies, body)
	return f.err
}

var errBoom = errors.New("boom")

func ptr[T any](v T) *T {
	return &v
}

func newTestTenant() *models.Tenant {
	return &models.Tenant{Base: models.Base{ID: uuid.New()}, Name: "Acme", Slug: "acme", IsActive: true}
}
