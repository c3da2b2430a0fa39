package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/rpupo63/tenant-site-backend/models"
)

// setupSiteRoutes sets up the public routes of a tenant site. The tenant
// comes from the X-Tenant header, the tenant cookie or the Host.
func setupSiteRoutes(r chi.Router, handlers *routeHandlers, tenants tenantMiddleware) {
	r.Route("/site", func(r chi.Router) {
		r.Use(tenants.resolve)

		r.Get("/theme.css", handlers.siteHandler.getThemeCSS())
		r.Get("/pages/{slug}", handlers.siteHandler.getPage())
		r.Get("/products", handlers.siteHandler.getProducts())
		r.Get("/products/{slug}", handlers.siteHandler.getProduct())
		r.Get("/highlights", handlers.siteHandler.getHighlights())
		r.Post("/forms/inquiry", handlers.siteHandler.submitInquiry())
		r.Post("/forms/order", handlers.siteHandler.submitOrder())
	})

	r.With(tenants.resolve).Post("/auth/login", handlers.authHandler.login())
}

// setupAdminRoutes sets up all routes with authentication
func setupAdminRoutes(r chi.Router, handlers *routeHandlers, auth authMiddleware, hooks ContentChangeNotifier) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.authenticate)

		// Job Handler endpoints
		r.Group(func(r chi.Router) {
			r.Use(auth.requireRole(models.RoleAdmin))
			r.Get("/jobs", handlers.jobHandler.getJobs())
			r.Post("/job/{jobID}/retry", handlers.jobHandler.retryJob())
		})

		r.Group(func(r chi.Router) {
			r.Use(DeployHookMiddleware(hooks))
			setupContentRoutes(r, handlers)
		})
	})
}

// setupContentRoutes registers the admin endpoints that change site content.
func setupContentRoutes(r chi.Router, handlers *routeHandlers) {
	// Product Handler endpoints
	r.Get("/products", handlers.productHandler.getAllProducts())
	r.Get("/product/{productID}", handlers.productHandler.getProduct())
	r.Post("/product", handlers.productHandler.createProduct())
	r.Put("/product/{productID}", handlers.productHandler.updateProduct())
	r.Delete("/product/{productID}", handlers.productHandler.deleteProduct())

	// Variant Handler endpoints
	r.Get("/product/{productID}/variants", handlers.variantHandler.getProductVariants())
	r.Post("/product/{productID}/variant", handlers.variantHandler.createVariant())
	r.Put("/variant/{variantID}", handlers.variantHandler.updateVariant())
	r.Delete("/variant/{variantID}", handlers.variantHandler.deleteVariant())

	// Order, Customer and Inquiry endpoints
	r.Get("/orders", handlers.orderHandler.getAllOrders())
	r.Get("/order/{orderID}", handlers.orderHandler.getOrder())
	r.Put("/order/{orderID}/status", handlers.orderHandler.updateOrderStatus())
	r.Get("/customers", handlers.customerHandler.getAllCustomers())
	r.Get("/customer/{customerID}", handlers.customerHandler.getCustomer())
	r.Get("/inquiries", handlers.inquiryHandler.getAllInquiries())
	r.Put("/inquiry/{inquiryID}/status", handlers.inquiryHandler.updateInquiryStatus())

	// Project Handler endpoints
	r.Get("/projects", handlers.projectHandler.getAllProjects())
	r.Get("/project/{projectID}", handlers.projectHandler.getProject())
	r.Post("/project", handlers.projectHandler.createProject())
	r.Put("/project/{projectID}", handlers.projectHandler.updateProject())
	r.Delete("/project/{projectID}", handlers.projectHandler.deleteProject())

	// Page Handler endpoints
	r.Get("/pages", handlers.pageHandler.getAllPages())
	r.Get("/page/{pageID}", handlers.pageHandler.getPage())
	r.Post("/page", handlers.pageHandler.createPage())
	r.Put("/page/{pageID}", handlers.pageHandler.updatePage())
	r.Delete("/page/{pageID}", handlers.pageHandler.deletePage())

	// Media Handler endpoints
	r.Get("/media", handlers.mediaHandler.getAllMedia())
	r.Post("/media", handlers.mediaHandler.uploadMedia())
	r.Delete("/media/{mediaID}", handlers.mediaHandler.deleteMedia())

	// Theme Handler endpoints
	r.Get("/theme", handlers.themeHandler.getTheme())
	r.Put("/theme", handlers.themeHandler.updateTheme())
	r.Post("/theme/publish", handlers.themeHandler.publishTheme())
	r.Post("/theme/import", handlers.themeHandler.importTheme())
}
