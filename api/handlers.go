package api

import (
	"github.com/rpupo63/tenant-site-backend/database"
	"github.com/rpupo63/tenant-site-backend/services"
)

// Services bundles the business services the handlers call into.
type Services struct {
	Auth        *services.AuthService
	Orders      *services.OrderService
	Products    *services.ProductService
	Variants    *services.VariantService
	Projects    *services.ProjectService
	Pages       *services.PageService
	Forms       *services.FormService
	Theme       *services.ThemeService
	DeployHooks *services.DeployHooks
	// Storage is nil when no bucket is configured.
	Storage services.ObjectStorage
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, svc Services) *routeHandlers {
	return &routeHandlers{
		authHandler:     newAuthHandler(svc.Auth),
		siteHandler:     newSiteHandler(db.PageRepo(), db.ProductRepo(), db.HighlightRepo(), svc.Orders, svc.Forms),
		productHandler:  newProductHandler(db.ProductRepo(), svc.Products),
		variantHandler:  newVariantHandler(db.VariantRepo(), svc.Variants),
		orderHandler:    newOrderHandler(db.OrderRepo()),
		customerHandler: newCustomerHandler(db.CustomerRepo()),
		inquiryHandler:  newInquiryHandler(db.InquiryRepo()),
		projectHandler:  newProjectHandler(db.ProjectRepo(), svc.Projects),
		pageHandler:     newPageHandler(db.PageRepo(), svc.Pages),
		mediaHandler:    newMediaHandler(db.MediaRepo(), svc.Storage),
		themeHandler:    newThemeHandler(svc.Theme),
		jobHandler:      newJobHandler(db.JobRepo()),
	}
}
