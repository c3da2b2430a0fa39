package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler     authHandler
	siteHandler     siteHandler
	productHandler  productHandler
	variantHandler  variantHandler
	orderHandler    orderHandler
	customerHandler customerHandler
	inquiryHandler  inquiryHandler
	projectHandler  projectHandler
	pageHandler     pageHandler
	mediaHandler    mediaHandler
	themeHandler    themeHandler
	jobHandler      jobHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

// CollectionResponse wraps a list with its size.
type CollectionResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func newCollection[T any](items []T) CollectionResponse[T] {
	if items == nil {
		items = []T{}
	}
	return CollectionResponse[T]{Items: items, Total: len(items)}
}
