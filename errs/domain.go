package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Storefront & Catalog Errors
var (
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrTenantInactive       = errors.New("tenant inactive")
	ErrSKUConflict          = errors.New("sku already exists")
	ErrUnknownVariantOption = errors.New("unknown variant option")
	ErrCustomerCreate       = errors.New("failed to create customer")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrProductUnavailable   = errors.New("product unavailable")
)

func NewTenantNotFoundError(lookup string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        ErrTenantNotFound,
		Details:    fmt.Sprintf("No tenant matches %q", lookup),
		Field:      "tenant",
	}
}

func NewTenantInactiveError(slug string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        ErrTenantInactive,
		Details:    fmt.Sprintf("Tenant %s is not active", slug),
		Field:      "tenant",
	}
}

// NewSKUConflictError names the owner kind ("variant" or "product") already holding the SKU.
func NewSKUConflictError(sku, ownerKind string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrSKUConflict,
		Details:    fmt.Sprintf("SKU %q is already used by a %s", sku, ownerKind),
		Field:      "sku",
	}
}

func NewUnknownVariantOptionError(name string, allowed []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrUnknownVariantOption,
		Details:    fmt.Sprintf("Option %q is not declared on the product (declared: %v)", name, allowed),
		Field:      "options",
	}
}

func NewInvalidVariantOptionValueError(name, value string, allowed []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrUnknownVariantOption,
		Details:    fmt.Sprintf("Value %q is not allowed for option %q (allowed: %v)", value, name, allowed),
		Field:      "options",
	}
}

func NewCustomerCreateError(email string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrCustomerCreate,
		Details:    fmt.Sprintf("Could not create customer for %s", email),
		Cause:      cause,
		Field:      "customerData",
	}
}

func NewInvalidQuantityError(quantity int) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidQuantity,
		Details:    fmt.Sprintf("Quantity must be at least 1, got %d", quantity),
		Field:      "quantity",
	}
}

func NewProductUnavailableError(productID string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrProductUnavailable,
		Details:    fmt.Sprintf("Product %s is not available for ordering", productID),
		Field:      "productId",
	}
}

func IsSKUConflict(err error) bool {
	return errors.Is(err, ErrSKUConflict)
}

func IsUnknownVariantOption(err error) bool {
	return errors.Is(err, ErrUnknownVariantOption)
}
