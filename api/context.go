package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
	"github.com/rpupo63/tenant-site-backend/services"
)

type keyType string

const (
	userIDKey keyType = "userID"
	tenantKey keyType = "tenant"
	claimsKey keyType = "claims"
)

// ctxWithUserID adds a user ID to the context
func ctxWithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// ctxWithTenant adds the resolved tenant to the context
func ctxWithTenant(ctx context.Context, tenant *models.Tenant) context.Context {
	return context.WithValue(ctx, tenantKey, tenant)
}

// ctxWithClaims adds verified token claims to the context
func ctxWithClaims(ctx context.Context, claims *services.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ctxGetUserID retrieves a user ID from the context
func ctxGetUserID(ctx context.Context) (uuid.UUID, error) {
	if id, ok := ctx.Value(userIDKey).(uuid.UUID); ok {
		return id, nil
	}
	return uuid.Nil, errors.New("user ID not found in context")
}

// ctxGetTenant retrieves the tenant from the context
func ctxGetTenant(ctx context.Context) (*models.Tenant, error) {
	if tenant, ok := ctx.Value(tenantKey).(*models.Tenant); ok && tenant != nil {
		return tenant, nil
	}
	return nil, errors.New("tenant not found in context")
}

// ctxGetClaims retrieves token claims from the context
func ctxGetClaims(ctx context.Context) (*services.Claims, error) {
	if claims, ok := ctx.Value(claimsKey).(*services.Claims); ok && claims != nil {
		return claims, nil
	}
	return nil, errors.New("claims not found in context")
}

// requestTenant returns the tenant placed on the context by the auth or
// tenant middleware.
func requestTenant(r *http.Request) (*models.Tenant, error) {
	tenant, err := ctxGetTenant(r.Context())
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("tenant not resolved", err)
	}
	return tenant, nil
}
