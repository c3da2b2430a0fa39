package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

type authenticator interface {
	Login(ctx context.Context, tenant *models.Tenant, email, password string) (string, *models.User, error)
}

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	auth      authenticator
}

func newAuthHandler(auth authenticator) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		auth:      auth,
	}
}

// LoginRequest carries the credentials of a tenant user.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the session token and the signed-in user.
type LoginResponse struct {
	Token  string       `json:"token"`
	User   *models.User `json:"user"`
	Tenant string       `json:"tenant"`
}

// login authenticates a user of the resolved tenant
// @Summary Log in
// @Description Authenticates a user of the tenant resolved from X-Tenant, the tenant cookie or the host, and returns a JWT
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} ErrorResponse "Unauthorized - Invalid credentials"
// @Router /auth/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := requestTenant(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if strings.TrimSpace(req.Email) == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("email"))
			return
		}
		if req.Password == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("password"))
			return
		}

		token, user, err := h.auth.Login(r.Context(), tenant, req.Email, req.Password)
		if err != nil {
			if errs.IsInvalidCredentialsError(err) {
				h.logger.Warn().Str("tenant", tenant.Slug).Msg("Failed login attempt")
			}
			h.responder.WriteError(w, wrapDatabaseError("authenticate", "user", err))
			return
		}

		h.responder.WriteJSON(w, LoginResponse{Token: token, User: user, Tenant: tenant.Slug})
	}
}
