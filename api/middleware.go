package api

import (
	"context"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
	"github.com/rpupo63/tenant-site-backend/services"
)

const (
	tenantHeader = "X-Tenant"
	tenantCookie = "tenant"
)

// TenantFinder looks tenants up by the keys requests carry.
type TenantFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	FindByDomain(ctx context.Context, domain string) (*models.Tenant, error)
}

// TokenParser verifies bearer tokens.
type TokenParser interface {
	ParseToken(token string) (*services.Claims, error)
}

// UserFinder loads the account a token was issued to.
type UserFinder interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error)
}

type authMiddleware struct {
	responder Responder
	logger    zerolog.Logger
	tokens    TokenParser
	tenants   TenantFinder
	users     UserFinder
}

func newAuthMiddleware(tokens TokenParser, tenants TenantFinder, users UserFinder) authMiddleware {
	logger := log.With().Str("handlerName", "authMiddleware").Logger()
	return authMiddleware{
		responder: NewResponder(logger),
		logger:    logger,
		tokens:    tokens,
		tenants:   tenants,
		users:     users,
	}
}

// authenticate requires a valid bearer token whose user still exists with
// the token's role, and puts the user, claims and active tenant on the
// request context.
func (m authMiddleware) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			m.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			m.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		claims, err := m.tokens.ParseToken(token)
		if err != nil {
			m.responder.WriteError(w, err)
			return
		}

		// ParseToken has already validated both IDs
		tenantID, _ := claims.TenantID()
		userID, _ := claims.UserID()

		tenant, err := m.tenants.FindByID(r.Context(), tenantID)
		if err != nil {
			if errs.IsNotFound(err) {
				m.responder.WriteError(w, errs.NewInvalidTokenError())
				return
			}
			m.responder.WriteError(w, wrapDatabaseError("find tenant", "tenant", err))
			return
		}
		if !tenant.IsActive {
			m.responder.WriteError(w, errs.NewTenantInactiveError(tenant.Slug))
			return
		}

		user, err := m.users.FindByID(r.Context(), tenant.ID, userID)
		if err != nil {
			if errs.IsNotFound(err) {
				m.logger.Info().Str("userId", userID.String()).Msg("Token for removed user")
				m.responder.WriteError(w, errs.NewInvalidTokenError())
				return
			}
			m.responder.WriteError(w, wrapDatabaseError("find user", "user", err))
			return
		}
		if user.Role != claims.Role {
			m.logger.Info().Str("userId", userID.String()).Str("tokenRole", claims.Role).Str("role", user.Role).Msg("Token role is stale")
			m.responder.WriteError(w, errs.NewInvalidTokenError())
			return
		}

		ctx := ctxWithUserID(r.Context(), userID)
		ctx = ctxWithClaims(ctx, claims)
		ctx = ctxWithTenant(ctx, tenant)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole rejects users whose token role differs from role.
func (m authMiddleware) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := ctxGetClaims(r.Context())
			if err != nil || claims.Role != role {
				m.responder.WriteError(w, errs.NewInsufficientRoleError(role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type tenantMiddleware struct {
	responder Responder
	tenants   TenantFinder
}

func newTenantMiddleware(tenants TenantFinder) tenantMiddleware {
	logger := log.With().Str("handlerName", "tenantMiddleware").Logger()
	return tenantMiddleware{
		responder: NewResponder(logger),
		tenants:   tenants,
	}
}

// resolve finds the site's tenant from the X-Tenant header, then the tenant
// cookie, then the request host.
func (m tenantMiddleware) resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant, lookup, err := m.lookup(r)
		if err != nil {
			m.responder.WriteError(w, wrapDatabaseError("find tenant", "tenant", err))
			return
		}
		if tenant == nil {
			m.responder.WriteError(w, errs.NewTenantNotFoundError(lookup))
			return
		}
		if !tenant.IsActive {
			m.responder.WriteError(w, errs.NewTenantInactiveError(tenant.Slug))
			return
		}
		next.ServeHTTP(w, r.WithContext(ctxWithTenant(r.Context(), tenant)))
	})
}

func (m tenantMiddleware) lookup(r *http.Request) (*models.Tenant, string, error) {
	ctx := r.Context()

	if slug := strings.TrimSpace(r.Header.Get(tenantHeader)); slug != "" {
		tenant, err := m.tenants.FindBySlug(ctx, slug)
		return tenant, slug, err
	}
	if cookie, err := r.Cookie(tenantCookie); err == nil && cookie.Value != "" {
		tenant, err := m.tenants.FindBySlug(ctx, cookie.Value)
		return tenant, cookie.Value, err
	}

	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	tenant, err := m.tenants.FindByDomain(ctx, host)
	return tenant, host, err
}

// ContentChangeNotifier is told about successful admin writes.
type ContentChangeNotifier interface {
	Trigger(ctx context.Context, tenantID uuid.UUID)
}

// DeployHookMiddleware queues a site rebuild after every successful
// non-GET admin request.
func DeployHookMiddleware(hooks ContentChangeNotifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			srw := &statusResponseWriter{ResponseWriter: w, status: 200}
			next.ServeHTTP(srw, r)

			if hooks == nil || r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				return
			}
			if srw.status < 200 || srw.status >= 300 {
				return
			}
			if tenant, err := ctxGetTenant(r.Context()); err == nil {
				hooks.Trigger(context.WithoutCancel(r.Context()), tenant.ID)
			}
		})
	}
}

type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.status = statusCode
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func LogInternalServerErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", err).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic")

				// Write 500 if nothing written yet
				if !srw.wroteHeader {
					srw.WriteHeader(http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(srw, r)

		if srw.status == http.StatusInternalServerError {
			log.Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("500 error response")
		}
	})
}

func originAllowed(allowedOrigins []string, origin string) bool {
	for _, allowedOrigin := range allowedOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}
	return false
}

// CORSCheckMiddleware checks if the request is blocked by CORS and returns a proper error
func CORSCheckMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// If no origin header, it's likely a same-origin request
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !originAllowed(allowedOrigins, origin) && r.Method == http.MethodOptions {
				responder := NewResponder(log.Logger)
				responder.WriteError(w, errs.NewCORSError(origin))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// corsMiddleware sets CORS headers for allowed origins and answers preflights.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return originAllowed(allowedOrigins, origin)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", tenantHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// ColoredHTTPLoggingMiddleware logs HTTP requests with colored output based on status codes
func ColoredHTTPLoggingMiddleware(dev bool) func(http.Handler) http.Handler {
	logger := log.Logger
	if dev {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			srw := &statusResponseWriter{ResponseWriter: w, status: 200}

			next.ServeHTTP(srw, r)

			var logEvent *zerolog.Event
			switch {
			case srw.status >= 500:
				logEvent = logger.Error()
			case srw.status >= 400:
				logEvent = logger.Warn()
			default:
				logEvent = logger.Info()
			}

			logEvent.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", srw.status).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP Request")
		})
	}
}
