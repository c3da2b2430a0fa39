package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/tenant-site-backend/config"
	"github.com/rpupo63/tenant-site-backend/database"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(c map[string]string, db database.Database, svc Services) (Server, error) {
	if svc.Auth == nil {
		return Server{}, fmt.Errorf("auth service is required")
	}

	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port)

	startupTime := time.Now()

	router := newRouter(db, svc, withConfig(c), withStartupTime(startupTime))

	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(db database.Database, svc Services, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(ColoredHTTPLoggingMiddleware(config.GetBool(router.config, "DEV", false)))

	acceptedOrigins := config.GetStrings(router.config, "ACCEPTED_ORIGINS")
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(corsMiddleware(acceptedOrigins))

	handlers := initializeHandlers(db, svc)
	auth := newAuthMiddleware(svc.Auth, db.TenantRepo(), db.UserRepo())
	tenants := newTenantMiddleware(db.TenantRepo())

	var hooks ContentChangeNotifier
	if svc.DeployHooks != nil {
		hooks = svc.DeployHooks
	}

	chiRouter.Get("/healthz", router.healthz(db))
	setupSiteRoutes(chiRouter, handlers, tenants)
	setupAdminRoutes(chiRouter, handlers, auth, hooks)

	return chiRouter
}

// HealthResponse reports process uptime and database reachability.
type HealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Database string `json:"database"`
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (rt router) healthz(db pinger) http.HandlerFunc {
	responder := NewResponder(log.With().Str("handlerName", "healthz").Logger())
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := HealthResponse{
			Status:   "ok",
			Uptime:   time.Since(rt.startupTime).Round(time.Second).String(),
			Database: "ok",
		}
		if err := db.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Health check database ping failed")
			resp.Status = "degraded"
			resp.Database = "unreachable"
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		responder.WriteJSON(w, resp)
	}
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
