package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"promptbay-backend/infrastructure/di"
	"promptbay-backend/interfaces/http/rest/handlers"
	"promptbay-backend/interfaces/http/rest/middleware"
	"promptbay-backend/pkg/auth"
	apperrors "promptbay-backend/pkg/errors"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{
		container: container,
		logger:    container.Logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() (http.Handler, error) {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.container.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.promptbay.app"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "X-Cache"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health checks
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	jwtSecret := rt.container.Config.JWTSecret
	if jwtSecret == "" {
		// Development fallback; config validation rejects this in
		// production.
		jwtSecret = "development-secret-change-in-production"
	}
	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: jwtSecret,
		Issuer:    rt.container.Config.JWTIssuer,
	})
	if err != nil {
		return nil, err
	}
	authenticate := middleware.Authenticate(validator, rt.logger)

	errHandler := apperrors.NewErrorHandler(rt.logger, rt.container.Config.IsDevelopment())

	router.Route("/api/v1", func(r chi.Router) {
		rt.mountCollection(r, "/prompts", handlers.NewCatalogHandler(rt.container.Prompts, errHandler, rt.logger), authenticate)
		rt.mountCollection(r, "/tools", handlers.NewCatalogHandler(rt.container.Tools, errHandler, rt.logger), authenticate)
	})

	return router, nil
}

// mountCollection wires the identical route shape for one resource.
// Reads are public; mutations sit behind authentication. View counting
// is public because anonymous views count too.
func (rt *Router) mountCollection(r chi.Router, pattern string, h *handlers.CatalogHandler, authenticate func(http.Handler) http.Handler) {
	r.Route(pattern, func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/count", h.Count)
		r.Get("/{documentID}", h.Get)
		r.Post("/{documentID}/view", h.RecordView)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", h.Create)
			r.Put("/{documentID}", h.Update)
			r.Delete("/{documentID}", h.Delete)
			r.Post("/{documentID}/like", h.ToggleLike)
		})
	})
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck verifies the shared cache store is reachable
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := rt.container.Ready(req.Context()); err != nil {
		rt.logger.Warn("readiness check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
