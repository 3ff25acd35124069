package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/practice-management/api"
	"github.com/frahmantamala/practice-management/internal/activity"
	"github.com/frahmantamala/practice-management/internal/auth"
	"github.com/frahmantamala/practice-management/internal/errorlog"
	"github.com/frahmantamala/practice-management/internal/patient"
	"github.com/frahmantamala/practice-management/internal/role"
	"github.com/frahmantamala/practice-management/internal/security"
	"github.com/frahmantamala/practice-management/internal/transport/middleware"
	"github.com/frahmantamala/practice-management/internal/transport/swagger"
	"github.com/frahmantamala/practice-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Auth     *auth.Handler
	User     *user.Handler
	Role     *role.Handler
	Patient  *patient.Handler
	Activity *activity.Handler
	Health   *HealthHandler
}

type RouterConfig struct {
	Logger         *slog.Logger
	Errors         *errorlog.Service
	Limiter        middleware.RateChecker
	AllowedOrigins string
	Debug          bool
}

func RegisterAllRoutes(router chi.Router, cfg RouterConfig, h Handlers) {
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.ErrorHandler(cfg.Errors, cfg.Debug))
	router.Use(middleware.LoggingMiddleware(cfg.Logger))

	// Served outside /api/v1 so the swagger UI is not subject to the API CSP.
	router.Get(swagger.DocURL, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.Spec)
	})
	router.Handle("/swagger/*", swagger.Handler())

	requireModule := middleware.RequireModule

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SecurityHeaders)
		r.Use(middleware.SanitizeJSON)

		r.Get("/health", h.Health.healthCheckHandler)
		r.Get("/ping", h.Health.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			if cfg.Limiter != nil {
				sr.Use(middleware.RateLimit(cfg.Limiter, security.LimitAPI, middleware.ClientIPKey))
			}
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			if cfg.Limiter != nil {
				pr.Use(middleware.RateLimit(cfg.Limiter, security.LimitAPI, middleware.UserOrIPKey))
			}

			pr.Get("/users/me", h.User.GetCurrentUser)

			pr.Group(func(ar chi.Router) {
				ar.Use(requireModule(role.ModuleUsers, role.LevelAdmin))
				ar.Post("/users", h.User.CreateUser)
				ar.Get("/roles", h.Role.ListRoles)
				ar.Put("/users/{id}/role", h.Role.AssignRole)
				ar.Get("/users/{id}/permissions", h.Role.ListPermissions)
				ar.Post("/users/{id}/permissions", h.Role.GrantPermission)
				ar.Delete("/users/{id}/permissions/{module}", h.Role.RevokePermission)
			})

			pr.With(requireModule(role.ModuleUsers, role.LevelView)).Get("/activity", h.Activity.List)

			pr.Route("/patients", func(pt chi.Router) {
				pt.With(requireModule(role.ModulePatients, role.LevelView)).Get("/", h.Patient.List)
				pt.With(requireModule(role.ModulePatients, role.LevelCreate)).Post("/", h.Patient.Create)
				pt.With(requireModule(role.ModulePatients, role.LevelView)).Get("/{id}", h.Patient.Get)
				pt.With(requireModule(role.ModulePatients, role.LevelEdit)).Put("/{id}", h.Patient.Update)
				pt.With(requireModule(role.ModulePatients, role.LevelDelete)).Delete("/{id}", h.Patient.Delete)
			})
		})
	})
}
