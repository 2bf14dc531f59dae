package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/yutthachai69/newjobflow/internal/auth"
	"github.com/yutthachai69/newjobflow/internal/handlers"
	"github.com/yutthachai69/newjobflow/internal/middleware"
	"github.com/yutthachai69/newjobflow/internal/models"
	"github.com/yutthachai69/newjobflow/internal/ratelimit"
	"github.com/yutthachai69/newjobflow/internal/repositories"
	"github.com/yutthachai69/newjobflow/internal/services"
	pkghttp "github.com/yutthachai69/newjobflow/pkg/http"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	securityHandler *handlers.SecurityHandler,
	tokenManager *auth.TokenManager,
	userRepo *repositories.UserRepository,
	limiter *ratelimit.Limiter,
	ipConfig *pkghttp.IPConfig,
	events services.SecurityEventLogger,
) {
	loginLimit := middleware.RateLimit(limiter, ratelimit.ClassLogin, ipConfig, events)
	apiLimit := middleware.RateLimit(limiter, ratelimit.ClassAPI, ipConfig, events)

	// Public routes - login budget, no authentication
	router.With(loginLimit).Post("/auth/login", authHandler.Login)
	router.With(loginLimit).Post("/auth/refresh", authHandler.RefreshToken)

	// Protected routes - API budget plus authentication
	router.Group(func(r chi.Router) {
		r.Use(apiLimit)
		r.Use(auth.AuthMiddleware(tokenManager))

		// Any authenticated user
		r.Get("/users/{id}", userHandler.GetUser)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(userRepo, models.RoleAdmin))

			r.Get("/users", userHandler.ListUsers)
			r.Post("/users", userHandler.CreateUser)
			r.Delete("/users/{id}", userHandler.DeleteUser)
			r.Post("/users/{id}/lock", userHandler.LockUser)
			r.Delete("/users/{id}/lock", userHandler.UnlockUser)

			r.Get("/security/incidents", securityHandler.ListIncidents)
			r.Post("/security/incidents", securityHandler.ReportIncident)
			r.Get("/security/incidents/stats", securityHandler.IncidentStats)
			r.Get("/security/incidents/{id}", securityHandler.GetIncident)
			r.Post("/security/incidents/{id}/resolve", securityHandler.ResolveIncident)
			r.Get("/security/events", securityHandler.RecentEvents)
		})
	})
}
