package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"idadmin/interfaces/http/rest/handlers"
	"idadmin/interfaces/http/rest/middleware"
	"idadmin/pkg/auth"
)

// Router creates and configures the HTTP router
type Router struct {
	auth       *handlers.AuthHandler
	users      *handlers.UserHandler
	groups     *handlers.GroupHandler
	validator  *auth.JWTValidator
	limiter    auth.RateLimiter
	enableCORS bool
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	groupHandler *handlers.GroupHandler,
	validator *auth.JWTValidator,
	limiter auth.RateLimiter,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		auth:       authHandler,
		users:      userHandler,
		groups:     groupHandler,
		validator:  validator,
		limiter:    limiter,
		enableCORS: enableCORS,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)

	router.Route("/api/v1", func(r chi.Router) {
		// Public endpoints, rate limited but unauthenticated
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(rt.limiter, rt.logger))
			r.Post("/auth/register", rt.auth.Register)
			r.Post("/auth/login", rt.auth.SignIn)
		})

		// Everything else requires a valid token
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.validator, rt.limiter, rt.logger))

			r.Route("/users", func(r chi.Router) {
				r.Get("/{userID}", rt.users.Get)
				r.Put("/{userID}", rt.users.UpdateProfile)
				r.Post("/{userID}/disable", rt.users.Disable)
				r.Post("/{userID}/enable", rt.users.Enable)
				r.Delete("/{userID}", rt.users.Delete)
			})

			r.Route("/groups", func(r chi.Router) {
				r.Post("/", rt.groups.Create)
				r.Get("/{groupID}", rt.groups.Get)
				r.Put("/{groupID}", rt.groups.Update)
				r.Delete("/{groupID}", rt.groups.Delete)

				r.Post("/{groupID}/roles", rt.groups.AddRole)
				r.Delete("/{groupID}/roles/{roleCode}", rt.groups.RemoveRole)
				r.Post("/{groupID}/users", rt.groups.AddUser)
				r.Delete("/{groupID}/users/{userID}", rt.groups.RemoveUser)
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
