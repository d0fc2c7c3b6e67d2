package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"goodnight/application/ports"
	"goodnight/application/services"
	"goodnight/infrastructure/config"
	"goodnight/interfaces/http/rest/handlers"
	"goodnight/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg           *config.Config
	sleepService  *services.SleepService
	followService *services.FollowService
	feedService   *services.FeedService
	users         ports.UserRepository
	userStore     handlers.UserStore
	logger        *zap.Logger
}

// NewRouter creates a new router instance. userStore may be nil; the
// provisioning route is only mounted when the store supports it.
func NewRouter(
	cfg *config.Config,
	sleepService *services.SleepService,
	followService *services.FollowService,
	feedService *services.FeedService,
	users ports.UserRepository,
	userStore handlers.UserStore,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:           cfg,
		sleepService:  sleepService,
		followService: followService,
		feedService:   feedService,
		users:         users,
		userStore:     userStore,
		logger:        logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	debug := rt.cfg.Environment != "production"

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User-Id"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v1", func(r chi.Router) {
		// Local-only user provisioning sits outside authentication: the
		// first user cannot authenticate as anyone.
		if rt.userStore != nil {
			userHandler := handlers.NewUserHandler(rt.userStore, rt.logger, debug)
			r.Post("/users", userHandler.Create)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.users, rt.cfg, rt.logger))

			r.Route("/sleeps", func(r chi.Router) {
				sleepHandler := handlers.NewSleepHandler(rt.sleepService, rt.feedService, rt.logger, debug)
				r.Post("/clock_in", sleepHandler.ClockIn)
				r.Patch("/{sleepID}/clock_out", sleepHandler.ClockOut)
				r.Get("/following", sleepHandler.Following)
			})

			r.Route("/follows", func(r chi.Router) {
				followHandler := handlers.NewFollowHandler(rt.followService, rt.logger, debug)
				r.Post("/", followHandler.Follow)
				r.Delete("/{userID}", followHandler.Unfollow)
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

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
