package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/user-directory/internal/api/handlers"
	"github.com/isdelr/user-directory/internal/services"
	"github.com/isdelr/user-directory/internal/websocket"
)

// RouterConfig holds the collaborators the router wires into handlers.
type RouterConfig struct {
	Users          services.UserServiceProvider
	Views          handlers.Renderer
	Health         handlers.HealthReporter
	Hub            *websocket.Hub
	PublicDir      string
	AllowedOrigins []string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	userHandler := handlers.NewUserHandler(cfg.Users, cfg.Views)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.GetAll)
		r.Post("/", userHandler.Create)
		r.Route("/{username}", func(r chi.Router) {
			r.Get("/", userHandler.Get)
			r.Put("/", userHandler.Update)
			r.Delete("/", userHandler.Delete)
			r.Patch("/password", userHandler.UpdatePassword)
		})
	})

	if cfg.Health != nil {
		r.Get("/healthz", handlers.NewHealthHandler(cfg.Health).Get)
	}
	if cfg.Hub != nil {
		r.Get("/ws/users", handlers.NewWebSocketHandler(cfg.Hub, cfg.AllowedOrigins).Serve)
	}

	if cfg.PublicDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.PublicDir)))
	}

	return r
}
