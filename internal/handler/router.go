package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Dan9191/todo-service/internal/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig collects the collaborators needed to assemble the routes
type RouterConfig struct {
	Verifier  middleware.TokenVerifier
	Logger    *logrus.Logger
	Registry  *prometheus.Registry
	Health    Pinger
	StaticDir string
}

// NewRouter wires the public, protected and operational routes
func NewRouter(h *Handler, cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	if cfg.Registry != nil {
		r.Use(middleware.NewMetrics(cfg.Registry).Middleware)
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	if cfg.Health != nil {
		r.HandleFunc("/healthz", healthz(cfg.Health)).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	// Public routes
	api.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)

	// Protected routes
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.Verifier))
	protected.HandleFunc("/me", h.Me).Methods(http.MethodGet)
	protected.HandleFunc("/todos", h.CreateTodo).Methods(http.MethodPost)
	protected.HandleFunc("/todos", h.ListTodos).Methods(http.MethodGet)
	protected.HandleFunc("/todos/{id}/status", h.UpdateTodoStatus).Methods(http.MethodPut)
	protected.HandleFunc("/todos/{id}", h.DeleteTodo).Methods(http.MethodDelete)

	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir))).Methods(http.MethodGet, http.MethodHead)
	}
	return r
}

func healthz(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, envelope{Message: "Database unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, envelope{Success: true, Message: "ok"})
	}
}
