// Package controller contains the controller-specific logic for the HTTP API.
package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"maintplane/internal/config"
	"maintplane/internal/controller/handlers"
	"maintplane/internal/controller/middleware"
	"maintplane/internal/logger"
)

// Server is the HTTP server for the controller API.
type Server struct {
	httpServer *http.Server
}

// New creates a new controller server.
func New(addr string, svc handlers.MaintenanceService, store handlers.StoreFactory, cfg *config.Config, metricsHandler http.Handler, log *slog.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      NewHandler(svc, store, cfg, metricsHandler, log),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// NewHandler builds the controller's routing tree.
func NewHandler(svc handlers.MaintenanceService, store handlers.StoreFactory, cfg *config.Config, metricsHandler http.Handler, log *slog.Logger) http.Handler {
	h := handlers.New(svc, store, log)
	authMW := middleware.AuthMiddleware(store)
	limit := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateLimitBurst).Middleware()
	internalMW := middleware.RequireInternalAuth(cfg.SystemSecret)

	// user runs the handler for any authenticated caller.
	user := func(fn http.HandlerFunc) http.Handler {
		return authMW(fn)
	}
	// mutating endpoints are rate limited per user.
	mutating := func(fn http.HandlerFunc) http.Handler {
		return authMW(limit(fn))
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		return authMW(middleware.RequireAdmin(limit(fn)))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	// Administrator apis
	mux.Handle("POST /maintenance/generate", admin(h.Generate))
	mux.Handle("GET /maintenance/preview", admin(h.Preview))
	mux.Handle("POST /schedules/{id}/complete", admin(h.CompleteSchedule))
	mux.Handle("POST /schedules/{id}/cancel", admin(h.CancelSchedule))

	// Public authenticated apis
	mux.Handle("GET /workflows/{id}", user(h.GetWorkflow))
	mux.Handle("GET /workflows/{id}/history", user(h.GetHistory))
	mux.Handle("POST /workflows/{id}/approve", mutating(h.Approve))
	mux.Handle("POST /workflows/{id}/reject", mutating(h.Reject))
	mux.Handle("GET /notifications", user(h.Notifications))

	// Internal endpoints
	// These are called by the scheduler and provisioning scripts with the system secret.
	mux.Handle("POST /internal/maintenance/generate", internalMW(http.HandlerFunc(h.InternalGenerate)))
	mux.Handle("POST /internal/users", internalMW(http.HandlerFunc(h.InternalCreateUser)))

	return middleware.RequestContext(log)(mux)
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
