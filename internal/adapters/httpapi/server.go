// Package httpapi exposes the approval engine over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/docroute/internal/ports/primary"
)

// maxBodyBytes caps request bodies on the API routes.
const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	Approvals primary.ApprovalService
	Documents primary.DocumentService
	Routes    primary.RouteService
	Logger    *slog.Logger

	// JWTSecret verifies HS256 bearer tokens. The token subject is the actor.
	JWTSecret string

	// RateRPS and RateBurst bound requests per actor.
	RateRPS   float64
	RateBurst int

	// Version is reported by /healthz.
	Version string
}

// Server serves the document approval API.
type Server struct {
	approvals primary.ApprovalService
	documents primary.DocumentService
	routes    primary.RouteService
	logger    *slog.Logger
	secret    []byte
	limiters  *actorLimiters
	version   string
}

// NewServer creates a Server from opts.
func NewServer(opts Options) (*Server, error) {
	if opts.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required to serve the API")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		approvals: opts.Approvals,
		documents: opts.Documents,
		routes:    opts.Routes,
		logger:    logger,
		secret:    []byte(opts.JWTSecret),
		limiters:  newActorLimiters(opts.RateRPS, opts.RateBurst),
		version:   opts.Version,
	}, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(s.rateLimit)
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
				next.ServeHTTP(w, r)
			})
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", s.handleCreateDocument)
			r.Get("/", s.handleListDocuments)
			r.Route("/{documentID}", func(r chi.Router) {
				r.Get("/", s.handleGetDocument)
				r.Put("/route", s.handleBindRoute)
				r.Post("/submit", s.handleSubmit)
				r.Post("/resubmit", s.handleResubmit)
				r.Post("/decisions", s.handleDecide)
				r.Post("/cancel", s.handleCancel)
				r.Get("/attempts", s.handleListAttempts)
			})
		})

		r.Get("/approvals/{instanceID}", s.handleGetApprovalSheet)
		r.Get("/steps/overdue", s.handleListOverdue)

		r.Route("/routes", func(r chi.Router) {
			r.Post("/", s.handleCreateRoute)
			r.Get("/", s.handleListRoutes)
			r.Get("/{routeID}", s.handleGetRoute)
			r.Put("/{routeID}/steps", s.handleReplaceSteps)
		})
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
