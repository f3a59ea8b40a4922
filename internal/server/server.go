package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"impractical.co/frame"
	"impractical.co/frame/internal/content"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	shutdownTimeout = 10 * time.Second
)

// Server serves a Site's pages over HTTP. A Server must be instantiated
// through New.
type Server struct {
	site   *frame.Site
	pages  []content.Page
	logger *slog.Logger
}

// New returns a Server that renders pages with site. pages are served at
// their routes; every other path gets a not found page.
func New(site *frame.Site, pages []content.Page, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		site:   site,
		pages:  pages,
		logger: logger,
	}
}

// Handler returns the http.Handler serving the site.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.GetHead)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	for _, page := range s.pages {
		r.Get(page.Route, s.pageHandler(page.Request))
	}
	r.NotFound(s.notFound)

	return r
}

func (s *Server) pageHandler(req frame.PageRequest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, req)
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, frame.PageRequest{
		Title: "Not Found",
		Body:  "<h1>Not Found</h1>",
	})
}

// render writes the rendered page with the passed status. If the page can't
// be rendered, the error is logged and a plain server error is written
// instead; nothing about the failure reaches the client.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, req frame.PageRequest) {
	ctx := r.Context()
	out, err := s.site.Render(ctx, req)
	if err != nil {
		frame.Logger(ctx).ErrorContext(ctx, "error rendering page",
			"path", r.URL.Path,
			"error", err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		if _, err := w.Write([]byte("Server error.")); err != nil {
			frame.Logger(ctx).ErrorContext(ctx, "error writing server error message", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if _, err := w.Write([]byte(out)); err != nil {
		frame.Logger(ctx).ErrorContext(ctx, "error writing response", "error", err)
	}
}

// requestLogger stores a request-scoped logger in the context, where
// frame.Logger will find it, and logs each request once it completes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := s.logger.With(
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(frame.LoggingContext(r.Context(), logger)))
		logger.InfoContext(r.Context(), "request",
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

// ListenAndServe serves the site on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "pages", len(s.pages))
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("error serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down: %w", err)
	}
	return nil
}
