// Package httpapi exposes the blogvault stores over a REST API. Handlers are
// thin wrappers: they collect form fields and optional image uploads, call
// into the stores, and surface store-reported failures as JSON errors.
package httpapi

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/yuin/goldmark"

	"github.com/blogvault/blogvault"
)

// Options configures a Server.
type Options struct {
	Logger          *slog.Logger
	AdminPassword   string   // AdminPassword guards mutating routes; empty disables them
	CORSOrigins     []string // CORSOrigins defaults to none
	CoverMaxAgeDays int      // CoverMaxAgeDays is the default eviction age
}

// Server serves the blogvault REST API.
type Server struct {
	posts           *blogvault.PostStore
	images          *blogvault.ImageStore
	logger          *slog.Logger
	md              goldmark.Markdown
	adminPassword   string
	corsOrigins     []string
	coverMaxAgeDays int
}

// NewServer creates a Server over the given stores.
func NewServer(posts *blogvault.PostStore, images *blogvault.ImageStore, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxAge := opts.CoverMaxAgeDays
	if maxAge <= 0 {
		maxAge = 30
	}

	return &Server{
		posts:           posts,
		images:          images,
		logger:          logger,
		md:              blogvault.NewMarkdown(),
		adminPassword:   opts.AdminPassword,
		corsOrigins:     opts.CORSOrigins,
		coverMaxAgeDays: maxAge,
	}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/posts", s.handleListPosts)
		r.Get("/posts/{id}", s.handleGetPost)
		r.Get("/posts/{id}/cover", s.handleGetCover)
		r.Get("/posts/{id}/html", s.handleGetPostHTML)
		r.Get("/posts/slug/{slug}", s.handleGetPostBySlug)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/posts", s.handleCreatePost)
			r.Put("/posts/{id}", s.handleUpdatePost)
			r.Delete("/posts/{id}", s.handleDeletePost)
			r.Post("/covers/evict", s.handleEvictCovers)
		})
	})

	return r
}

// requireAdmin checks the static admin password supplied as a bearer token.
// With no password configured, every mutating route is rejected.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminPassword == "" {
			writeError(w, http.StatusForbidden, "admin API is disabled")
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.adminPassword)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid admin credentials")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)))
	})
}
