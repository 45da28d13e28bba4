package ui

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"geneexplorer/app"
	"geneexplorer/internal/errors"
	"geneexplorer/internal/metrics"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// Server is the HTTP layer: routing, templates and the JSON API surface.
type Server struct {
	router     *chi.Mux
	expression *app.ExpressionService
	papers     *app.PapersService
	metrics    *metrics.Metrics
	templates  *template.Template
}

// NewServer wires the services into a chi router.
func NewServer(expression *app.ExpressionService, papers *app.PapersService, m *metrics.Metrics) (*Server, error) {
	templates, err := template.ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}

	s := &Server{
		router:     chi.NewRouter(),
		expression: expression,
		papers:     papers,
		metrics:    m,
		templates:  templates,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(s.observeRequests)

	// Serve static files
	staticFS := http.FileServer(http.FS(embeddedFiles))
	s.router.Handle("/static/*", staticFS)
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/api/volcano-data", s.handleVolcanoData)
	s.router.Get("/api/gene/{gene}", s.handleGene)
	s.router.Get("/api/papers/{gene}", s.handlePapers)
	s.router.Get("/api/test-gene/{gene}", s.handleTestGene)
	s.router.Handle("/metrics", s.metrics.Handler())
}

// observeRequests records per-route latency and status.
func (s *Server) observeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.RequestDuration.
			WithLabelValues(route, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	log.Printf("[Server] listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html")
	if err := s.templates.ExecuteTemplate(w, templateName, data); err != nil {
		log.Printf("[Server] template error: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
