// Package web serves the storefront demo pages and the conversation REST API
// the embedded chat widget talks to.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/mfalkner/partdesk/internal/chat"
	"github.com/mfalkner/partdesk/internal/core"
	"github.com/mfalkner/partdesk/internal/logging"
	"github.com/mfalkner/partdesk/internal/render"
)

// Config holds the server configuration.
type Config struct {
	Host       string
	Port       int
	EnableCORS bool
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:       "localhost",
		Port:       8080,
		EnableCORS: true,
	}
}

// Server hosts the storefront and the conversation API. Conversations live in
// memory only: a restart starts everyone over, which is the widget's contract
// anyway.
type Server struct {
	router     chi.Router
	config     Config
	logger     *logging.Logger
	assistant  core.Assistant
	turns      *render.HTML
	storefront *template.Template

	mu    sync.RWMutex
	convs map[string]*chat.Controller
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) {
		s.logger = logger.WithComponent("web")
	}
}

// WithConfig sets the server configuration.
func WithConfig(cfg Config) Option {
	return func(s *Server) {
		s.config = cfg
	}
}

// NewServer creates the web server.
func NewServer(assistant core.Assistant, opts ...Option) (*Server, error) {
	turns, err := render.NewHTML(render.NewInline())
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:    DefaultConfig(),
		logger:    logging.NewNop(),
		assistant: assistant,
		turns:     turns,
		convs:     make(map[string]*chat.Controller),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.parseTemplates(); err != nil {
		return nil, err
	}
	s.router = s.setupRouter()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.loggingMiddleware)

	if s.config.EnableCORS {
		corsHandler := cors.New(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
			AllowCredentials: false,
			MaxAge:           300,
		})
		r.Use(corsHandler.Handler)
	}

	r.Get("/health", s.handleHealth)

	r.Get("/", s.handleStorefront)
	r.Handle("/static/*", s.staticHandler())

	r.Route("/api/conversations", func(r chi.Router) {
		r.Post("/", s.handleCreateConversation)
		r.Route("/{conversationID}", func(r chi.Router) {
			r.Get("/", s.handleGetConversation)
			r.Post("/mode", s.handleSelectMode)
			r.Post("/messages", s.handleSendMessage)
		})
	})

	return r
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"bytes", ww.BytesWritten(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.Error("failed to encode response", "error", err)
		}
	}
}

// respondError sends a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListenAndServe starts the HTTP server and shuts it down when ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting storefront server", "addr", s.Addr())
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
