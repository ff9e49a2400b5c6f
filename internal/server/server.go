package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-forge/internal/billing"
	"github.com/jonathan/resume-forge/internal/ingestion"
	"github.com/jonathan/resume-forge/internal/llm"
	"github.com/jonathan/resume-forge/internal/pipeline"
	"github.com/jonathan/resume-forge/internal/server/middleware"
	"github.com/jonathan/resume-forge/internal/server/ratelimit"
	"github.com/jonathan/resume-forge/internal/storage"
	"github.com/jonathan/resume-forge/internal/types"
)

// Store is the persistence the API needs.
type Store interface {
	pipeline.Store
	UserStore

	Ping(ctx context.Context) error

	SaveProfile(ctx context.Context, p *types.Profile) (*types.Profile, error)
	GetProfile(ctx context.Context, userID string, id uuid.UUID) (*types.Profile, error)
	ListProfiles(ctx context.Context, userID string) ([]types.Profile, error)
	DeleteProfile(ctx context.Context, userID string, id uuid.UUID) error

	CreateTemplate(ctx context.Context, t *types.Template) (*types.Template, error)
	GetTemplate(ctx context.Context, userID string, id uuid.UUID) (*types.Template, error)
	ListTemplates(ctx context.Context, userID string) ([]types.Template, error)

	GetGeneration(ctx context.Context, userID string, id uuid.UUID) (*types.Generation, error)
	ListGenerations(ctx context.Context, userID string, limit int) ([]types.Generation, error)
	DeleteGeneration(ctx context.Context, userID string, id uuid.UUID) (string, error)
}

// Config holds server configuration and collaborators. Store and JWT are required; the
// remaining collaborators switch features on when present.
type Config struct {
	Port string

	Store     Store
	JWT       *JWTService
	Generator *pipeline.Generator
	Objects   storage.ObjectStore
	LLM       llm.Client
	Ingester  *ingestion.Ingester
	Customers billing.CustomerCreator
	Limiter   *ratelimit.Limiter
	Logger    logrus.FieldLogger

	// EscapeValues LaTeX-escapes resume values for POST /render.
	EscapeValues bool
}

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	store        Store
	jwtService   *JWTService
	generator    *pipeline.Generator
	objects      storage.ObjectStore
	llm          llm.Client
	ingester     *ingestion.Ingester
	userService  *UserService
	rateLimiter  *ratelimit.Limiter
	logger       logrus.FieldLogger
	escapeValues bool
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("server requires a store")
	}
	if cfg.JWT == nil {
		return nil, fmt.Errorf("server requires a JWT service")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	generator := cfg.Generator
	if generator == nil {
		generator = &pipeline.Generator{Store: cfg.Store, Objects: cfg.Objects, Logger: logger}
	}
	ingester := cfg.Ingester
	if ingester == nil {
		ingester = &ingestion.Ingester{Client: cfg.LLM, Logger: logger}
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.NewLimiter(ratelimit.LoadConfig())
	}
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	s := &Server{
		store:        cfg.Store,
		jwtService:   cfg.JWT,
		generator:    generator,
		objects:      cfg.Objects,
		llm:          cfg.LLM,
		ingester:     ingester,
		userService:  NewUserService(cfg.Store, cfg.Customers, logger),
		rateLimiter:  limiter,
		logger:       logger,
		escapeValues: cfg.EscapeValues,
	}

	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // generations compile LaTeX remotely
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the complete middleware-wrapped router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, auth(h))
	}
	// owned routes write rows that reference the caller's user row
	owned := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, auth(s.withUser(h)))
	}

	mux.HandleFunc("GET /health", s.handleHealth)

	protected("GET /templates", s.handleListTemplates)
	owned("POST /templates", s.handleCreateTemplate)
	protected("GET /templates/{id}", s.handleGetTemplate)

	protected("POST /render", s.handleRender)

	owned("POST /generations", s.handleCreateGeneration)
	owned("POST /generations/stream", s.handleCreateGenerationStream)
	protected("GET /generations", s.handleListGenerations)
	protected("GET /generations/{id}", s.handleGetGeneration)
	protected("GET /generations/{id}/pdf", s.handleGetGenerationPDF)
	protected("DELETE /generations/{id}", s.handleDeleteGeneration)

	protected("POST /resumes/parse", s.handleParseResume)
	protected("POST /resumes/tailor", s.handleTailorResume)

	protected("GET /profiles", s.handleListProfiles)
	protected("GET /profiles/{id}", s.handleGetProfile)
	owned("PUT /profiles/{id}", s.handleSaveProfile)
	protected("DELETE /profiles/{id}", s.handleDeleteProfile)

	protected("GET /users/me", s.handleGetMe)

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.httpServer.Addr).Info("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()

	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps SSE streaming working through the logging middleware.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		entry := s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"remote":   r.RemoteAddr,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Info("request completed")
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.WithError(err).Warn("health check: database unreachable")
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("failed to encode JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFromErr writes err with the status HTTPStatus assigns it. Internal errors are logged
// and their details withheld from the client.
func (s *Server) errorFromErr(w http.ResponseWriter, r *http.Request, err error) {
	status, message := s.publicError(r, err)
	s.errorResponse(w, status, message)
}

// publicError maps err to a status and the message a client may see. Server-side failures
// are logged, and unexpected ones are reported without detail.
func (s *Server) publicError(r *http.Request, err error) (int, string) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request error")
		if status == http.StatusInternalServerError {
			return status, "internal server error"
		}
	}
	return status, err.Error()
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &ErrValidation{Message: "invalid request body: " + err.Error()}
	}
	return nil
}

// pathID parses the {id} path value as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}

// withUser creates the caller's user record before h runs.
func (s *Server) withUser(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := s.identity(w, r)
		if !ok {
			return
		}
		if _, err := s.userService.Me(r.Context(), identity); err != nil {
			s.errorFromErr(w, r, err)
			return
		}
		h(w, r)
	}
}

// identity returns the authenticated caller or writes 401.
func (s *Server) identity(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	identity, err := middleware.GetIdentity(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return middleware.Identity{}, false
	}
	return identity, true
}

// extractClientID extracts the client identifier (the remote IP) from the request.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	s.logger.WithFields(logrus.Fields{
		"client": s.extractClientID(r),
		"path":   r.URL.Path,
		"limit":  info.Limit,
	}).Warn("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
