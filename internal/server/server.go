// Package server provides the HTTP REST API for the career guidance service.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/career-compass/internal/config"
	"github.com/jonathan/career-compass/internal/db"
	"github.com/jonathan/career-compass/internal/fetch"
	"github.com/jonathan/career-compass/internal/flows"
	"github.com/jonathan/career-compass/internal/llm"
	"github.com/jonathan/career-compass/internal/mail"
	"github.com/jonathan/career-compass/internal/server/middleware"
	"github.com/jonathan/career-compass/internal/server/ratelimit"
)

// DefaultHeartbeat is the interval between SSE keep-alive comments.
const DefaultHeartbeat = 25 * time.Second

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	changes     *changeHub
	flows       *flows.Flows
	jobPage     *fetch.JobPageOptions
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	authHandler *AuthHandler
	corsOrigin  string
	heartbeat   time.Duration
	closers     []func()
}

// Deps are the collaborators a Server is built from.
type Deps struct {
	Port       int
	Store      Store
	Notifier   Notifier // optional; streams only send the snapshot without it
	LLM        llm.Client
	Passwords  *config.PasswordConfig
	JWT        *config.JWTConfig
	Mailer     mail.Mailer
	Google     GoogleIdentity // optional
	RateLimit  *ratelimit.Config
	JobPage    *fetch.JobPageOptions
	AppBaseURL string
	CORSOrigin string
	Heartbeat  time.Duration
}

// New connects to the database and the model provider and builds a server
// from the environment-derived configuration.
func New(ctx context.Context, cfg *config.ServerConfig) (*Server, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.GeminiAPIKey)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	fail := func(err error) (*Server, error) {
		_ = client.Close()
		database.Close()
		return nil, err
	}

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return fail(fmt.Errorf("failed to create password config: %w", err))
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fail(fmt.Errorf("failed to create JWT config: %w", err))
	}

	mailConfig, err := config.LoadMailConfig()
	if err != nil {
		return fail(fmt.Errorf("failed to load mail config: %w", err))
	}
	var mailer mail.Mailer = &mail.LogMailer{From: mailConfig.From}
	if mailConfig.UseGmail() {
		gm, err := mail.NewGmailMailer(ctx, mailConfig.From, mailConfig.CredentialsFile, mailConfig.TokenFile)
		if err != nil {
			return fail(fmt.Errorf("failed to create Gmail mailer: %w", err))
		}
		mailer = gm
	} else {
		log.Printf("GMAIL_CREDENTIALS_FILE not set, account emails will be logged")
	}

	oauthConfig, err := config.LoadOAuthConfig()
	if err != nil {
		return fail(fmt.Errorf("failed to load OAuth config: %w", err))
	}
	var google GoogleIdentity
	if oauthConfig.Enabled() {
		google = NewGoogleOAuth(oauthConfig.OAuth2())
	}

	fetchOpts := fetch.DefaultOptions()
	fetchOpts.Timeout = cfg.FetchTimeout
	jobPage := &fetch.JobPageOptions{Fetch: fetchOpts}
	if cfg.UseBrowser {
		jobPage.Renderer = &fetch.ChromeRenderer{Timeout: 2 * cfg.FetchTimeout}
	}

	s, err := NewWithDeps(Deps{
		Port:       cfg.Port,
		Store:      database,
		Notifier:   database,
		LLM:        client,
		Passwords:  passwordConfig,
		JWT:        jwtConfig,
		Mailer:     mailer,
		Google:     google,
		RateLimit:  ratelimit.LoadConfig(),
		JobPage:    jobPage,
		AppBaseURL: cfg.AppBaseURL,
		CORSOrigin: cfg.CORSOrigin,
	})
	if err != nil {
		return fail(err)
	}
	s.closers = append(s.closers, func() { _ = client.Close() }, database.Close)
	return s, nil
}

// NewWithDeps builds a server from explicit collaborators.
func NewWithDeps(d Deps) (*Server, error) {
	if d.Store == nil {
		return nil, fmt.Errorf("server requires a store")
	}
	if d.LLM == nil {
		return nil, fmt.Errorf("server requires an LLM client")
	}
	if d.Passwords == nil || d.JWT == nil {
		return nil, fmt.Errorf("server requires password and JWT configuration")
	}
	if d.Mailer == nil {
		d.Mailer = &mail.LogMailer{}
	}
	if d.RateLimit == nil {
		d.RateLimit = ratelimit.LoadConfig()
	}
	if d.CORSOrigin == "" {
		d.CORSOrigin = "*"
	}
	if d.Heartbeat <= 0 {
		d.Heartbeat = DefaultHeartbeat
	}

	s := &Server{
		store:       d.Store,
		flows:       flows.New(d.LLM),
		jobPage:     d.JobPage,
		rateLimiter: ratelimit.NewLimiter(d.RateLimit),
		jwtService:  NewJWTService(d.JWT),
		corsOrigin:  d.CORSOrigin,
		heartbeat:   d.Heartbeat,
	}
	if d.Notifier != nil {
		s.changes = newChangeHub(d.Notifier, db.ChannelJobs, db.ChannelCourses)
	}
	authService := NewAuthService(d.Store, d.Passwords, s.jwtService, d.Mailer, d.AppBaseURL)
	s.authHandler = NewAuthHandler(authService, s.jwtService, d.Google)

	authed := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	user := func(h http.HandlerFunc) http.Handler { return authed(h) }
	admin := func(h http.HandlerFunc) http.Handler { return authed(middleware.RequireAdmin(h)) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Auth endpoints
	mux.HandleFunc("POST /v1/auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /v1/auth/login", s.authHandler.Login)
	mux.HandleFunc("POST /v1/auth/verify-email", s.authHandler.VerifyEmail)
	mux.HandleFunc("POST /v1/auth/password-reset", s.authHandler.RequestPasswordReset)
	mux.HandleFunc("POST /v1/auth/password-reset/confirm", s.authHandler.ConfirmPasswordReset)
	mux.HandleFunc("GET /v1/auth/google/start", s.authHandler.GoogleStart)
	mux.HandleFunc("GET /v1/auth/google/callback", s.authHandler.GoogleCallback)

	// Caller endpoints
	mux.Handle("GET /v1/me/profile", user(s.handleGetProfile))
	mux.Handle("PUT /v1/me/profile", user(s.handleUpdateProfile))
	mux.Handle("POST /v1/me/password", user(s.authHandler.UpdatePassword))
	mux.Handle("GET /v1/dashboard", user(s.handleDashboard))

	// Catalog endpoints
	mux.Handle("GET /v1/jobs", user(s.handleListJobs))
	mux.Handle("GET /v1/jobs/stream", user(s.handleJobsStream))
	mux.Handle("GET /v1/jobs/{id}", user(s.handleGetJob))
	mux.Handle("GET /v1/courses", user(s.handleListCourses))
	mux.Handle("GET /v1/courses/stream", user(s.handleCoursesStream))
	mux.Handle("GET /v1/courses/{id}", user(s.handleGetCourse))

	// Flow endpoints
	mux.Handle("POST /v1/flows/career-assessment", user(s.handleCareerAssessment))
	mux.Handle("POST /v1/flows/skill-gap", user(s.handleSkillGap))
	mux.Handle("POST /v1/flows/resume-optimization", user(s.handleResumeOptimization))
	mux.Handle("POST /v1/flows/job-parser", user(s.handleJobParser))

	// Admin endpoints
	mux.Handle("POST /v1/admin/jobs", admin(s.handleCreateJob))
	mux.Handle("DELETE /v1/admin/jobs/{id}", admin(s.handleDeleteJob))
	mux.Handle("POST /v1/admin/courses", admin(s.handleCreateCourse))
	mux.Handle("DELETE /v1/admin/courses/{id}", admin(s.handleDeleteCourse))
	mux.Handle("POST /v1/admin/seed-jobs", admin(s.handleSeedJobs))
	mux.Handle("POST /v1/admin/parse-job", admin(s.handleParseJob))

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", d.Port),
		Handler:     s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: SSE streams stay open. Flow calls are bounded by the model client.
		IdleTimeout: 60 * time.Second,
	}
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close()
	log.Println("Server stopped")
	return nil
}

// Close releases the rate limiter and any connections New opened.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.changes != nil {
		s.changes.Close()
	}
	for _, c := range s.closers {
		c()
	}
	s.closers = nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if s.corsOrigin != "*" {
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps SSE streaming working through the logging wrapper.
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
		log.Printf("[%s] %s %d %s completed in %v", r.Method, r.URL.Path, rec.status, r.RemoteAddr, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// writeError writes the JSON error response for err.
func writeError(w http.ResponseWriter, err error) {
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[error] %d: %v", status, err)
	}
	writeJSON(w, status, body)
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
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
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "Rate limit exceeded. Please try again later.",
		"code":      "rate_limit_exceeded",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Seconds())
		if secs < 1 {
			secs = 1
		}
		response["retry_after"] = secs
		w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	writeJSON(w, http.StatusTooManyRequests, response)
}
