// Package webui provides an HTTP server over the skill reference corpus:
// a JSON API, rendered HTML article pages, and search backed by the
// full-text index.
package webui

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vuekb/vuekb/pkg/index"
	"github.com/vuekb/vuekb/pkg/logger"
	"github.com/vuekb/vuekb/pkg/presenter"
	"github.com/vuekb/vuekb/pkg/skills"
	"github.com/vuekb/vuekb/pkg/telemetry"
)

//go:embed static/index.html
var staticFS embed.FS

// Server serves the reference corpus over HTTP
type Server struct {
	router    *mux.Router
	discovery *skills.Discovery
	idx       *index.Index
	config    *ServerConfig
	server    *http.Server

	mu     sync.RWMutex
	corpus map[string]*skills.Skill
}

// ServerConfig holds the configuration for the web server
type ServerConfig struct {
	Host string
	Port int
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	return nil
}

// NewServer creates a new corpus server. The index may be nil, in which case
// the search endpoint reports it as unavailable.
func NewServer(discovery *skills.Discovery, idx *index.Index, config *ServerConfig) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid server configuration")
	}

	corpus, err := discovery.DiscoverSkills()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load corpus")
	}

	s := &Server{
		router:    mux.NewRouter(),
		discovery: discovery,
		idx:       idx,
		config:    config,
		corpus:    corpus,
	}

	s.setupRoutes()

	return s, nil
}

// setupRoutes configures all the HTTP routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/skills", s.handleListSkills).Methods("GET")
	api.HandleFunc("/skills/{slug:.+}", s.handleGetSkill).Methods("GET")
	api.HandleFunc("/search", s.handleSearch).Methods("GET")
	api.HandleFunc("/tags", s.handleTags).Methods("GET")

	s.router.HandleFunc("/healthz", s.handleHealthz).Methods("GET")
	s.router.HandleFunc("/skills/{slug:.+}", s.handleSkillPage).Methods("GET")
	s.router.HandleFunc("/", s.handleIndexPage).Methods("GET")

	s.router.Use(s.tracingMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.corsMiddleware)
}

// Refresh re-discovers the corpus and, when an index is attached, rebuilds it.
func (s *Server) Refresh(ctx context.Context) error {
	corpus, err := s.discovery.DiscoverSkills()
	if err != nil {
		return errors.Wrap(err, "failed to reload corpus")
	}

	s.mu.Lock()
	s.corpus = corpus
	s.mu.Unlock()

	if s.idx != nil {
		if err := s.idx.Rebuild(ctx, corpus); err != nil {
			return errors.Wrap(err, "failed to rebuild search index")
		}
	}

	logger.G(ctx).WithField("skills", len(corpus)).Info("corpus reloaded")
	return nil
}

func (s *Server) snapshot() map[string]*skills.Skill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus
}

// tracingMiddleware wraps each request in a server span
func (s *Server) tracingMiddleware(next http.Handler) http.Handler {
	tracer := telemetry.Tracer("vuekb.webui")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "http.request")
		defer span.End()

		rw := &responseWriter{ResponseWriter: w, statusCode: 200}
		next.ServeHTTP(rw, r.WithContext(ctx))

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
			attribute.Int("http.status_code", rw.statusCode),
		)
		if rw.statusCode >= 500 {
			span.SetStatus(codes.Error, http.StatusText(rw.statusCode))
		} else {
			span.SetStatus(codes.Ok, "")
		}
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: 200}

		next.ServeHTTP(rw, r)

		logger.G(r.Context()).WithFields(map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration":    time.Since(start),
			"remote_addr": r.RemoteAddr,
		}).Info("HTTP request")
	})
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// SkillSummary is the list-endpoint view of an article
type SkillSummary struct {
	Slug   string   `json:"slug"`
	Title  string   `json:"title"`
	Impact string   `json:"impact"`
	Type   string   `json:"type"`
	Tags   []string `json:"tags"`
	Source string   `json:"source"`
}

// SkillDetail is the single-article view including the body
type SkillDetail struct {
	SkillSummary
	Content string `json:"content"`
}

func summarize(s *skills.Skill) SkillSummary {
	return SkillSummary{
		Slug:   s.Slug,
		Title:  s.Title,
		Impact: string(s.Impact),
		Type:   string(s.Type),
		Tags:   s.Tags,
		Source: s.Source,
	}
}

// handleListSkills handles GET /api/skills
func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	corpus := s.snapshot()

	query := r.URL.Query()
	if patterns, ok := query["tag"]; ok {
		filtered, err := skills.FilterByTags(corpus, patterns)
		if err != nil {
			s.writeErrorResponse(w, http.StatusBadRequest, "invalid tag filter", err)
			return
		}
		corpus = filtered
	}
	if t := query.Get("type"); t != "" {
		typ, err := skills.ParseType(t)
		if err != nil {
			s.writeErrorResponse(w, http.StatusBadRequest, "invalid type filter", err)
			return
		}
		corpus = skills.FilterByType(corpus, typ)
	}
	if imp := query.Get("impact"); imp != "" {
		impact, err := skills.ParseImpact(imp)
		if err != nil {
			s.writeErrorResponse(w, http.StatusBadRequest, "invalid impact filter", err)
			return
		}
		corpus = skills.FilterByMinImpact(corpus, impact)
	}

	summaries := make([]SkillSummary, 0, len(corpus))
	for _, slug := range skills.SortedSlugs(corpus) {
		summaries = append(summaries, summarize(corpus[slug]))
	}

	s.writeJSONResponse(w, map[string]any{"skills": summaries})
}

// handleGetSkill handles GET /api/skills/{slug}
func (s *Server) handleGetSkill(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	skill, exists := s.snapshot()[slug]
	if !exists {
		s.writeErrorResponse(w, http.StatusNotFound, "skill not found", errors.Errorf("no skill %q", slug))
		return
	}

	s.writeJSONResponse(w, SkillDetail{
		SkillSummary: summarize(skill),
		Content:      skill.Content,
	})
}

// handleSearch handles GET /api/search
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.idx == nil {
		s.writeErrorResponse(w, http.StatusServiceUnavailable, "search index not available", errors.New("server started without an index"))
		return
	}

	query := r.URL.Query()
	q := query.Get("q")
	if q == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "missing query", errors.New("the q parameter is required"))
		return
	}

	opts := index.SearchOptions{
		Tag: query.Get("tag"),
	}
	if t := query.Get("type"); t != "" {
		typ, err := skills.ParseType(t)
		if err != nil {
			s.writeErrorResponse(w, http.StatusBadRequest, "invalid type filter", err)
			return
		}
		opts.Type = typ
	}
	if imp := query.Get("impact"); imp != "" {
		impact, err := skills.ParseImpact(imp)
		if err != nil {
			s.writeErrorResponse(w, http.StatusBadRequest, "invalid impact filter", err)
			return
		}
		opts.MinImpact = impact
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			opts.Limit = limit
		}
	}

	hits, err := s.idx.Search(r.Context(), q, opts)
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "search failed", err)
		return
	}
	if hits == nil {
		hits = []index.Hit{}
	}

	s.writeJSONResponse(w, map[string]any{"query": q, "hits": hits})
}

// handleTags handles GET /api/tags
func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, map[string]any{"tags": skills.TagCounts(s.snapshot())})
}

// handleHealthz handles GET /healthz
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, map[string]any{
		"status": "ok",
		"skills": len(s.snapshot()),
	})
}

// handleIndexPage serves the embedded landing page
func (s *Server) handleIndexPage(w http.ResponseWriter, r *http.Request) {
	content, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		logger.G(r.Context()).WithError(err).Error("failed to read index.html")
		http.Error(w, "failed to load page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Write(content)
}

// writeJSONResponse writes a JSON response
func (s *Server) writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.G(context.TODO()).WithError(err).Error("failed to encode JSON response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// writeErrorResponse writes a JSON error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
	logger.G(context.TODO()).WithError(err).Warn(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   message,
		"details": err.Error(),
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:    address,
		Handler: s.router,
	}

	presenter.Info(fmt.Sprintf("Serving skill reference on http://%s", address))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.G(ctx).WithError(err).Error("web server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Stop shuts down the server immediately
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	return s.server.Close()
}
